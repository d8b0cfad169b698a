package live

import (
	"bytes"
	"html/template"
	"io"

	"github.com/recera/dragplot/pkg/renderer/svg"
)

// writePage renders the session's chart as SVG and embeds it in the
// host page together with the bootstrap script.
func writePage(w io.Writer, s *Session) error {
	var chartBuf bytes.Buffer
	applier := svg.NewApplier(&chartBuf)
	applier.WithIDs = true
	if err := applier.Apply(s.chart.Root()); err != nil {
		return err
	}

	return pageTemplate.Execute(w, pageData{
		SessionID: s.ID,
		Chart:     template.HTML(chartBuf.String()),
	})
}

type pageData struct {
	SessionID string
	Chart     template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>dragplot</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; background: #fafafa; }
svg { background: #fff; border: 1px solid #ddd; touch-action: none; }
.chart-grid { fill: none; stroke: #e5e5e5; }
.chart-gridline { stroke: #eee; }
.chart-axis { stroke: #888; }
.chart-label { font-size: 11px; fill: #666; }
.chart-line { fill: none; stroke: #4a7de2; stroke-width: 2; }
.chart-point { fill: #4a7de2; cursor: grab; }
.dragplot-hover { fill: #2757b8; }
.dragplot-dragging { opacity: 0.4; }
.dragplot-marker { fill: #2757b8; opacity: 0.8; cursor: grabbing; }
</style>
</head>
<body>
<div id="chart">{{.Chart}}</div>
<script>
(function () {
  "use strict";
  var svgEl = document.querySelector("#chart svg");
  var proto = location.protocol === "https:" ? "wss:" : "ws:";
  var ws = new WebSocket(proto + "//" + location.host + "/live/{{.SessionID}}");
  ws.binaryType = "arraybuffer";

  // --- binary codec -------------------------------------------------

  function Writer() { this.bytes = []; }
  Writer.prototype.byte = function (b) { this.bytes.push(b & 0xff); };
  Writer.prototype.uvarint = function (v) {
    while (v >= 0x80) { this.byte((v & 0x7f) | 0x80); v = Math.floor(v / 128); }
    this.byte(v);
  };
  Writer.prototype.string = function (s) {
    var enc = new TextEncoder().encode(s);
    this.uvarint(enc.length);
    for (var i = 0; i < enc.length; i++) this.byte(enc[i]);
  };
  Writer.prototype.float64 = function (v) {
    var buf = new ArrayBuffer(8);
    new DataView(buf).setFloat64(0, v, true);
    var u8 = new Uint8Array(buf);
    for (var i = 0; i < 8; i++) this.byte(u8[i]);
  };
  Writer.prototype.done = function () { return new Uint8Array(this.bytes); };

  function Reader(buf) { this.view = new DataView(buf); this.u8 = new Uint8Array(buf); this.pos = 0; }
  Reader.prototype.byte = function () { return this.u8[this.pos++]; };
  Reader.prototype.uvarint = function () {
    var v = 0, shift = 1;
    for (;;) {
      var b = this.byte();
      v += (b & 0x7f) * shift;
      if (b < 0x80) return v;
      shift *= 128;
    }
  };
  Reader.prototype.string = function () {
    var n = this.uvarint();
    var s = new TextDecoder().decode(this.u8.subarray(this.pos, this.pos + n));
    this.pos += n;
    return s;
  };
  Reader.prototype.float64 = function () {
    var v = this.view.getFloat64(this.pos, true);
    this.pos += 8;
    return v;
  };
  Reader.prototype.more = function () { return this.pos < this.u8.length; };

  // --- event forwarding ---------------------------------------------

  function chartCoords(clientX, clientY) {
    var r = svgEl.getBoundingClientRect();
    return { x: clientX - r.left, y: clientY - r.top };
  }

  function nodeIDOf(target) {
    var el = target && target.closest ? target.closest("[data-node-id]") : null;
    return el ? parseInt(el.getAttribute("data-node-id"), 10) : 0;
  }

  function sendEvent(name, nodeID, x, y, button, touches) {
    if (ws.readyState !== WebSocket.OPEN) return;
    var w = new Writer();
    w.byte(0x01); // event frame
    w.string(name);
    w.uvarint(nodeID);
    w.float64(x);
    w.float64(y);
    w.byte(button);
    w.uvarint(touches.length);
    touches.forEach(function (t) { w.float64(t.x); w.float64(t.y); });
    ws.send(w.done());
  }

  function onMouse(name) {
    return function (ev) {
      var p = chartCoords(ev.clientX, ev.clientY);
      sendEvent(name, nodeIDOf(ev.target), p.x, p.y, ev.button, []);
    };
  }

  function onTouch(name) {
    return function (ev) {
      ev.preventDefault();
      var touches = [];
      for (var i = 0; i < ev.changedTouches.length; i++) {
        var p = chartCoords(ev.changedTouches[i].clientX, ev.changedTouches[i].clientY);
        touches.push(p);
      }
      var last = touches[touches.length - 1] || { x: 0, y: 0 };
      sendEvent(name, nodeIDOf(ev.target), last.x, last.y, 0, touches);
    };
  }

  // Move and up listen at document scope so a release outside the
  // chart still ends the session; touch events keep targeting the
  // element the touch started on.
  svgEl.addEventListener("mousedown", onMouse("mousedown"));
  document.addEventListener("mousemove", onMouse("mousemove"));
  document.addEventListener("mouseup", onMouse("mouseup"));
  svgEl.addEventListener("touchstart", onTouch("touchstart"), { passive: false });
  svgEl.addEventListener("touchmove", onTouch("touchmove"), { passive: false });
  svgEl.addEventListener("touchend", onTouch("touchend"), { passive: false });

  // --- patch application ---------------------------------------------

  var SVG_NS = "http://www.w3.org/2000/svg";

  function find(id) {
    return document.querySelector('[data-node-id="' + id + '"]');
  }

  function readNode(r) {
    var kind = r.byte();
    var id = r.uvarint();
    if (kind === 1) { // text node
      var textEl = document.createTextNode(r.string());
      return textEl;
    }
    var tag = r.string();
    var el = document.createElementNS(SVG_NS, tag);
    el.setAttribute("data-node-id", id);
    var attrs = r.uvarint();
    for (var i = 0; i < attrs; i++) {
      var k = r.string(), v = r.string();
      el.setAttribute(k, v);
    }
    var cls = r.string();
    if (cls) el.setAttribute("class", cls);
    if (r.byte() === 1) {
      var dx = r.float64(), dy = r.float64();
      el.setAttribute("transform", "translate(" + dx + " " + dy + ")");
    }
    var kids = r.uvarint();
    for (var j = 0; j < kids; j++) el.appendChild(readNode(r));
    return el;
  }

  function applyPatches(r) {
    var count = r.uvarint();
    for (var i = 0; i < count; i++) {
      var op = r.byte();
      var id, el;
      switch (op) {
        case 0x01: // replace text
          id = r.uvarint();
          var textParent = r.uvarint();
          var text = r.string();
          el = find(id) || find(textParent);
          if (el) el.textContent = text;
          break;
        case 0x02: // set attribute
          id = r.uvarint();
          el = find(id);
          var key = r.string(), value = r.string();
          if (el) el.setAttribute(key, value);
          break;
        case 0x05: // remove attribute
          id = r.uvarint();
          el = find(id);
          var rk = r.string();
          if (el) el.removeAttribute(rk);
          break;
        case 0x03: // remove node
          id = r.uvarint();
          el = find(id);
          if (el) el.remove();
          break;
        case 0x07: // set transform
          id = r.uvarint();
          el = find(id);
          var dx = r.float64(), dy = r.float64();
          if (el) el.setAttribute("transform", "translate(" + dx + " " + dy + ")");
          break;
        case 0x04: { // insert node
          id = r.uvarint();
          var parentID = r.uvarint();
          var beforeID = r.uvarint();
          var node = readNode(r);
          var parent = parentID ? find(parentID) : svgEl;
          if (!parent) parent = svgEl;
          var before = beforeID ? find(beforeID) : null;
          parent.insertBefore(node, before);
          break;
        }
        case 0x06: { // move node
          id = r.uvarint();
          var mp = r.uvarint();
          var mb = r.uvarint();
          el = find(id);
          var mParent = mp ? find(mp) : svgEl;
          if (el && mParent) mParent.insertBefore(el, mb ? find(mb) : null);
          break;
        }
        default:
          console.warn("dragplot: unknown patch op", op);
          return;
      }
    }
  }

  ws.onmessage = function (msg) {
    var r = new Reader(msg.data);
    var frame = r.byte();
    if (frame === 0x00) {
      applyPatches(r);
    } else if (frame === 0x02) {
      var ctl = r.string();
      if (ctl === "PING") {
        var w = new Writer();
        w.byte(0x02);
        w.string("PONG");
        ws.send(w.done());
      } else if (ctl === "RELOAD") {
        location.reload();
      }
    }
  };

  ws.onclose = function () {
    console.warn("dragplot: connection closed");
  };
})();
</script>
</body>
</html>
`))
