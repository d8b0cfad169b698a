// Package svg serializes a scene tree to SVG text. It is used by the
// live host's page handler, the render CLI command, and tests that
// compare rendered output.
package svg

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/recera/dragplot/pkg/scene"
)

// Applier writes scene nodes as SVG markup.
type Applier struct {
	w   io.Writer
	err error

	// WithIDs adds data-node-id attributes so a browser mirror can
	// address nodes in patch and event frames.
	WithIDs bool
}

// NewApplier creates an SVG applier writing to w.
func NewApplier(w io.Writer) *Applier {
	return &Applier{w: w}
}

// Apply renders the node tree. Root wrapper nodes (tag "root") render
// their children only.
func (a *Applier) Apply(n *scene.Node) error {
	if n == nil {
		return nil
	}
	if n.Tag == "root" {
		for _, kid := range n.Kids {
			a.renderNode(kid)
		}
		return a.err
	}
	a.renderNode(n)
	return a.err
}

// write helper that tracks errors
func (a *Applier) write(s string) {
	if a.err != nil {
		return
	}
	_, a.err = io.WriteString(a.w, s)
}

func (a *Applier) renderNode(n *scene.Node) {
	if n.Kind == scene.KindText {
		a.write(escapeText(n.Text))
		return
	}

	a.write("<" + n.Tag)
	a.renderAttrs(n)
	if len(n.Kids) == 0 {
		a.write("/>")
		return
	}
	a.write(">")
	for _, kid := range n.Kids {
		a.renderNode(kid)
	}
	a.write("</" + n.Tag + ">")
}

func (a *Applier) renderAttrs(n *scene.Node) {
	if n.Tag == "svg" {
		a.write(` xmlns="http://www.w3.org/2000/svg"`)
	}
	if a.WithIDs {
		a.write(` data-node-id="` + strconv.FormatUint(uint64(n.ID()), 10) + `"`)
	}

	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a.write(" " + k + `="` + escapeAttr(n.Attrs[k]) + `"`)
	}

	if cls := n.ClassAttr(); cls != "" {
		a.write(` class="` + escapeAttr(cls) + `"`)
	}
	if dx, dy, ok := n.Transform(); ok {
		a.write(fmt.Sprintf(` transform="translate(%s %s)"`, ftoa(dx), ftoa(dy)))
	}
}

// Render is the one-shot convenience wrapper.
func Render(w io.Writer, n *scene.Node) error {
	return NewApplier(w).Apply(n)
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func escapeText(s string) string {
	return escape(s, false)
}

func escapeAttr(s string) string {
	return escape(s, true)
}

func escape(s string, attr bool) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		case '"':
			if attr {
				out = append(out, "&quot;"...)
			} else {
				out = append(out, c)
			}
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
