package dragplot

import (
	"testing"

	"github.com/recera/dragplot/pkg/geom"
	"github.com/recera/dragplot/pkg/scene"
)

// fakeHost is a minimal chart engine: a fixed scene, one or two series,
// and counters for re-render requests. Axis ranges are 1:1 between
// pixels and data units unless a test swaps them.
type fakeHost struct {
	root      *scene.Node
	container *scene.Node
	grid      *scene.Node
	points    []*scene.Node
	series    [][]DataPoint
	observers []func(DrawInfo)
	renders   int

	axisX *geom.AxisRange
	axisY *geom.AxisRange
}

func newFakeHost() *fakeHost {
	h := &fakeHost{
		root:      scene.NewElement("root"),
		container: scene.NewElement("svg"),
		grid:      scene.NewElement("rect"),
		axisX:     &geom.AxisRange{Min: 0, Max: 180, Length: 180},
		axisY:     &geom.AxisRange{Min: 0, Max: 180, Length: 180},
	}
	h.container.Bounds = scene.NewRect(0, 0, 200, 200)
	h.grid.Bounds = scene.NewRect(10, 10, 180, 180)
	h.root.Append(h.container)
	h.container.Append(h.grid)
	return h
}

// addPoint creates a rendered point node at a pixel origin backed by a
// data value.
func (h *fakeHost) addPoint(series int, originX, originY float64, data DataPoint) *scene.Node {
	for len(h.series) <= series {
		h.series = append(h.series, nil)
	}
	h.series[series] = append(h.series[series], data)

	n := scene.NewElement("circle")
	n.Bounds = scene.NewRect(originX, originY, 8, 8)
	h.container.Append(n)
	h.points = append(h.points, n)
	return n
}

// renderPass fires one draw notification per point, the way the chart
// engine does after each render.
func (h *fakeHost) renderPass() {
	idx := 0
	for s := range h.series {
		for p := range h.series[s] {
			for _, fn := range h.observers {
				fn(DrawInfo{
					Kind:   KindPoint,
					Node:   h.points[idx],
					Series: s,
					Point:  p,
					AxisX:  h.axisX,
					AxisY:  h.axisY,
				})
			}
			idx++
		}
	}
}

func (h *fakeHost) Root() *scene.Node      { return h.root }
func (h *fakeHost) Container() *scene.Node { return h.container }
func (h *fakeHost) Grid() *scene.Node      { return h.grid }
func (h *fakeHost) DataPoint(s, p int) DataPoint {
	return h.series[s][p]
}
func (h *fakeHost) SetDataPoint(s, p int, d DataPoint) {
	h.series[s][p] = d
}
func (h *fakeHost) HasPoint(s, p int) bool {
	return s >= 0 && s < len(h.series) && p >= 0 && p < len(h.series[s])
}
func (h *fakeHost) Notify(fn func(DrawInfo)) {
	h.observers = append(h.observers, fn)
}
func (h *fakeHost) RequestRender() { h.renders++ }

func mouse(name string, target *scene.Node, x, y float64) *scene.Event {
	return &scene.Event{Name: name, Target: target, X: x, Y: y}
}

func TestFullDragCycle_Commits(t *testing.T) {
	h := newFakeHost()
	p := h.addPoint(0, 50, 60, DataPoint{X: 5, Y: 7, Meta: map[string]any{"label": "p0"}})
	b := Bind(h, nil)
	h.renderPass()

	scene.Dispatch(mouse("mousedown", p, 52, 62))
	if !b.Active() {
		t.Fatal("session did not start on pointer-down")
	}
	scene.Dispatch(mouse("mousemove", h.root, 72, 82))
	scene.Dispatch(mouse("mouseup", h.root, 72, 82))

	// Marker moved 20px right and 20px down; unit ratios mean +20 in x
	// and -20 in y data units.
	got := h.DataPoint(0, 0)
	if got.X != 25 || got.Y != -13 {
		t.Errorf("committed data = (%v,%v), want (25,-13)", got.X, got.Y)
	}
	if got.Meta["label"] != "p0" {
		t.Error("commit dropped pass-through meta")
	}
	if h.renders != 1 {
		t.Errorf("re-render requests = %d, want exactly 1", h.renders)
	}
	if b.Active() {
		t.Error("session did not return to idle")
	}
}

func TestDropOutsideRegion_Discards(t *testing.T) {
	h := newFakeHost()
	p := h.addPoint(0, 50, 60, DataPoint{X: 5, Y: 7})
	b := Bind(h, nil)
	h.renderPass()

	scene.Dispatch(mouse("mousedown", p, 52, 62))
	scene.Dispatch(mouse("mousemove", h.root, 72, 82))
	scene.Dispatch(mouse("mouseup", h.root, 500, 500))

	got := h.DataPoint(0, 0)
	if got.X != 5 || got.Y != 7 {
		t.Errorf("data = (%v,%v) after outside drop, want unchanged (5,7)", got.X, got.Y)
	}
	if h.renders != 0 {
		t.Errorf("re-render requests = %d, want 0", h.renders)
	}
	if b.Active() {
		t.Error("session still active after pointer-up")
	}
}

func TestSecondPointerDown_IsNoOp(t *testing.T) {
	h := newFakeHost()
	p1 := h.addPoint(0, 50, 60, DataPoint{X: 1, Y: 1})
	p2 := h.addPoint(0, 100, 100, DataPoint{X: 2, Y: 2})
	b := Bind(h, nil)
	h.renderPass()

	scene.Dispatch(mouse("mousedown", p1, 52, 62))
	first := b.dragged
	firstMarker := b.marker

	scene.Dispatch(mouse("mousedown", p2, 102, 102))

	if b.dragged != first || b.dragged == p2 {
		t.Error("second pointer-down replaced the active session")
	}
	if b.marker != firstMarker {
		t.Error("second pointer-down replaced the marker")
	}

	// Finish the original session: commit applies to p1's slot only.
	scene.Dispatch(mouse("mousemove", h.root, 62, 62))
	scene.Dispatch(mouse("mouseup", h.root, 62, 62))

	if got := h.DataPoint(0, 1); got.X != 2 || got.Y != 2 {
		t.Errorf("second point's data mutated: (%v,%v)", got.X, got.Y)
	}
	if got := h.DataPoint(0, 0); got.X == 1 && got.Y == 1 {
		t.Error("original session did not commit")
	}
}

func TestSecondaryButton_Ignored(t *testing.T) {
	h := newFakeHost()
	p := h.addPoint(0, 50, 60, DataPoint{X: 5, Y: 7})
	b := Bind(h, nil)
	h.renderPass()

	ev := mouse("mousedown", p, 52, 62)
	ev.Button = 2
	scene.Dispatch(ev)

	if b.Active() {
		t.Error("secondary-button pointer-down started a session")
	}
}

func TestCallbackVeto_AbortsCommitOnly(t *testing.T) {
	h := newFakeHost()
	var seen Update
	opts := &Options{
		OnUpdate: func(u Update) bool {
			seen = u
			return false
		},
	}
	p := h.addPoint(0, 50, 60, DataPoint{X: 5, Y: 7})
	b := Bind(h, opts)
	h.renderPass()

	scene.Dispatch(mouse("mousedown", p, 52, 62))
	marker := b.marker
	scene.Dispatch(mouse("mousemove", h.root, 72, 82))
	scene.Dispatch(mouse("mouseup", h.root, 72, 82))

	if got := h.DataPoint(0, 0); got.X != 5 || got.Y != 7 {
		t.Errorf("data = (%v,%v) after veto, want unchanged", got.X, got.Y)
	}
	if h.renders != 0 {
		t.Errorf("re-render requests = %d after veto, want 0", h.renders)
	}
	if marker.Node() != nil {
		t.Error("marker survived the veto")
	}
	if b.Active() {
		t.Error("session did not return to idle after veto")
	}

	if seen.Old.X != 5 || seen.New.X != 25 || seen.DXPixels != 20 || seen.DYPixels != 20 {
		t.Errorf("callback saw %+v", seen)
	}
	if !seen.Changed || seen.Converter == nil || seen.Node != p {
		t.Errorf("callback context incomplete: %+v", seen)
	}
	if seen.Host != Host(h) {
		t.Error("callback did not carry the committing host")
	}
}

func TestAxisRestrictedToY_FreezesX(t *testing.T) {
	h := newFakeHost()
	p := h.addPoint(0, 50, 60, DataPoint{X: 5, Y: 7})
	b := Bind(h, &Options{Axis: AxisY})
	h.renderPass()

	scene.Dispatch(mouse("mousedown", p, 52, 62))
	scene.Dispatch(mouse("mousemove", h.root, 172, 82))

	x, y, ok := b.MarkerPosition()
	if !ok {
		t.Fatal("no marker position during drag")
	}
	if x != 50 {
		t.Errorf("marker x = %v despite y-only axis, want frozen at 50", x)
	}
	if y != 80 {
		t.Errorf("marker y = %v, want 80", y)
	}

	scene.Dispatch(mouse("mouseup", h.root, 172, 82))
	got := h.DataPoint(0, 0)
	if got.X != 5 {
		t.Errorf("committed x = %v despite y-only axis, want 5", got.X)
	}
	if got.Y != -13 {
		t.Errorf("committed y = %v, want -13", got.Y)
	}
}

func TestZeroDelta_NoCommit(t *testing.T) {
	h := newFakeHost()
	called := false
	p := h.addPoint(0, 50, 60, DataPoint{X: 5, Y: 7})
	Bind(h, &Options{OnUpdate: func(Update) bool { called = true; return true }})
	h.renderPass()

	scene.Dispatch(mouse("mousedown", p, 52, 62))
	scene.Dispatch(mouse("mouseup", h.root, 52, 62))

	if called {
		t.Error("zero-delta drop invoked the update callback")
	}
	if h.renders != 0 {
		t.Errorf("re-render requests = %d for zero delta, want 0", h.renders)
	}
}

func TestSessionKeepsGrabTimeConverter(t *testing.T) {
	h := newFakeHost()
	p := h.addPoint(0, 50, 60, DataPoint{X: 5, Y: 7})
	b := Bind(h, nil)
	h.renderPass()

	scene.Dispatch(mouse("mousedown", p, 52, 62))

	// A concurrent re-render swaps in new axis ranges with a doubled
	// ratio. The in-flight session must keep its grab-time math.
	h.axisX = &geom.AxisRange{Min: 0, Max: 360, Length: 180}
	h.axisY = &geom.AxisRange{Min: 0, Max: 360, Length: 180}
	h.renderPass()

	if b.Converter().SameRanges(h.axisX, h.axisY) == false {
		t.Error("binding converter was not rebuilt for the new pass")
	}

	scene.Dispatch(mouse("mousemove", h.root, 72, 82))
	scene.Dispatch(mouse("mouseup", h.root, 72, 82))

	got := h.DataPoint(0, 0)
	if got.X != 25 || got.Y != -13 {
		t.Errorf("committed data = (%v,%v), want grab-time ratios (25,-13)", got.X, got.Y)
	}
}

func TestSeriesShrinkMidDrag_AbandonsSession(t *testing.T) {
	h := newFakeHost()
	h.addPoint(0, 30, 30, DataPoint{X: 1, Y: 1})
	p := h.addPoint(0, 50, 60, DataPoint{X: 5, Y: 7})
	b := Bind(h, nil)
	h.renderPass()

	scene.Dispatch(mouse("mousedown", p, 52, 62))
	marker := b.marker

	// A data swap shrinks the series while the session holds a tag
	// into the removed slot.
	h.series[0] = h.series[0][:1]

	scene.Dispatch(mouse("mousemove", h.root, 72, 82))
	if b.Active() {
		t.Fatal("session survived the removal of its slot")
	}
	if marker.Node() != nil {
		t.Error("abandoned session left its marker in the scene")
	}
	if p.HasClass("dragplot-dragging") {
		t.Error("abandoned session left the drag class on the point")
	}
	if got := h.DataPoint(0, 0); got.X != 1 || got.Y != 1 {
		t.Errorf("remaining data mutated: (%v,%v)", got.X, got.Y)
	}
	if h.renders != 0 {
		t.Errorf("re-render requests = %d, want 0", h.renders)
	}

	// The binding is idle again and accepts a fresh drag.
	survivor := h.points[0]
	scene.Dispatch(mouse("mousedown", survivor, 32, 32))
	if !b.Active() {
		t.Error("binding rejected a new drag after abandoning")
	}
	scene.Dispatch(mouse("mouseup", h.root, 32, 32))
}

func TestSeriesShrinkBeforeRelease_DiscardsCommit(t *testing.T) {
	h := newFakeHost()
	h.addPoint(0, 30, 30, DataPoint{X: 1, Y: 1})
	p := h.addPoint(0, 50, 60, DataPoint{X: 5, Y: 7})
	b := Bind(h, nil)
	h.renderPass()

	scene.Dispatch(mouse("mousedown", p, 52, 62))
	scene.Dispatch(mouse("mousemove", h.root, 72, 82))

	h.series[0] = h.series[0][:1]

	scene.Dispatch(mouse("mouseup", h.root, 72, 82))
	if b.Active() {
		t.Error("session still active after release on a removed slot")
	}
	if h.renders != 0 {
		t.Errorf("re-render requests = %d, want 0", h.renders)
	}
}

func TestTouchDragCycle(t *testing.T) {
	h := newFakeHost()
	p := h.addPoint(0, 50, 60, DataPoint{X: 5, Y: 7})
	b := Bind(h, nil)
	h.renderPass()

	previews := 0
	b.Preview().Subscribe(func(PreviewValue) { previews++ })

	scene.Dispatch(&scene.Event{Name: "touchstart", Target: p, Touches: []scene.Touch{{X: 52, Y: 62}}})
	if !b.Active() {
		t.Fatal("touch did not start a session")
	}
	scene.Dispatch(&scene.Event{Name: "touchmove", Target: h.root, Touches: []scene.Touch{{X: 72, Y: 82}}})
	scene.Dispatch(&scene.Event{Name: "touchend", Target: h.root, Touches: []scene.Touch{{X: 72, Y: 82}}})

	got := h.DataPoint(0, 0)
	if got.X != 25 || got.Y != -13 {
		t.Errorf("touch commit = (%v,%v), want (25,-13)", got.X, got.Y)
	}
	// Default policy is mouse-only live preview.
	if previews != 0 {
		t.Errorf("touch drag published %d previews under PreviewMouseOnly", previews)
	}
}

func TestLivePreview_PublishesWithoutMutating(t *testing.T) {
	h := newFakeHost()
	p := h.addPoint(0, 50, 60, DataPoint{X: 5, Y: 7})
	b := Bind(h, nil)
	h.renderPass()

	var got []PreviewValue
	b.Preview().Subscribe(func(v PreviewValue) { got = append(got, v) })

	scene.Dispatch(mouse("mousedown", p, 52, 62))
	scene.Dispatch(mouse("mousemove", h.root, 72, 82))

	if len(got) != 1 {
		t.Fatalf("previews published = %d, want 1", len(got))
	}
	if got[0].Data.X != 25 || got[0].Data.Y != -13 {
		t.Errorf("preview value = (%v,%v), want (25,-13)", got[0].Data.X, got[0].Data.Y)
	}
	if d := h.DataPoint(0, 0); d.X != 5 || d.Y != 7 {
		t.Error("live preview mutated the underlying data")
	}

	scene.Dispatch(mouse("mouseup", h.root, 500, 500)) // discard
}

func TestPreviewAll_IncludesTouch(t *testing.T) {
	h := newFakeHost()
	p := h.addPoint(0, 50, 60, DataPoint{X: 5, Y: 7})
	b := Bind(h, &Options{LivePreview: PreviewAll})
	h.renderPass()

	previews := 0
	b.Preview().Subscribe(func(PreviewValue) { previews++ })

	scene.Dispatch(&scene.Event{Name: "touchstart", Target: p, Touches: []scene.Touch{{X: 52, Y: 62}}})
	scene.Dispatch(&scene.Event{Name: "touchmove", Target: h.root, Touches: []scene.Touch{{X: 72, Y: 82}}})
	scene.Dispatch(&scene.Event{Name: "touchend", Target: h.root, Touches: []scene.Touch{{X: 500, Y: 500}}})

	if previews != 1 {
		t.Errorf("PreviewAll published %d previews for a touch move, want 1", previews)
	}
}

func TestUntaggedDraggableNode_Panics(t *testing.T) {
	h := newFakeHost()
	Bind(h, nil)

	rogue := scene.NewElement("circle")
	rogue.Meta().Draggable = true // capability without a tag: render bug
	h.container.Append(rogue)

	defer func() {
		if recover() == nil {
			t.Error("pointer-down on an untagged draggable node did not panic")
		}
	}()
	scene.Dispatch(mouse("mousedown", rogue, 1, 1))
}

func TestDropRegionFallsBackToContainer(t *testing.T) {
	h := newFakeHost()
	h.grid.Detach()
	h.grid = nil
	p := h.addPoint(0, 50, 60, DataPoint{X: 5, Y: 7})
	Bind(h, nil)
	h.renderPass()

	scene.Dispatch(mouse("mousedown", p, 52, 62))
	scene.Dispatch(mouse("mousemove", h.root, 72, 82))
	// (195,195) is outside the removed grid but inside the container.
	scene.Dispatch(mouse("mouseup", h.root, 195, 195))

	if got := h.DataPoint(0, 0); got.X == 5 && got.Y == 7 {
		t.Error("drop inside container did not commit without a grid node")
	}
}

func TestDragClass_AppliedAndCleared(t *testing.T) {
	h := newFakeHost()
	p := h.addPoint(0, 50, 60, DataPoint{X: 5, Y: 7})
	Bind(h, nil)
	h.renderPass()

	scene.Dispatch(mouse("mousedown", p, 52, 62))
	if !p.HasClass("dragplot-dragging") {
		t.Error("drag class not applied on pointer-down")
	}
	scene.Dispatch(mouse("mouseup", h.root, 500, 500))
	if p.HasClass("dragplot-dragging") {
		t.Error("drag class not cleared on pointer-up")
	}
}
