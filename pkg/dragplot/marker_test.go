package dragplot

import (
	"testing"

	"github.com/recera/dragplot/pkg/scene"
)

func newSourcePoint() (*scene.Node, *scene.Node) {
	root := scene.NewElement("root")
	group := scene.NewElement("g")
	root.Append(group)

	source := scene.NewElement("circle")
	source.SetAttr("cx", "54")
	source.SetAttr("cy", "64")
	source.Bounds = scene.NewRect(50, 60, 8, 8)
	source.Meta().Draggable = true
	group.Append(source)
	group.Append(scene.NewElement("circle"))
	return root, source
}

func TestMarker_CreateInsertsAfterSource(t *testing.T) {
	_, source := newSourcePoint()
	m := NewMarker(source, "dragplot-marker", false)

	group := source.Parent()
	if len(group.Kids) != 3 {
		t.Fatalf("group has %d kids, want 3", len(group.Kids))
	}
	if group.Kids[1] != m.Node() {
		t.Error("marker clone is not directly after the source")
	}
	if m.Node().Attr("pointer-events") != "none" {
		t.Error("marker clone did not disable pointer interaction")
	}
	if m.Node().HasMeta() && m.Node().Meta().Draggable {
		t.Error("marker clone kept the draggable capability")
	}
	if !m.Node().HasClass("dragplot-marker") {
		t.Error("marker clone missing its style class")
	}
	if dx, dy, ok := m.Node().Transform(); !ok || dx != 0 || dy != 0 {
		t.Errorf("initial transform = (%v,%v), want (0,0) overlap", dx, dy)
	}
}

func TestMarker_CreateAtRoot(t *testing.T) {
	root, source := newSourcePoint()
	m := NewMarker(source, "", true)

	if m.Node().Parent() != root {
		t.Error("atRoot marker is not attached to the scene root")
	}
}

func TestMarker_SetPositionAgainstSourceOrigin(t *testing.T) {
	_, source := newSourcePoint()
	m := NewMarker(source, "", false)

	m.SetPosition(70, 90)
	if dx, dy, _ := m.Node().Transform(); dx != 20 || dy != 30 {
		t.Errorf("transform = (%v,%v), want (20,30)", dx, dy)
	}

	// Offsets are against the original source box, so repeated moves
	// never compound.
	m.SetPosition(55, 61)
	if dx, dy, _ := m.Node().Transform(); dx != 5 || dy != 1 {
		t.Errorf("transform = (%v,%v), want (5,1)", dx, dy)
	}
}

func TestMarker_DestroyIdempotent(t *testing.T) {
	_, source := newSourcePoint()
	group := source.Parent()
	m := NewMarker(source, "", false)

	m.Destroy()
	if len(group.Kids) != 2 {
		t.Error("destroy left the marker in the render tree")
	}

	m.Destroy() // second call is a no-op
	m.SetPosition(1, 2)
	if len(group.Kids) != 2 {
		t.Error("destroyed marker mutated the tree")
	}
	if m.Node() != nil {
		t.Error("destroyed marker still exposes a node")
	}
}
