package dragplot

import "github.com/recera/dragplot/pkg/scene"

// Marker is the transient visual stand-in for the point being dragged.
// It is the only element that moves continuously during a drag; the
// real point stays put until commit. Lifecycle: NewMarker creates and
// inserts the clone, SetPosition moves it, Destroy removes it.
type Marker struct {
	clone  *scene.Node
	source *scene.Node

	// origin is the source's bounding box captured at creation.
	// SetPosition always offsets against this, never against the
	// marker's own box, so repeated moves cannot compound drift.
	origin scene.Rect
}

// NewMarker clones the source point's visual representation, disables
// pointer interaction on the clone, and inserts it directly after the
// source so it renders on top. With atRoot the clone attaches to the
// scene root instead. The initial transform makes the clone exactly
// overlap the source.
func NewMarker(source *scene.Node, class string, atRoot bool) *Marker {
	clone := source.Clone()
	if clone.HasMeta() {
		clone.Meta().Draggable = false
	}
	clone.SetAttr("pointer-events", "none")
	if class != "" {
		clone.AddClass(class)
	}

	if atRoot {
		source.Root().Append(clone)
	} else {
		source.InsertAfter(clone)
	}
	clone.SetTransform(0, 0)

	return &Marker{
		clone:  clone,
		source: source,
		origin: source.Bounds,
	}
}

// SetPosition moves the marker so its origin sits at the given pixel
// position.
func (m *Marker) SetPosition(x, y float64) {
	if m.clone == nil {
		return
	}
	m.clone.SetTransform(x-m.origin.MinX, y-m.origin.MinY)
}

// Destroy removes the marker from the scene. Safe to call more than
// once; a marker detached by a concurrent re-render is also fine.
func (m *Marker) Destroy() {
	if m.clone == nil {
		return
	}
	m.clone.Detach()
	m.clone = nil
}

// Node returns the marker's scene node, or nil after Destroy.
func (m *Marker) Node() *scene.Node { return m.clone }

// Origin returns the source bounding box captured at creation.
func (m *Marker) Origin() scene.Rect { return m.origin }
