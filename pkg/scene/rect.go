package scene

// Rect is a pixel-space rectangle in min/max form. It is used both for
// node bounding boxes and for the drag system's drop region.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// NewRect builds a rect from an origin and a size.
func NewRect(x, y, w, h float64) Rect {
	return Rect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Contains reports whether the point lies inside the rect, borders
// included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}
