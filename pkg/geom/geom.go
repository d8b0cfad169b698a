// Package geom maps pixel-space deltas to chart data-space deltas.
//
// The chart engine supplies a pair of AxisRange objects per render pass.
// A Converter derived from them is purely linear: it applies no offset
// term, so it is only valid for deltas, never for absolute positions.
package geom

// AxisRange describes one axis for a single render pass: the logical
// bounds plus the axis length in pixels. The chart engine allocates
// fresh AxisRange values per render pass, so pointer identity is enough
// to tell two passes apart.
type AxisRange struct {
	Min    float64
	Max    float64
	Length float64
}

// Span returns the logical extent of the axis.
func (a *AxisRange) Span() float64 {
	return a.Max - a.Min
}

// Converter is a linear mapping from pixel deltas to data deltas,
// derived from the X and Y axis ranges of one render pass.
type Converter struct {
	x, y   *AxisRange
	ratioX float64
	ratioY float64
}

// NewConverter builds a converter from the current axis ranges.
// A zero-length axis yields a zero ratio for that axis.
func NewConverter(x, y *AxisRange) *Converter {
	c := &Converter{x: x, y: y}
	if x != nil && x.Length != 0 {
		c.ratioX = x.Span() / x.Length
	}
	if y != nil && y.Length != 0 {
		c.ratioY = y.Span() / y.Length
	}
	return c
}

// ConvertX maps a horizontal pixel delta to a data-space delta.
func (c *Converter) ConvertX(dxPixels float64) float64 {
	return dxPixels * c.ratioX
}

// ConvertY maps a vertical pixel delta to a data-space delta. The result
// follows pixel orientation (positive is downward); callers on a y-up
// chart invert the sign themselves.
func (c *Converter) ConvertY(dyPixels float64) float64 {
	return dyPixels * c.ratioY
}

// SameRanges reports whether the converter was built from exactly these
// AxisRange objects. This is an identity comparison, not a value
// comparison: a re-render hands out new range objects even when the
// numbers happen to match.
func (c *Converter) SameRanges(x, y *AxisRange) bool {
	return c.x == x && c.y == y
}
