package chart

import "math"

// Scale is a linear mapping from a data domain to a pixel range. The
// pixel range may be inverted (min > max) for y-up axes.
type Scale struct {
	DomainMin, DomainMax float64
	RangeMin, RangeMax   float64
}

// NewScale builds a linear scale.
func NewScale(domainMin, domainMax, rangeMin, rangeMax float64) Scale {
	return Scale{
		DomainMin: domainMin,
		DomainMax: domainMax,
		RangeMin:  rangeMin,
		RangeMax:  rangeMax,
	}
}

// Pos maps a data value to its pixel position. A zero-span domain maps
// everything to the range start.
func (s Scale) Pos(v float64) float64 {
	span := s.DomainMax - s.DomainMin
	if span == 0 {
		return s.RangeMin
	}
	return s.RangeMin + (v-s.DomainMin)/span*(s.RangeMax-s.RangeMin)
}

// NiceTicks returns roughly n human-friendly tick values covering
// [min, max]. Steps are 1, 2, or 5 times a power of ten.
func NiceTicks(min, max float64, n int) []float64 {
	if n < 2 {
		n = 2
	}
	span := max - min
	if span <= 0 {
		return []float64{min}
	}

	step := math.Pow(10, math.Floor(math.Log10(span/float64(n))))
	switch {
	case span/(step*5) >= float64(n):
		step *= 10
	case span/(step*2) >= float64(n):
		step *= 5
	case span/step >= float64(n):
		step *= 2
	}

	var ticks []float64
	for v := math.Ceil(min/step) * step; v <= max+step/1e6; v += step {
		ticks = append(ticks, v)
	}
	return ticks
}

// extent returns the min and max over a series slice for one axis.
func extent(series []Series, y bool) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, p := range s.Points {
			v := p.X
			if y {
				v = p.Y
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi, lo <= hi
}

// autoRange expands a data extent with padding so points never sit on
// the plot border. A degenerate extent pads by one unit.
func autoRange(lo, hi float64) (float64, float64) {
	if span := hi - lo; span > 0 {
		pad := span * 0.05
		return lo - pad, hi + pad
	}
	return lo - 1, hi + 1
}
