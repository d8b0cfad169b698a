package chart

import "testing"

func TestScale_Pos(t *testing.T) {
	tests := []struct {
		name  string
		scale Scale
		v     float64
		want  float64
	}{
		{"domain start", NewScale(0, 10, 100, 300), 0, 100},
		{"domain end", NewScale(0, 10, 100, 300), 10, 300},
		{"midpoint", NewScale(0, 10, 100, 300), 5, 200},
		{"inverted range", NewScale(0, 10, 300, 100), 2.5, 250},
		{"zero-span domain", NewScale(4, 4, 100, 300), 4, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scale.Pos(tt.v); got != tt.want {
				t.Errorf("Pos(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestNiceTicks(t *testing.T) {
	ticks := NiceTicks(0, 10, 5)
	if len(ticks) < 3 {
		t.Fatalf("NiceTicks(0,10,5) = %v, want at least 3 ticks", ticks)
	}
	for i := 1; i < len(ticks); i++ {
		if ticks[i] <= ticks[i-1] {
			t.Errorf("ticks not increasing: %v", ticks)
		}
	}
	if ticks[0] < 0 || ticks[len(ticks)-1] > 10+1e-9 {
		t.Errorf("ticks out of range: %v", ticks)
	}
}

func TestNiceTicks_DegenerateSpan(t *testing.T) {
	ticks := NiceTicks(3, 3, 5)
	if len(ticks) != 1 || ticks[0] != 3 {
		t.Errorf("NiceTicks(3,3,5) = %v, want [3]", ticks)
	}
}

func TestAutoRange(t *testing.T) {
	lo, hi := autoRange(0, 10)
	if lo >= 0 || hi <= 10 {
		t.Errorf("autoRange(0,10) = (%v,%v), want padded beyond the extent", lo, hi)
	}

	lo, hi = autoRange(5, 5)
	if lo != 4 || hi != 6 {
		t.Errorf("autoRange(5,5) = (%v,%v), want (4,6)", lo, hi)
	}
}

func TestExtent(t *testing.T) {
	series := []Series{
		{Points: []Point{{X: 1, Y: -2}, {X: 4, Y: 9}}},
		{Points: []Point{{X: -3, Y: 5}}},
	}
	lo, hi, ok := extent(series, false)
	if !ok || lo != -3 || hi != 4 {
		t.Errorf("extent(x) = (%v,%v,%v), want (-3,4,true)", lo, hi, ok)
	}
	lo, hi, ok = extent(series, true)
	if !ok || lo != -2 || hi != 9 {
		t.Errorf("extent(y) = (%v,%v,%v), want (-2,9,true)", lo, hi, ok)
	}
	if _, _, ok := extent(nil, false); ok {
		t.Error("extent of no data reported ok")
	}
}
