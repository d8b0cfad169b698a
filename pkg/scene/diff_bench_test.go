package scene

import (
	"strconv"
	"testing"
)

// buildPlot builds a plot group shaped like a rendered chart: one grid
// rect and n point circles.
func buildPlot(n int, offset float64) *Node {
	g := NewElement("g")
	grid := NewElement("rect")
	grid.AddClass("chart-grid")
	g.Append(grid)
	for i := 0; i < n; i++ {
		c := NewElement("circle")
		c.SetAttr("cx", strconv.Itoa(i*4))
		c.SetAttr("cy", strconv.FormatFloat(float64(i)+offset, 'g', -1, 64))
		c.SetAttr("r", "4")
		c.AddClass("chart-point")
		g.Append(c)
	}
	return g
}

func BenchmarkDiffUnchanged(b *testing.B) {
	prev := buildPlot(200, 0)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		next := buildPlot(200, 0)
		if patches := Diff(prev, next); len(patches) != 0 {
			b.Fatalf("unchanged tree produced %d patches", len(patches))
		}
	}
}

func BenchmarkDiffOnePointMoved(b *testing.B) {
	prev := buildPlot(200, 0)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		next := buildPlot(200, 0)
		next.Kids[100].SetAttr("cy", "999")
		if patches := Diff(prev, next); len(patches) != 1 {
			b.Fatalf("moved point produced %d patches", len(patches))
		}
	}
}
