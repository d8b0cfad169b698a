package termchart

import (
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/canvas/graph"

	"github.com/recera/dragplot/pkg/scene"
)

var (
	axisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	dragStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	lineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	pointStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	markerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

const (
	pointRune  = '●'
	markerRune = '◎'
)

type cell struct {
	series int
	point  int
	x, y   float64 // scene pixel center
}

// draw rebuilds the braille canvas from the scene tree, so the
// terminal view and the drag core's hit-testing always agree on where
// a point sits.
func (m *Model) draw() {
	m.lc.Clear()
	m.lc.DrawXYAxisAndLabel()

	gw, gh := m.lc.GraphWidth(), m.lc.GraphHeight()
	if gw <= 0 || gh <= 0 {
		return
	}
	cells := m.pointCells()

	// Lines between consecutive points of each series, drawn in
	// braille dot resolution like the surrounding axes expect.
	bGrid := graph.NewBrailleGrid(gw, gh, 0, float64(gw), 0, float64(gh))
	bySeries := make(map[int][]cell)
	for _, c := range cells {
		bySeries[c.series] = append(bySeries[c.series], c)
	}
	for _, pts := range bySeries {
		sort.Slice(pts, func(i, j int) bool { return pts[i].point < pts[j].point })
		for i := 0; i+1 < len(pts); i++ {
			p1 := bGrid.GridPoint(brailleCoord(pts[i], gh))
			p2 := bGrid.GridPoint(brailleCoord(pts[i+1], gh))
			for _, p := range graph.GetLinePoints(p1, p2) {
				bGrid.Set(p)
			}
		}
	}

	startX := graphStart(&m.lc)
	graph.DrawBraillePatterns(&m.lc.Canvas,
		canvas.Point{X: startX, Y: 0},
		bGrid.BraillePatterns(),
		lineStyle)

	// Point glyphs on top of the lines.
	for _, c := range cells {
		m.setGlyph(startX, c.x, c.y, pointRune, pointStyle)
	}

	// The floating marker while a drag is in flight.
	if mx, my, ok := m.binding.MarkerPosition(); ok {
		m.setGlyph(startX, mx+1, my+1, markerRune, markerStyle)
	}
}

func (m *Model) setGlyph(startX int, x, y float64, r rune, style lipgloss.Style) {
	gw, gh := m.lc.GraphWidth(), m.lc.GraphHeight()
	cx, cy := int(x), int(y)
	if cx < 0 || cx >= gw || cy < 0 || cy >= gh {
		return
	}
	m.lc.Canvas.SetCell(
		canvas.Point{X: startX + cx, Y: cy},
		canvas.NewCellWithStyle(r, style))
}

// brailleCoord flips a scene-pixel cell center into the braille grid's
// bottom-origin coordinate space.
func brailleCoord(c cell, graphHeight int) canvas.Float64Point {
	return canvas.Float64Point{X: c.x, Y: float64(graphHeight) - c.y}
}

// pointCells collects the center of every draggable point node. A drag
// marker clone keeps its tag but drops the draggable flag, so the
// filter skips it regardless of the configured marker class, and an
// in-flight clone never bends the line.
func (m *Model) pointCells() []cell {
	var out []cell
	m.chart.Root().Walk(func(n *scene.Node) {
		if !n.HasMeta() {
			return
		}
		meta := n.Meta()
		if !meta.Tagged || !meta.Draggable {
			return
		}
		b := n.Bounds
		out = append(out, cell{
			series: meta.Series,
			point:  meta.Point,
			x:      (b.MinX + b.MaxX) / 2,
			y:      (b.MinY + b.MaxY) / 2,
		})
	})
	return out
}
