package termchart

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/dragplot/pkg/chart"
)

func testSeries() []chart.Series {
	return []chart.Series{{
		Name:   "alpha",
		Points: []chart.Point{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 10}},
	}}
}

func testModel() Model {
	return New(testSeries(), &Options{
		Width:  64,
		Height: 20,
		XRange: &chart.Range{Min: 0, Max: 10},
		YRange: &chart.Range{Min: 0, Max: 10},
	})
}

// middlePoint returns the scene-pixel center of the series' middle
// point.
func middlePoint(t *testing.T, m Model) (float64, float64) {
	t.Helper()
	for _, c := range m.pointCells() {
		if c.series == 0 && c.point == 1 {
			return c.x, c.y
		}
	}
	t.Fatal("middle point not found in scene")
	return 0, 0
}

func TestDragCommitsThroughScene(t *testing.T) {
	m := testModel()
	px, py := middlePoint(t, m)

	m.dispatchPointer("mousedown", px, py)
	if !m.binding.Active() {
		t.Fatal("drag did not start")
	}
	m.dispatchPointer("mousemove", px+4, py)
	m.dispatchPointer("mouseup", px+4, py)

	conv := m.binding.Converter()
	want := 5 + conv.ConvertX(4)
	got := m.chart.Series()[0].Points[1]
	if got.X != want {
		t.Errorf("committed X = %v, want %v", got.X, want)
	}
	if got.Y != 5 {
		t.Errorf("committed Y = %v, want 5 (no vertical motion)", got.Y)
	}
}

func TestResetRestoresData(t *testing.T) {
	m := testModel()
	px, py := middlePoint(t, m)
	m.dispatchPointer("mousedown", px, py)
	m.dispatchPointer("mousemove", px+4, py)
	m.dispatchPointer("mouseup", px+4, py)
	if m.chart.Series()[0].Points[1].X == 5 {
		t.Fatal("drag did not change the data")
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = updated.(Model)
	if got := m.chart.Series()[0].Points[1].X; got != 5 {
		t.Errorf("after reset X = %v, want 5", got)
	}
}

func TestPointCellsSkipMarkerDuringDrag(t *testing.T) {
	m := testModel()
	base := len(m.pointCells())
	if base != len(testSeries()[0].Points) {
		t.Fatalf("cells = %d, want one per data point", base)
	}

	px, py := middlePoint(t, m)
	m.dispatchPointer("mousedown", px, py)
	m.dispatchPointer("mousemove", px+2, py)

	if got := len(m.pointCells()); got != base {
		t.Errorf("cells during drag = %d, want %d (marker clone excluded)", got, base)
	}
	if m.chart.Container().HasMeta() {
		t.Error("collecting cells attached meta to a structural node")
	}

	m.dispatchPointer("mouseup", px+2, py)
}

func TestQuitKey(t *testing.T) {
	m := testModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("quit key produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key did not quit")
	}
}

func TestWindowResizePropagatesToScene(t *testing.T) {
	m := testModel()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)

	grid := m.chart.Grid()
	if grid == nil {
		t.Fatal("no grid after resize render")
	}
	if w := m.chart.Container().Bounds.Width(); w != float64(m.lc.GraphWidth()) {
		t.Errorf("scene width = %v, graph width = %d", w, m.lc.GraphWidth())
	}
}

func TestSceneCoordsOffsetsGraphStart(t *testing.T) {
	m := testModel()
	x, y := m.sceneCoords(m.graphX0+3, 2)
	if x != 3 || y != 2 {
		t.Errorf("sceneCoords = (%v,%v), want (3,2)", x, y)
	}
}

func TestViewCarriesTitleAndHelp(t *testing.T) {
	m := testModel()
	view := m.View()
	if !strings.Contains(view, "dragplot") {
		t.Error("view missing title")
	}
	if !strings.Contains(view, "reset") {
		t.Error("view missing help line")
	}
}
