// Package termchart hosts a draggable chart in the terminal. The same
// scene tree and drag core that serve the browser host run behind an
// ntcharts braille canvas; mouse cells map one-to-one onto scene
// pixels, so a terminal cell drag commits through the exact pipeline a
// browser drag does.
package termchart

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/NimbleMarkets/ntcharts/linechart"

	"github.com/recera/dragplot/pkg/chart"
	"github.com/recera/dragplot/pkg/dragplot"
	"github.com/recera/dragplot/pkg/scene"
	"github.com/recera/dragplot/pkg/scheduler"
)

// KeyMap defines the host's keyboard shortcuts.
type KeyMap struct {
	Reset key.Binding
	Quit  key.Binding
}

var DefaultKeyMap = KeyMap{
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset data"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}

// Options configures the terminal host.
type Options struct {
	Width  int // initial canvas width in cells, default 64
	Height int // initial canvas height in cells, default 20
	XRange *chart.Range
	YRange *chart.Range
	Axis   dragplot.AxisMode
	Title  string
}

func (o *Options) withDefaults() Options {
	d := Options{Width: 64, Height: 20, Title: "dragplot"}
	if o == nil {
		return d
	}
	if o.Width > 0 {
		d.Width = o.Width
	}
	if o.Height > 0 {
		d.Height = o.Height
	}
	d.XRange = o.XRange
	d.YRange = o.YRange
	d.Axis = o.Axis
	d.Title = o.Title
	return d
}

// Model is the bubbletea model wrapping a chart and its drag binding.
type Model struct {
	chart   *chart.Chart
	binding *dragplot.Binding
	sched   *scheduler.Scheduler
	initial []chart.Series

	lc      linechart.Model
	zones   *zone.Manager
	zoneID  string
	graphX0 int // zone column where the graph area starts
	keys    KeyMap
	opts    Options

	width  int
	height int
}

// New builds the terminal host around a fresh chart. The chart's pixel
// space equals the braille graph area, one cell per pixel.
func New(series []chart.Series, opts *Options) Model {
	o := opts.withDefaults()

	minX, maxX := 0.0, 10.0
	if o.XRange != nil {
		minX, maxX = o.XRange.Min, o.XRange.Max
	}
	minY, maxY := 0.0, 10.0
	if o.YRange != nil {
		minY, maxY = o.YRange.Min, o.YRange.Max
	}

	lc := linechart.New(o.Width, o.Height, minX, maxX, minY, maxY,
		linechart.WithXYSteps(4, 2),
	)
	lc.AxisStyle = axisStyle
	lc.LabelStyle = labelStyle

	sched := scheduler.New(nil)
	c := chart.New("term", cloneSeries(series), &chart.Options{
		Width:       float64(lc.GraphWidth()),
		Height:      float64(lc.GraphHeight()),
		Padding:     1,
		PointRadius: 1,
		XRange:      o.XRange,
		YRange:      o.YRange,
	}, sched)
	b := dragplot.Bind(c, &dragplot.Options{Axis: o.Axis})
	sched.Flush()

	m := Model{
		chart:   c,
		binding: b,
		sched:   sched,
		initial: cloneSeries(series),
		lc:      lc,
		zones:   zone.New(),
		zoneID:  "dragplot-graph",
		keys:    DefaultKeyMap,
		opts:    o,
	}
	m.graphX0 = graphStart(&m.lc)
	return m
}

// Chart exposes the scene chart, mostly for tests and embedding hosts.
func (m Model) Chart() *chart.Chart { return m.chart }

// Binding exposes the drag binding.
func (m Model) Binding() *dragplot.Binding { return m.binding }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w := msg.Width - 2
		h := msg.Height - 3 // title and status rows
		if w < 16 {
			w = 16
		}
		if h < 8 {
			h = 8
		}
		m.lc.Resize(w, h)
		m.graphX0 = graphStart(&m.lc)
		m.chart.Resize(float64(m.lc.GraphWidth()), float64(m.lc.GraphHeight()))
		m.sched.Flush()

	case tea.MouseMsg:
		m = m.handleMouse(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reset):
			m.chart.SetSeries(cloneSeries(m.initial))
			m.sched.Flush()
		}
	}
	return m, nil
}

// handleMouse maps a terminal mouse event into the scene's pixel space
// and dispatches it. Presses must land inside the marked graph zone;
// motion and release pass through so a drag can leave and re-enter.
func (m Model) handleMouse(msg tea.MouseMsg) Model {
	var name string
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !m.zones.Get(m.zoneID).InBounds(msg) {
			return m
		}
		name = "mousedown"
	case tea.MouseActionMotion:
		name = "mousemove"
	case tea.MouseActionRelease:
		name = "mouseup"
	default:
		return m
	}

	zx, zy := m.zones.Get(m.zoneID).Pos(msg)
	x, y := m.sceneCoords(zx, zy)
	m.dispatchPointer(name, x, y)
	return m
}

// sceneCoords converts zone-relative cell coordinates to scene pixels.
// The graph area sits right of the Y axis; rows map directly.
func (m Model) sceneCoords(zx, zy int) (float64, float64) {
	return float64(zx - m.graphX0), float64(zy)
}

// dispatchPointer runs one pointer event through the scene and flushes
// whatever render it scheduled.
func (m Model) dispatchPointer(name string, x, y float64) {
	root := m.chart.Root()
	target := root
	if name == "mousedown" {
		if n := root.Pick(x, y); n != nil {
			target = n
		}
	}
	scene.Dispatch(&scene.Event{Name: name, Target: target, X: x, Y: y})
	m.sched.Flush()
}

// View implements tea.Model.
func (m Model) View() string {
	m.draw()

	status := m.statusLine()
	body := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(m.opts.Title),
		m.zones.Mark(m.zoneID, m.lc.View()),
		status,
	)
	return m.zones.Scan(body)
}

func (m Model) statusLine() string {
	if m.binding.Active() {
		v := m.binding.Preview().Get()
		return dragStyle.Render(fmt.Sprintf("dragging series %d point %d → (%.2f, %.2f)",
			v.Series, v.Point, v.Data.X, v.Data.Y))
	}
	return helpStyle.Render("drag a point to move it • r: reset • q: quit")
}

// graphStart returns the column where the braille graph begins,
// accounting for the Y axis and its labels.
func graphStart(lc *linechart.Model) int {
	if lc.YStep() > 0 {
		return lc.Origin().X + 1
	}
	return 0
}

func cloneSeries(in []chart.Series) []chart.Series {
	out := make([]chart.Series, len(in))
	for i, s := range in {
		out[i] = s
		out[i].Points = append([]chart.Point(nil), s.Points...)
	}
	return out
}
