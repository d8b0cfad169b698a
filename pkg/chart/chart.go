// Package chart is the in-repo line chart engine. It owns the data
// series, renders them into a scene tree, and plays the
// chart-rendering collaborator role for the drag system: it stamps
// point bounds at layout time, fires one draw notification per drawn
// element, and re-renders through the scheduler on request.
package chart

import (
	"log/slog"
	"strconv"

	"github.com/recera/dragplot/pkg/dragplot"
	"github.com/recera/dragplot/pkg/geom"
	"github.com/recera/dragplot/pkg/scene"
	"github.com/recera/dragplot/pkg/scheduler"
)

// Point is one data value in a series.
type Point struct {
	X    float64
	Y    float64
	Meta map[string]any
}

// Series is an ordered sequence of points.
type Series struct {
	Name   string
	Color  string
	Points []Point
}

// Range fixes one axis domain instead of deriving it from the data.
type Range struct {
	Min float64
	Max float64
}

// Options configures chart layout.
type Options struct {
	Width       float64 // default 800
	Height      float64 // default 400
	Padding     float64 // default 48
	PointRadius float64 // default 4
	Ticks       int     // default 5
	XRange      *Range  // nil means auto-range from data
	YRange      *Range
	GridClass   string // default "chart-grid"
	Logger      *slog.Logger
}

func (o *Options) withDefaults() Options {
	d := Options{
		Width:       800,
		Height:      400,
		Padding:     48,
		PointRadius: 4,
		Ticks:       5,
		GridClass:   "chart-grid",
	}
	if o == nil {
		d.Logger = slog.Default()
		return d
	}
	if o.Width > 0 {
		d.Width = o.Width
	}
	if o.Height > 0 {
		d.Height = o.Height
	}
	if o.Padding > 0 {
		d.Padding = o.Padding
	}
	if o.PointRadius > 0 {
		d.PointRadius = o.PointRadius
	}
	if o.Ticks > 0 {
		d.Ticks = o.Ticks
	}
	if o.GridClass != "" {
		d.GridClass = o.GridClass
	}
	d.XRange = o.XRange
	d.YRange = o.YRange
	d.Logger = o.Logger
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

// Chart renders line series into a scene tree.
type Chart struct {
	id     string
	opts   Options
	series []Series
	log    *slog.Logger

	root      *scene.Node
	container *scene.Node
	plot      *scene.Node // current rendered plot group
	grid      *scene.Node

	// axisX/axisY are allocated once per render pass, so their
	// identities mark the pass for converter rebuilds.
	axisX *geom.AxisRange
	axisY *geom.AxisRange

	observers []func(dragplot.DrawInfo)
	sched     *scheduler.Scheduler
}

// New creates a chart and registers its render function with the
// scheduler. The first render runs on the first flush.
func New(id string, series []Series, opts *Options, sched *scheduler.Scheduler) *Chart {
	c := &Chart{
		id:     id,
		opts:   opts.withDefaults(),
		series: series,
		sched:  sched,
	}
	c.log = c.opts.Logger

	c.root = scene.NewElement("root")
	c.container = scene.NewElement("svg")
	c.container.SetAttr("width", ftoa(c.opts.Width))
	c.container.SetAttr("height", ftoa(c.opts.Height))
	c.container.Bounds = scene.NewRect(0, 0, c.opts.Width, c.opts.Height)
	c.root.Append(c.container)

	if sched != nil {
		sched.Register(id, c.Render)
		sched.MarkDirty(id)
	}
	return c
}

// ID returns the chart's scheduler ID.
func (c *Chart) ID() string { return c.id }

// Series returns the chart's data.
func (c *Chart) Series() []Series { return c.series }

// SetSeries replaces the chart's data and queues a re-render.
func (c *Chart) SetSeries(series []Series) {
	c.series = series
	c.RequestRender()
}

// Resize changes the chart's pixel dimensions and queues a re-render.
// Terminal hosts call this when the window size changes.
func (c *Chart) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	c.opts.Width = width
	c.opts.Height = height
	c.container.SetAttr("width", ftoa(width))
	c.container.SetAttr("height", ftoa(height))
	c.container.Bounds = scene.NewRect(0, 0, width, height)
	c.RequestRender()
}

// Root returns the scene root (the document-scope event target).
func (c *Chart) Root() *scene.Node { return c.root }

// Container returns the chart container node.
func (c *Chart) Container() *scene.Node { return c.container }

// Grid returns the plotted grid-area node, or nil before first render.
func (c *Chart) Grid() *scene.Node { return c.grid }

// DataPoint returns the value at the (series, point) slot.
func (c *Chart) DataPoint(series, point int) dragplot.DataPoint {
	p := c.series[series].Points[point]
	return dragplot.DataPoint{X: p.X, Y: p.Y, Meta: p.Meta}
}

// SetDataPoint stores a value into the (series, point) slot.
func (c *Chart) SetDataPoint(series, point int, d dragplot.DataPoint) {
	c.series[series].Points[point] = Point{X: d.X, Y: d.Y, Meta: d.Meta}
}

// HasPoint reports whether the (series, point) slot exists in the
// current data. SetSeries can shrink a series out from under a tag.
func (c *Chart) HasPoint(series, point int) bool {
	return series >= 0 && series < len(c.series) &&
		point >= 0 && point < len(c.series[series].Points)
}

// Notify registers a draw-notification observer.
func (c *Chart) Notify(fn func(dragplot.DrawInfo)) {
	c.observers = append(c.observers, fn)
}

// RequestRender marks the chart dirty; the host's next flush renders.
func (c *Chart) RequestRender() {
	if c.sched != nil {
		c.sched.MarkDirty(c.id)
	}
}

func (c *Chart) notify(kind string, n *scene.Node, series, point int) {
	info := dragplot.DrawInfo{
		Kind:   kind,
		Node:   n,
		Series: series,
		Point:  point,
		AxisX:  c.axisX,
		AxisY:  c.axisY,
	}
	for _, fn := range c.observers {
		fn(info)
	}
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
