package chart

import (
	"strings"

	"github.com/recera/dragplot/pkg/dragplot"
	"github.com/recera/dragplot/pkg/geom"
	"github.com/recera/dragplot/pkg/scene"
)

// Render rebuilds the plot subtree, stamps layout bounds, fires one
// draw notification per drawn element, and returns the patches that
// transform the previous render into this one. Fresh AxisRange objects
// are allocated per pass so converter rebuilds stay identity-driven.
func (c *Chart) Render() []scene.Patch {
	o := c.opts
	plotX := o.Padding
	plotY := o.Padding
	plotW := o.Width - 2*o.Padding
	plotH := o.Height - 2*o.Padding

	minX, maxX := c.domainX()
	minY, maxY := c.domainY()

	c.axisX = &geom.AxisRange{Min: minX, Max: maxX, Length: plotW}
	c.axisY = &geom.AxisRange{Min: minY, Max: maxY, Length: plotH}

	sx := NewScale(minX, maxX, plotX, plotX+plotW)
	sy := NewScale(minY, maxY, plotY+plotH, plotY) // pixel-y grows downward

	next := scene.NewElement("g")
	next.AddClass("dragplot-chart")
	next.Bounds = scene.NewRect(plotX, plotY, plotW, plotH)

	grid := c.renderGrid(next, plotX, plotY, plotW, plotH)
	gridlines, labels := c.renderTicks(next, sx, sy, plotX, plotY, plotW, plotH)

	type pointNode struct {
		node          *scene.Node
		series, point int
	}
	var lines []*scene.Node
	var points []pointNode

	for si, s := range c.series {
		line := scene.NewElement("polyline")
		line.AddClass("chart-line")
		if s.Color != "" {
			line.SetAttr("stroke", s.Color)
		}
		line.SetAttr("fill", "none")
		var coords []string
		for _, p := range s.Points {
			coords = append(coords, ftoa(sx.Pos(p.X))+","+ftoa(sy.Pos(p.Y)))
		}
		line.SetAttr("points", strings.Join(coords, " "))
		next.Append(line)
		lines = append(lines, line)

		for pi, p := range s.Points {
			cx := sx.Pos(p.X)
			cy := sy.Pos(p.Y)
			circle := scene.NewElement("circle")
			circle.AddClass("chart-point")
			circle.SetAttr("cx", ftoa(cx))
			circle.SetAttr("cy", ftoa(cy))
			circle.SetAttr("r", ftoa(o.PointRadius))
			if s.Color != "" {
				circle.SetAttr("fill", s.Color)
			}
			circle.Bounds = scene.NewRect(cx-o.PointRadius, cy-o.PointRadius, 2*o.PointRadius, 2*o.PointRadius)
			next.Append(circle)
			points = append(points, pointNode{node: circle, series: si, point: pi})
		}
	}

	patches := scene.Diff(c.plot, next)
	scene.Commit(c.container, c.plot, next)
	c.plot = next
	c.grid = grid

	// Notifications fire after the tree swap so observers see the
	// committed pass.
	c.notify(dragplot.KindGrid, grid, 0, 0)
	for _, n := range gridlines {
		c.notify(dragplot.KindGridline, n, 0, 0)
	}
	for _, n := range labels {
		c.notify(dragplot.KindLabel, n, 0, 0)
	}
	for _, n := range lines {
		c.notify(dragplot.KindLine, n, 0, 0)
	}
	for _, p := range points {
		c.notify(dragplot.KindPoint, p.node, p.series, p.point)
	}

	c.log.Debug("chart rendered", "id", c.id, "points", len(points), "patches", len(patches))
	return patches
}

func (c *Chart) renderGrid(parent *scene.Node, x, y, w, h float64) *scene.Node {
	grid := scene.NewElement("rect")
	grid.AddClass(c.opts.GridClass)
	grid.SetAttr("x", ftoa(x))
	grid.SetAttr("y", ftoa(y))
	grid.SetAttr("width", ftoa(w))
	grid.SetAttr("height", ftoa(h))
	grid.SetAttr("fill", "none")
	grid.Bounds = scene.NewRect(x, y, w, h)
	parent.Append(grid)
	return grid
}

func (c *Chart) renderTicks(parent *scene.Node, sx, sy Scale, x, y, w, h float64) (gridlines, labels []*scene.Node) {
	for _, tick := range NiceTicks(sx.DomainMin, sx.DomainMax, c.opts.Ticks) {
		px := sx.Pos(tick)
		line := scene.NewElement("line")
		line.AddClass("chart-gridline")
		line.SetAttr("x1", ftoa(px))
		line.SetAttr("y1", ftoa(y))
		line.SetAttr("x2", ftoa(px))
		line.SetAttr("y2", ftoa(y+h))
		parent.Append(line)
		gridlines = append(gridlines, line)

		label := scene.NewElement("text")
		label.AddClass("chart-label")
		label.SetAttr("x", ftoa(px))
		label.SetAttr("y", ftoa(y+h+16))
		label.Append(scene.NewText(ftoa(tick)))
		parent.Append(label)
		labels = append(labels, label)
	}
	for _, tick := range NiceTicks(sy.DomainMin, sy.DomainMax, c.opts.Ticks) {
		py := sy.Pos(tick)
		line := scene.NewElement("line")
		line.AddClass("chart-gridline")
		line.SetAttr("x1", ftoa(x))
		line.SetAttr("y1", ftoa(py))
		line.SetAttr("x2", ftoa(x+w))
		line.SetAttr("y2", ftoa(py))
		parent.Append(line)
		gridlines = append(gridlines, line)

		label := scene.NewElement("text")
		label.AddClass("chart-label")
		label.SetAttr("x", ftoa(x-8))
		label.SetAttr("y", ftoa(py))
		label.Append(scene.NewText(ftoa(tick)))
		parent.Append(label)
		labels = append(labels, label)
	}
	return gridlines, labels
}

func (c *Chart) domainX() (float64, float64) {
	if r := c.opts.XRange; r != nil {
		return r.Min, r.Max
	}
	if lo, hi, ok := extent(c.series, false); ok {
		return autoRange(lo, hi)
	}
	return 0, 1
}

func (c *Chart) domainY() (float64, float64) {
	if r := c.opts.YRange; r != nil {
		return r.Min, r.Max
	}
	if lo, hi, ok := extent(c.series, true); ok {
		return autoRange(lo, hi)
	}
	return 0, 1
}
