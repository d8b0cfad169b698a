// Package dragplot lets a user reposition the data points of a rendered
// line chart by dragging them. Pointer motion in pixel space is
// converted to data-space deltas and written back into the chart's
// series when the pointer is released inside the drop region.
//
// The chart engine is an external collaborator behind the Host
// interface: it renders into a scene tree, fires one draw notification
// per drawn element, and re-renders on request. One Binding serves one
// chart; bindings are never shared across charts.
package dragplot

import (
	"log/slog"

	"github.com/recera/dragplot/pkg/geom"
	"github.com/recera/dragplot/pkg/pointer"
	"github.com/recera/dragplot/pkg/reactive"
	"github.com/recera/dragplot/pkg/scene"
)

// DataPoint is one logical chart value. Meta carries arbitrary
// pass-through fields the drag system preserves on commit.
type DataPoint struct {
	X    float64
	Y    float64
	Meta map[string]any
}

// DrawInfo is the render notification the chart engine fires once per
// drawn element. Series and Point are meaningful only for KindPoint.
// AxisX and AxisY are allocated once per render pass, so their
// identities distinguish passes.
type DrawInfo struct {
	Kind   string
	Node   *scene.Node
	Series int
	Point  int
	AxisX  *geom.AxisRange
	AxisY  *geom.AxisRange
}

// Element kinds carried by draw notifications.
const (
	KindPoint    = "point"
	KindLine     = "line"
	KindGrid     = "grid"
	KindAxis     = "axis"
	KindGridline = "gridline"
	KindLabel    = "label"
)

// Host is the chart-rendering engine as seen by the drag system.
type Host interface {
	// Root returns the scene root; move/up listeners attach here so a
	// drag released outside the chart still resolves.
	Root() *scene.Node

	// Container returns the chart's container node, the drop-region
	// fallback when no grid node exists.
	Container() *scene.Node

	// Grid returns the plotted grid-area node, or nil.
	Grid() *scene.Node

	// DataPoint and SetDataPoint access the series slot at the pair.
	// Both may assume the slot exists; callers gate on HasPoint.
	DataPoint(series, point int) DataPoint
	SetDataPoint(series, point int, d DataPoint)

	// HasPoint reports whether the (series, point) slot exists. Hosts
	// may swap series data while a drag session holds a tag into it,
	// and a swap can shrink a series.
	HasPoint(series, point int) bool

	// Notify registers a draw-notification observer.
	Notify(fn func(DrawInfo))

	// RequestRender queues a re-render after a committed mutation.
	RequestRender()
}

// PreviewValue is published on the preview signal while a live-preview
// drag is in flight. The underlying data is not mutated.
type PreviewValue struct {
	Series int
	Point  int
	Data   DataPoint
}

// Binding wires the drag state machine to one chart. All state is
// instance-scoped; there is no package-level session.
type Binding struct {
	host Host
	opts Options
	log  *slog.Logger

	// conv is the converter for the most recent render pass.
	conv *geom.Converter

	// Session state. dragged==nil means idle.
	dragged  *scene.Node
	grabConv *geom.Converter
	marker   *Marker
	offsetX  float64
	offsetY  float64
	markerX  float64
	markerY  float64

	hovered *scene.Node

	preview *reactive.Signal[PreviewValue]
	unbinds []func()
}

// Bind attaches the drag system to a chart. Pointer-down listens on
// the root filtered to draggable points; move and up listen unfiltered
// at root (document) scope.
func Bind(host Host, opts *Options) *Binding {
	b := &Binding{
		host:    host,
		opts:    opts.withDefaults(),
		preview: reactive.NewSignal(PreviewValue{}),
	}
	b.log = b.opts.Logger

	host.Notify(b.handleDraw)

	root := host.Root()
	b.unbinds = append(b.unbinds,
		pointer.Bind(root, "mousedown touchstart", b.onDown, pointer.DraggableOnly()),
		pointer.Bind(root, "mousemove touchmove", b.onMove),
		pointer.Bind(root, "mouseup touchend", b.onUp),
	)
	return b
}

// Close removes the binding's listeners. An active session is
// abandoned without committing.
func (b *Binding) Close() {
	for _, unbind := range b.unbinds {
		unbind()
	}
	b.unbinds = nil
	if b.marker != nil {
		b.marker.Destroy()
		b.marker = nil
	}
	b.dragged = nil
}

// Preview returns the signal carrying live-preview values. Hosts
// subscribe to refresh tooltips or status lines during a drag.
func (b *Binding) Preview() *reactive.Signal[PreviewValue] { return b.preview }

// Converter returns the converter of the most recent render pass.
func (b *Binding) Converter() *geom.Converter { return b.conv }

// Active reports whether a drag session is in flight.
func (b *Binding) Active() bool { return b.dragged != nil }

// MarkerPosition returns the marker's current pixel position while a
// session is active.
func (b *Binding) MarkerPosition() (x, y float64, ok bool) {
	if b.dragged == nil {
		return 0, 0, false
	}
	return b.markerX, b.markerY, true
}

// handleDraw consumes one draw notification. Point nodes get their tag
// and capability flag; the converter is rebuilt only when the axis
// range identities changed since the previous notification.
func (b *Binding) handleDraw(d DrawInfo) {
	if b.conv == nil || !b.conv.SameRanges(d.AxisX, d.AxisY) {
		b.conv = geom.NewConverter(d.AxisX, d.AxisY)
	}
	if d.Kind != KindPoint {
		return
	}
	Tag(d.Node, d.Series, d.Point, b.opts.IndexAttr)
	d.Node.Meta().Draggable = true
}

// dropRegion is the grid-area bounding box, falling back to the whole
// container when the chart has no grid node.
func (b *Binding) dropRegion() scene.Rect {
	if grid := b.host.Grid(); grid != nil {
		return grid.Bounds
	}
	return b.host.Container().Bounds
}

func (b *Binding) livePreviewFor(kind pointer.Kind) bool {
	switch b.opts.LivePreview {
	case PreviewAll:
		return true
	case PreviewMouseOnly:
		return kind == pointer.KindMouse
	default:
		return false
	}
}
