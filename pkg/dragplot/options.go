package dragplot

import (
	"log/slog"

	"github.com/recera/dragplot/pkg/geom"
	"github.com/recera/dragplot/pkg/scene"
)

// AxisMode selects which axes a drag may change. A disabled axis
// freezes that coordinate at the grabbed point's own position.
type AxisMode uint8

const (
	// AxisBoth allows dragging along both axes
	AxisBoth AxisMode = iota
	// AxisX restricts dragging to the horizontal axis
	AxisX
	// AxisY restricts dragging to the vertical axis
	AxisY
)

// LivePreviewPolicy controls whether pointer-move publishes prospective
// values while a drag is in flight. The upstream behavior this library
// mirrors skipped live preview for touch input without a stated
// rationale; PreviewMouseOnly preserves that as the default, and
// PreviewAll is available once the distinction is confirmed unneeded.
type LivePreviewPolicy uint8

const (
	// PreviewMouseOnly publishes previews for mouse drags only (default)
	PreviewMouseOnly LivePreviewPolicy = iota
	// PreviewOff disables live preview
	PreviewOff
	// PreviewAll publishes previews for every input source
	PreviewAll
)

// Update describes a completed drag at commit time.
type Update struct {
	Old     DataPoint
	New     DataPoint
	Series  int
	Point   int
	Changed bool

	// Converter is the session's converter (captured at grab time).
	Converter *geom.Converter

	// DXPixels/DYPixels are the raw marker displacement in pixels.
	DXPixels float64
	DYPixels float64

	// Node is the dragged scene node.
	Node *scene.Node

	// Host is the chart the commit applies to, for callbacks shared
	// across charts.
	Host Host
}

// UpdateFunc is invoked synchronously at commit time. Returning false
// vetoes the commit; cleanup still runs. A nil UpdateFunc commits
// unconditionally.
type UpdateFunc func(Update) bool

// Options configures a chart binding. The zero value is usable; Bind
// fills in defaults.
type Options struct {
	// Axis selects the draggable axes.
	Axis AxisMode

	// LivePreview selects the live preview policy. Defaults to
	// PreviewMouseOnly.
	LivePreview LivePreviewPolicy

	// IndexAttr is the element attribute the point tag is mirrored
	// into, for hosts that hit-test on serialized output. Defaults to
	// "data-dragplot-index".
	IndexAttr string

	// MarkerAtRoot attaches the drag marker to the scene root instead
	// of inline after the source point.
	MarkerAtRoot bool

	// Style hooks. Class names only; no behavior reads them back.
	MarkerClass string // applied to the marker clone
	DragClass   string // applied to the grabbed point while dragging
	HoverClass  string // applied to the draggable point under the pointer

	// OnUpdate, when set, can veto commits.
	OnUpdate UpdateFunc

	// Logger receives debug-level session transitions. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

func (o *Options) withDefaults() Options {
	d := Options{
		Axis:        AxisBoth,
		LivePreview: PreviewMouseOnly,
		IndexAttr:   "data-dragplot-index",
		MarkerClass: "dragplot-marker",
		DragClass:   "dragplot-dragging",
		HoverClass:  "dragplot-hover",
	}
	if o == nil {
		d.Logger = slog.Default()
		return d
	}
	d.Axis = o.Axis
	d.LivePreview = o.LivePreview
	if o.IndexAttr != "" {
		d.IndexAttr = o.IndexAttr
	}
	d.MarkerAtRoot = o.MarkerAtRoot
	if o.MarkerClass != "" {
		d.MarkerClass = o.MarkerClass
	}
	if o.DragClass != "" {
		d.DragClass = o.DragClass
	}
	if o.HoverClass != "" {
		d.HoverClass = o.HoverClass
	}
	d.OnUpdate = o.OnUpdate
	d.Logger = o.Logger
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

func (m AxisMode) allowsX() bool { return m == AxisBoth || m == AxisX }
func (m AxisMode) allowsY() bool { return m == AxisBoth || m == AxisY }
