package dragplot

import (
	"github.com/recera/dragplot/pkg/pointer"
	"github.com/recera/dragplot/pkg/scene"
)

// The drag session state machine: idle -> dragging -> idle. At most one
// session exists per binding; a pointer-down while one is active is
// ignored. Every handler is a one-shot synchronous reaction to a
// dispatched event, so no locking is needed beyond the idle gate.

// onDown enters the dragging state. The pointer layer has already
// filtered to nodes carrying the draggable capability.
func (b *Binding) onDown(target *scene.Node, ev pointer.Event) {
	if b.dragged != nil {
		return // session active, second pointer-down is a no-op
	}
	if ev.Kind == pointer.KindMouse && ev.Button != pointer.ButtonPrimary {
		return
	}

	// A draggable node without a tag is a render bug, not runtime input.
	if _, _, err := Resolve(target); err != nil {
		panic("dragplot: draggable node missing point tag")
	}

	b.dragged = target
	b.grabConv = b.conv
	b.offsetX = target.Bounds.MinX - ev.X
	b.offsetY = target.Bounds.MinY - ev.Y
	b.markerX = target.Bounds.MinX
	b.markerY = target.Bounds.MinY
	b.marker = NewMarker(target, b.opts.MarkerClass, b.opts.MarkerAtRoot)
	b.clearHover()
	target.AddClass(b.opts.DragClass)

	b.log.Debug("drag session started",
		"series", target.Meta().Series, "point", target.Meta().Point)
}

// onMove updates the marker while dragging, and manages the hover
// affordance while idle. A configuration-disabled axis freezes that
// coordinate at the grabbed node's own origin.
func (b *Binding) onMove(target *scene.Node, ev pointer.Event) {
	if b.dragged == nil {
		b.updateHover(target)
		return
	}
	if !b.slotExists() {
		b.abandon()
		return
	}

	x := b.dragged.Bounds.MinX
	y := b.dragged.Bounds.MinY
	if b.opts.Axis.allowsX() {
		x = ev.X + b.offsetX
	}
	if b.opts.Axis.allowsY() {
		y = ev.Y + b.offsetY
	}
	b.marker.SetPosition(x, y)
	b.markerX, b.markerY = x, y

	if b.livePreviewFor(ev.Kind) {
		old, series, point := b.read(b.dragged)
		b.preview.Set(PreviewValue{
			Series: series,
			Point:  point,
			Data:   b.proposed(old, x, y),
		})
	}
}

// onUp resolves the session: commit when released inside the drop
// region with a non-zero data delta and no callback veto, discard
// otherwise. Cleanup runs unconditionally.
func (b *Binding) onUp(_ *scene.Node, ev pointer.Event) {
	if b.dragged == nil {
		return
	}
	if !b.slotExists() {
		b.abandon()
		return
	}
	dragged := b.dragged

	defer func() {
		b.marker.Destroy()
		b.marker = nil
		dragged.RemoveClass(b.opts.DragClass)
		b.dragged = nil
		b.grabConv = nil
	}()

	if !b.dropRegion().Contains(ev.X, ev.Y) {
		b.log.Debug("drag discarded outside drop region", "x", ev.X, "y", ev.Y)
		return
	}

	dxPixels := b.markerX - dragged.Bounds.MinX
	dyPixels := b.markerY - dragged.Bounds.MinY
	old, series, point := b.read(dragged)
	proposed := b.proposed(old, b.markerX, b.markerY)

	if proposed.X == old.X && proposed.Y == old.Y {
		return // zero delta in both axes: nothing to commit
	}

	if b.opts.OnUpdate != nil {
		veto := !b.opts.OnUpdate(Update{
			Old:       old,
			New:       proposed,
			Series:    series,
			Point:     point,
			Changed:   true,
			Converter: b.grabConv,
			DXPixels:  dxPixels,
			DYPixels:  dyPixels,
			Node:      dragged,
			Host:      b.host,
		})
		if veto {
			b.log.Debug("drag commit vetoed by callback", "series", series, "point", point)
			return
		}
	}

	b.write(dragged, proposed)
	b.host.RequestRender()
	b.log.Debug("drag committed",
		"series", series, "point", point, "x", proposed.X, "y", proposed.Y)
}

// slotExists reports whether the dragged node's tag still resolves to
// a live data slot. A data swap can shrink a series mid-session.
func (b *Binding) slotExists() bool {
	series, point, err := Resolve(b.dragged)
	if err != nil {
		return false
	}
	return b.host.HasPoint(series, point)
}

// abandon discards the active session without reading or writing data.
// Used when a swap removed the slot the session points at: there is
// nothing left to preview against or commit to.
func (b *Binding) abandon() {
	b.log.Debug("drag abandoned, data swap removed the slot")
	b.marker.Destroy()
	b.marker = nil
	b.dragged.RemoveClass(b.opts.DragClass)
	b.dragged = nil
	b.grabConv = nil
}

// proposed computes the prospective data value for a marker position.
// The session converter is used for the whole session even if a
// re-render swapped converters mid-drag; the vertical delta is
// sign-inverted because pixel-y grows downward while chart y grows up.
func (b *Binding) proposed(old DataPoint, markerX, markerY float64) DataPoint {
	conv := b.grabConv
	next := old
	next.X = old.X + conv.ConvertX(markerX-b.dragged.Bounds.MinX)
	next.Y = old.Y - conv.ConvertY(markerY-b.dragged.Bounds.MinY)
	return next
}

func (b *Binding) updateHover(target *scene.Node) {
	if target != nil && target.HasMeta() && target.Meta().Draggable {
		if b.hovered == target {
			return
		}
		b.clearHover()
		b.hovered = target
		target.AddClass(b.opts.HoverClass)
		return
	}
	b.clearHover()
}

func (b *Binding) clearHover() {
	if b.hovered != nil {
		b.hovered.RemoveClass(b.opts.HoverClass)
		b.hovered = nil
	}
}
