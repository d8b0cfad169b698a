// Package pointer unifies mouse and touch input into one event shape.
//
// Hosts deliver raw scene events ("mousedown", "touchmove", ...); Bind
// attaches listeners for a space-separated list of such names and hands
// the callback a normalized Event. Touch events carry a set of changed
// touches; the last changed touch is taken as the representative
// position. Only a single concurrent touch is supported: which touch
// wins among simultaneous ones is undefined.
package pointer

import (
	"strings"

	"github.com/recera/dragplot/pkg/scene"
)

// Kind tags the source of a normalized event.
type Kind uint8

const (
	// KindMouse marks a mouse-origin event
	KindMouse Kind = iota
	// KindTouch marks a touch-origin event
	KindTouch
)

// ButtonPrimary is the primary mouse button.
const ButtonPrimary = 0

// Event is the normalized pointer event consumed by the drag system.
type Event struct {
	Kind   Kind
	X, Y   float64
	Button int
}

// IsTouch reports whether the event originated from a touch source.
func (e Event) IsTouch() bool { return e.Kind == KindTouch }

// Handler receives the node the raw event targeted plus the normalized
// event.
type Handler func(target *scene.Node, ev Event)

type bindOptions struct {
	draggableOnly bool
}

// Option configures Bind.
type Option func(*bindOptions)

// DraggableOnly restricts the handler to events whose originating node
// carries the draggable capability flag.
func DraggableOnly() Option {
	return func(o *bindOptions) { o.draggableOnly = true }
}

// Bind attaches one listener per name in the space-separated events
// list to the target node and returns a function that removes them all.
func Bind(target *scene.Node, events string, fn Handler, opts ...Option) func() {
	var o bindOptions
	for _, opt := range opts {
		opt(&o)
	}

	var removes []func()
	for _, name := range strings.Fields(events) {
		kind := KindMouse
		if strings.HasPrefix(name, "touch") {
			kind = KindTouch
		}
		k := kind
		removes = append(removes, target.On(name, func(se *scene.Event) {
			if o.draggableOnly && !isDraggable(se.Target) {
				return
			}
			fn(se.Target, normalize(k, se))
		}))
	}
	return func() {
		for _, remove := range removes {
			remove()
		}
	}
}

func normalize(kind Kind, se *scene.Event) Event {
	ev := Event{Kind: kind, X: se.X, Y: se.Y, Button: se.Button}
	if kind == KindTouch {
		ev.Button = ButtonPrimary
		if len(se.Touches) > 0 {
			last := se.Touches[len(se.Touches)-1]
			ev.X, ev.Y = last.X, last.Y
		}
	}
	return ev
}

func isDraggable(n *scene.Node) bool {
	return n != nil && n.HasMeta() && n.Meta().Draggable
}
