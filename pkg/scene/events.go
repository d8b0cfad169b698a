package scene

// Touch is one touch point carried by a touch-origin event.
type Touch struct {
	X, Y float64
}

// Event is a raw scene event as delivered by a host: a DOM-forwarding
// host decodes these off the wire, a terminal host synthesizes them
// from cell coordinates. The pointer package normalizes them further.
type Event struct {
	Name   string
	Target *Node
	X, Y   float64
	Button int

	// Touches holds the changed touches for touch-origin events.
	Touches []Touch

	stopped bool
}

// StopPropagation prevents the event from bubbling further.
func (e *Event) StopPropagation() { e.stopped = true }

type handler struct {
	fn func(*Event)
}

// On registers a handler for the named event on this node and returns
// a function that removes it.
func (n *Node) On(name string, fn func(*Event)) func() {
	if n.handlers == nil {
		n.handlers = make(map[string][]*handler)
	}
	h := &handler{fn: fn}
	n.handlers[name] = append(n.handlers[name], h)
	return func() {
		list := n.handlers[name]
		for i, cur := range list {
			if cur == h {
				n.handlers[name] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// Dispatch delivers the event to its target and bubbles it up the
// parent chain to the root, unless a handler stops propagation.
// Dispatch runs synchronously on the caller's goroutine; hosts are
// responsible for serializing event delivery.
func Dispatch(e *Event) {
	if e.Target == nil {
		return
	}
	for n := e.Target; n != nil; n = n.parent {
		for _, h := range n.handlers[e.Name] {
			h.fn(e)
			if e.stopped {
				return
			}
		}
		if e.stopped {
			return
		}
	}
}
