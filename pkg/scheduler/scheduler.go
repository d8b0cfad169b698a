// Package scheduler owns re-render scheduling for charts. Charts
// register a render function; MarkDirty coalesces requests until the
// host flushes, which runs dirty renders on the calling goroutine and
// hands the resulting patch batches to a sink.
package scheduler

import (
	"sync"

	"github.com/recera/dragplot/pkg/scene"
)

// RenderFunc re-renders one chart and returns the scene patches the
// render produced.
type RenderFunc func() []scene.Patch

// Sink receives the patch batch of one flushed render.
type Sink func(id string, patches []scene.Patch)

type entry struct {
	render  RenderFunc
	dirty   bool
	renders int
}

// Scheduler coalesces render requests. All methods are safe for
// concurrent use, but Flush runs render functions on the calling
// goroutine: hosts flush from their dispatch loop.
type Scheduler struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   []string
	sink    Sink
}

// New creates a scheduler. A nil sink discards patch batches.
func New(sink Sink) *Scheduler {
	return &Scheduler{
		entries: make(map[string]*entry),
		sink:    sink,
	}
}

// Register adds a chart's render function under an ID. Registering an
// existing ID replaces its render function.
func (s *Scheduler) Register(id string, render RenderFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		e.render = render
		return
	}
	s.entries[id] = &entry{render: render}
	s.order = append(s.order, id)
}

// MarkDirty queues a re-render for the chart. Repeated marks before the
// next flush coalesce into one render.
func (s *Scheduler) MarkDirty(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		e.dirty = true
	}
}

// Flush runs every dirty render in registration order and forwards each
// patch batch to the sink. It returns the number of renders performed.
func (s *Scheduler) Flush() int {
	s.mu.Lock()
	type job struct {
		id     string
		render RenderFunc
	}
	var jobs []job
	for _, id := range s.order {
		e := s.entries[id]
		if e.dirty {
			e.dirty = false
			e.renders++
			jobs = append(jobs, job{id: id, render: e.render})
		}
	}
	sink := s.sink
	s.mu.Unlock()

	for _, j := range jobs {
		patches := j.render()
		if sink != nil {
			sink(j.id, patches)
		}
	}
	return len(jobs)
}

// Renders returns how many times the chart has been rendered through
// this scheduler.
func (s *Scheduler) Renders(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		return e.renders
	}
	return 0
}
