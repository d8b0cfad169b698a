// Package reactive provides a minimal observable value used to publish
// drag preview updates to hosts. Fan-out is direct callback invocation
// on the caller's goroutine; hosts dispatch events on a single
// goroutine, so no scheduling layer sits in between.
package reactive

import "sync"

// Signal is an observable value.
type Signal[T any] struct {
	mu    sync.RWMutex
	value T
	subs  map[uint64]func(T)
	next  uint64
}

// NewSignal creates a signal holding the initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		value: initial,
		subs:  make(map[uint64]func(T)),
	}
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set stores the value and notifies subscribers synchronously.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	s.value = value
	subs := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
}

// Subscribe registers a callback for future Set calls and returns a
// function that removes it.
func (s *Signal[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
