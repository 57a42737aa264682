// Package fake provides a scripted input.Subsystem for tests.
package fake

import (
	"sync"

	"github.com/soar/padlink/internal/input"
)

// Subsystem delivers queued events on RunCallbacks.
type Subsystem struct {
	InitErr error

	mu       sync.Mutex
	handles  map[string]input.Handle
	queue    []input.ActionEvent
	cb       input.Callback
	inits    int
	shutdown int
	runs     int
	lookups  map[string]int
}

// New returns a subsystem that assigns handles 1..n to the given names.
func New(names ...string) *Subsystem {
	s := &Subsystem{
		handles: make(map[string]input.Handle),
		lookups: make(map[string]int),
	}
	for i, name := range names {
		s.handles[name] = input.Handle(i + 1)
	}
	return s
}

func (s *Subsystem) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inits++
	return s.InitErr
}

func (s *Subsystem) Shutdown() {
	s.mu.Lock()
	s.shutdown++
	s.mu.Unlock()
}

func (s *Subsystem) ActionHandle(name string) input.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups[name]++
	return s.handles[name]
}

func (s *Subsystem) SetCallback(cb input.Callback) {
	s.mu.Lock()
	s.cb = cb
	s.mu.Unlock()
}

// Push queues events for the next RunCallbacks.
func (s *Subsystem) Push(events ...input.ActionEvent) {
	s.mu.Lock()
	s.queue = append(s.queue, events...)
	s.mu.Unlock()
}

func (s *Subsystem) RunCallbacks() {
	s.mu.Lock()
	s.runs++
	pending := s.queue
	s.queue = nil
	cb := s.cb
	s.mu.Unlock()

	if cb == nil {
		return
	}
	for _, ev := range pending {
		cb(ev)
	}
}

// Handle returns the handle assigned to name without counting a lookup.
func (s *Subsystem) Handle(name string) input.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handles[name]
}

// Lookups reports how many times ActionHandle was called for name.
func (s *Subsystem) Lookups(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups[name]
}

// Pending reports the number of queued events.
func (s *Subsystem) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Inits reports how many times Init was called.
func (s *Subsystem) Inits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inits
}

// Shutdowns reports how many times Shutdown was called.
func (s *Subsystem) Shutdowns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

// Runs reports how many times RunCallbacks was called.
func (s *Subsystem) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}
