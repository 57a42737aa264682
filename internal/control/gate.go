package control

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownControl is returned when a control name is not registered.
var ErrUnknownControl = errors.New("unknown control")

// Gate decides whether a control may transmit. A control transmits unless it
// has been stopped or blocked.
type Gate struct {
	mu      sync.Mutex
	stopped bool
	blocked bool
}

// Transmitting reports whether the control may send.
func (g *Gate) Transmitting() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.stopped && !g.blocked
}

// Stop suspends transmission until Resume.
func (g *Gate) Stop() {
	g.mu.Lock()
	g.stopped = true
	g.mu.Unlock()
}

// Block suspends transmission until an unsafe Resume.
func (g *Gate) Block() {
	g.mu.Lock()
	g.blocked = true
	g.mu.Unlock()
}

// Resume lifts the stop. An unsafe resume also lifts a block and reports
// whether transmission was off before; a safe resume keeps any block and
// reports whether transmission is now on.
func (g *Gate) Resume(safe bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if safe {
		g.stopped = false
		return !g.blocked
	}
	was := !g.stopped && !g.blocked
	g.stopped = false
	g.blocked = false
	return !was
}

// Set is the registry of named controls.
type Set struct {
	gates map[string]*Gate
	Dpad  *Dpad
}

// NewSet registers the d-pad under "dpad" and its four direction names.
func NewSet() *Set {
	d := NewDpad()
	s := &Set{
		gates: make(map[string]*Gate),
		Dpad:  d,
	}
	for _, name := range []string{"dpad", "up", "down", "left", "right"} {
		s.gates[name] = &d.Gate
	}
	return s
}

// Lookup returns the gate for a control name.
func (s *Set) Lookup(name string) (*Gate, error) {
	g, ok := s.gates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownControl, name)
	}
	return g, nil
}

// Names lists registered control names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.gates))
	for name := range s.gates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
