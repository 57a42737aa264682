package gamepad

import (
	"sync"

	"github.com/soar/padlink/internal/input"
)

// ActionState is the pressed state of each logical action, keyed by name.
type ActionState map[string]bool

// ComputeDelta returns the actions whose pressed state differs between old
// and new_, in the order given by names.
func ComputeDelta(names []string, old, new_ ActionState) []string {
	var changed []string
	for _, name := range names {
		if old[name] != new_[name] {
			changed = append(changed, name)
		}
	}
	return changed
}

// Tracker assigns handles to action names and turns pressed-state snapshots
// into action events. Backends share it so handle assignment and transition
// detection behave the same regardless of the native API underneath.
type Tracker struct {
	names   []string
	handles map[string]input.Handle
	state   ActionState
	cb      input.Callback
	mu      sync.Mutex
}

// NewTracker assigns handles 1..n to names in order.
func NewTracker(names []string) *Tracker {
	t := &Tracker{
		names:   append([]string(nil), names...),
		handles: make(map[string]input.Handle, len(names)),
		state:   make(ActionState, len(names)),
	}
	for i, name := range t.names {
		t.handles[name] = input.Handle(i + 1)
	}
	return t
}

// Handle returns the handle for name, or input.InvalidHandle.
func (t *Tracker) Handle(name string) input.Handle {
	return t.handles[name]
}

// SetCallback replaces the event callback.
func (t *Tracker) SetCallback(cb input.Callback) {
	t.mu.Lock()
	t.cb = cb
	t.mu.Unlock()
}

// State returns a copy of the current pressed state.
func (t *Tracker) State() ActionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := make(ActionState, len(t.state))
	for k, v := range t.state {
		s[k] = v
	}
	return s
}

// Update records a new snapshot and fires one active event per changed
// action. Actions missing from the snapshot are treated as released.
func (t *Tracker) Update(next ActionState) {
	t.mu.Lock()
	changed := ComputeDelta(t.names, t.state, next)
	events := make([]input.ActionEvent, 0, len(changed))
	for _, name := range changed {
		pressed := next[name]
		t.state[name] = pressed
		events = append(events, input.ActionEvent{
			Handle: t.handles[name],
			Active: true,
			State:  pressed,
		})
	}
	cb := t.cb
	t.mu.Unlock()

	if cb == nil {
		return
	}
	for _, ev := range events {
		cb(ev)
	}
}

// Release fires an off event for every held action.
func (t *Tracker) Release() {
	t.Update(ActionState{})
}
