// Package input defines the boundary between padlink and a native input
// subsystem: named logical actions resolve to opaque handles, and a single
// callback receives action transitions while RunCallbacks is pumped.
package input

// Handle identifies a logical action within one subsystem instance.
// The zero Handle is never assigned.
type Handle uint64

// InvalidHandle is returned for names the subsystem does not know.
const InvalidHandle Handle = 0

// Logical actions the translator listens for.
const (
	ActionTurnLeft       = "turn_left"
	ActionTurnRight      = "turn_right"
	ActionForwardThrust  = "forward_thrust"
	ActionBackwardThrust = "backward_thrust"
)

// Actions lists the logical actions in a fixed order.
var Actions = []string{
	ActionTurnLeft,
	ActionTurnRight,
	ActionForwardThrust,
	ActionBackwardThrust,
}

// ActionEvent is a single digital action transition reported by a subsystem.
type ActionEvent struct {
	Handle Handle `json:"handle"`
	Active bool   `json:"active"` // action is bound on a connected device
	State  bool   `json:"state"`  // pressed
}

// Callback receives action events from RunCallbacks.
type Callback func(ActionEvent)

// Subsystem is a native input backend.
//
// Init and RunCallbacks must be called from the same goroutine; some
// backends tie their state to the OS thread that initialized them.
type Subsystem interface {
	Init() error
	Shutdown()
	ActionHandle(name string) Handle
	SetCallback(cb Callback)
	// RunCallbacks drains pending native events and invokes the callback
	// once per action transition.
	RunCallbacks()
}
