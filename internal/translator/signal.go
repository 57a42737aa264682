package translator

import (
	"time"

	"github.com/soar/padlink/internal/input"
)

// Direction is the steering or thrust direction a signal reports.
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
	Up    Direction = "up"
	Down  Direction = "down"
)

var directions = map[string]Direction{
	input.ActionTurnLeft:       Left,
	input.ActionTurnRight:      Right,
	input.ActionForwardThrust:  Up,
	input.ActionBackwardThrust: Down,
}

// DirectionOf returns the direction emitted for a logical action.
func DirectionOf(action string) (Direction, bool) {
	d, ok := directions[action]
	return d, ok
}

// Signal is a directional on/off transition.
type Signal struct {
	Action    string    `json:"action"`
	Direction Direction `json:"direction"`
	On        bool      `json:"on"`
	Time      time.Time `json:"time"`
}

// String renders the signal as "<direction> on" or "<direction> off".
func (s Signal) String() string {
	if s.On {
		return string(s.Direction) + " on"
	}
	return string(s.Direction) + " off"
}
