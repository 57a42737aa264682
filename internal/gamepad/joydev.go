package gamepad

import (
	"bytes"
	"encoding/binary"
	"errors"
	"log"

	"github.com/soar/padlink/internal/input"
)

// Linux joystick API event types (linux/joystick.h).
const (
	jsEventButton uint8 = 0x01
	jsEventAxis   uint8 = 0x02
	jsEventInit   uint8 = 0x80

	jsEventSize = 8

	maxJoyButtons = 768
	maxJoyAxes    = 64
)

// ErrUnsupported is returned by Init on platforms without a joystick device API.
var ErrUnsupported = errors.New("joystick device backend is not supported on this platform")

type jsEvent struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

// decodeEvents splits raw device reads into events. A trailing partial
// record is ignored.
func decodeEvents(raw []byte) []jsEvent {
	n := len(raw) / jsEventSize
	events := make([]jsEvent, 0, n)
	rd := bytes.NewReader(raw[:n*jsEventSize])
	for i := 0; i < n; i++ {
		var e jsEvent
		if binary.Read(rd, binary.LittleEndian, &e) != nil {
			break
		}
		events = append(events, e)
	}
	return events
}

// joyControls accumulates the last reported value of every button and axis.
type joyControls struct {
	buttons [maxJoyButtons]bool
	axes    [maxJoyAxes]int16
}

func (s *joyControls) apply(e jsEvent) {
	switch e.Type &^ jsEventInit {
	case jsEventButton:
		s.buttons[e.Number] = e.Value != 0
	case jsEventAxis:
		if int(e.Number) < maxJoyAxes {
			s.axes[e.Number] = e.Value
		}
	}
}

func (s *joyControls) Button(index int32) bool {
	if index < 0 || index >= maxJoyButtons {
		return false
	}
	return s.buttons[index]
}

func (s *joyControls) Axis(index int32) int16 {
	if index < 0 || index >= maxJoyAxes {
		return 0
	}
	return s.axes[index]
}

// The joystick API has no hats; d-pads show up as axes.
func (s *joyControls) Hat(int32) uint8 { return 0 }

// Joydev is an input.Subsystem reading a Linux /dev/input/jsN device.
type Joydev struct {
	path     string
	deadzone float64
	verbose  bool
	mapping  *DeviceMapping
	tracker  *Tracker
	controls joyControls
	name     string
	buf      []byte
	dev      joyDevice
}

// NewJoydev creates a reader for the joystick device at path.
func NewJoydev(path string, deadzone float64, verbose bool) *Joydev {
	return &Joydev{
		path:     path,
		deadzone: deadzone,
		verbose:  verbose,
		mapping:  joydevMapping,
		tracker:  NewTracker(input.Actions),
		buf:      make([]byte, jsEventSize*64),
	}
}

func (j *Joydev) ActionHandle(name string) input.Handle {
	return j.tracker.Handle(name)
}

func (j *Joydev) SetCallback(cb input.Callback) {
	j.tracker.SetCallback(cb)
}

// feed applies raw device bytes and reports resulting transitions.
func (j *Joydev) feed(raw []byte) {
	events := decodeEvents(raw)
	if len(events) == 0 {
		return
	}
	for _, e := range events {
		if j.verbose {
			log.Printf("[DEBUG] js event: type=0x%02X number=%d value=%d", e.Type, e.Number, e.Value)
		}
		j.controls.apply(e)
	}
	j.tracker.Update(j.mapping.Evaluate(&j.controls, j.deadzone))
}
