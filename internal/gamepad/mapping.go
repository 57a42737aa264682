// Package gamepad maps raw joystick controls to logical actions and tracks
// their pressed state. The Linux joystick device backend lives here too.
package gamepad

import (
	"math"

	"github.com/soar/padlink/internal/input"
)

// axisThreshold is how far past center a stick must travel to count as a
// digital press, after the deadzone has been applied.
const axisThreshold = 0.5

const (
	hatUp    uint8 = 0x01
	hatRight uint8 = 0x02
	hatDown  uint8 = 0x04
	hatLeft  uint8 = 0x08
)

// SourceKind selects which raw control a Source reads.
type SourceKind uint8

const (
	SourceHat SourceKind = iota + 1
	SourceButton
	SourceAxis
)

// Source is one raw control that can press a logical action.
type Source struct {
	Kind  SourceKind
	Index int32
	// SourceHat: direction bit of hat Index.
	Hat uint8
	// SourceAxis: pressed when the normalized value is at or past the
	// threshold on the negative side instead of the positive one.
	Negative bool
	// For triggers: raw range. Some devices use -32768..32767, others 0..32767.
	IsTrigger bool
	RawMin    int16
	RawMax    int16
}

// ActionMapping binds a logical action to the sources that press it.
type ActionMapping struct {
	Action  string
	Sources []Source
}

// DeviceMapping holds the complete action mapping for a specific device type.
type DeviceMapping struct {
	Name    string
	Actions []ActionMapping
}

// Controls is a snapshot of a device's raw control values.
type Controls interface {
	Button(index int32) bool
	Axis(index int32) int16
	Hat(index int32) uint8
}

// Evaluate reports, for each mapped action, whether any of its sources is
// pressed.
func (m *DeviceMapping) Evaluate(c Controls, deadzone float64) map[string]bool {
	pressed := make(map[string]bool, len(m.Actions))
	for _, am := range m.Actions {
		on := false
		for _, src := range am.Sources {
			if src.pressed(c, deadzone) {
				on = true
				break
			}
		}
		pressed[am.Action] = on
	}
	return pressed
}

func (s Source) pressed(c Controls, deadzone float64) bool {
	switch s.Kind {
	case SourceHat:
		return c.Hat(s.Index)&s.Hat != 0
	case SourceButton:
		return c.Button(s.Index)
	case SourceAxis:
		raw := c.Axis(s.Index)
		if s.IsTrigger {
			return ApplyDeadzone(NormalizeTrigger(raw, s.RawMin, s.RawMax), deadzone) >= axisThreshold
		}
		v := ApplyDeadzone(NormalizeAxis(raw), deadzone)
		if s.Negative {
			return v <= -axisThreshold
		}
		return v >= axisThreshold
	}
	return false
}

// NormalizeAxis converts a raw axis value (-32768..32767) to -1.0..1.0.
func NormalizeAxis(raw int16) float64 {
	v := float64(raw) / math.MaxInt16
	if v < -1.0 {
		v = -1.0
	}
	return v
}

// NormalizeTrigger converts a raw trigger value to 0.0..1.0.
func NormalizeTrigger(raw int16, rawMin, rawMax int16) float64 {
	if rawMax == rawMin {
		return 0
	}
	v := (float64(raw) - float64(rawMin)) / (float64(rawMax) - float64(rawMin))
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

// ApplyDeadzone returns 0 if the value is within the deadzone threshold.
func ApplyDeadzone(v float64, threshold float64) float64 {
	if math.Abs(v) < threshold {
		return 0
	}
	return v
}

func hat(dir uint8) Source { return Source{Kind: SourceHat, Index: 0, Hat: dir} }

func button(index int32) Source { return Source{Kind: SourceButton, Index: index} }

func stick(index int32, negative bool) Source {
	return Source{Kind: SourceAxis, Index: index, Negative: negative}
}

func trigger(index int32) Source {
	return Source{Kind: SourceAxis, Index: index, IsTrigger: true, RawMin: -32768, RawMax: 32767}
}

// Built-in mappings for common controllers. The left stick and the d-pad
// steer; the right and left triggers thrust forward and backward.

var xboxMapping = &DeviceMapping{
	Name: "xbox",
	Actions: []ActionMapping{
		{Action: input.ActionTurnLeft, Sources: []Source{hat(hatLeft), stick(0, true)}},
		{Action: input.ActionTurnRight, Sources: []Source{hat(hatRight), stick(0, false)}},
		{Action: input.ActionForwardThrust, Sources: []Source{hat(hatUp), trigger(5), button(0)}},
		{Action: input.ActionBackwardThrust, Sources: []Source{hat(hatDown), trigger(4), button(1)}},
	},
}

// Triggers are R2/L2, buttons are Cross/Circle.
var playstationMapping = &DeviceMapping{
	Name: "playstation",
	Actions: []ActionMapping{
		{Action: input.ActionTurnLeft, Sources: []Source{hat(hatLeft), stick(0, true)}},
		{Action: input.ActionTurnRight, Sources: []Source{hat(hatRight), stick(0, false)}},
		{Action: input.ActionForwardThrust, Sources: []Source{hat(hatUp), trigger(5), button(0)}},
		{Action: input.ActionBackwardThrust, Sources: []Source{hat(hatDown), trigger(4), button(1)}},
	},
}

var switchProMapping = &DeviceMapping{
	Name: "switch_pro",
	Actions: []ActionMapping{
		{Action: input.ActionTurnLeft, Sources: []Source{hat(hatLeft), stick(0, true)}},
		{Action: input.ActionTurnRight, Sources: []Source{hat(hatRight), stick(0, false)}},
		{Action: input.ActionForwardThrust, Sources: []Source{hat(hatUp), stick(1, true), button(0)}},
		{Action: input.ActionBackwardThrust, Sources: []Source{hat(hatDown), stick(1, false), button(1)}},
	},
}

var genericMapping = &DeviceMapping{
	Name: "generic",
	Actions: []ActionMapping{
		{Action: input.ActionTurnLeft, Sources: []Source{hat(hatLeft), stick(0, true)}},
		{Action: input.ActionTurnRight, Sources: []Source{hat(hatRight), stick(0, false)}},
		{Action: input.ActionForwardThrust, Sources: []Source{hat(hatUp), stick(1, true)}},
		{Action: input.ActionBackwardThrust, Sources: []Source{hat(hatDown), stick(1, false)}},
	},
}

// The Linux joystick driver reports the d-pad hat as axes 6 (x) and 7 (y).
var joydevMapping = &DeviceMapping{
	Name: "joydev",
	Actions: []ActionMapping{
		{Action: input.ActionTurnLeft, Sources: []Source{stick(6, true), stick(0, true)}},
		{Action: input.ActionTurnRight, Sources: []Source{stick(6, false), stick(0, false)}},
		{Action: input.ActionForwardThrust, Sources: []Source{stick(7, true), stick(1, true)}},
		{Action: input.ActionBackwardThrust, Sources: []Source{stick(7, false), stick(1, false)}},
	},
}

// Known vendor/product IDs.
type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*DeviceMapping{
	// Microsoft Xbox controllers
	{0x045E, 0x028E}: xboxMapping, // Xbox 360
	{0x045E, 0x02FF}: xboxMapping, // Xbox One
	{0x045E, 0x0B12}: xboxMapping, // Xbox Series X|S
	{0x045E, 0x0B13}: xboxMapping, // Xbox Series X|S (wireless)
	// Sony PlayStation controllers
	{0x054C, 0x0CE6}: playstationMapping, // DualSense
	{0x054C, 0x09CC}: playstationMapping, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationMapping, // DualShock 4 v1
	// Nintendo Switch Pro Controller
	{0x057E, 0x2009}: switchProMapping,
}

// GetMapping returns the appropriate mapping for a device identified by vendor/product ID.
// Falls back to generic mapping if no specific mapping is found.
func GetMapping(vendorID, productID uint16) *DeviceMapping {
	key := deviceKey{VendorID: vendorID, ProductID: productID}
	if m, ok := knownDevices[key]; ok {
		return m
	}
	return genericMapping
}
