// Package sdlreader reads the first connected joystick through SDL3.
package sdlreader

import (
	"fmt"
	"log"

	"github.com/jupiterrider/purego-sdl3/sdl"

	"github.com/soar/padlink/internal/gamepad"
	"github.com/soar/padlink/internal/input"
)

type joystickInfo struct {
	joystick *sdl.Joystick
	mapping  *gamepad.DeviceMapping
	name     string
	id       sdl.JoystickID
}

// Reader is an input.Subsystem backed by the SDL3 Joystick API.
//
// Init, RunCallbacks and Shutdown must run on one goroutine locked to its OS
// thread; the translator's poll loop does this.
type Reader struct {
	deadzone  float64
	verbose   bool
	tracker   *gamepad.Tracker
	joysticks map[sdl.JoystickID]*joystickInfo
	activeID  sdl.JoystickID // the first connected joystick
	hasActive bool
	started   bool
}

// NewReader creates an SDL3 reader. Axis values within deadzone of center
// are treated as centered.
func NewReader(deadzone float64, verbose bool) *Reader {
	return &Reader{
		deadzone:  deadzone,
		verbose:   verbose,
		tracker:   gamepad.NewTracker(input.Actions),
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
	}
}

// Init initializes the SDL joystick subsystem and opens any joysticks that
// are already connected.
func (r *Reader) Init() error {
	if !sdl.Init(sdl.InitJoystick) {
		return fmt.Errorf("sdl init: %s", sdl.GetError())
	}
	r.started = true
	log.Println("SDL3 Joystick subsystem initialized")

	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}
	return nil
}

// Shutdown closes all joysticks and quits SDL.
func (r *Reader) Shutdown() {
	if !r.started {
		return
	}
	r.closeAll()
	sdl.Quit()
	r.started = false
}

func (r *Reader) ActionHandle(name string) input.Handle {
	return r.tracker.Handle(name)
}

func (r *Reader) SetCallback(cb input.Callback) {
	r.tracker.SetCallback(cb)
}

// RunCallbacks processes pending SDL events, samples the active joystick and
// reports action transitions.
func (r *Reader) RunCallbacks() {
	if !r.started {
		return
	}
	r.processEvents()
	r.pollState()
}

func (r *Reader) processEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			devEvent := event.JDevice()
			r.openJoystick(devEvent.Which)

		case sdl.EventJoystickRemoved:
			devEvent := event.JDevice()
			r.removeJoystick(devEvent.Which)

		case sdl.EventJoystickButtonDown:
			if r.verbose {
				be := event.JButton()
				log.Printf("[DEBUG] Button DOWN: index=%d joystick=%d", be.Button, be.Which)
			}

		case sdl.EventJoystickHatMotion:
			if r.verbose {
				he := event.JHat()
				log.Printf("[DEBUG] Hat: index=%d value=0x%02X joystick=%d", he.Hat, he.Value, he.Which)
			}
		}
	}
}

func (r *Reader) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := r.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		log.Printf("Failed to open joystick %d: %s", instanceID, sdl.GetError())
		return
	}

	jsID := sdl.GetJoystickID(js)
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)
	mapping := gamepad.GetMapping(vendorID, productID)

	r.joysticks[jsID] = &joystickInfo{
		joystick: js,
		mapping:  mapping,
		name:     name,
		id:       jsID,
	}

	log.Printf("Joystick connected: %s (VID=%04X PID=%04X) mapping=%s", name, vendorID, productID, mapping.Name)

	if !r.hasActive {
		r.activeID = jsID
		r.hasActive = true
		log.Printf("Active joystick set: %s (ID=%d)", name, jsID)
	}
}

func (r *Reader) removeJoystick(instanceID sdl.JoystickID) {
	info, exists := r.joysticks[instanceID]
	if !exists {
		return
	}

	log.Printf("Joystick disconnected: %s", info.name)
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, instanceID)

	if !r.hasActive || r.activeID != instanceID {
		return
	}

	r.hasActive = false
	r.tracker.Release()

	// Promote the next available joystick
	for id, js := range r.joysticks {
		if sdl.JoystickConnected(js.joystick) {
			r.activeID = id
			r.hasActive = true
			log.Printf("Active joystick switched to: %s (ID=%d)", js.name, id)
			break
		}
	}
}

func (r *Reader) closeAll() {
	for id, info := range r.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(r.joysticks, id)
	}
	r.hasActive = false
}

func (r *Reader) pollState() {
	if !r.hasActive {
		return
	}

	info, exists := r.joysticks[r.activeID]
	if !exists || !sdl.JoystickConnected(info.joystick) {
		return
	}

	r.tracker.Update(info.mapping.Evaluate(sdlControls{js: info.joystick}, r.deadzone))
}

// sdlControls reads raw values straight from an open SDL joystick.
type sdlControls struct {
	js *sdl.Joystick
}

func (c sdlControls) Button(index int32) bool {
	if index >= sdl.GetNumJoystickButtons(c.js) {
		return false
	}
	return sdl.GetJoystickButton(c.js, index)
}

func (c sdlControls) Axis(index int32) int16 {
	if index >= sdl.GetNumJoystickAxes(c.js) {
		return 0
	}
	return sdl.GetJoystickAxis(c.js, index)
}

func (c sdlControls) Hat(index int32) uint8 {
	if index >= sdl.GetNumJoystickHats(c.js) {
		return 0
	}
	return sdl.GetJoystickHat(c.js, index)
}
