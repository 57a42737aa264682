package control

import (
	"sync"

	"github.com/soar/padlink/internal/translator"
)

// Dpad tracks the d-pad position built from directional signals.
// x is -1 (left), 0 or 1 (right); y is -1 (up), 0 or 1 (down).
type Dpad struct {
	Gate

	mu   sync.Mutex
	x, y int8
}

func NewDpad() *Dpad {
	return &Dpad{}
}

// Apply updates the position for one signal and reports whether it changed.
// Releasing a direction only centers its axis if that direction is the one
// currently held.
func (d *Dpad) Apply(sig translator.Signal) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	x, y := d.x, d.y
	switch sig.Direction {
	case translator.Left:
		x = axisValue(x, -1, sig.On)
	case translator.Right:
		x = axisValue(x, 1, sig.On)
	case translator.Up:
		y = axisValue(y, -1, sig.On)
	case translator.Down:
		y = axisValue(y, 1, sig.On)
	}
	if x == d.x && y == d.y {
		return false
	}
	d.x, d.y = x, y
	return true
}

func axisValue(cur, dir int8, on bool) int8 {
	if on {
		return dir
	}
	if cur == dir {
		return 0
	}
	return cur
}

// Position returns the current x and y.
func (d *Dpad) Position() (x, y int8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.x, d.y
}

// Encode writes the d-pad payload into b if the control is transmitting.
func (d *Dpad) Encode(b *Buffer) bool {
	if !d.Transmitting() {
		return false
	}
	x, y := d.Position()
	b.Mark(BitDpad)
	b.PutInts(x, y)
	return true
}
