package control

import (
	"bytes"
	"errors"
	"testing"

	"github.com/soar/padlink/internal/connection"
	"github.com/soar/padlink/internal/translator"
)

func TestBufferTake(t *testing.T) {
	b := NewBuffer(8)
	if !b.Empty() {
		t.Fatal("new buffer not empty")
	}
	b.Mark(BitDpad)
	b.PutInts(-1, 1)

	got := b.Take()
	want := []byte{BitDpad, 0xff, 0x01}
	if !bytes.Equal(got, want) {
		t.Errorf("Take() = % x, want % x", got, want)
	}
	if !b.Empty() {
		t.Error("buffer not reset after Take")
	}
	b.Mark(BitDpad)
	b.PutInts(0, -1)
	if got := b.Take(); !bytes.Equal(got, []byte{BitDpad, 0x00, 0xff}) {
		t.Errorf("second Take() = % x", got)
	}
}

func TestGate(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(g *Gate)
		safe     bool
		wantRet  bool
		wantOpen bool
	}{
		{"resume open gate", func(g *Gate) {}, false, false, true},
		{"resume stopped", func(g *Gate) { g.Stop() }, false, true, true},
		{"resume blocked", func(g *Gate) { g.Block() }, false, true, true},
		{"safe resume stopped", func(g *Gate) { g.Stop() }, true, true, true},
		{"safe resume blocked", func(g *Gate) { g.Block() }, true, false, false},
		{"safe resume stopped and blocked", func(g *Gate) { g.Stop(); g.Block() }, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g Gate
			tt.setup(&g)
			if got := g.Resume(tt.safe); got != tt.wantRet {
				t.Errorf("Resume(%v) = %v, want %v", tt.safe, got, tt.wantRet)
			}
			if got := g.Transmitting(); got != tt.wantOpen {
				t.Errorf("Transmitting() = %v, want %v", got, tt.wantOpen)
			}
		})
	}
}

func TestSetLookup(t *testing.T) {
	s := NewSet()
	for _, name := range []string{"dpad", "up", "down", "left", "right"} {
		g, err := s.Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%s) error = %v", name, err)
		}
		if g != &s.Dpad.Gate {
			t.Errorf("Lookup(%s) is not the d-pad gate", name)
		}
	}
	if _, err := s.Lookup("gyro"); !errors.Is(err, ErrUnknownControl) {
		t.Errorf("Lookup(gyro) error = %v, want ErrUnknownControl", err)
	}
}

func TestDpadApply(t *testing.T) {
	d := NewDpad()
	steps := []struct {
		dir     translator.Direction
		on      bool
		changed bool
		x, y    int8
	}{
		{translator.Left, true, true, -1, 0},
		{translator.Up, true, true, -1, -1},
		{translator.Right, false, false, -1, -1}, // right was not held
		{translator.Right, true, true, 1, -1},
		{translator.Left, false, false, 1, -1}, // left already replaced
		{translator.Up, false, true, 1, 0},
		{translator.Right, false, true, 0, 0},
	}
	for i, s := range steps {
		changed := d.Apply(translator.Signal{Direction: s.dir, On: s.on})
		x, y := d.Position()
		if changed != s.changed || x != s.x || y != s.y {
			t.Errorf("step %d: changed=%v pos=(%d,%d), want changed=%v pos=(%d,%d)", i, changed, x, y, s.changed, s.x, s.y)
		}
	}
}

type captureSender struct {
	packets [][]byte
	err     error
}

func (c *captureSender) Send(p []byte) error {
	c.packets = append(c.packets, p)
	return c.err
}

func TestForwarder(t *testing.T) {
	set := NewSet()
	sender := &captureSender{}
	f := NewForwarder(set, sender)

	f.Emit(translator.Signal{Direction: translator.Left, On: true})
	f.Emit(translator.Signal{Direction: translator.Left, On: true}) // unchanged
	f.Emit(translator.Signal{Direction: translator.Down, On: true})

	set.Dpad.Stop()
	f.Emit(translator.Signal{Direction: translator.Down, On: false})
	set.Dpad.Resume(false)
	f.Emit(translator.Signal{Direction: translator.Left, On: false})

	want := [][]byte{
		{BitDpad, 0xff, 0x00},
		{BitDpad, 0xff, 0x01},
		{BitDpad, 0x00, 0x00},
	}
	if len(sender.packets) != len(want) {
		t.Fatalf("sent %d packets, want %d", len(sender.packets), len(want))
	}
	for i := range want {
		if !bytes.Equal(sender.packets[i], want[i]) {
			t.Errorf("packet %d = % x, want % x", i, sender.packets[i], want[i])
		}
	}
}

func TestForwarderNoEndpoint(t *testing.T) {
	sender := &captureSender{err: connection.ErrNoEndpoint}
	f := NewForwarder(NewSet(), sender)
	f.Emit(translator.Signal{Direction: translator.Up, On: true})
	if len(sender.packets) != 1 {
		t.Errorf("sent %d packets, want 1", len(sender.packets))
	}
}
