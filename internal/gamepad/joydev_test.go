package gamepad

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/soar/padlink/internal/input"
)

func encodeJS(t *testing.T, events ...jsEvent) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, e := range events {
		if err := binary.Write(&buf, binary.LittleEndian, e); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	return buf.Bytes()
}

func TestDecodeEvents(t *testing.T) {
	raw := encodeJS(t,
		jsEvent{Time: 10, Value: 1, Type: jsEventButton, Number: 3},
		jsEvent{Time: 11, Value: -32767, Type: jsEventAxis, Number: 6},
	)
	raw = append(raw, 0xff, 0xff) // partial record

	got := decodeEvents(raw)
	if len(got) != 2 {
		t.Fatalf("decoded %d events, want 2", len(got))
	}
	if got[1].Value != -32767 || got[1].Number != 6 || got[1].Type != jsEventAxis {
		t.Errorf("event 1 = %+v", got[1])
	}
}

func TestJoydevFeed(t *testing.T) {
	j := NewJoydev("/dev/null", 0.05, false)
	var got []input.ActionEvent
	j.SetCallback(func(ev input.ActionEvent) { got = append(got, ev) })

	left := j.ActionHandle(input.ActionTurnLeft)
	down := j.ActionHandle(input.ActionBackwardThrust)

	// Initial state burst carries the init bit and reports a centered pad.
	j.feed(encodeJS(t,
		jsEvent{Type: jsEventAxis | jsEventInit, Number: 6},
		jsEvent{Type: jsEventAxis | jsEventInit, Number: 7},
	))
	if len(got) != 0 {
		t.Fatalf("init burst produced %d events", len(got))
	}

	j.feed(encodeJS(t, jsEvent{Type: jsEventAxis, Number: 6, Value: -32767}))
	j.feed(encodeJS(t, jsEvent{Type: jsEventAxis, Number: 7, Value: 32767}))
	j.feed(encodeJS(t, jsEvent{Type: jsEventAxis, Number: 6, Value: 0}))

	want := []input.ActionEvent{
		{Handle: left, Active: true, State: true},
		{Handle: down, Active: true, State: true},
		{Handle: left, Active: true, State: false},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
