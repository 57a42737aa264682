// Package control encodes gamepad controls into the datagram format sent to
// the Endpoint and gates which controls may transmit.
//
// A datagram starts with one bitfield byte naming the controls whose
// payloads follow, in ascending bitmask order. The d-pad is the only control
// padlink drives; its payload is two signed bytes.
package control

// BitDpad marks a d-pad payload in the datagram header. The receiver reserves
// the other bits for gyroscope, button, joystick and trigger payloads.
const BitDpad byte = 0b00001000

// Buffer accumulates one datagram. It is not safe for concurrent use.
type Buffer struct {
	buf      []byte
	bitfield byte
}

// NewBuffer returns a buffer with room for size payload bytes.
func NewBuffer(size int) *Buffer {
	b := &Buffer{buf: make([]byte, 1, size+1)}
	return b
}

// Mark adds a control bit to the header.
func (b *Buffer) Mark(bit byte) {
	b.bitfield |= bit
}

// Empty reports whether no control has been marked since the last Take.
func (b *Buffer) Empty() bool {
	return b.bitfield == 0
}

// PutInts appends signed byte payloads.
func (b *Buffer) PutInts(values ...int8) {
	for _, v := range values {
		b.buf = append(b.buf, byte(v))
	}
}

// Take returns the finished datagram and resets the buffer. The returned
// slice is a copy.
func (b *Buffer) Take() []byte {
	b.buf[0] = b.bitfield
	out := append([]byte(nil), b.buf...)
	b.buf = b.buf[:1]
	b.bitfield = 0
	return out
}
