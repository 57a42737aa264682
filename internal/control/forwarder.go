package control

import (
	"errors"
	"log"
	"sync"

	"github.com/soar/padlink/internal/connection"
	"github.com/soar/padlink/internal/translator"
)

// Sender delivers finished datagrams.
type Sender interface {
	Send(payload []byte) error
}

// Forwarder turns translator signals into d-pad datagrams.
type Forwarder struct {
	set    *Set
	sender Sender

	mu  sync.Mutex
	buf *Buffer
}

// NewForwarder sends d-pad updates from set through sender.
func NewForwarder(set *Set, sender Sender) *Forwarder {
	return &Forwarder{
		set:    set,
		sender: sender,
		buf:    NewBuffer(2),
	}
}

// Emit is a translator.Sink.
func (f *Forwarder) Emit(sig translator.Signal) {
	if !f.set.Dpad.Apply(sig) {
		return
	}

	f.mu.Lock()
	if !f.set.Dpad.Encode(f.buf) {
		f.mu.Unlock()
		return
	}
	packet := f.buf.Take()
	f.mu.Unlock()

	if err := f.sender.Send(packet); err != nil && !errors.Is(err, connection.ErrNoEndpoint) {
		log.Printf("Failed to forward %s: %v", sig, err)
	}
}
