package hub

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/soar/padlink/internal/method"
	"github.com/soar/padlink/internal/translator"
)

const statusInterval = 5 * time.Second

// StatusFunc reports the current daemon status.
type StatusFunc func() Status

// Broadcaster pushes translator signals and periodic status to the hub.
type Broadcaster struct {
	hub     *Hub
	signals chan translator.Signal
	status  StatusFunc
	seq     atomic.Int64
}

func NewBroadcaster(h *Hub, status StatusFunc) *Broadcaster {
	return &Broadcaster{
		hub:     h,
		signals: make(chan translator.Signal, 64),
		status:  status,
	}
}

// Emit queues a signal for broadcast. It is a translator.Sink and never
// blocks the poll loop; signals are dropped when the queue is full.
func (b *Broadcaster) Emit(sig translator.Signal) {
	select {
	case b.signals <- sig:
	default:
		log.Printf("Broadcast queue full, dropping %s", sig)
	}
}

// Run starts the broadcaster loop until ctx is done. Should be run in a goroutine.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case sig := <-b.signals:
			b.broadcast(NewEventMessage(b.seq.Add(1), sig))

		case <-ticker.C:
			b.PublishStatus()
		}
	}
}

// PublishStatus broadcasts the current status immediately.
func (b *Broadcaster) PublishStatus() {
	b.broadcast(NewStatusMessage(b.seq.Add(1), b.status()))
}

// SendInitialState sends the current status to a newly connected client.
func (b *Broadcaster) SendInitialState(c *Client) {
	c.sendJSON(NewStatusMessage(b.seq.Add(1), b.status()))
}

func (b *Broadcaster) broadcast(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling %s message: %v", msg.Type, err)
		return
	}
	b.hub.Broadcast(data)
}

// PublishingDispatcher pushes a fresh status to every client after a
// successful call, so consoles see endpoint changes immediately.
type PublishingDispatcher struct {
	d Dispatcher
	b *Broadcaster
}

func NewPublishingDispatcher(d Dispatcher, b *Broadcaster) *PublishingDispatcher {
	return &PublishingDispatcher{d: d, b: b}
}

func (p *PublishingDispatcher) Dispatch(call method.Call) method.Response {
	resp := p.d.Dispatch(call)
	if resp.OK() {
		p.b.PublishStatus()
	}
	return resp
}
