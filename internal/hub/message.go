package hub

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/soar/padlink/internal/method"
	"github.com/soar/padlink/internal/translator"
)

// Message types.
const (
	TypeCall     = "call"
	TypeResponse = "response"
	TypeEvent    = "event"
	TypeStatus   = "status"
)

// Status is the daemon state pushed to clients.
type Status struct {
	Translator string `json:"translator"`
	Endpoint   any    `json:"endpoint"`
}

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type      string             `json:"type"`               // "response", "event", "status"
	Seq       int64              `json:"seq,omitempty"`      // Sequence number for ordering
	Timestamp int64              `json:"timestamp"`          // Unix timestamp in milliseconds
	ID        string             `json:"id,omitempty"`       // Call ID for type "response"
	Event     string             `json:"event,omitempty"`    // "left on" etc. for type "event"
	Signal    *translator.Signal `json:"signal,omitempty"`   // Structured signal for type "event"
	Status    *Status            `json:"status,omitempty"`   // Daemon state for type "status"
	Response  *method.Response   `json:"response,omitempty"` // Call outcome for type "response"
}

// NewResponseMessage wraps a dispatcher response for the call with id.
func NewResponseMessage(id string, resp method.Response) *WSMessage {
	return &WSMessage{
		Type:      TypeResponse,
		Timestamp: time.Now().UnixMilli(),
		ID:        id,
		Response:  &resp,
	}
}

// NewEventMessage creates an "event" message for one translator signal.
func NewEventMessage(seq int64, sig translator.Signal) *WSMessage {
	return &WSMessage{
		Type:      TypeEvent,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Event:     sig.String(),
		Signal:    &sig,
	}
}

// NewStatusMessage creates a "status" message.
func NewStatusMessage(seq int64, st Status) *WSMessage {
	return &WSMessage{
		Type:      TypeStatus,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Status:    &st,
	}
}

// ClientMessage represents a message sent from the client to the server.
type ClientMessage struct {
	Type   string         `json:"type"`
	ID     string         `json:"id,omitempty"`
	Method string         `json:"method"`
	Args   map[string]any `json:"args,omitempty"`
}

// decodeClientMessage parses a client frame, keeping numbers exact.
func decodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	err := dec.Decode(&msg)
	return msg, err
}
