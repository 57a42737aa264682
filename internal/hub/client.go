package hub

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/soar/padlink/internal/method"
)

// Dispatcher runs method calls received from clients.
type Dispatcher interface {
	Dispatch(call method.Call) method.Response
}

// Client represents a connected WebSocket client.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewClient creates a new Client attached to the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// ID returns the client's connection ID.
func (c *Client) ID() string {
	return c.id
}

// trySend queues msg without blocking. It reports false when the buffer is
// full; sends after close are dropped silently.
func (c *Client) trySend(msg []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
	})
}

func (c *Client) sendJSON(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling %s message: %v", msg.Type, err)
		return
	}
	if !c.trySend(data) {
		log.Printf("Client %s send buffer full, dropping %s message", c.id, msg.Type)
	}
}

// WritePump sends messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	defer func() {
		c.conn.Close()
	}()

	for msg := range c.send {
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			break
		}
	}
}

// ReadPump reads method calls from the WebSocket and answers each one.
func (c *Client) ReadPump(d Dispatcher) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.sendJSON(c.handle(d, message))
	}
}

func (c *Client) handle(d Dispatcher, message []byte) *WSMessage {
	clientMsg, err := decodeClientMessage(message)
	if err != nil {
		log.Printf("Error parsing client message: %v", err)
		return NewResponseMessage("", method.Failure(fmt.Errorf("%w: malformed message: %v", method.ErrInvalidArgument, err)))
	}

	switch clientMsg.Type {
	case TypeCall, "":
		resp := d.Dispatch(method.Call{Method: clientMsg.Method, Args: clientMsg.Args})
		return NewResponseMessage(clientMsg.ID, resp)
	default:
		return NewResponseMessage(clientMsg.ID, method.Failure(fmt.Errorf("%w: unknown message type %q", method.ErrInvalidArgument, clientMsg.Type)))
	}
}
