// Package remote is the websocket client behind the call and watch commands.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lxzan/gws"

	"github.com/soar/padlink/internal/hub"
	"github.com/soar/padlink/internal/method"
)

var (
	ErrClosed     = errors.New("connection closed")
	ErrBadArgPair = errors.New("argument must be key=value")
)

const defaultHandshakeTimeout = 5 * time.Second

// Client talks to a running daemon over its websocket channel.
type Client struct {
	conn   *gws.Conn
	events chan hub.WSMessage
	done   chan struct{}

	mu      sync.Mutex
	pending map[string]chan method.Response
	err     error
}

type handler struct {
	gws.BuiltinEventHandler
	c *Client
}

func (h *handler) OnMessage(_ *gws.Conn, message *gws.Message) {
	defer message.Close()

	var msg hub.WSMessage
	if err := json.Unmarshal(message.Bytes(), &msg); err != nil {
		return
	}
	if msg.Type == hub.TypeResponse && msg.Response != nil {
		h.c.resolve(msg.ID, *msg.Response)
		return
	}
	select {
	case h.c.events <- msg:
	default:
	}
}

func (h *handler) OnClose(_ *gws.Conn, err error) {
	h.c.mu.Lock()
	h.c.err = err
	h.c.mu.Unlock()
	close(h.c.done)
}

// Dial connects to addr. A non-empty token is sent as a bearer token.
func Dial(ctx context.Context, addr, token string) (*Client, error) {
	c := &Client{
		events:  make(chan hub.WSMessage, 64),
		done:    make(chan struct{}),
		pending: make(map[string]chan method.Response),
	}

	timeout := defaultHandshakeTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := gws.NewClient(&handler{c: c}, &gws.ClientOption{
		Addr:             addr,
		RequestHeader:    header,
		HandshakeTimeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	c.conn = conn
	go conn.ReadLoop()
	return c, nil
}

func (c *Client) resolve(id string, resp method.Response) {
	c.mu.Lock()
	ch, ok := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()
	if ok {
		ch <- resp
	}
}

// Call sends one method call and waits for its response.
func (c *Client) Call(ctx context.Context, name string, args map[string]any) (method.Response, error) {
	id := uuid.NewString()
	ch := make(chan method.Response, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	data, err := json.Marshal(hub.ClientMessage{Type: hub.TypeCall, ID: id, Method: name, Args: args})
	if err != nil {
		return method.Response{}, err
	}
	if err := c.conn.WriteMessage(gws.OpcodeText, data); err != nil {
		return method.Response{}, fmt.Errorf("send %s: %w", name, err)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-c.done:
		return method.Response{}, c.closeErr()
	case <-ctx.Done():
		return method.Response{}, ctx.Err()
	}
}

// Events returns status and event messages pushed by the daemon. Messages
// are dropped when the reader falls behind.
func (c *Client) Events() <-chan hub.WSMessage {
	return c.events
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) closeErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return fmt.Errorf("%w: %v", ErrClosed, c.err)
	}
	return ErrClosed
}

func (c *Client) Close() error {
	return c.conn.WriteClose(1000, nil)
}

// ParseArgs turns key=value pairs into a call argument map. Values stay
// strings; the dispatcher accepts numeric and boolean strings.
func ParseArgs(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q", ErrBadArgPair, p)
		}
		args[k] = v
	}
	return args, nil
}
