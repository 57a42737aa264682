// Package connection owns the UDP socket and the Endpoint gamepad packets
// are sent to.
package connection

import (
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"sync"
)

var (
	// ErrNoEndpoint is returned by Send while no Endpoint is configured.
	ErrNoEndpoint = errors.New("no endpoint configured")
	// ErrSocket wraps socket creation and resolution failures.
	ErrSocket = errors.New("socket unavailable")
)

// Endpoint is the configured network destination for outbound packets.
type Endpoint struct {
	Host string `json:"address"`
	Port int    `json:"port"`
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// ListenFunc opens the unconnected packet socket used for sending.
type ListenFunc func() (net.PacketConn, error)

func listenUDP() (net.PacketConn, error) {
	return net.ListenPacket("udp", ":0")
}

// Connection holds at most one Endpoint and one socket. The Endpoint is
// replaced as a whole; a failed SetAddress leaves the previous one in place.
type Connection struct {
	listen ListenFunc

	mu       sync.RWMutex
	conn     net.PacketConn
	endpoint *Endpoint
	addr     *net.UDPAddr
}

// New returns a connection that opens its socket lazily.
func New() *Connection {
	return NewWithListener(listenUDP)
}

// NewWithListener returns a connection using listen to open its socket.
func NewWithListener(listen ListenFunc) *Connection {
	return &Connection{listen: listen}
}

// SetAddress resolves host:port, opens the socket if needed, and makes it
// the send target. Socket or resolution failures wrap ErrSocket.
func (c *Connection) SetAddress(host string, port int) (Endpoint, error) {
	ep := Endpoint{Host: host, Port: port}
	addr, err := net.ResolveUDPAddr("udp", ep.String())
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: resolve %s: %v", ErrSocket, ep, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		conn, err := c.listen()
		if err != nil {
			return Endpoint{}, fmt.Errorf("%w: %v", ErrSocket, err)
		}
		c.conn = conn
	}
	c.endpoint = &ep
	c.addr = addr
	log.Printf("Endpoint set to %s", ep)
	return ep, nil
}

// ResetAddress clears the Endpoint and closes the socket.
func (c *Connection) ResetAddress() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.endpoint = nil
	c.addr = nil
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	log.Println("Endpoint reset")
	return err
}

// Endpoint returns the current Endpoint, if any.
func (c *Connection) Endpoint() (Endpoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.endpoint == nil {
		return Endpoint{}, false
	}
	return *c.endpoint, true
}

// Send writes one datagram to the Endpoint.
func (c *Connection) Send(payload []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil || c.addr == nil {
		return ErrNoEndpoint
	}
	if _, err := c.conn.WriteTo(payload, c.addr); err != nil {
		return fmt.Errorf("send to %s: %w", c.endpoint, err)
	}
	return nil
}

// Close releases the socket. The connection can be reused afterwards.
func (c *Connection) Close() error {
	return c.ResetAddress()
}
