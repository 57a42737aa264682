package connection

import (
	"errors"
	"net"
	"testing"
	"time"
)

func listenLocal(t *testing.T) *net.UDPConn {
	t.Helper()
	pc, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { pc.Close() })
	return pc
}

func TestSetAddressAndSend(t *testing.T) {
	peer := listenLocal(t)
	port := peer.LocalAddr().(*net.UDPAddr).Port

	c := New()
	defer c.Close()

	ep, err := c.SetAddress("127.0.0.1", port)
	if err != nil {
		t.Fatalf("SetAddress() error = %v", err)
	}
	if ep.Host != "127.0.0.1" || ep.Port != port {
		t.Errorf("endpoint = %+v", ep)
	}
	if got, ok := c.Endpoint(); !ok || got != ep {
		t.Errorf("Endpoint() = %+v, %v", got, ok)
	}

	if err := c.Send([]byte{0x08, 0xff, 0x00}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	buf := make([]byte, 16)
	peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := peer.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 3 || buf[0] != 0x08 || buf[1] != 0xff {
		t.Errorf("received % x", buf[:n])
	}
}

func TestSocketReused(t *testing.T) {
	opened := 0
	c := NewWithListener(func() (net.PacketConn, error) {
		opened++
		return net.ListenPacket("udp", "127.0.0.1:0")
	})
	defer c.Close()

	for _, port := range []int{4000, 4001, 4002} {
		if _, err := c.SetAddress("127.0.0.1", port); err != nil {
			t.Fatalf("SetAddress(%d) error = %v", port, err)
		}
	}
	if opened != 1 {
		t.Errorf("opened %d sockets, want 1", opened)
	}
	if ep, _ := c.Endpoint(); ep.Port != 4002 {
		t.Errorf("endpoint port = %d, want 4002", ep.Port)
	}
}

func TestSocketFailureKeepsPreviousEndpoint(t *testing.T) {
	fail := false
	c := NewWithListener(func() (net.PacketConn, error) {
		if fail {
			return nil, errors.New("EMFILE")
		}
		return net.ListenPacket("udp", "127.0.0.1:0")
	})

	if _, err := c.SetAddress("127.0.0.1", 5000); err != nil {
		t.Fatalf("SetAddress() error = %v", err)
	}
	if err := c.ResetAddress(); err != nil {
		t.Fatalf("ResetAddress() error = %v", err)
	}

	fail = true
	_, err := c.SetAddress("127.0.0.1", 6000)
	if !errors.Is(err, ErrSocket) {
		t.Fatalf("SetAddress() error = %v, want ErrSocket", err)
	}
	if _, ok := c.Endpoint(); ok {
		t.Error("endpoint set despite socket failure")
	}
}

func TestResetAddress(t *testing.T) {
	c := New()
	if err := c.ResetAddress(); err != nil {
		t.Fatalf("ResetAddress() on fresh connection error = %v", err)
	}
	if _, err := c.SetAddress("127.0.0.1", 7000); err != nil {
		t.Fatalf("SetAddress() error = %v", err)
	}
	if err := c.ResetAddress(); err != nil {
		t.Fatalf("ResetAddress() error = %v", err)
	}
	if _, ok := c.Endpoint(); ok {
		t.Error("endpoint still set after reset")
	}
	if err := c.Send([]byte{1}); !errors.Is(err, ErrNoEndpoint) {
		t.Errorf("Send() after reset error = %v, want ErrNoEndpoint", err)
	}
}

func TestSendWithoutEndpoint(t *testing.T) {
	c := New()
	if err := c.Send([]byte{1}); !errors.Is(err, ErrNoEndpoint) {
		t.Errorf("Send() error = %v, want ErrNoEndpoint", err)
	}
}
