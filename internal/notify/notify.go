// Package notify posts desktop notifications over the D-Bus session bus.
package notify

import (
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = "/org/freedesktop/Notifications"
	notifyCall = busName + ".Notify"
	appName    = "padlink"
)

// caller is the part of dbus.BusObject used here.
type caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Notifier wraps a session bus connection.
type Notifier struct {
	conn    *dbus.Conn
	obj     caller
	timeout time.Duration
}

func New() (*Notifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}
	return &Notifier{
		conn:    conn,
		obj:     conn.Object(busName, objectPath),
		timeout: 10 * time.Second,
	}, nil
}

// Notify shows a notification and returns its server-assigned ID.
func (n *Notifier) Notify(summary, body string) (uint32, error) {
	var id uint32
	err := n.obj.Call(notifyCall, 0,
		appName,
		uint32(0), // replaces_id
		"input-gaming",
		summary,
		body,
		[]string{},
		map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(1))},
		int32(n.timeout/time.Millisecond),
	).Store(&id)
	if err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}
	return id, nil
}

func (n *Notifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Close()
}
