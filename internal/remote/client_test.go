package remote

import (
	"context"
	"errors"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/soar/padlink/internal/connection"
	"github.com/soar/padlink/internal/control"
	"github.com/soar/padlink/internal/hub"
	"github.com/soar/padlink/internal/method"
	"github.com/soar/padlink/internal/server"
	"github.com/soar/padlink/internal/translator"
)

func startDaemon(t *testing.T) (string, *hub.Broadcaster, *connection.Connection) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	conn := connection.New()
	t.Cleanup(func() { conn.Close() })

	h := hub.NewHub()
	go h.Run(ctx)
	b := hub.NewBroadcaster(h, func() hub.Status { return hub.Status{Translator: "disabled"} })
	go b.Run(ctx)

	srv := httptest.NewServer(server.New(h, b, method.NewDispatcher(conn, control.NewSet()), nil, nil, "").Handler())
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws", b, conn
}

func TestCall(t *testing.T) {
	addr, _, conn := startDaemon(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, addr, "")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	resp, err := c.Call(ctx, "set_address", map[string]any{"address": "127.0.0.1", "port": "5000"})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.OK() {
		t.Fatalf("set_address = %+v", resp)
	}
	if ep, ok := conn.Endpoint(); !ok || ep.Port != 5000 {
		t.Errorf("endpoint = %+v, %v", ep, ok)
	}

	resp, err = c.Call(ctx, "setAddress", map[string]any{"address": "", "port": "5000"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != "INVALID_ARGUMENT" {
		t.Errorf("empty address = %+v", resp)
	}

	resp, err = c.Call(ctx, "resetAddress", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.OK() {
		t.Errorf("resetAddress = %+v", resp)
	}
	if _, ok := conn.Endpoint(); ok {
		t.Error("endpoint still set after reset")
	}
}

func TestEvents(t *testing.T) {
	addr, b, _ := startDaemon(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, addr, "")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	select {
	case msg := <-c.Events():
		if msg.Type != hub.TypeStatus || msg.Status.Translator != "disabled" {
			t.Fatalf("first message = %+v", msg)
		}
	case <-ctx.Done():
		t.Fatal("no status message")
	}

	b.Emit(translator.Signal{Action: "backward_thrust", Direction: translator.Down, On: false})
	for {
		select {
		case msg := <-c.Events():
			if msg.Type != hub.TypeEvent {
				continue
			}
			if msg.Event != "down off" {
				t.Errorf("event = %q", msg.Event)
			}
			return
		case <-ctx.Done():
			t.Fatal("no event message")
		}
	}
}

func TestDialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := Dial(ctx, "ws://127.0.0.1:1/ws", ""); err == nil {
		t.Fatal("expected dial error")
	}
}

func TestParseArgs(t *testing.T) {
	got, err := ParseArgs([]string{"address=10.0.0.2", "port=41234", "note=a=b"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"address": "10.0.0.2", "port": "41234", "note": "a=b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	for _, bad := range []string{"address", "=1"} {
		if _, err := ParseArgs([]string{bad}); !errors.Is(err, ErrBadArgPair) {
			t.Errorf("ParseArgs(%q) err = %v", bad, err)
		}
	}
}
