package hub

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/soar/padlink/internal/method"
	"github.com/soar/padlink/internal/translator"
)

type stubDispatcher struct {
	calls []method.Call
	resp  method.Response
}

func (s *stubDispatcher) Dispatch(call method.Call) method.Response {
	s.calls = append(s.calls, call)
	return s.resp
}

func waitCount(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Count() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", h.Count(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func receive(t *testing.T, c *Client) WSMessage {
	t.Helper()
	select {
	case data, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return WSMessage{}
}

func TestHubBroadcast(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	go h.Run(ctx)

	a := NewClient(h, nil)
	b := NewClient(h, nil)
	h.Register(a)
	h.Register(b)
	waitCount(t, h, 2)

	h.Broadcast([]byte(`{"type":"status","timestamp":1}`))
	for _, c := range []*Client{a, b} {
		if msg := receive(t, c); msg.Type != TypeStatus {
			t.Errorf("client %s got type %q", c.ID(), msg.Type)
		}
	}

	h.Unregister(a)
	waitCount(t, h, 1)
	if _, ok := <-a.send; ok {
		t.Error("unregistered client's send channel still open")
	}
}

func TestHubRunClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	c := NewClient(h, nil)
	h.Register(c)
	waitCount(t, h, 1)
	cancel()
	<-done

	if _, ok := <-c.send; ok {
		t.Error("send channel still open after hub stopped")
	}
	// Must not block once the hub is gone.
	h.Register(NewClient(h, nil))
	h.Unregister(c)
}

func TestClientIDsAreUnique(t *testing.T) {
	h := NewHub()
	if NewClient(h, nil).ID() == NewClient(h, nil).ID() {
		t.Error("client IDs collide")
	}
}

func TestClientHandle(t *testing.T) {
	d := &stubDispatcher{resp: method.Success(nil)}
	c := NewClient(NewHub(), nil)

	msg := c.handle(d, []byte(`{"type":"call","id":"42","method":"setAddress","args":{"address":"10.0.0.1","port":9000}}`))
	if msg.Type != TypeResponse || msg.ID != "42" {
		t.Fatalf("got %+v", msg)
	}
	if !msg.Response.OK() {
		t.Errorf("response = %+v", msg.Response)
	}
	if len(d.calls) != 1 || d.calls[0].Method != "setAddress" {
		t.Fatalf("calls = %+v", d.calls)
	}
	if port, ok := d.calls[0].Args["port"].(json.Number); !ok || port.String() != "9000" {
		t.Errorf("port arg = %#v, want json.Number 9000", d.calls[0].Args["port"])
	}
}

func TestClientHandleRejects(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		id    string
	}{
		{"malformed", `{"type":`, ""},
		{"not an object", `[1,2]`, ""},
		{"unknown type", `{"type":"subscribe","id":"7"}`, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &stubDispatcher{}
			msg := NewClient(NewHub(), nil).handle(d, []byte(tt.frame))
			if msg.ID != tt.id {
				t.Errorf("id = %q, want %q", msg.ID, tt.id)
			}
			if msg.Response == nil || msg.Response.Error == nil {
				t.Fatalf("expected error response, got %+v", msg)
			}
			if msg.Response.Error.Code != method.ErrInvalidArgument.Error() {
				t.Errorf("code = %q", msg.Response.Error.Code)
			}
			if len(d.calls) != 0 {
				t.Errorf("dispatcher called %d times", len(d.calls))
			}
		})
	}
}

func TestBroadcasterEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	go h.Run(ctx)
	b := NewBroadcaster(h, func() Status { return Status{Translator: "running"} })
	go b.Run(ctx)

	c := NewClient(h, nil)
	h.Register(c)
	waitCount(t, h, 1)

	b.SendInitialState(c)
	first := receive(t, c)
	if first.Type != TypeStatus || first.Status.Translator != "running" {
		t.Fatalf("initial message = %+v", first)
	}

	b.Emit(translator.Signal{Action: "turn_left", Direction: translator.Left, On: true})
	ev := receive(t, c)
	if ev.Type != TypeEvent || ev.Event != "left on" {
		t.Fatalf("event = %+v", ev)
	}
	if ev.Seq <= first.Seq {
		t.Errorf("seq %d not after %d", ev.Seq, first.Seq)
	}
	if ev.Signal == nil || ev.Signal.Direction != translator.Left {
		t.Errorf("signal = %+v", ev.Signal)
	}

	b.PublishStatus()
	if st := receive(t, c); st.Type != TypeStatus {
		t.Errorf("got %q, want status", st.Type)
	}
}

func TestBroadcasterEmitDoesNotBlock(t *testing.T) {
	b := NewBroadcaster(NewHub(), func() Status { return Status{} })
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(b.signals)+10; i++ {
			b.Emit(translator.Signal{Direction: translator.Up})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked with no consumer")
	}
}

func TestPublishingDispatcher(t *testing.T) {
	published := 0
	b := NewBroadcaster(NewHub(), func() Status {
		published++
		return Status{}
	})

	fail := &stubDispatcher{resp: method.Failure(method.ErrInvalidArgument)}
	if resp := NewPublishingDispatcher(fail, b).Dispatch(method.Call{Method: "setAddress"}); resp.OK() {
		t.Fatal("failure reported as success")
	}
	if published != 0 {
		t.Fatalf("failed call published %d statuses", published)
	}

	ok := &stubDispatcher{resp: method.Success(nil)}
	NewPublishingDispatcher(ok, b).Dispatch(method.Call{Method: "resetAddress"})
	if published != 1 {
		t.Errorf("published %d statuses, want 1", published)
	}
	if len(ok.calls) != 1 || ok.calls[0].Method != "resetAddress" {
		t.Errorf("calls = %+v", ok.calls)
	}
}

func jsonKeys(t *testing.T, raw json.RawMessage) []string {
	t.Helper()
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestMessageWireKeys(t *testing.T) {
	tests := []struct {
		name  string
		msg   *WSMessage
		top   []string
		inner string
		keys  []string
	}{
		{
			name:  "response success",
			msg:   NewResponseMessage("x", method.Success(nil)),
			top:   []string{"id", "response", "timestamp", "type"},
			inner: "response",
			keys:  []string{"status"},
		},
		{
			name:  "response with result",
			msg:   NewResponseMessage("x", method.Success(true)),
			top:   []string{"id", "response", "timestamp", "type"},
			inner: "response",
			keys:  []string{"result", "status"},
		},
		{
			name:  "response error",
			msg:   NewResponseMessage("x", method.Failure(method.ErrInvalidArgument)),
			top:   []string{"id", "response", "timestamp", "type"},
			inner: "response",
			keys:  []string{"error", "status"},
		},
		{
			name:  "event",
			msg:   NewEventMessage(3, translator.Signal{Action: "turn_left", Direction: translator.Left, On: true}),
			top:   []string{"event", "seq", "signal", "timestamp", "type"},
			inner: "signal",
			keys:  []string{"action", "direction", "on", "time"},
		},
		{
			name:  "status",
			msg:   NewStatusMessage(4, Status{Translator: "running"}),
			top:   []string{"seq", "status", "timestamp", "type"},
			inner: "status",
			keys:  []string{"endpoint", "translator"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.msg)
			if err != nil {
				t.Fatal(err)
			}
			if got := jsonKeys(t, data); !reflect.DeepEqual(got, tt.top) {
				t.Errorf("top-level keys = %v, want %v", got, tt.top)
			}
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(data, &obj); err != nil {
				t.Fatal(err)
			}
			if got := jsonKeys(t, obj[tt.inner]); !reflect.DeepEqual(got, tt.keys) {
				t.Errorf("%s keys = %v, want %v", tt.inner, got, tt.keys)
			}
		})
	}
}
