// Package translator turns raw input-subsystem action events into
// directional on/off signals.
//
// A Translator owns its subsystem: Start initializes it on a dedicated
// goroutine locked to an OS thread, resolves the four action handles once,
// and pumps RunCallbacks until Stop is called or the context ends. Stop joins
// the goroutine and shuts the subsystem down on the same thread.
package translator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soar/padlink/internal/input"
)

// ErrInitFailed wraps subsystem initialization failures returned by Start.
var ErrInitFailed = errors.New("input subsystem initialization failed")

// ErrAlreadyStarted is returned by Start on a translator that has left the
// Uninitialized state.
var ErrAlreadyStarted = errors.New("translator already started")

const defaultPollInterval = 16 * time.Millisecond // ~60Hz

// State is the translator lifecycle state.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateRunning
	StateDisabled
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateDisabled:
		return "disabled"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Sink receives every emitted signal. Sinks run on the poll goroutine and
// must not block.
type Sink func(Signal)

type binding struct {
	action    string
	direction Direction
	handle    input.Handle
}

// Translator maps action events from an input subsystem to signals.
type Translator struct {
	sub          input.Subsystem
	pollInterval time.Duration
	verbose      bool
	sinks        []Sink
	now          func() time.Time

	state    atomic.Int32
	bindings []binding

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Translator.
type Option func(*Translator)

// WithSink adds a signal sink.
func WithSink(s Sink) Option {
	return func(t *Translator) { t.sinks = append(t.sinks, s) }
}

// WithPollInterval sets the delay between RunCallbacks calls.
func WithPollInterval(d time.Duration) Option {
	return func(t *Translator) {
		if d > 0 {
			t.pollInterval = d
		}
	}
}

// WithVerbose logs every raw action event.
func WithVerbose(v bool) Option {
	return func(t *Translator) { t.verbose = v }
}

// New creates a translator for sub. It does not touch the subsystem until
// Start.
func New(sub input.Subsystem, opts ...Option) *Translator {
	t := &Translator{
		sub:          sub,
		pollInterval: defaultPollInterval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// State returns the current lifecycle state.
func (t *Translator) State() State {
	return State(t.state.Load())
}

// Start initializes the subsystem and starts the poll loop. It returns once
// initialization has finished. On failure the translator is Disabled and
// the returned error wraps ErrInitFailed.
func (t *Translator) Start(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	initErr := make(chan error, 1)

	t.mu.Lock()
	if !t.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitializing)) {
		t.mu.Unlock()
		cancel()
		return ErrAlreadyStarted
	}
	t.cancel = cancel
	t.done = done
	t.mu.Unlock()

	go t.run(loopCtx, initErr, done)

	if err := <-initErr; err != nil {
		cancel()
		<-done
		t.state.CompareAndSwap(int32(StateInitializing), int32(StateDisabled))
		return fmt.Errorf("%w: %v", ErrInitFailed, err)
	}
	// The loop may already have exited, or Stop may have run meanwhile.
	if t.state.CompareAndSwap(int32(StateInitializing), int32(StateRunning)) {
		log.Printf("Input translator running (poll every %v)", t.pollInterval)
	}
	return nil
}

// Stop cancels the poll loop, waits for it to exit and shuts the subsystem
// down. It is safe to call more than once and from any state. A translator
// stopped before Start can no longer be started.
func (t *Translator) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	if cancel == nil {
		t.state.Store(int32(StateStopped))
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	cancel()
	<-done
	t.state.Store(int32(StateStopped))
}

// Done is closed when the poll loop has exited. It is nil before Start.
func (t *Translator) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *Translator) run(ctx context.Context, initErr chan<- error, done chan<- struct{}) {
	defer close(done)

	// Native input APIs tie their state to the initializing thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := t.sub.Init(); err != nil {
		initErr <- err
		return
	}
	defer func() {
		t.state.Store(int32(StateStopped))
		log.Println("Input translator stopped")
	}()
	defer t.sub.Shutdown()

	t.resolve()
	t.sub.SetCallback(t.Handle)
	initErr <- nil

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		t.sub.RunCallbacks()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// resolve looks up every action handle once.
func (t *Translator) resolve() {
	bindings := make([]binding, 0, len(directions))
	for _, action := range input.Actions {
		h := t.sub.ActionHandle(action)
		if h == input.InvalidHandle {
			log.Printf("Input action %s is not bound", action)
		}
		bindings = append(bindings, binding{
			action:    action,
			direction: directions[action],
			handle:    h,
		})
	}
	t.bindings = bindings
}

// Handle processes one action event. Inactive events and events for
// unknown handles are ignored.
func (t *Translator) Handle(ev input.ActionEvent) {
	if t.verbose {
		log.Printf("[DEBUG] action event: handle=%d active=%v state=%v", ev.Handle, ev.Active, ev.State)
	}
	if ev.Handle == input.InvalidHandle || !ev.Active {
		return
	}
	for _, b := range t.bindings {
		if b.handle != ev.Handle {
			continue
		}
		t.emit(Signal{
			Action:    b.action,
			Direction: b.direction,
			On:        ev.State,
			Time:      t.now(),
		})
	}
}

func (t *Translator) emit(sig Signal) {
	log.Println(sig.String())
	for _, sink := range t.sinks {
		sink(sig)
	}
}
