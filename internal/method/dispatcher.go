// Package method routes named remote calls from the host application to
// their handlers.
//
// Method names parse to a Command tag and every tag has exactly one handler
// in the dispatcher's table. Argument problems are reported as
// INVALID_ARGUMENT, socket problems as UNAVAILABLE and unknown methods as
// NOT_IMPLEMENTED; Dispatch never panics on malformed input.
package method

import (
	"fmt"
	"log"

	"github.com/soar/padlink/internal/connection"
	"github.com/soar/padlink/internal/control"
)

// Endpoints is the connection state the dispatcher configures.
type Endpoints interface {
	SetAddress(host string, port int) (connection.Endpoint, error)
	ResetAddress() error
	Endpoint() (connection.Endpoint, bool)
}

// Controls looks up control gates by name.
type Controls interface {
	Lookup(name string) (*control.Gate, error)
}

// HandlerFunc runs one command. A nil result means no payload.
type HandlerFunc func(args map[string]any) (any, error)

// Dispatcher maps commands to handlers.
type Dispatcher struct {
	conn     Endpoints
	controls Controls
	handlers map[Command]HandlerFunc
}

// NewDispatcher builds the handler table.
func NewDispatcher(conn Endpoints, controls Controls) *Dispatcher {
	d := &Dispatcher{
		conn:     conn,
		controls: controls,
	}
	d.handlers = map[Command]HandlerFunc{
		CommandSetAddress:    d.setAddress,
		CommandResetAddress:  d.resetAddress,
		CommandGetAddress:    d.getAddress,
		CommandStopControl:   d.stopControl,
		CommandBlockControl:  d.blockControl,
		CommandResumeControl: d.resumeControl,
	}
	return d
}

// Dispatch runs a call and returns its response.
func (d *Dispatcher) Dispatch(call Call) Response {
	cmd, ok := ParseCommand(call.Method)
	if !ok {
		log.Printf("Method not implemented: %q", call.Method)
		return NotImplemented(call.Method)
	}
	h, ok := d.handlers[cmd]
	if !ok {
		return NotImplemented(call.Method)
	}

	result, err := h(call.Args)
	if err != nil {
		log.Printf("Method %s failed: %v", cmd, err)
		return Failure(err)
	}
	return Success(result)
}

// Has reports whether cmd has a handler.
func (d *Dispatcher) Has(cmd Command) bool {
	_, ok := d.handlers[cmd]
	return ok
}

func (d *Dispatcher) setAddress(args map[string]any) (any, error) {
	host, err := argString(args, "address")
	if err != nil {
		return nil, err
	}
	if !validHost(host) {
		return nil, fmt.Errorf("%w: address %q is not a network address", ErrInvalidArgument, host)
	}
	port, err := argPort(args, "port")
	if err != nil {
		return nil, err
	}

	if _, err := d.conn.SetAddress(host, port); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil, nil
}

func (d *Dispatcher) resetAddress(map[string]any) (any, error) {
	if err := d.conn.ResetAddress(); err != nil {
		log.Printf("Warning: closing socket: %v", err)
	}
	return nil, nil
}

func (d *Dispatcher) getAddress(map[string]any) (any, error) {
	ep, ok := d.conn.Endpoint()
	if !ok {
		return nil, nil
	}
	return ep, nil
}

func (d *Dispatcher) gate(args map[string]any) (*control.Gate, error) {
	name, err := argString(args, "control")
	if err != nil {
		return nil, err
	}
	g, err := d.controls.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return g, nil
}

func (d *Dispatcher) stopControl(args map[string]any) (any, error) {
	g, err := d.gate(args)
	if err != nil {
		return nil, err
	}
	g.Stop()
	return nil, nil
}

func (d *Dispatcher) blockControl(args map[string]any) (any, error) {
	g, err := d.gate(args)
	if err != nil {
		return nil, err
	}
	g.Block()
	return nil, nil
}

func (d *Dispatcher) resumeControl(args map[string]any) (any, error) {
	g, err := d.gate(args)
	if err != nil {
		return nil, err
	}
	safe, err := argBool(args, "safe")
	if err != nil {
		return nil, err
	}
	return g.Resume(safe), nil
}

// SetAddressCall builds the call that points the Endpoint at address:port.
func SetAddressCall(address string, port int) Call {
	return Call{
		Method: CommandSetAddress.String(),
		Args:   map[string]any{"address": address, "port": port},
	}
}
