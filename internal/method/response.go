package method

import (
	"errors"
	"fmt"
)

// Normalized dispatcher errors. Their text is the wire code.
var (
	ErrInvalidArgument = errors.New("INVALID_ARGUMENT")
	ErrUnavailable     = errors.New("UNAVAILABLE")
	ErrNotImplemented  = errors.New("NOT_IMPLEMENTED")
)

// Status is the outcome of a call.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusError          Status = "error"
	StatusNotImplemented Status = "not_implemented"
)

// Call is one inbound remote call.
type Call struct {
	Method string         `json:"method"`
	Args   map[string]any `json:"args,omitempty"`
}

// Error is the wire form of a failed call.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is the outcome of a call.
type Response struct {
	Status Status `json:"status"`
	Result any    `json:"result,omitempty"`
	Error  *Error `json:"error,omitempty"`
}

// Success returns a successful response carrying result, which may be nil.
func Success(result any) Response {
	return Response{Status: StatusSuccess, Result: result}
}

// NotImplemented is the response for methods the dispatcher does not know.
func NotImplemented(method string) Response {
	return Response{
		Status: StatusNotImplemented,
		Error: &Error{
			Code:    ErrNotImplemented.Error(),
			Message: fmt.Sprintf("method %q is not implemented", method),
		},
	}
}

// Failure converts err into an error response. Errors that do not wrap one
// of the normalized errors are reported as UNAVAILABLE.
func Failure(err error) Response {
	code := ErrUnavailable
	switch {
	case errors.Is(err, ErrInvalidArgument):
		code = ErrInvalidArgument
	case errors.Is(err, ErrNotImplemented):
		code = ErrNotImplemented
	}
	return Response{
		Status: StatusError,
		Error:  &Error{Code: code.Error(), Message: err.Error()},
	}
}

// OK reports whether the call succeeded.
func (r Response) OK() bool {
	return r.Status == StatusSuccess
}
