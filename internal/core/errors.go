package core

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport indicates the HTTP exchange itself failed.
	ErrTransport = errors.New("postageapp: transport error")

	// ErrProtocol indicates the server replied with a body that could not be
	// interpreted.
	ErrProtocol = errors.New("postageapp: protocol error")
)

// Protocol error details.
const (
	DetailUnparseable      = "unparseable response"
	DetailMissingStatus    = "missing status"
	DetailUnexpectedStatus = "unexpected status"
)

// TransportError is returned when every permitted attempt of a call failed
// before a response body was received.
type TransportError struct {
	// Method is the API method being called.
	Method string

	// UID is the idempotency token shared by all attempts.
	UID string

	// Attempts is the number of attempts made.
	Attempts int

	// Err is the failure of the last attempt.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("postageapp: %s (uid %s) failed after %d attempt(s): %v",
		e.Method, e.UID, e.Attempts, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// ProtocolError represents a reply from an otherwise successful HTTP
// exchange that has an unexpected shape.
type ProtocolError struct {
	// Detail describes what was wrong with the body.
	Detail string

	// HTTPStatus is the status code of the reply.
	HTTPStatus int

	// Err is the decoding error, if any.
	Err error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("postageapp: %s (http %d)", e.Detail, e.HTTPStatus)
	}
	return "postageapp: " + e.Detail
}

// Unwrap returns the underlying error.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrProtocol.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}
