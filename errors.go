package postageapp

import (
	"errors"
	"fmt"

	"github.com/lattiq/postageapp/internal/core"
)

// Predefined sentinel errors for common cases.
var (
	// ErrConfiguration indicates a setting required by the requested operation
	// is absent or invalid. It is never retried.
	ErrConfiguration = errors.New("postageapp: configuration error")

	// ErrMissingAPIKey indicates no API key was configured or supplied.
	ErrMissingAPIKey = fmt.Errorf("%w: missing api_key", ErrConfiguration)

	// ErrMissingPostbackSecret indicates webhook verification was requested
	// without a postback secret.
	ErrMissingPostbackSecret = fmt.Errorf("%w: missing postback_secret", ErrConfiguration)

	// ErrUnknownParam indicates a parameter name or alias that is not declared.
	ErrUnknownParam = fmt.Errorf("%w: unknown parameter", ErrConfiguration)

	// ErrInvalidValue indicates a value that cannot be stored in a parameter.
	ErrInvalidValue = fmt.Errorf("%w: invalid value", ErrConfiguration)

	// ErrTransport indicates the HTTP exchange itself failed.
	ErrTransport = core.ErrTransport

	// ErrProtocol indicates the server replied with a body that could not be
	// interpreted.
	ErrProtocol = core.ErrProtocol
)

// ParamError describes a failed Set on a configuration parameter.
type ParamError struct {
	// Param is the name (or alias) that was set.
	Param string

	// Value is the rejected value.
	Value any

	// Err is ErrUnknownParam or ErrInvalidValue.
	Err error
}

// Error implements the error interface.
func (e *ParamError) Error() string {
	if errors.Is(e.Err, ErrUnknownParam) {
		return fmt.Sprintf("postageapp: unknown parameter %q", e.Param)
	}
	return fmt.Sprintf("postageapp: invalid value %v (%T) for %s", e.Value, e.Value, e.Param)
}

// Unwrap returns the underlying error.
func (e *ParamError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err was caused by missing or invalid
// settings.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsTransportError reports whether err is a failed HTTP exchange.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsProtocolError reports whether err is an unparseable or malformed reply.
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrProtocol)
}
