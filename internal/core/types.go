package core

// Status is the normalized outcome of an API call.
type Status string

const (
	// StatusOK indicates the server accepted the call.
	StatusOK Status = "ok"

	// StatusFail indicates the server processed the call and rejected it.
	// This is an application-level outcome, not an error.
	StatusFail Status = "fail"

	// StatusError indicates no usable reply was obtained: the transport
	// failed or the body could not be interpreted.
	StatusError Status = "error"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the three statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOK, StatusFail, StatusError:
		return true
	default:
		return false
	}
}

// Payload is the JSON document posted for every call.
type Payload struct {
	APIKey    string         `json:"api_key"`
	UID       string         `json:"uid"`
	Arguments map[string]any `json:"arguments"`
}

// Response is the terminal result of one call. It is not modified after
// it is returned.
type Response struct {
	// Status is ok, fail or error.
	Status Status

	// UID is the idempotency token echoed by the server. Set only when
	// Status is ok.
	UID string

	// Data holds the reply body without its status and uid keys. Set only
	// when Status is ok.
	Data map[string]any

	// Err describes why Status is error: a *TransportError or a
	// *ProtocolError. Nil otherwise.
	Err error

	// HTTPStatus is the status code of the reply, 0 if none was received.
	HTTPStatus int

	// Body is the raw reply body, nil if none was received. Callers that
	// want failure diagnostics read them from here.
	Body []byte
}

// OK reports whether the call succeeded.
func (r *Response) OK() bool {
	return r != nil && r.Status == StatusOK
}

// Failed reports whether the server rejected the call.
func (r *Response) Failed() bool {
	return r != nil && r.Status == StatusFail
}

// IsError reports whether the call produced no usable reply.
func (r *Response) IsError() bool {
	return r == nil || r.Status == StatusError
}

// NewErrorResponse returns an error-status Response carrying err.
func NewErrorResponse(err error, httpStatus int, body []byte) *Response {
	return &Response{
		Status:     StatusError,
		Err:        err,
		HTTPStatus: httpStatus,
		Body:       body,
	}
}
