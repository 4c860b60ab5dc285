package postageapp

import (
	"fmt"
	"maps"
)

// Reserved argument keys promoted to top-level payload fields.
const (
	argAPIKey = "api_key"
	argUID    = "uid"
)

// MethodSendMessage is the API method that delivers a message.
const MethodSendMessage = "send_message"

// Request is a single API call: a method, its arguments, the API key used
// to authenticate it and the UID that makes it idempotent.
type Request struct {
	config    *Configuration
	method    string
	arguments map[string]any
	apiKey    string
	uid       string
}

// NewRequest builds a request for method. An "api_key" entry in args
// overrides the configured key for this request only, and a "uid" entry is
// used as the request UID; both are removed from the arguments. Otherwise
// a fresh UID is generated. args itself is not modified. A nil cfg means
// the process default Configuration.
func NewRequest(cfg *Configuration, method string, args map[string]any) *Request {
	if cfg == nil {
		cfg = Default()
	}

	r := &Request{
		config: cfg,
		method: method,
		apiKey: cfg.APIKey(),
	}

	arguments := maps.Clone(args)
	if arguments == nil {
		arguments = make(map[string]any)
	}
	if v, ok := arguments[argAPIKey]; ok {
		r.apiKey = stringify(v)
		delete(arguments, argAPIKey)
	}
	if v, ok := arguments[argUID]; ok {
		r.uid = stringify(v)
		delete(arguments, argUID)
	}
	r.arguments = arguments

	if r.uid == "" {
		r.uid = NewUID(method)
	}
	return r
}

func stringify(v any) string {
	if s, err := parseString(v); err == nil {
		return s.(string)
	}
	return fmt.Sprint(v)
}

// Method returns the API method name.
func (r *Request) Method() string {
	return r.method
}

// Config returns the Configuration the request was built with.
func (r *Request) Config() *Configuration {
	return r.config
}

// Arguments returns a copy of the call arguments.
func (r *Request) Arguments() map[string]any {
	return maps.Clone(r.arguments)
}

// SetArguments replaces the arguments wholesale. The UID and API key are
// unaffected; reserved keys in args are dropped.
func (r *Request) SetArguments(args map[string]any) {
	arguments := maps.Clone(args)
	if arguments == nil {
		arguments = make(map[string]any)
	}
	delete(arguments, argAPIKey)
	delete(arguments, argUID)
	r.arguments = arguments
}

// APIKey returns the key that authenticates this request.
func (r *Request) APIKey() string {
	return r.apiKey
}

// SetAPIKey overrides the API key for this request.
func (r *Request) SetAPIKey(key string) {
	r.apiKey = key
}

// UID returns the request's idempotency token.
func (r *Request) UID() string {
	return r.uid
}

// SetUID replaces the request's UID.
func (r *Request) SetUID(uid string) {
	r.uid = uid
}

// RegenerateUID assigns and returns a new UID different from the current
// one.
func (r *Request) RegenerateUID() string {
	prev := r.uid
	for r.uid == prev {
		r.uid = NewUID(r.method)
	}
	return r.uid
}

// WireArguments returns the exact payload sent to the API. When a
// recipient override is configured, send_message recipients are replaced
// by the override address in the payload only.
func (r *Request) WireArguments() Payload {
	arguments := maps.Clone(r.arguments)
	if r.method == MethodSendMessage && r.config.HasRecipientOverride() {
		arguments["recipients"] = r.config.RecipientOverride()
	}
	return Payload{
		APIKey:    r.apiKey,
		UID:       r.uid,
		Arguments: arguments,
	}
}

// Path returns the endpoint path, /v.<major>.<minor>/<method>.json.
func (r *Request) Path() string {
	return fmt.Sprintf("/v.%s/%s.json", APIVersion, r.method)
}

// URL returns the full endpoint URL for the request.
func (r *Request) URL() string {
	return r.config.URL() + r.Path()
}
