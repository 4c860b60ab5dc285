package postageapp

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client built from the configuration's
// network settings.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithTracer sets the tracer used for call spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// WithLogger overrides the configuration's logger for this client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// ResolveOption is a functional option for Resolve and Init.
type ResolveOption func(*resolver)

type resolver struct {
	store     CredentialStore
	lookup    func(string) (string, bool)
	configure []func(*Configuration)
}

// WithCredentialStore consults store before the environment.
func WithCredentialStore(store CredentialStore) ResolveOption {
	return func(r *resolver) {
		r.store = store
	}
}

// WithEnvLookup replaces os.LookupEnv as the environment source.
func WithEnvLookup(lookup func(string) (string, bool)) ResolveOption {
	return func(r *resolver) {
		r.lookup = lookup
	}
}

// WithoutEnv disables the environment source.
func WithoutEnv() ResolveOption {
	return WithEnvLookup(func(string) (string, bool) { return "", false })
}

// Configure runs fn on the resolved Configuration before Resolve returns.
// Setters called from fn run their derived-state hooks, so
//
//	postageapp.Init(postageapp.Configure(func(c *postageapp.Configuration) {
//		c.SetSecure(false)
//	}))
//
// yields an http scheme on port 80.
func Configure(fn func(*Configuration)) ResolveOption {
	return func(r *resolver) {
		r.configure = append(r.configure, fn)
	}
}
