package postageapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lattiq/postageapp/internal/core"
	"github.com/lattiq/postageapp/internal/transport"
)

// Type aliases to re-export core types for the public API.
type (
	Status         = core.Status
	Payload        = core.Payload
	Response       = core.Response
	TransportError = core.TransportError
	ProtocolError  = core.ProtocolError
)

// Status constants
const (
	StatusOK    = core.StatusOK
	StatusFail  = core.StatusFail
	StatusError = core.StatusError
)

// Classify interprets a raw reply body. See core.Classify.
func Classify(body []byte) *Response {
	return core.Classify(body, 0)
}

// HTTPDoer is the subset of *http.Client used by Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client sends Requests to the API. All methods are safe for concurrent
// use; the Configuration must not be mutated while calls are in flight.
type Client struct {
	config     *Configuration
	httpClient HTTPDoer
	retry      *RetryPolicy
	tracer     trace.Tracer
	logger     *slog.Logger
}

// New creates a Client for cfg. A nil cfg means the process default
// Configuration. New fails only when the HTTP client cannot be built from
// the proxy settings.
func New(cfg *Configuration, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = Default()
	}

	c := &Client{
		config: cfg,
		retry:  NewRetryPolicy(cfg),
		tracer: otel.Tracer("github.com/lattiq/postageapp"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = cfg.Logger()
	}

	if c.httpClient == nil {
		httpClient, err := transport.NewHTTPClient(networkSettings(cfg))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		c.httpClient = httpClient
	}

	return c, nil
}

func networkSettings(cfg *Configuration) transport.Settings {
	s := transport.Settings{
		OpenTimeout: cfg.OpenTimeout(),
		ReadTimeout: cfg.ReadTimeout(),
		VerifyTLS:   cfg.VerifyTLS(),
	}
	if cfg.HasProxy() {
		s.ProxyAddr = cfg.ProxyAddr()
		s.ProxyUsername = cfg.ProxyUsername()
		s.ProxyPassword = cfg.ProxyPassword()
	}
	return s
}

// Config returns the client's Configuration.
func (c *Client) Config() *Configuration {
	return c.config
}

// NewRequest builds a Request bound to the client's Configuration.
func (c *Client) NewRequest(method string, args map[string]any) *Request {
	return NewRequest(c.config, method, args)
}

// Send builds a Request for method and args and sends it.
func (c *Client) Send(ctx context.Context, method string, args map[string]any) (*Response, error) {
	return c.Do(ctx, c.NewRequest(method, args))
}

// Do sends req and returns its terminal Response.
//
// A missing API key or unencodable arguments return a nil Response and an
// ErrConfiguration error before anything is sent. A transport failure is
// retried once, with the identical payload and UID, when the method is in
// retry_methods; when no attempt gets a reply the Response has status
// error and the returned error is a *TransportError. An unparseable or
// malformed reply yields status error and a *ProtocolError. A "fail" reply
// is a normal Response with a nil error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "postageapp.Client.Do")
	defer span.End()

	span.SetAttributes(
		attribute.String("postageapp.method", req.Method()),
		attribute.String("postageapp.uid", req.UID()),
		attribute.Bool("postageapp.retry_eligible", c.config.IsRetryMethod(req.Method())),
	)

	if req.APIKey() == "" {
		span.RecordError(ErrMissingAPIKey)
		span.SetStatus(codes.Error, "missing api key")
		return nil, ErrMissingAPIKey
	}

	// Encoded once so a retry resends identical bytes
	body, err := json.Marshal(req.WireArguments())
	if err != nil {
		err = fmt.Errorf("%w: failed to encode arguments for %s: %w", ErrConfiguration, req.Method(), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode failed")
		return nil, err
	}

	url := req.URL()
	logger := c.logger.With("method", req.Method(), "uid", req.UID())

	var (
		httpStatus int
		reply      []byte
	)
	attempts, err := c.retry.Do(ctx, req.Method(), func(attempt int) error {
		logger.Debug("postageapp request", "url", url, "attempt", attempt)

		var attemptErr error
		httpStatus, reply, attemptErr = c.post(ctx, url, body)
		if attemptErr != nil && attempt < c.retry.MaxAttempts(req.Method()) {
			logger.Warn("postageapp request failed, retrying", "attempt", attempt, "error", attemptErr)
		}
		return attemptErr
	})
	span.SetAttributes(attribute.Int("postageapp.attempts", attempts))

	if err != nil {
		terr := &TransportError{
			Method:   req.Method(),
			UID:      req.UID(),
			Attempts: attempts,
			Err:      err,
		}
		logger.Error("postageapp request failed", "attempts", attempts, "error", err)
		span.RecordError(terr)
		span.SetStatus(codes.Error, "transport failed")
		return core.NewErrorResponse(terr, 0, nil), terr
	}

	resp := core.Classify(reply, httpStatus)
	span.SetAttributes(
		attribute.Int("postageapp.http_status", httpStatus),
		attribute.String("postageapp.status", resp.Status.String()),
	)

	if resp.IsError() {
		logger.Error("postageapp response rejected", "http_status", httpStatus, "error", resp.Err)
		span.RecordError(resp.Err)
		span.SetStatus(codes.Error, "protocol error")
		return resp, resp.Err
	}

	logger.Debug("postageapp response", "status", resp.Status, "http_status", httpStatus)
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// post performs one attempt. Any error means no complete reply was read.
func (c *Client) post(ctx context.Context, url string, body []byte) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", UserAgent(c.config.Framework()))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer httpResp.Body.Close()

	reply, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return httpResp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return httpResp.StatusCode, reply, nil
}

// Send builds a request with the process default Configuration and sends
// it.
func Send(ctx context.Context, method string, args map[string]any) (*Response, error) {
	client, err := New(Default())
	if err != nil {
		return nil, err
	}
	return client.Send(ctx, method, args)
}
