// Package inbound serves the endpoint PostageApp posts inbound email to.
//
// Each request is authenticated with the X-PostageApp-Signature header
// before its body is parsed. Authentication failures answer 401, bodies
// that fail to parse answer 422, and accepted messages are handed to an
// Ingestor and answered with 200.
package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lattiq/postageapp"
)

const (
	// DefaultPath is the route inbound email is posted to.
	DefaultPath = "/inbound_emails"

	// DefaultMaxBodySize is the largest accepted request body.
	DefaultMaxBodySize int64 = 25 << 20
)

// Ingestor receives authenticated inbound messages.
type Ingestor interface {
	// Ingest stores or processes the raw RFC 822 message.
	Ingest(ctx context.Context, message []byte) error
}

// IngestorFunc adapts a function to Ingestor.
type IngestorFunc func(ctx context.Context, message []byte) error

// Ingest calls f(ctx, message).
func (f IngestorFunc) Ingest(ctx context.Context, message []byte) error {
	return f(ctx, message)
}

// Option configures a Handler.
type Option func(*Handler)

// WithPath mounts the endpoint at path instead of DefaultPath.
func WithPath(path string) Option {
	return func(h *Handler) {
		h.path = path
	}
}

// WithMaxBodySize sets the largest accepted body.
func WithMaxBodySize(n int64) Option {
	return func(h *Handler) {
		h.maxBodySize = n
	}
}

// WithLogger sets the logger. It defaults to the configuration's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// Handler is an http.Handler for inbound email webhooks.
type Handler struct {
	secret      string
	ingestor    Ingestor
	logger      *slog.Logger
	path        string
	maxBodySize int64
	router      chi.Router
}

// New returns a Handler verifying requests with cfg's postback secret.
// Without a secret it returns postageapp.ErrMissingPostbackSecret: the
// endpoint must not start rather than accept or reject everything.
func New(cfg *postageapp.Configuration, ingestor Ingestor, opts ...Option) (*Handler, error) {
	secret, err := cfg.RequirePostbackSecret()
	if err != nil {
		return nil, err
	}
	if ingestor == nil {
		return nil, errors.New("inbound: ingestor is required")
	}

	h := &Handler{
		secret:      secret,
		ingestor:    ingestor,
		logger:      cfg.Logger(),
		path:        DefaultPath,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(h)
	}

	h.router = h.setupRoutes()
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) setupRoutes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Post(h.path, h.handleInbound)

	return r
}

// loggingMiddleware logs requests without their bodies.
func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.logger.Info("inbound request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

type envelope struct {
	InboundEmail *struct {
		Message *string `json:"message"`
	} `json:"inbound_email"`
}

func (h *Handler) handleInbound(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodySize+1))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if int64(len(body)) > h.maxBodySize {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		return
	}

	ok, err := postageapp.Verify(body, r.Header.Get(postageapp.SignatureHeader), h.secret)
	if err != nil || !ok {
		h.logger.Warn("inbound signature verification failed",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
		)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	message, err := extractMessage(body)
	if err != nil {
		h.logger.Error("inbound payload rejected", "error", err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	if err := h.ingestor.Ingest(r.Context(), message); err != nil {
		h.logger.Error("inbound ingest failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ErrMissingMessage indicates a well-formed body without
// inbound_email.message.
var ErrMissingMessage = errors.New("inbound: missing inbound_email.message")

func extractMessage(body []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if env.InboundEmail == nil || env.InboundEmail.Message == nil {
		return nil, ErrMissingMessage
	}
	return []byte(*env.InboundEmail.Message), nil
}
