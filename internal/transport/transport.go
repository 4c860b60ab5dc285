// Package transport builds the HTTP client used for API calls from the
// network settings of a configuration.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

// Settings are the network parameters the HTTP client honours.
type Settings struct {
	// OpenTimeout bounds connection setup, including the TLS handshake.
	OpenTimeout time.Duration

	// ReadTimeout bounds the wait for the reply once the request is sent.
	ReadTimeout time.Duration

	// VerifyTLS enables server certificate verification.
	VerifyTLS bool

	// ProxyAddr is the host:port of a SOCKS5 proxy. Empty means direct.
	ProxyAddr string

	// ProxyUsername and ProxyPassword authenticate against the proxy.
	ProxyUsername string
	ProxyPassword string
}

// NewHTTPClient returns an *http.Client configured from s. Every failure
// it can produce while exchanging a request surfaces as an error from Do
// or from reading the body.
func NewHTTPClient(s Settings) (*http.Client, error) {
	dialer := &net.Dialer{
		Timeout: s.OpenTimeout,
	}

	dial, err := dialContext(dialer, s)
	if err != nil {
		return nil, err
	}

	rt := &http.Transport{
		DialContext:           dial,
		TLSHandshakeTimeout:   s.OpenTimeout,
		ResponseHeaderTimeout: s.ReadTimeout,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: !s.VerifyTLS, //nolint:gosec // opt-out is a documented setting
		},
	}

	client := &http.Client{
		Transport: rt,
	}
	if s.OpenTimeout > 0 && s.ReadTimeout > 0 {
		client.Timeout = s.OpenTimeout + s.ReadTimeout
	}
	return client, nil
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

func dialContext(direct *net.Dialer, s Settings) (dialFunc, error) {
	if s.ProxyAddr == "" {
		return direct.DialContext, nil
	}

	var auth *proxy.Auth
	if s.ProxyUsername != "" {
		auth = &proxy.Auth{
			User:     s.ProxyUsername,
			Password: s.ProxyPassword,
		}
	}

	socks, err := proxy.SOCKS5("tcp", s.ProxyAddr, auth, direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer for %s: %w", s.ProxyAddr, err)
	}

	if cd, ok := socks.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return socks.Dial(network, addr)
	}, nil
}
