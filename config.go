package postageapp

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"
)

// Canonical ports used by the port/scheme coupling.
const (
	HTTPPortDefault   = 80
	HTTPSPortDefault  = 443
	SOCKS5PortDefault = 1080

	// DefaultHost is the PostageApp API host.
	DefaultHost = "api.postageapp.com"
)

// Configuration holds the settings used to reach the API and to verify
// inbound webhooks. A Configuration is read-mostly: it is resolved once
// and then shared by every Request and Client built from it. Setters are
// not synchronised; callers that change settings after startup must not
// race them with readers.
type Configuration struct {
	apiKey            string
	accountAPIKey     string
	postbackSecret    string
	projectRoot       string
	recipientOverride string
	logger            *slog.Logger

	secure    bool
	verifyTLS bool
	host      string
	port      int
	scheme    string

	proxyUsername string
	proxyPassword string
	proxyHost     string
	proxyPort     int

	openTimeout int
	readTimeout int

	retryMethods []string
	framework    string
	environment  string
}

// APIKey returns the project API key.
func (c *Configuration) APIKey() string { return c.apiKey }

// SetAPIKey sets the project API key.
func (c *Configuration) SetAPIKey(v string) { c.apiKey = v }

// AccountAPIKey returns the account API key.
func (c *Configuration) AccountAPIKey() string { return c.accountAPIKey }

// SetAccountAPIKey sets the account API key.
func (c *Configuration) SetAccountAPIKey(v string) { c.accountAPIKey = v }

// PostbackSecret returns the secret used to sign inbound webhooks.
func (c *Configuration) PostbackSecret() string { return c.postbackSecret }

// SetPostbackSecret sets the webhook secret.
func (c *Configuration) SetPostbackSecret(v string) { c.postbackSecret = v }

// ProjectRoot returns the base path of the embedding project.
func (c *Configuration) ProjectRoot() string { return c.projectRoot }

// SetProjectRoot sets the project root.
func (c *Configuration) SetProjectRoot(v string) { c.projectRoot = v }

// RecipientOverride returns the address that replaces the recipients of
// every send_message call, or "" when unset.
func (c *Configuration) RecipientOverride() string { return c.recipientOverride }

// HasRecipientOverride reports whether a recipient override is set.
func (c *Configuration) HasRecipientOverride() bool { return c.recipientOverride != "" }

// SetRecipientOverride sets the recipient override.
func (c *Configuration) SetRecipientOverride(v string) { c.recipientOverride = v }

// Logger returns the configured logger. It is never nil.
func (c *Configuration) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// SetLogger sets the logger. A nil logger restores slog.Default.
func (c *Configuration) SetLogger(l *slog.Logger) { c.logger = l }

// Secure reports whether HTTPS is used.
func (c *Configuration) Secure() bool { return c.secure }

// SetSecure switches between HTTPS and HTTP. The scheme follows the flag,
// and the port moves between 443 and 80 when it is at the other scheme's
// default. Any other port is left alone.
func (c *Configuration) SetSecure(v bool) {
	c.secure = v
	c.syncSchemeAndPort()
}

func (c *Configuration) syncSchemeAndPort() {
	if c.secure {
		c.scheme = "https"
		if c.port == HTTPPortDefault {
			c.port = HTTPSPortDefault
		}
		return
	}
	c.scheme = "http"
	if c.port == HTTPSPortDefault {
		c.port = HTTPPortDefault
	}
}

// VerifyTLS reports whether server certificates are verified.
func (c *Configuration) VerifyTLS() bool { return c.verifyTLS }

// SetVerifyTLS enables or disables certificate verification.
func (c *Configuration) SetVerifyTLS(v bool) { c.verifyTLS = v }

// Host returns the API host.
func (c *Configuration) Host() string { return c.host }

// SetHost sets the API host.
func (c *Configuration) SetHost(v string) { c.host = v }

// Port returns the API port.
func (c *Configuration) Port() int { return c.port }

// SetPort sets the API port.
func (c *Configuration) SetPort(v int) { c.port = v }

// Scheme returns the URL scheme, "https" or "http".
func (c *Configuration) Scheme() string { return c.scheme }

// SetScheme sets the URL scheme.
func (c *Configuration) SetScheme(v string) { c.scheme = v }

// ProxyUsername returns the SOCKS5 proxy username.
func (c *Configuration) ProxyUsername() string { return c.proxyUsername }

// SetProxyUsername sets the SOCKS5 proxy username.
func (c *Configuration) SetProxyUsername(v string) { c.proxyUsername = v }

// ProxyPassword returns the SOCKS5 proxy password.
func (c *Configuration) ProxyPassword() string { return c.proxyPassword }

// SetProxyPassword sets the SOCKS5 proxy password.
func (c *Configuration) SetProxyPassword(v string) { c.proxyPassword = v }

// ProxyHost returns the SOCKS5 proxy host.
func (c *Configuration) ProxyHost() string { return c.proxyHost }

// SetProxyHost sets the SOCKS5 proxy host.
func (c *Configuration) SetProxyHost(v string) { c.proxyHost = v }

// ProxyPort returns the SOCKS5 proxy port.
func (c *Configuration) ProxyPort() int { return c.proxyPort }

// SetProxyPort sets the SOCKS5 proxy port.
func (c *Configuration) SetProxyPort(v int) { c.proxyPort = v }

// OpenTimeout returns the connect timeout.
func (c *Configuration) OpenTimeout() time.Duration {
	return time.Duration(c.openTimeout) * time.Second
}

// SetOpenTimeout sets the connect timeout, truncated to whole seconds.
func (c *Configuration) SetOpenTimeout(d time.Duration) { c.openTimeout = int(d / time.Second) }

// ReadTimeout returns the time allowed for the server's reply.
func (c *Configuration) ReadTimeout() time.Duration {
	return time.Duration(c.readTimeout) * time.Second
}

// SetReadTimeout sets the read timeout, truncated to whole seconds.
func (c *Configuration) SetReadTimeout(d time.Duration) { c.readTimeout = int(d / time.Second) }

// RetryMethods returns the API methods that are retried once on transport
// failure, in declaration order.
func (c *Configuration) RetryMethods() []string {
	out := make([]string, len(c.retryMethods))
	copy(out, c.retryMethods)
	return out
}

// SetRetryMethods replaces the retry-eligible methods. Blank and duplicate
// names are dropped.
func (c *Configuration) SetRetryMethods(methods ...string) {
	set, _ := parseMethodSet(methods)
	c.retryMethods = set.([]string)
}

// IsRetryMethod reports whether method is retry-eligible.
func (c *Configuration) IsRetryMethod(method string) bool {
	for _, m := range c.retryMethods {
		if m == method {
			return true
		}
	}
	return false
}

// Framework returns the label reported in the User-Agent.
func (c *Configuration) Framework() string { return c.framework }

// SetFramework sets the framework label.
func (c *Configuration) SetFramework(v string) { c.framework = v }

// Environment returns the operational mode, typically "production".
func (c *Configuration) Environment() string { return c.environment }

// SetEnvironment sets the environment label.
func (c *Configuration) SetEnvironment(v string) { c.environment = v }

// IsDefaultPort reports whether the port is the canonical port for the
// current scheme: 443 for https, 80 for http.
func (c *Configuration) IsDefaultPort() bool {
	switch strings.ToLower(c.scheme) {
	case "https":
		return c.port == HTTPSPortDefault
	case "http":
		return c.port == HTTPPortDefault
	default:
		return false
	}
}

// HasProxy reports whether a proxy host without whitespace is configured.
func (c *Configuration) HasProxy() bool {
	return c.proxyHost != "" && !strings.ContainsAny(c.proxyHost, " \t\r\n\f\v")
}

// ProxyAddr returns host:port of the configured proxy.
func (c *Configuration) ProxyAddr() string {
	return net.JoinHostPort(c.proxyHost, strconv.Itoa(c.proxyPort))
}

// URL returns the API endpoint, scheme://host[:port], with the port left
// out when it is the scheme's default.
func (c *Configuration) URL() string {
	if c.IsDefaultPort() {
		return fmt.Sprintf("%s://%s", c.scheme, c.host)
	}
	return fmt.Sprintf("%s://%s:%d", c.scheme, c.host, c.port)
}

// RequireAPIKey returns the API key or ErrMissingAPIKey.
func (c *Configuration) RequireAPIKey() (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	return c.apiKey, nil
}

// RequirePostbackSecret returns the webhook secret or
// ErrMissingPostbackSecret.
func (c *Configuration) RequirePostbackSecret() (string, error) {
	if c.postbackSecret == "" {
		return "", ErrMissingPostbackSecret
	}
	return c.postbackSecret, nil
}

// Clone returns an independent copy.
func (c *Configuration) Clone() *Configuration {
	out := *c
	out.retryMethods = c.RetryMethods()
	return &out
}
