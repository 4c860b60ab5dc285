package postageapp

import (
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
)

// EnvPrefix is prepended to upper-cased parameter names and aliases to form
// environment variable names, e.g. POSTAGEAPP_API_KEY.
const EnvPrefix = "POSTAGEAPP_"

// param describes one configuration parameter.
type param struct {
	name    string
	aliases []string
	desc    string

	// noEnv excludes the parameter from environment lookup.
	noEnv bool
	// secret values are redacted by Settings.
	secret bool

	def   func() any
	parse parseFunc
	get   func(c *Configuration) any
	// store assigns an already-parsed value.
	store func(c *Configuration, v any)
	// afterSet runs after an explicit Set, never during resolution.
	afterSet func(c *Configuration)
}

func (p *param) sources() []string {
	return append([]string{p.name}, p.aliases...)
}

func (p *param) envVars() []string {
	if p.noEnv {
		return nil
	}
	vars := make([]string, 0, len(p.aliases)+1)
	for _, s := range p.sources() {
		vars = append(vars, EnvPrefix+strings.ToUpper(s))
	}
	return vars
}

func static(v any) func() any { return func() any { return v } }

var params = []*param{
	{
		name:   "api_key",
		desc:   "Project API key to use",
		secret: true,
		def:    static(""),
		parse:  parseString,
		get:    func(c *Configuration) any { return c.apiKey },
		store:  func(c *Configuration, v any) { c.apiKey = v.(string) },
	},
	{
		name:   "account_api_key",
		desc:   "Account API key to use",
		secret: true,
		def:    static(""),
		parse:  parseString,
		get:    func(c *Configuration) any { return c.accountAPIKey },
		store:  func(c *Configuration, v any) { c.accountAPIKey = v.(string) },
	},
	{
		name:    "postback_secret",
		aliases: []string{"webhook_secret"},
		desc:    "Secret used to verify inbound webhook signatures",
		secret:  true,
		def:     static(""),
		parse:   parseString,
		get:     func(c *Configuration) any { return c.postbackSecret },
		store:   func(c *Configuration, v any) { c.postbackSecret = v.(string) },
	},
	{
		name:  "project_root",
		desc:  "Project root for logging purposes",
		def:   defaultProjectRoot,
		parse: parseString,
		get:   func(c *Configuration) any { return c.projectRoot },
		store: func(c *Configuration, v any) { c.projectRoot = v.(string) },
	},
	{
		name:  "recipient_override",
		desc:  "Override recipients on send_message calls",
		def:   static(""),
		parse: parseString,
		get:   func(c *Configuration) any { return c.recipientOverride },
		store: func(c *Configuration, v any) { c.recipientOverride = v.(string) },
	},
	{
		name:  "logger",
		desc:  "Logger instance to use",
		noEnv: true,
		def:   func() any { return (*slog.Logger)(nil) },
		parse: parseLogger,
		get:   func(c *Configuration) any { return c.Logger() },
		store: func(c *Configuration, v any) { c.logger = v.(*slog.Logger) },
	},
	{
		name:     "secure",
		desc:     "Use HTTPS connections",
		noEnv:    true,
		def:      static(true),
		parse:    parseBool,
		get:      func(c *Configuration) any { return c.secure },
		store:    func(c *Configuration, v any) { c.secure = v.(bool) },
		afterSet: (*Configuration).syncSchemeAndPort,
	},
	{
		name:    "verify_tls",
		aliases: []string{"verify_certificate"},
		desc:    "Enable TLS certificate verification",
		def:     static(true),
		parse:   parseBool,
		get:     func(c *Configuration) any { return c.verifyTLS },
		store:   func(c *Configuration, v any) { c.verifyTLS = v.(bool) },
	},
	{
		name:  "host",
		desc:  "API host to contact",
		def:   static(DefaultHost),
		parse: parseString,
		get:   func(c *Configuration) any { return c.host },
		store: func(c *Configuration, v any) { c.host = v.(string) },
	},
	{
		name:  "port",
		desc:  "API port to contact",
		def:   static(HTTPSPortDefault),
		parse: parseInt,
		get:   func(c *Configuration) any { return c.port },
		store: func(c *Configuration, v any) { c.port = v.(int) },
	},
	{
		name:    "scheme",
		aliases: []string{"protocol"},
		desc:    "HTTP scheme to use",
		def:     static("https"),
		parse:   parseString,
		get:     func(c *Configuration) any { return c.scheme },
		store:   func(c *Configuration, v any) { c.scheme = v.(string) },
	},
	{
		name:    "proxy_username",
		aliases: []string{"proxy_user"},
		desc:    "SOCKS5 proxy username",
		def:     static(""),
		parse:   parseString,
		get:     func(c *Configuration) any { return c.proxyUsername },
		store:   func(c *Configuration, v any) { c.proxyUsername = v.(string) },
	},
	{
		name:    "proxy_password",
		aliases: []string{"proxy_pass"},
		desc:    "SOCKS5 proxy password",
		secret:  true,
		def:     static(""),
		parse:   parseString,
		get:     func(c *Configuration) any { return c.proxyPassword },
		store:   func(c *Configuration, v any) { c.proxyPassword = v.(string) },
	},
	{
		name:  "proxy_host",
		desc:  "SOCKS5 proxy host",
		def:   static(""),
		parse: parseString,
		get:   func(c *Configuration) any { return c.proxyHost },
		store: func(c *Configuration, v any) { c.proxyHost = v.(string) },
	},
	{
		name:  "proxy_port",
		desc:  "SOCKS5 proxy port",
		def:   static(SOCKS5PortDefault),
		parse: parseInt,
		get:   func(c *Configuration) any { return c.proxyPort },
		store: func(c *Configuration, v any) { c.proxyPort = v.(int) },
	},
	{
		name:    "open_timeout",
		aliases: []string{"http_open_timeout"},
		desc:    "Timeout in seconds when initiating requests",
		def:     static(5),
		parse:   parseInt,
		get:     func(c *Configuration) any { return c.openTimeout },
		store:   func(c *Configuration, v any) { c.openTimeout = v.(int) },
	},
	{
		name:    "read_timeout",
		aliases: []string{"http_read_timeout"},
		desc:    "Timeout in seconds when awaiting responses",
		def:     static(10),
		parse:   parseInt,
		get:     func(c *Configuration) any { return c.readTimeout },
		store:   func(c *Configuration, v any) { c.readTimeout = v.(int) },
	},
	{
		name:    "retry_methods",
		aliases: []string{"requests_to_resend"},
		desc:    "Which API calls to retry, comma and/or space separated",
		def:     func() any { return []string{"send_message"} },
		parse:   parseMethodSet,
		get:     func(c *Configuration) any { return c.RetryMethods() },
		store:   func(c *Configuration, v any) { c.retryMethods = v.([]string) },
	},
	{
		name:  "framework",
		desc:  "Framework used",
		def:   func() any { return "Go " + strings.TrimPrefix(runtime.Version(), "go") },
		parse: parseString,
		get:   func(c *Configuration) any { return c.framework },
		store: func(c *Configuration, v any) { c.framework = v.(string) },
	},
	{
		name:  "environment",
		desc:  "Environment to use",
		def:   static("production"),
		parse: parseString,
		get:   func(c *Configuration) any { return c.environment },
		store: func(c *Configuration, v any) { c.environment = v.(string) },
	},
}

// paramIndex maps every name and alias to its descriptor.
var paramIndex = func() map[string]*param {
	idx := make(map[string]*param)
	for _, p := range params {
		for _, s := range p.sources() {
			idx[s] = p
		}
	}
	return idx
}()

func defaultProjectRoot() any {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func parseLogger(v any) (any, error) {
	switch l := v.(type) {
	case nil:
		return (*slog.Logger)(nil), nil
	case *slog.Logger:
		return l, nil
	default:
		return nil, ErrInvalidValue
	}
}

// ParamInfo describes a configuration parameter for tooling.
type ParamInfo struct {
	Name        string
	Aliases     []string
	EnvVars     []string
	Description string
	Secret      bool
}

// Params lists the declared parameters in declaration order.
func Params() []ParamInfo {
	out := make([]ParamInfo, 0, len(params))
	for _, p := range params {
		out = append(out, ParamInfo{
			Name:        p.name,
			Aliases:     append([]string(nil), p.aliases...),
			EnvVars:     p.envVars(),
			Description: p.desc,
			Secret:      p.secret,
		})
	}
	return out
}

// Get returns the value of the parameter called name, which may be an
// alias.
func (c *Configuration) Get(name string) (any, error) {
	p, ok := paramIndex[name]
	if !ok {
		return nil, &ParamError{Param: name, Err: ErrUnknownParam}
	}
	return p.get(c), nil
}

// Set parses value with the parameter's parser, stores it and runs the
// parameter's derived-state hook. name may be an alias.
func (c *Configuration) Set(name string, value any) error {
	p, ok := paramIndex[name]
	if !ok {
		return &ParamError{Param: name, Value: value, Err: ErrUnknownParam}
	}
	parsed, err := p.parse(value)
	if err != nil {
		return &ParamError{Param: name, Value: value, Err: ErrInvalidValue}
	}
	p.store(c, parsed)
	if p.afterSet != nil {
		p.afterSet(c)
	}
	return nil
}

// Settings returns every parameter keyed by canonical name. Secret values
// are replaced by "[redacted]" unless they are empty.
func (c *Configuration) Settings() map[string]any {
	out := make(map[string]any, len(params))
	for _, p := range params {
		v := p.get(c)
		if p.secret && v != "" {
			v = "[redacted]"
		}
		out[p.name] = v
	}
	return out
}

// SettingNames returns the canonical parameter names sorted.
func SettingNames() []string {
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.name)
	}
	sort.Strings(names)
	return names
}

// Resolve builds a Configuration. Each parameter takes the first non-empty
// value found under its name or aliases in the credential store, then in
// the POSTAGEAPP_* environment, and otherwise its default. Sourced values
// go through the parameter's parser; values the parser rejects are
// skipped. Resolve never fails.
func Resolve(opts ...ResolveOption) *Configuration {
	r := &resolver{lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(r)
	}

	c := &Configuration{}
	for _, p := range params {
		if v, ok := r.find(p); ok {
			p.store(c, v)
			continue
		}
		p.store(c, p.def())
	}

	for _, fn := range r.configure {
		fn(c)
	}
	return c
}

func (r *resolver) find(p *param) (any, bool) {
	if r.store != nil {
		for _, key := range p.sources() {
			raw, ok := r.store.Lookup(key)
			if !ok || isBlank(raw) {
				continue
			}
			if v, err := p.parse(raw); err == nil {
				return v, true
			}
		}
	}
	if r.lookup != nil {
		for _, name := range p.envVars() {
			raw, ok := r.lookup(name)
			if !ok || raw == "" {
				continue
			}
			if v, err := p.parse(raw); err == nil {
				return v, true
			}
		}
	}
	return nil, false
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	default:
		return false
	}
}

var (
	defaultMu     sync.Mutex
	defaultConfig *Configuration
)

// Init resolves a Configuration with opts and installs it as the process
// default, replacing any previous one.
func Init(opts ...ResolveOption) *Configuration {
	c := Resolve(opts...)
	defaultMu.Lock()
	defaultConfig = c
	defaultMu.Unlock()
	return c
}

// Default returns the process-wide Configuration, resolving it from the
// environment on first use.
func Default() *Configuration {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultConfig == nil {
		defaultConfig = Resolve()
	}
	return defaultConfig
}

// ResetDefault drops the process-wide Configuration so the next Default
// call resolves it again.
func ResetDefault() {
	defaultMu.Lock()
	defaultConfig = nil
	defaultMu.Unlock()
}
