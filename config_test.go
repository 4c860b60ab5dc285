package postageapp

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(vars map[string]string) ResolveOption {
	return WithEnvLookup(func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	})
}

func TestResolve_Defaults(t *testing.T) {
	cfg := Resolve(WithoutEnv())

	assert.Equal(t, "", cfg.APIKey())
	assert.Equal(t, "", cfg.PostbackSecret())
	assert.True(t, cfg.Secure())
	assert.True(t, cfg.VerifyTLS())
	assert.Equal(t, DefaultHost, cfg.Host())
	assert.Equal(t, 443, cfg.Port())
	assert.Equal(t, "https", cfg.Scheme())
	assert.Equal(t, 1080, cfg.ProxyPort())
	assert.Equal(t, 5*time.Second, cfg.OpenTimeout())
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout())
	assert.Equal(t, []string{"send_message"}, cfg.RetryMethods())
	assert.Equal(t, "production", cfg.Environment())
	assert.Contains(t, cfg.Framework(), "Go ")
	assert.NotEmpty(t, cfg.ProjectRoot())
	assert.NotNil(t, cfg.Logger())
	assert.Equal(t, "https://api.postageapp.com", cfg.URL())
}

func TestResolve_Precedence(t *testing.T) {
	store := CredentialFunc(func(key string) (any, bool) {
		if key == "api_key" {
			return "from-store", true
		}
		return nil, false
	})
	env := envMap(map[string]string{
		"POSTAGEAPP_API_KEY": "from-env",
		"POSTAGEAPP_HOST":    "api.example.test",
	})

	cfg := Resolve(WithCredentialStore(store), env)

	assert.Equal(t, "from-store", cfg.APIKey())
	assert.Equal(t, "api.example.test", cfg.Host())
	assert.Equal(t, "production", cfg.Environment())
}

func TestResolve_BlankValuesFallThrough(t *testing.T) {
	store := CredentialFunc(func(key string) (any, bool) {
		if key == "api_key" {
			return "", true
		}
		return nil, false
	})
	env := envMap(map[string]string{
		"POSTAGEAPP_API_KEY": "",
		"POSTAGEAPP_HOST":    "",
	})

	cfg := Resolve(WithCredentialStore(store), env)

	assert.Equal(t, "", cfg.APIKey())
	assert.Equal(t, DefaultHost, cfg.Host())
}

func TestResolve_Aliases(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg *Configuration)
	}{
		{
			name: "requests_to_resend",
			env:  map[string]string{"POSTAGEAPP_REQUESTS_TO_RESEND": "send_message, get_message_receipt"},
			check: func(t *testing.T, cfg *Configuration) {
				assert.Equal(t, []string{"send_message", "get_message_receipt"}, cfg.RetryMethods())
			},
		},
		{
			name: "verify_certificate",
			env:  map[string]string{"POSTAGEAPP_VERIFY_CERTIFICATE": "no"},
			check: func(t *testing.T, cfg *Configuration) {
				assert.False(t, cfg.VerifyTLS())
			},
		},
		{
			name: "http_open_timeout",
			env:  map[string]string{"POSTAGEAPP_HTTP_OPEN_TIMEOUT": "12"},
			check: func(t *testing.T, cfg *Configuration) {
				assert.Equal(t, 12*time.Second, cfg.OpenTimeout())
			},
		},
		{
			name: "name wins over alias",
			env: map[string]string{
				"POSTAGEAPP_SCHEME":   "http",
				"POSTAGEAPP_PROTOCOL": "https",
			},
			check: func(t *testing.T, cfg *Configuration) {
				assert.Equal(t, "http", cfg.Scheme())
			},
		},
		{
			name: "webhook_secret",
			env:  map[string]string{"POSTAGEAPP_WEBHOOK_SECRET": "shh"},
			check: func(t *testing.T, cfg *Configuration) {
				assert.Equal(t, "shh", cfg.PostbackSecret())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Resolve(envMap(tt.env)))
		})
	}
}

func TestResolve_SkipsNonEnvParams(t *testing.T) {
	cfg := Resolve(envMap(map[string]string{
		"POSTAGEAPP_SECURE": "false",
		"POSTAGEAPP_LOGGER": "stdout",
	}))

	assert.True(t, cfg.Secure())
	assert.Equal(t, slog.Default(), cfg.Logger())
}

func TestResolve_StoreValuesAreParsed(t *testing.T) {
	store := CredentialFunc(func(key string) (any, bool) {
		switch key {
		case "port":
			return "8443", true
		case "verify_tls":
			return "on", true
		case "retry_methods":
			return []any{"send_message", "send_message", "get_account_info"}, true
		case "secure":
			return false, true
		}
		return nil, false
	})

	cfg := Resolve(WithCredentialStore(store), WithoutEnv())

	assert.Equal(t, 8443, cfg.Port())
	assert.True(t, cfg.VerifyTLS())
	assert.Equal(t, []string{"send_message", "get_account_info"}, cfg.RetryMethods())
	assert.False(t, cfg.Secure())
	// hooks do not run during resolution
	assert.Equal(t, "https", cfg.Scheme())
}

func TestResolve_InvalidStoreValueFallsThrough(t *testing.T) {
	store := CredentialFunc(func(key string) (any, bool) {
		if key == "host" {
			return map[string]any{"nested": true}, true
		}
		return nil, false
	})

	cfg := Resolve(WithCredentialStore(store), envMap(map[string]string{"POSTAGEAPP_HOST": "env.example.test"}))

	assert.Equal(t, "env.example.test", cfg.Host())
}

func TestConfigure_RunsHooks(t *testing.T) {
	cfg := Resolve(WithoutEnv(), Configure(func(c *Configuration) {
		c.SetSecure(false)
	}))

	assert.Equal(t, "http", cfg.Scheme())
	assert.Equal(t, 80, cfg.Port())
	assert.Equal(t, "http://api.postageapp.com", cfg.URL())
}

func TestSetSecure_PortSchemeCoupling(t *testing.T) {
	t.Run("https default to http", func(t *testing.T) {
		cfg := Resolve(WithoutEnv())
		cfg.SetSecure(false)
		assert.Equal(t, 80, cfg.Port())
		assert.Equal(t, "http", cfg.Scheme())
	})

	t.Run("http default to https", func(t *testing.T) {
		cfg := Resolve(WithoutEnv())
		cfg.SetSecure(false)
		cfg.SetSecure(true)
		assert.Equal(t, 443, cfg.Port())
		assert.Equal(t, "https", cfg.Scheme())
	})

	t.Run("explicit port untouched", func(t *testing.T) {
		cfg := Resolve(WithoutEnv())
		cfg.SetPort(8443)
		cfg.SetSecure(false)
		assert.Equal(t, 8443, cfg.Port())
		assert.Equal(t, "http", cfg.Scheme())
		cfg.SetSecure(true)
		assert.Equal(t, 8443, cfg.Port())
	})

	t.Run("generic setter runs hook", func(t *testing.T) {
		cfg := Resolve(WithoutEnv())
		require.NoError(t, cfg.Set("secure", "false"))
		assert.False(t, cfg.Secure())
		assert.Equal(t, 80, cfg.Port())
	})
}

func TestIsDefaultPortAndURL(t *testing.T) {
	tests := []struct {
		scheme  string
		port    int
		want    bool
		wantURL string
	}{
		{"https", 443, true, "https://api.postageapp.com"},
		{"https", 80, false, "https://api.postageapp.com:80"},
		{"http", 80, true, "http://api.postageapp.com"},
		{"http", 443, false, "http://api.postageapp.com:443"},
		{"https", 8443, false, "https://api.postageapp.com:8443"},
	}

	for _, tt := range tests {
		t.Run(tt.wantURL, func(t *testing.T) {
			cfg := Resolve(WithoutEnv())
			cfg.SetScheme(tt.scheme)
			cfg.SetPort(tt.port)
			assert.Equal(t, tt.want, cfg.IsDefaultPort())
			assert.Equal(t, tt.wantURL, cfg.URL())
		})
	}
}

func TestHasProxy(t *testing.T) {
	cfg := Resolve(WithoutEnv())
	assert.False(t, cfg.HasProxy())

	cfg.SetProxyHost("  ")
	assert.False(t, cfg.HasProxy())

	cfg.SetProxyHost("proxy.example.test")
	assert.True(t, cfg.HasProxy())
	assert.Equal(t, "proxy.example.test:1080", cfg.ProxyAddr())
}

func TestGetSet_Aliases(t *testing.T) {
	cfg := Resolve(WithoutEnv())

	require.NoError(t, cfg.Set("proxy_user", "alice"))
	v, err := cfg.Get("proxy_username")
	require.NoError(t, err)
	assert.Equal(t, "alice", v)

	require.NoError(t, cfg.Set("protocol", "http"))
	assert.Equal(t, "http", cfg.Scheme())

	require.NoError(t, cfg.Set("requests_to_resend", "a b,c"))
	v, err = cfg.Get("retry_methods")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, v)

	require.NoError(t, cfg.Set("http_read_timeout", "30"))
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout())
}

func TestSet_Errors(t *testing.T) {
	cfg := Resolve(WithoutEnv())

	err := cfg.Set("nope", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownParam)
	assert.True(t, IsConfigurationError(err))

	err = cfg.Set("logger", "stdout")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = cfg.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownParam)
}

func TestSettings_RedactsSecrets(t *testing.T) {
	cfg := Resolve(WithoutEnv())
	cfg.SetAPIKey("key")
	cfg.SetProxyPassword("pw")

	settings := cfg.Settings()

	assert.Equal(t, "[redacted]", settings["api_key"])
	assert.Equal(t, "[redacted]", settings["proxy_password"])
	assert.Equal(t, "", settings["postback_secret"])
	assert.Equal(t, DefaultHost, settings["host"])
	assert.Len(t, settings, len(SettingNames()))
}

func TestParams_EnvVars(t *testing.T) {
	byName := map[string]ParamInfo{}
	for _, p := range Params() {
		byName[p.Name] = p
	}

	assert.Equal(t, []string{"POSTAGEAPP_OPEN_TIMEOUT", "POSTAGEAPP_HTTP_OPEN_TIMEOUT"}, byName["open_timeout"].EnvVars)
	assert.Empty(t, byName["logger"].EnvVars)
	assert.Empty(t, byName["secure"].EnvVars)
	assert.True(t, byName["api_key"].Secret)
}

func TestRequireSecrets(t *testing.T) {
	cfg := Resolve(WithoutEnv())

	_, err := cfg.RequireAPIKey()
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = cfg.RequirePostbackSecret()
	assert.ErrorIs(t, err, ErrMissingPostbackSecret)

	cfg.SetAPIKey("k")
	key, err := cfg.RequireAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "k", key)
}

func TestDefaultLifecycle(t *testing.T) {
	t.Cleanup(ResetDefault)

	installed := Init(WithoutEnv(), Configure(func(c *Configuration) {
		c.SetAPIKey("process-key")
	}))
	assert.Same(t, installed, Default())
	assert.Equal(t, "process-key", Default().APIKey())

	ResetDefault()
	t.Setenv("POSTAGEAPP_API_KEY", "env-key")
	assert.Equal(t, "env-key", Default().APIKey())
	assert.Same(t, Default(), Default())
}

func TestClone(t *testing.T) {
	cfg := Resolve(WithoutEnv())
	clone := cfg.Clone()
	clone.SetRetryMethods("other")
	clone.SetHost("elsewhere")

	assert.Equal(t, []string{"send_message"}, cfg.RetryMethods())
	assert.Equal(t, DefaultHost, cfg.Host())
}
