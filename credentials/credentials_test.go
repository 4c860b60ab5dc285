package credentials

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattiq/postageapp"
)

const credentialsYAML = `
aws:
  access_key: ignored
postageapp:
  api_key: yaml-key
  port: 8443
  secure: false
  requests_to_resend: "send_message get_account_info"
`

func TestParseYAML(t *testing.T) {
	m, err := ParseYAML([]byte(credentialsYAML))
	require.NoError(t, err)

	v, ok := m.Lookup("api_key")
	assert.True(t, ok)
	assert.Equal(t, "yaml-key", v)

	v, ok = m.Lookup("port")
	assert.True(t, ok)
	assert.Equal(t, 8443, v)

	_, ok = m.Lookup("access_key")
	assert.False(t, ok)
}

func TestParseYAML_NoNamespace(t *testing.T) {
	m, err := ParseYAML([]byte("other:\n  key: v\n"))
	require.NoError(t, err)
	assert.Empty(t, m)

	_, err = ParseYAML([]byte("postageapp: [unclosed"))
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.yml")
	require.NoError(t, os.WriteFile(path, []byte(credentialsYAML), 0o600))

	m, err := LoadYAML(path)
	require.NoError(t, err)

	cfg := postageapp.Resolve(postageapp.WithoutEnv(), postageapp.WithCredentialStore(m))
	assert.Equal(t, "yaml-key", cfg.APIKey())
	assert.Equal(t, 8443, cfg.Port())
	assert.Equal(t, []string{"send_message", "get_account_info"}, cfg.RetryMethods())
}

func TestLoadYAML_MissingFile(t *testing.T) {
	m, err := LoadYAML(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Empty(t, m)
}

type fakeSecretsManager struct {
	secret *string
	err    error
	gotID  string
}

func (f *fakeSecretsManager) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.gotID = aws.ToString(in.SecretId)
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: f.secret}, nil
}

func TestLoadSecretsManager(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"namespaced", `{"postageapp":{"api_key":"sm-key","postback_secret":"sm-secret"}}`},
		{"top level", `{"api_key":"sm-key","postback_secret":"sm-secret"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSecretsManager{secret: aws.String(tt.secret)}

			m, err := LoadSecretsManager(context.Background(), "prod/postageapp", WithSecretsManagerClient(fake))
			require.NoError(t, err)
			assert.Equal(t, "prod/postageapp", fake.gotID)

			cfg := postageapp.Resolve(postageapp.WithoutEnv(), postageapp.WithCredentialStore(m))
			assert.Equal(t, "sm-key", cfg.APIKey())
			assert.Equal(t, "sm-secret", cfg.PostbackSecret())
		})
	}
}

func TestLoadSecretsManager_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := LoadSecretsManager(ctx, "")
	assert.Error(t, err)

	cause := errors.New("access denied")
	_, err = LoadSecretsManager(ctx, "id", WithSecretsManagerClient(&fakeSecretsManager{err: cause}))
	assert.ErrorIs(t, err, cause)

	_, err = LoadSecretsManager(ctx, "id", WithSecretsManagerClient(&fakeSecretsManager{}))
	assert.ErrorContains(t, err, "no string value")

	_, err = LoadSecretsManager(ctx, "id", WithSecretsManagerClient(&fakeSecretsManager{secret: aws.String("plain")}))
	assert.ErrorContains(t, err, "not a JSON object")
}

func TestMap_Lookup(t *testing.T) {
	m := Map{"api_key": "k"}
	v, ok := m.Lookup("api_key")
	assert.True(t, ok)
	assert.Equal(t, "k", v)

	_, ok = m.Lookup("host")
	assert.False(t, ok)
}
