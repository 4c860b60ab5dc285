package postageapp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	body := []byte(`{"inbound_email":{"message":"raw"}}`)

	mac := hmac.New(sha1.New, []byte("s3cret"))
	mac.Write(body)
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, Sign(body, "s3cret"))
	assert.NotEqual(t, want, Sign(body, "other"))
}

func TestVerify(t *testing.T) {
	body := []byte(`{"inbound_email":{"message":"raw"}}`)
	sig := Sign(body, "s3cret")

	ok, err := Verify(body, sig, "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify(body, "", "s3cret")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Verify(body, sig, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_Mutations(t *testing.T) {
	body := []byte("payload bytes")
	sig := Sign(body, "k")

	for i := range body {
		mutated := append([]byte(nil), body...)
		mutated[i] ^= 0x01
		ok, err := Verify(mutated, sig, "k")
		require.NoError(t, err)
		assert.False(t, ok, "body byte %d", i)
	}

	for i := range sig {
		mutated := []byte(sig)
		mutated[i] ^= 0x01
		ok, err := Verify(body, string(mutated), "k")
		require.NoError(t, err)
		assert.False(t, ok, "signature byte %d", i)
	}

	ok, err := Verify(append(body, '\n'), sig, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_MissingSecret(t *testing.T) {
	ok, err := Verify([]byte("x"), "sig", "")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrMissingPostbackSecret)
	assert.True(t, IsConfigurationError(err))
}

func TestConfiguration_VerifyWebhook(t *testing.T) {
	cfg := testConfig(t)
	body := []byte("hello")

	_, err := cfg.VerifyWebhook(body, Sign(body, "k"))
	assert.ErrorIs(t, err, ErrMissingPostbackSecret)

	cfg.SetPostbackSecret("k")
	ok, err := cfg.VerifyWebhook(body, Sign(body, "k"))
	require.NoError(t, err)
	assert.True(t, ok)
}
