package postageapp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
)

// SignatureHeader is the HTTP header carrying the webhook signature.
const SignatureHeader = "X-PostageApp-Signature"

// Sign returns base64(HMAC-SHA1(secret, body)), the signature PostageApp
// sends with inbound payloads.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature is the signature of body under secret.
// The comparison is constant-time. An empty signature never matches.
//
// An empty secret is a configuration error, not a mismatch: Verify returns
// ErrMissingPostbackSecret so callers refuse webhooks instead of silently
// rejecting or accepting them all.
func Verify(body []byte, signature, secret string) (bool, error) {
	if secret == "" {
		return false, ErrMissingPostbackSecret
	}
	if signature == "" {
		return false, nil
	}
	expected := Sign(body, secret)
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}

// VerifyWebhook verifies body against signature with the configured
// postback secret.
func (c *Configuration) VerifyWebhook(body []byte, signature string) (bool, error) {
	return Verify(body, signature, c.postbackSecret)
}
