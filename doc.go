// Package postageapp is a client for the PostageApp transactional email
// API and a verifier for the webhooks PostageApp sends to your
// application.
//
// Every API call is a JSON POST of {"api_key", "uid", "arguments"} to
// /v.1.1/<method>.json. The UID is a 40 character hex token generated per
// call; when a call fails at the transport level and its method is listed
// in retry_methods it is resent once with the same UID, so the server can
// discard the duplicate.
//
// # Configuration
//
// Settings are resolved once, per parameter, from a credential store, then
// from POSTAGEAPP_* environment variables, then from defaults:
//
//	cfg := postageapp.Init(
//		postageapp.WithCredentialStore(credentials.YAMLFile("config/credentials.yml")),
//	)
//
// Parameters have aliases (verify_certificate for verify_tls,
// requests_to_resend for retry_methods, ...) and are readable and writable
// through Get and Set under any of their names. Switching Secure moves the
// scheme and, when it sits at the other scheme's default, the port.
//
// # Basic Usage
//
//	client, err := postageapp.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	resp, err := client.Send(ctx, "send_message", map[string]any{
//		"recipients": "user@example.com",
//		"headers":    map[string]any{"subject": "Welcome"},
//		"content":    map[string]any{"text/plain": "Welcome!"},
//	})
//	switch {
//	case err != nil:
//		// configuration, transport or protocol error
//	case resp.Failed():
//		// the API rejected the call; see resp.Body
//	default:
//		fmt.Println(resp.UID, resp.Data["message"])
//	}
//
// # Webhooks
//
// Inbound payloads are signed with base64(HMAC-SHA1(postback_secret, body))
// in the X-PostageApp-Signature header. Verify checks a signature; the
// inbound package wraps it in an http.Handler.
package postageapp
