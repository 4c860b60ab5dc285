// Package credentials provides CredentialStore implementations for
// postageapp.Resolve: an in-memory map, a YAML credentials file and an
// AWS Secrets Manager secret.
//
// File and secret stores expect the settings under a "postageapp" key,
// mirroring how application credential files namespace per-service
// secrets:
//
//	postageapp:
//	  api_key: 1234567890abcdef
//	  postback_secret: s3cr3t
package credentials
