package postageapp

// CredentialStore is an optional secret source consulted before the
// environment. Lookup returns the value stored under key, which is a
// parameter name or alias such as "api_key".
type CredentialStore interface {
	Lookup(key string) (any, bool)
}

// CredentialFunc adapts a function to CredentialStore.
type CredentialFunc func(key string) (any, bool)

// Lookup calls f(key).
func (f CredentialFunc) Lookup(key string) (any, bool) {
	return f(key)
}
