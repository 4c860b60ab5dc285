package credentials

// Namespace is the key under which stores expect PostageApp settings.
const Namespace = "postageapp"

// Map is an in-memory CredentialStore.
type Map map[string]any

// Lookup returns the value stored under key.
func (m Map) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// namespaced returns the settings under Namespace, or nil.
func namespaced(doc map[string]any) Map {
	switch inner := doc[Namespace].(type) {
	case map[string]any:
		return Map(inner)
	case map[any]any:
		out := make(Map, len(inner))
		for k, v := range inner {
			if s, ok := k.(string); ok {
				out[s] = v
			}
		}
		return out
	default:
		return nil
	}
}
