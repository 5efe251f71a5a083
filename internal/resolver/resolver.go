package resolver

// Resolver maps inbound model identifiers to backend model identifiers.
// The mapping table is read-only after construction.
type Resolver struct {
	mappings     map[string]string
	defaultModel string
}

// New creates a resolver over the given mapping table and default model
func New(mappings map[string]string, defaultModel string) *Resolver {
	return &Resolver{
		mappings:     mappings,
		defaultModel: defaultModel,
	}
}

// Resolve returns the backend model for the requested identifier. Unknown
// identifiers fall back to the default model rather than failing.
func (r *Resolver) Resolve(requested string) string {
	if backend, ok := r.mappings[requested]; ok {
		return backend
	}
	return r.defaultModel
}
