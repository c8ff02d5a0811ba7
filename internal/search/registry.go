package search

import (
	"errors"
	"fmt"

	"EvidenceCollector/internal/ports"
)

// ErrProviderNotRegistered is returned by Resolve for unknown provider names.
var ErrProviderNotRegistered = errors.New("search provider is not registered")

// Registry keeps a mapping from provider names to their implementations.
type Registry struct {
	providers map[string]ports.SearchProvider
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]ports.SearchProvider{}}
}

// Register adds or replaces a provider implementation.
func (r *Registry) Register(provider ports.SearchProvider) {
	if r.providers == nil {
		r.providers = map[string]ports.SearchProvider{}
	}
	r.providers[provider.Name()] = provider
}

// Resolve returns a provider by name.
func (r *Registry) Resolve(name string) (ports.SearchProvider, error) {
	if provider, ok := r.providers[name]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrProviderNotRegistered, name)
}
