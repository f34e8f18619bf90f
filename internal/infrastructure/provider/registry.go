package provider

import (
	"fmt"

	"github.com/pricelens/backend/internal/domain"
)

// Registry maps platforms to their search providers. Wiring happens at
// startup from configuration; the orchestrator only ever asks for "the
// provider serving platform X".
type Registry struct {
	providers map[string]domain.SearchProvider
	fallback  domain.SearchProvider
}

// NewRegistry creates an empty registry with an optional fallback provider
// serving platforms that have no dedicated entry.
func NewRegistry(fallback domain.SearchProvider) *Registry {
	return &Registry{
		providers: make(map[string]domain.SearchProvider),
		fallback:  fallback,
	}
}

// Register binds one platform to a provider, replacing any earlier binding.
func (r *Registry) Register(platform string, p domain.SearchProvider) {
	r.providers[platform] = p
}

// Provider returns the provider serving a platform, falling back to the
// default when no dedicated provider is registered.
func (r *Registry) Provider(platform string) (domain.SearchProvider, error) {
	if p, ok := r.providers[platform]; ok {
		return p, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrNoProvider, platform)
}
