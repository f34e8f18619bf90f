package domain

import (
	"context"
	"time"
)

// CacheRepository defines the host-facing caching contract. The engine
// consults it before invoking providers; TTL and eviction policy belong to
// the implementation.
type CacheRepository interface {
	Get(ctx context.Context, key string) (*CachedSearch, error)
	Set(ctx context.Context, key string, value *CachedSearch, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// SearchProvider is the pluggable marketplace search capability. Production
// connectors are external collaborators; the engine ships a mock provider
// for tests and offline demos.
type SearchProvider interface {
	Search(ctx context.Context, platform, query string, product *ProductData) ([]SearchCandidate, error)
}

// RateLimiter gates outbound search calls per resource key. Check records
// the call when admitted and returns ErrRateLimited when the key's window is
// full; Reset clears one key's history.
type RateLimiter interface {
	Check(key string, maxRequests int, window time.Duration) error
	Reset(key string)
}

// SettingsRepository exposes the host-owned settings view.
type SettingsRepository interface {
	Get(ctx context.Context) (Settings, error)
	Update(ctx context.Context, s Settings) (Settings, error)
}
