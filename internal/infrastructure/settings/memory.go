package settings

import (
	"context"
	"sync"

	"github.com/pricelens/backend/internal/domain"
)

// Memory is a thread-safe in-memory settings store. The browser host owns
// long-term persistence; this store holds the live view the engine reads.
type Memory struct {
	mutex   sync.RWMutex
	current domain.Settings
}

// NewMemory creates a store seeded with defaults.
func NewMemory(defaults domain.Settings) *Memory {
	return &Memory{current: defaults}
}

// Get returns a copy of the current settings.
func (s *Memory) Get(ctx context.Context) (domain.Settings, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.current, nil
}

// Update replaces the settings wholesale and returns the stored value.
func (s *Memory) Update(ctx context.Context, in domain.Settings) (domain.Settings, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.current = in
	return s.current, nil
}
