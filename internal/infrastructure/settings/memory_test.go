package settings

import (
	"context"
	"sync"
	"testing"

	"github.com/pricelens/backend/internal/domain"
)

func TestMemorySettings(t *testing.T) {
	ctx := context.Background()
	defaults := domain.Settings{
		EnableAffiliate:    true,
		PreferredPlatforms: []string{"amazon", "ebay"},
		PriceThreshold:     500,
	}

	t.Run("returns seeded defaults", func(t *testing.T) {
		store := NewMemory(defaults)
		got, err := store.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.EnableAffiliate || got.PriceThreshold != 500 {
			t.Errorf("got = %+v, want defaults", got)
		}
	})

	t.Run("update replaces the view", func(t *testing.T) {
		store := NewMemory(defaults)
		updated, err := store.Update(ctx, domain.Settings{EnableTracking: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !updated.EnableTracking || updated.EnableAffiliate {
			t.Errorf("updated = %+v", updated)
		}

		got, _ := store.Get(ctx)
		if !got.EnableTracking {
			t.Error("update must persist")
		}
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		store := NewMemory(defaults)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				if n%2 == 0 {
					_, _ = store.Update(ctx, defaults)
				} else {
					_, _ = store.Get(ctx)
				}
			}(i)
		}
		wg.Wait()
	})
}
