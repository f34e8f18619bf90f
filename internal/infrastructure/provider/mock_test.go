package provider

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/pricelens/backend/internal/domain"
)

func TestMockSearch(t *testing.T) {
	ctx := context.Background()
	mock := NewMock(3)

	t.Run("is deterministic per platform and query", func(t *testing.T) {
		first, err := mock.Search(ctx, "amazon", "sony headphones", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := mock.Search(ctx, "amazon", "sony headphones", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Error("mock output must be stable for identical input")
		}
	})

	t.Run("varies across platforms", func(t *testing.T) {
		amazon, _ := mock.Search(ctx, "amazon", "sony headphones", nil)
		ebay, _ := mock.Search(ctx, "ebay", "sony headphones", nil)
		if reflect.DeepEqual(amazon, ebay) {
			t.Error("different platforms should synthesize different candidates")
		}
	})

	t.Run("stamps the platform and produces valid candidates", func(t *testing.T) {
		candidates, _ := mock.Search(ctx, "walmart", "usb cable", nil)
		if len(candidates) != 3 {
			t.Fatalf("len = %d, want 3", len(candidates))
		}
		for _, c := range candidates {
			if c.Platform != "walmart" {
				t.Errorf("platform = %q, want walmart", c.Platform)
			}
			if c.Title == "" || c.ProductURL == "" {
				t.Errorf("incomplete candidate: %+v", c)
			}
			if c.Price == nil || *c.Price < 0 {
				t.Errorf("price = %v, want non-negative", c.Price)
			}
		}
	})

	t.Run("anchors prices to the original product", func(t *testing.T) {
		price := 1000.0
		product := &domain.ProductData{Title: "TV", Price: &price}
		candidates, _ := mock.Search(ctx, "amazon", "55 inch tv", product)
		for _, c := range candidates {
			if *c.Price < 500 || *c.Price > 1500 {
				t.Errorf("price %v not anchored near %v", *c.Price, price)
			}
		}
	})

	t.Run("rejects empty queries", func(t *testing.T) {
		if _, err := mock.Search(ctx, "amazon", "  ", nil); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := mock.Search(cancelled, "amazon", "q", nil); err == nil {
			t.Error("expected context error")
		}
	})
}

func TestRegistry(t *testing.T) {
	mock := NewMock(1)

	t.Run("returns the registered provider", func(t *testing.T) {
		r := NewRegistry(nil)
		r.Register("amazon", mock)

		p, err := r.Provider("amazon")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p != domain.SearchProvider(mock) {
			t.Error("wrong provider returned")
		}
	})

	t.Run("falls back to the default", func(t *testing.T) {
		r := NewRegistry(mock)
		if _, err := r.Provider("anything"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("errors without a binding or fallback", func(t *testing.T) {
		r := NewRegistry(nil)
		if _, err := r.Provider("unknown"); !errors.Is(err, domain.ErrNoProvider) {
			t.Errorf("error = %v, want ErrNoProvider", err)
		}
	})
}
