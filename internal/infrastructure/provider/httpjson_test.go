package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricelens/backend/internal/domain"
)

func newTestClient(t *testing.T, baseURL string) *HTTPJSON {
	t.Helper()
	client, err := NewHTTPJSON(HTTPJSONOptions{
		BaseURL:        baseURL,
		Timeout:        2 * time.Second,
		RequestsPerSec: 1000,
		Burst:          100,
	})
	require.NoError(t, err)
	return client
}

func TestNewHTTPJSON(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		client, err := NewHTTPJSON(HTTPJSONOptions{BaseURL: "https://gateway.example.com/"})
		require.NoError(t, err)
		assert.Equal(t, "https://gateway.example.com", client.baseURL)
		assert.Equal(t, "PriceLens/1.0", client.userAgent)
		assert.NotNil(t, client.httpClient)
		assert.NotNil(t, client.rateLimiter)
	})

	t.Run("requires a base url", func(t *testing.T) {
		_, err := NewHTTPJSON(HTTPJSONOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestHTTPJSONSearch_Success(t *testing.T) {
	price := 199.99
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search", r.URL.Path)
		assert.Equal(t, "amazon", r.URL.Query().Get("platform"))
		assert.Equal(t, "sony headphones", r.URL.Query().Get("q"))
		assert.Contains(t, r.Header.Get("User-Agent"), "PriceLens")

		response := map[string]any{
			"results": []domain.SearchCandidate{
				{Title: "  Sony WH-1000XM5  ", Price: &price, ProductURL: "https://amazon.example.com/dp/X"},
				{Title: "", ProductURL: "https://amazon.example.com/dp/Y"}, // dropped
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	candidates, err := client.Search(context.Background(), "amazon", "sony headphones", nil)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Sony WH-1000XM5", candidates[0].Title)
	assert.Equal(t, "amazon", candidates[0].Platform)
	require.NotNil(t, candidates[0].Price)
	assert.Equal(t, 199.99, *candidates[0].Price)
}

func TestHTTPJSONSearch_BareArrayPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]domain.SearchCandidate{
			{Title: "Item", ProductURL: "https://x.example.com/1"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	candidates, err := client.Search(context.Background(), "ebay", "item", nil)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "ebay", candidates[0].Platform)
}

func TestHTTPJSONSearch_ClientErrorDoesNotRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Search(context.Background(), "amazon", "q", nil)

	assert.ErrorIs(t, err, domain.ErrProviderFailure)
	assert.Equal(t, 1, calls)
}

func TestHTTPJSONSearch_RetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]domain.SearchCandidate{
			{Title: "Recovered", ProductURL: "https://x.example.com/1"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	candidates, err := client.Search(context.Background(), "amazon", "q", nil)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, candidates, 1)
}

func TestHTTPJSONSearch_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Search(context.Background(), "amazon", "q", nil)

	assert.ErrorIs(t, err, domain.ErrProviderFailure)
}

func TestHTTPJSONSearch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Search(ctx, "amazon", "q", nil)
	assert.ErrorIs(t, err, domain.ErrProviderFailure)
}
