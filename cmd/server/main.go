package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pricelens/backend/config"
	httpDelivery "github.com/pricelens/backend/internal/delivery/http"
	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/infrastructure/cache"
	"github.com/pricelens/backend/internal/infrastructure/provider"
	"github.com/pricelens/backend/internal/infrastructure/settings"
	"github.com/pricelens/backend/internal/ratelimit"
	"github.com/pricelens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debug := cfg.Search.EnableDebugLogging || cfg.Server.Environment == "development"

	log.Printf("Starting PriceLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s (TTL: %s)", cfg.Cache.Type, cfg.Cache.TTL)

	// Result cache backend
	var store domain.CacheRepository
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedis(cfg.Cache.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		store = redisCache
		log.Printf("Redis cache connected")
	default:
		store = cache.NewMemory()
	}

	// Marketplace provider
	var fallback domain.SearchProvider
	switch cfg.Provider.Mode {
	case "http":
		client, err := provider.NewHTTPJSON(provider.HTTPJSONOptions{
			BaseURL:        cfg.Provider.BaseURL,
			UserAgent:      cfg.Provider.UserAgent,
			Timeout:        cfg.Provider.Timeout,
			RequestsPerSec: cfg.Provider.RequestsPerSec,
			Burst:          cfg.Provider.Burst,
		})
		if err != nil {
			log.Fatalf("Failed to configure search provider: %v", err)
		}
		client.SetDebug(debug)
		fallback = client
		log.Printf("Search provider: http gateway at %s", cfg.Provider.BaseURL)
	default:
		fallback = provider.NewMock(0)
		log.Printf("Search provider: mock (offline candidates)")
	}
	registry := provider.NewRegistry(fallback)

	// Host settings seeded from config
	settingsRepo := settings.NewMemory(domain.Settings{
		EnableAffiliate:    cfg.Affiliate.Enabled,
		EnableTracking:     cfg.Affiliate.EnableTracking,
		PreferredPlatforms: cfg.Search.PreferredPlatforms,
		PriceThreshold:     cfg.Search.PriceThreshold,
	})

	limiter := ratelimit.NewSlidingWindow()

	searchService := usecase.NewSearchService(
		registry,
		limiter,
		store,
		settingsRepo,
		usecase.NewAffiliateProcessor(cfg.Affiliate.Tags, debug),
		usecase.SearchServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			MaxRequests:        cfg.RateLimit.SearchMaxRequests,
			Window:             cfg.RateLimit.SearchWindow,
			EnableDebugLogging: debug,
		},
	)

	log.Printf("Rate limit: %d requests per %s per platform",
		cfg.RateLimit.SearchMaxRequests, cfg.RateLimit.SearchWindow)
	log.Printf("Affiliate processing: enabled=%v, tags=%d", cfg.Affiliate.Enabled, len(cfg.Affiliate.Tags))

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(
		searchService,
		usecase.NewProductExtractor(debug),
		settingsRepo,
		store,
	)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
