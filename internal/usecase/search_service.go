package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pricelens/backend/internal/domain"
)

// ProviderResolver selects the search provider serving a platform. Concrete
// providers are chosen by configuration, never by branching on platform
// names inside the orchestrator.
type ProviderResolver interface {
	Provider(platform string) (domain.SearchProvider, error)
}

// SearchServiceConfig holds configuration for the search service.
type SearchServiceConfig struct {
	CacheTTL           time.Duration
	MaxRequests        int
	Window             time.Duration
	EnableDebugLogging bool
}

// SearchService orchestrates a product search: cache lookup, rate-limited
// concurrent fan-out to marketplace providers, confidence scoring, affiliate
// processing and ranking.
type SearchService struct {
	providers          ProviderResolver
	limiter            domain.RateLimiter
	cache              domain.CacheRepository
	settings           domain.SettingsRepository
	scorer             *ConfidenceScorer
	affiliate          *AffiliateProcessor
	cacheTTL           time.Duration
	maxRequests        int
	window             time.Duration
	enableDebugLogging bool
}

// NewSearchService creates a search service. The cache is optional; passing
// nil disables the cache-first step.
func NewSearchService(
	providers ProviderResolver,
	limiter domain.RateLimiter,
	cache domain.CacheRepository,
	settings domain.SettingsRepository,
	affiliate *AffiliateProcessor,
	config SearchServiceConfig,
) *SearchService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}
	maxRequests := config.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10
	}
	window := config.Window
	if window <= 0 {
		window = time.Minute
	}

	return &SearchService{
		providers:          providers,
		limiter:            limiter,
		cache:              cache,
		settings:           settings,
		scorer:             NewConfidenceScorer(config.EnableDebugLogging),
		affiliate:          affiliate,
		cacheTTL:           cacheTTL,
		maxRequests:        maxRequests,
		window:             window,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// SearchAll fans the product's query out to every requested platform. The
// response always holds exactly one entry per platform, in request order;
// a rate-limit rejection or provider failure lands in its own slot and never
// aborts or delays the other platforms.
func (s *SearchService) SearchAll(ctx context.Context, product *domain.ProductData, platforms []string) []domain.PlatformResult {
	query := BuildSearchQuery(product)
	results := make([]domain.PlatformResult, len(platforms))

	var wg sync.WaitGroup
	for i, platform := range platforms {
		wg.Add(1)
		go func(slot int, platform string) {
			defer wg.Done()
			results[slot] = s.searchPlatform(ctx, platform, query, product)
		}(i, platform)
	}
	wg.Wait()

	return results
}

// searchPlatform produces one platform's result slot. The rate-limit check
// precedes the provider call, so a rejected or cancelled search leaves no
// half-committed limiter state.
func (s *SearchService) searchPlatform(ctx context.Context, platform, query string, product *domain.ProductData) domain.PlatformResult {
	slot := domain.PlatformResult{Platform: platform}

	if err := s.limiter.Check("search:"+platform, s.maxRequests, s.window); err != nil {
		slot.Error = err.Error()
		return slot
	}

	prov, err := s.providers.Provider(platform)
	if err != nil {
		slot.Error = err.Error()
		return slot
	}

	candidates, err := prov.Search(ctx, platform, query, product)
	if err != nil {
		if s.enableDebugLogging {
			log.Printf("[SEARCH] %s failed: %v", platform, err)
		}
		slot.Error = fmt.Errorf("%w: %v", domain.ErrProviderFailure, err).Error()
		return slot
	}

	slot.Results = candidates
	return slot
}

// Search runs the full matching flow for a product. When platforms is empty
// the host's preferred platforms are used.
func (s *SearchService) Search(ctx context.Context, product *domain.ProductData, platforms []string) (*domain.SearchResponse, error) {
	if product == nil || product.Title == "" {
		return nil, domain.ErrInvalidRequest
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(platforms) == 0 {
		platforms = settings.PreferredPlatforms
	}
	if len(platforms) == 0 {
		return nil, fmt.Errorf("%w: no platforms requested", domain.ErrInvalidRequest)
	}

	hash := HashProduct(product)

	// Cache first; a hit skips the providers entirely.
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, hash); err == nil && cached != nil {
			if s.enableDebugLogging {
				log.Printf("[SEARCH] cache hit for %s", hash)
			}
			return &domain.SearchResponse{
				ProductHash: hash,
				Results:     cached.Results,
				Platforms:   cached.Platforms,
				FromCache:   true,
			}, nil
		}
	}

	slots := s.SearchAll(ctx, product, platforms)
	scored := s.scoreCandidates(product, slots, settings)
	scored = s.affiliate.ProcessResults(scored, settings)
	rankResults(scored)

	response := &domain.SearchResponse{
		ProductHash: hash,
		Results:     scored,
		Platforms:   slots,
	}

	// A batch where every slot failed is transient (rate-limit burst,
	// provider outage); caching it would pin the failure for the full TTL.
	if s.cache != nil && anySucceeded(slots) {
		entry := &domain.CachedSearch{
			Results:   scored,
			Platforms: slots,
			CachedAt:  time.Now(),
		}
		if err := s.cache.Set(ctx, hash, entry, s.cacheTTL); err != nil && s.enableDebugLogging {
			log.Printf("[SEARCH] cache write failed: %v", err)
		}
	}

	return response, nil
}

// anySucceeded reports whether at least one platform slot completed without
// an error marker.
func anySucceeded(slots []domain.PlatformResult) bool {
	for _, slot := range slots {
		if slot.Error == "" {
			return true
		}
	}
	return false
}

// scoreCandidates flattens the platform slots into scored results, deriving
// savings where the original price is known and dropping candidates priced
// above the host's threshold.
func (s *SearchService) scoreCandidates(product *domain.ProductData, slots []domain.PlatformResult, settings domain.Settings) []domain.ScoredResult {
	var scored []domain.ScoredResult
	for _, slot := range slots {
		for _, candidate := range slot.Results {
			if settings.PriceThreshold > 0 && candidate.Price != nil && *candidate.Price > settings.PriceThreshold {
				continue
			}

			result := domain.ScoredResult{
				SearchCandidate: candidate,
				ConfidenceScore: s.scorer.CalculateConfidence(product, &candidate),
			}
			if product.Price != nil && candidate.Price != nil {
				savings := *product.Price - *candidate.Price
				result.Savings = &savings
			}
			scored = append(scored, result)
		}
	}
	return scored
}

// rankResults orders by confidence descending, then price ascending with
// unpriced candidates last, then platform name for a stable ordering.
func rankResults(results []domain.ScoredResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.ConfidenceScore != b.ConfidenceScore {
			return a.ConfidenceScore > b.ConfidenceScore
		}
		switch {
		case a.Price != nil && b.Price != nil && *a.Price != *b.Price:
			return *a.Price < *b.Price
		case a.Price != nil && b.Price == nil:
			return true
		case a.Price == nil && b.Price != nil:
			return false
		}
		return strings.Compare(a.Platform, b.Platform) < 0
	})
}
