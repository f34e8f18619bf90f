package domain

import (
	"strings"
	"time"
)

// Availability states for an extracted product listing.
const (
	AvailabilityInStock    = "in_stock"
	AvailabilityOutOfStock = "out_of_stock"
	AvailabilityUnknown    = "unknown"
)

// PlaceholderBrand is the "brand unknown" marker emitted by some retail
// pages. It must never appear in search queries and carries no weight during
// similarity scoring.
const PlaceholderBrand = "Generic"

// ProductData is the canonical product representation extracted from a retail
// page. Optional numeric fields are pointers so a missing value is
// distinguishable from a literal zero.
type ProductData struct {
	ID             string            `json:"id,omitempty"`
	Title          string            `json:"title"`
	Brand          string            `json:"brand,omitempty"`
	Category       string            `json:"category,omitempty"`
	Price          *float64          `json:"price,omitempty"`
	ImageURL       string            `json:"imageUrl,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	Rating         *float64          `json:"rating,omitempty"`
	ReviewCount    *int              `json:"reviewCount,omitempty"`
	Availability   string            `json:"availability"`
}

// HasBrand reports whether the product carries a usable brand, excluding the
// placeholder marker.
func (p *ProductData) HasBrand() bool {
	return p.Brand != "" && !strings.EqualFold(p.Brand, PlaceholderBrand)
}

// SearchCandidate is a raw hit returned by one marketplace provider. Brand
// and category are optional; most providers return only a title.
type SearchCandidate struct {
	Title      string   `json:"title"`
	Brand      string   `json:"brand,omitempty"`
	Category   string   `json:"category,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	Platform   string   `json:"platform"`
	ProductURL string   `json:"productUrl"`
	ImageURL   string   `json:"imageUrl,omitempty"`
}

// ScoredResult is a SearchCandidate annotated with a confidence score and
// affiliate rewrite bookkeeping. OriginalURL preserves the pre-rewrite URL
// when IsAffiliate is true.
type ScoredResult struct {
	SearchCandidate
	ConfidenceScore int      `json:"confidenceScore"`
	Savings         *float64 `json:"savings,omitempty"`
	IsAffiliate     bool     `json:"isAffiliate"`
	OriginalURL     string   `json:"originalUrl,omitempty"`
}

// PlatformResult is one platform's slot in an orchestrated search. Exactly
// one is produced per requested platform, in request order; Error is set when
// that platform's provider failed or was rate limited.
type PlatformResult struct {
	Platform string            `json:"platform"`
	Results  []SearchCandidate `json:"results,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// SearchResponse is the scored, ranked output of a full product search.
type SearchResponse struct {
	ProductHash string           `json:"productHash"`
	Results     []ScoredResult   `json:"results"`
	Platforms   []PlatformResult `json:"platforms"`
	FromCache   bool             `json:"fromCache"`
}

// CachedSearch is the unit stored under a product hash by the cache layer.
type CachedSearch struct {
	Results   []ScoredResult   `json:"results"`
	Platforms []PlatformResult `json:"platforms"`
	CachedAt  time.Time        `json:"cachedAt"`
}

// Settings is the host-facing configuration view consumed by the engine.
type Settings struct {
	EnableAffiliate    bool     `json:"enableAffiliate"`
	EnableTracking     bool     `json:"enableTracking"`
	PreferredPlatforms []string `json:"preferredPlatforms"`
	PriceThreshold     float64  `json:"priceThreshold"`
}
