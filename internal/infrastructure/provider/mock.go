package provider

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// Mock is an offline-safe reference provider. Candidates are synthesized
// deterministically from the platform and query, so demos and tests get
// stable output without network access.
type Mock struct {
	resultsPerQuery int
}

// NewMock creates a mock provider returning resultsPerQuery candidates per
// search (default 3).
func NewMock(resultsPerQuery int) *Mock {
	if resultsPerQuery <= 0 {
		resultsPerQuery = 3
	}
	return &Mock{resultsPerQuery: resultsPerQuery}
}

// Search synthesizes candidates for the query. The original product's price
// anchors the generated prices so scored results look plausible.
func (m *Mock) Search(ctx context.Context, platform, query string, product *domain.ProductData) ([]domain.SearchCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidRequest
	}

	seed := fnv.New64a()
	seed.Write([]byte(platform + "|" + query))
	rng := rand.New(rand.NewSource(int64(seed.Sum64())))

	basePrice := 50.0
	if product != nil && product.Price != nil {
		basePrice = *product.Price
	}

	candidates := make([]domain.SearchCandidate, 0, m.resultsPerQuery)
	for i := 0; i < m.resultsPerQuery; i++ {
		// Spread prices from 70% to 120% of the anchor.
		price := basePrice * (0.7 + rng.Float64()*0.5)
		price = float64(int(price*100)) / 100

		candidate := domain.SearchCandidate{
			Title:      mockTitle(query, i),
			Price:      &price,
			Platform:   platform,
			ProductURL: fmt.Sprintf("https://%s.example.com/listing/%06d", platform, rng.Intn(1000000)),
			ImageURL:   fmt.Sprintf("https://%s.example.com/images/%06d.jpg", platform, rng.Intn(1000000)),
		}
		if product != nil && product.HasBrand() && i == 0 {
			candidate.Brand = product.Brand
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// mockTitle varies the query so similarity scoring has a spread to rank.
func mockTitle(query string, n int) string {
	switch n % 3 {
	case 0:
		return query
	case 1:
		return query + " - Renewed"
	default:
		return "Compatible with " + query
	}
}
