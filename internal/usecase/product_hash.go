package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// HashProduct derives a stable identity key for a product, used as the cache
// and dedup key. The digest covers the normalized catalog ID, brand and
// title, so letter case, punctuation and specification map ordering do not
// change the key.
func HashProduct(product *domain.ProductData) string {
	if product == nil {
		return ""
	}

	parts := []string{
		normalizeHashComponent(product.ID),
		normalizeHashComponent(product.Brand),
		normalizeHashComponent(product.Title),
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// normalizeHashComponent lowercases and strips non-alphanumeric runs so
// cosmetic formatting differences map to the same key component.
func normalizeHashComponent(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(nonAlphanumericSplit.ReplaceAllString(strings.ToLower(s), " "))
}
