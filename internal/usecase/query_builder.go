package usecase

import (
	"regexp"
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// Package-level compiled regex for performance
var nonAlphanumericSplit = regexp.MustCompile(`[^a-z0-9]+`)

// stopWords are low-information articles, prepositions and conjunctions
// excluded from keyword extraction.
var stopWords = map[string]bool{
	// Articles
	"a": true, "an": true, "the": true,
	// Conjunctions
	"and": true, "or": true, "but": true, "nor": true, "so": true, "yet": true,
	// Prepositions
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "as": true,
	"into": true, "onto": true, "over": true, "under": true, "per": true,
	// Common verbs/fillers that show up in listing titles
	"is": true, "are": true, "was": true, "be": true, "it": true,
}

// minKeywordLength drops fragments like model-number remnants ("13", "xl").
const minKeywordLength = 3

// BuildSearchQuery derives a marketplace search string from extracted product
// data: brand followed by title, unless the brand is the placeholder marker
// or already part of the title. Pure function.
func BuildSearchQuery(product *domain.ProductData) string {
	if product == nil {
		return ""
	}

	title := strings.TrimSpace(product.Title)
	if !product.HasBrand() {
		return title
	}

	brand := strings.TrimSpace(product.Brand)
	if strings.Contains(strings.ToLower(title), strings.ToLower(brand)) {
		return title
	}

	return strings.TrimSpace(brand + " " + title)
}

// ExtractKeywords tokenizes a title on non-alphanumeric boundaries,
// lower-cases tokens, drops stop words and tokens shorter than three
// characters. Order follows the input; duplicates are kept.
func ExtractKeywords(title string) []string {
	if title == "" {
		return nil
	}

	words := nonAlphanumericSplit.Split(strings.ToLower(title), -1)

	var keywords []string
	for _, word := range words {
		if len(word) < minKeywordLength {
			continue
		}
		if stopWords[word] {
			continue
		}
		keywords = append(keywords, word)
	}

	return keywords
}
