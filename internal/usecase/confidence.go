package usecase

import (
	"log"
	"math"
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// Scoring weights. Title similarity carries the base score; brand and
// category agreement are bonuses. A brand mismatch therefore caps the score
// at titleWeight+categoryWeight, and full agreement with a similar title
// lands well above the matching threshold.
const (
	titleWeight   = 50.0
	brandBonus    = 30.0
	categoryBonus = 20.0
	maxConfidence = 100
	minConfidence = 0
)

// ConfidenceScorer compares marketplace candidates against the original
// extracted product and assigns a 0-100 confidence score.
type ConfidenceScorer struct {
	enableDebugLogging bool
}

// NewConfidenceScorer creates a new scorer.
func NewConfidenceScorer(enableDebugLogging bool) *ConfidenceScorer {
	return &ConfidenceScorer{enableDebugLogging: enableDebugLogging}
}

// CalculateConfidence scores how likely candidate is the same product as
// original. Missing fields on either side contribute nothing; the result is
// always within [0,100].
func (s *ConfidenceScorer) CalculateConfidence(original *domain.ProductData, candidate *domain.SearchCandidate) int {
	if original == nil || candidate == nil {
		return minConfidence
	}

	score := StringSimilarity(original.Title, candidate.Title) * titleWeight

	if s.brandMatches(original, candidate) {
		score += brandBonus
	}
	if s.categoryMatches(original, candidate) {
		score += categoryBonus
	}

	rounded := int(math.Round(score))
	if rounded > maxConfidence {
		rounded = maxConfidence
	}
	if rounded < minConfidence {
		rounded = minConfidence
	}

	if s.enableDebugLogging {
		log.Printf("[SCORE] %q vs %q (%s) = %d", original.Title, candidate.Title, candidate.Platform, rounded)
	}

	return rounded
}

// brandMatches reports exact case-insensitive brand agreement. When the
// candidate carries no explicit brand the candidate title is checked for the
// original brand token instead; the placeholder brand never matches.
func (s *ConfidenceScorer) brandMatches(original *domain.ProductData, candidate *domain.SearchCandidate) bool {
	if !original.HasBrand() {
		return false
	}
	if candidate.Brand != "" {
		if strings.EqualFold(candidate.Brand, domain.PlaceholderBrand) {
			return false
		}
		return strings.EqualFold(original.Brand, candidate.Brand)
	}
	return strings.Contains(strings.ToLower(candidate.Title), strings.ToLower(original.Brand))
}

func (s *ConfidenceScorer) categoryMatches(original *domain.ProductData, candidate *domain.SearchCandidate) bool {
	if original.Category == "" || candidate.Category == "" {
		return false
	}
	return strings.EqualFold(original.Category, candidate.Category)
}

// StringSimilarity returns a [0,1] similarity between two strings: 1 for
// identical strings, 0 for disjoint token sets, and token-set intersection
// over union otherwise. Symmetric and deterministic.
func StringSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if strings.EqualFold(a, b) {
		return 1
	}

	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// tokenSet builds the set of lowercase alphanumeric tokens of a string.
func tokenSet(s string) map[string]bool {
	words := nonAlphanumericSplit.Split(strings.ToLower(s), -1)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		set[w] = true
	}
	return set
}
