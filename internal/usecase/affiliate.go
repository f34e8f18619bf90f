package usecase

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// trackingParams is the fixed set of known affiliate/tracking parameter
// names. IsAffiliateLink and RemoveAffiliateParams operate on exactly this
// set and leave every other parameter alone.
var trackingParams = map[string]bool{
	"tag":          true,
	"affid":        true,
	"affiliate_id": true,
	"aff_platform": true,
	"campid":       true,
	"customid":     true,
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
}

// platformTagParam maps a platform to the query parameter its affiliate
// program expects. Platforms without an entry use the generic name.
var platformTagParam = map[string]string{
	"amazon": "tag",
	"ebay":   "campid",
}

const defaultTagParam = "affid"

// AffiliateProcessor rewrites outbound candidate links with tracking
// parameters and strips them on demand. Tag values are configured per
// platform; a platform without a tag is never rewritten.
type AffiliateProcessor struct {
	tags               map[string]string
	enableDebugLogging bool
}

// NewAffiliateProcessor creates a processor with per-platform tag values.
func NewAffiliateProcessor(tags map[string]string, enableDebugLogging bool) *AffiliateProcessor {
	if tags == nil {
		tags = make(map[string]string)
	}
	return &AffiliateProcessor{tags: tags, enableDebugLogging: enableDebugLogging}
}

// AddAffiliateLink appends the platform's tracking parameter to rawURL,
// preserving any existing query parameters. Disabled affiliate processing
// and malformed URLs both return the input unchanged.
func (p *AffiliateProcessor) AddAffiliateLink(rawURL, platform string, settings domain.Settings) string {
	if !settings.EnableAffiliate {
		return rawURL
	}

	tag, ok := p.tags[strings.ToLower(platform)]
	if !ok || tag == "" {
		return rawURL
	}

	u, err := parseAffiliateURL(rawURL)
	if err != nil {
		// Recovered locally; the caller keeps the raw input.
		if p.enableDebugLogging {
			log.Printf("[AFFILIATE] %s: %v", platform, err)
		}
		return rawURL
	}

	param := platformTagParam[strings.ToLower(platform)]
	if param == "" {
		param = defaultTagParam
	}

	pair := param + "=" + url.QueryEscape(tag)
	if u.RawQuery == "" {
		u.RawQuery = pair
	} else {
		u.RawQuery = u.RawQuery + "&" + pair
	}

	if p.enableDebugLogging {
		log.Printf("[AFFILIATE] %s: %s", platform, u.String())
	}

	return u.String()
}

// parseAffiliateURL parses a candidate link for rewriting. Failures come
// back wrapping ErrMalformedURL so callers can recover without surfacing
// anything to their own callers.
func parseAffiliateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: missing scheme or host in %q", domain.ErrMalformedURL, rawURL)
	}
	return u, nil
}

// IsAffiliateLink reports whether any known tracking parameter name appears
// in the URL's query string.
func IsAffiliateLink(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.RawQuery == "" {
		return false
	}
	for _, pair := range strings.Split(u.RawQuery, "&") {
		key := pair
		if idx := strings.Index(pair, "="); idx >= 0 {
			key = pair[:idx]
		}
		if trackingParams[strings.ToLower(key)] {
			return true
		}
	}
	return false
}

// RemoveAffiliateParams strips exactly the known tracking parameter names,
// preserving all other parameters and their relative order. Malformed URLs
// are returned unchanged.
func RemoveAffiliateParams(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.RawQuery == "" {
		return rawURL
	}

	// url.Values would reorder surviving parameters, so the raw query is
	// filtered pair by pair instead.
	var kept []string
	for _, pair := range strings.Split(u.RawQuery, "&") {
		key := pair
		if idx := strings.Index(pair, "="); idx >= 0 {
			key = pair[:idx]
		}
		if !trackingParams[strings.ToLower(key)] {
			kept = append(kept, pair)
		}
	}

	u.RawQuery = strings.Join(kept, "&")
	return u.String()
}

// ProcessResults applies affiliate rewriting to a result batch, marking each
// rewritten candidate and preserving its pre-rewrite URL. With affiliate
// processing disabled the batch passes through unmodified.
func (p *AffiliateProcessor) ProcessResults(results []domain.ScoredResult, settings domain.Settings) []domain.ScoredResult {
	if !settings.EnableAffiliate {
		return results
	}

	processed := make([]domain.ScoredResult, len(results))
	for i, result := range results {
		original := result.ProductURL
		rewritten := p.AddAffiliateLink(original, result.Platform, settings)
		if rewritten != original {
			result.IsAffiliate = true
			result.OriginalURL = original
			result.ProductURL = rewritten
		}
		processed[i] = result
	}
	return processed
}
