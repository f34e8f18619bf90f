package usecase

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pricelens/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	// catalogCodePattern is the platform catalog-code shape (e.g. an ASIN):
	// 10 uppercase alphanumerics.
	catalogCodePattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)

	// catalogURLPatterns are the known canonical URL shapes carrying a
	// catalog code.
	catalogURLPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/dp/([A-Z0-9]{10})(?:[/?]|$)`),
		regexp.MustCompile(`/gp/product/([A-Z0-9]{10})(?:[/?]|$)`),
		regexp.MustCompile(`/product/([A-Z0-9]{10})(?:[/?]|$)`),
		regexp.MustCompile(`[?&]asin=([A-Z0-9]{10})(?:&|$)`),
	}

	ratingValuePattern = regexp.MustCompile(`(\d+[.,]?\d*)\s*(?:out of|/)\s*5`)
	digitsPattern      = regexp.MustCompile(`\d`)
	brandPrefixPattern = regexp.MustCompile(`(?i)^(?:visit the\s+|brand:\s*)`)
	brandSuffixPattern = regexp.MustCompile(`(?i)\s+store$`)
)

// ProductExtractor normalizes a raw retail page into canonical ProductData.
// Every field is extracted independently; a failure on one field never
// prevents extraction of the others, and a field that cannot be read is left
// absent rather than defaulted.
type ProductExtractor struct {
	enableDebugLogging bool
}

// NewProductExtractor creates a new extractor.
func NewProductExtractor(enableDebugLogging bool) *ProductExtractor {
	return &ProductExtractor{enableDebugLogging: enableDebugLogging}
}

// Extract parses the page HTML and URL into ProductData. Only an unparsable
// document is an error; missing fields come back absent.
func (e *ProductExtractor) Extract(html, pageURL string) (*domain.ProductData, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	product := &domain.ProductData{
		ID:             ExtractCatalogID(pageURL),
		Title:          e.extractTitle(doc),
		Brand:          e.extractBrand(doc),
		Category:       e.extractCategory(doc),
		Price:          e.extractPrice(doc),
		ImageURL:       e.extractImage(doc),
		Specifications: e.extractSpecifications(doc),
		Rating:         e.extractRating(doc),
		ReviewCount:    e.extractReviewCount(doc),
		Availability:   e.extractAvailability(doc),
	}

	if e.enableDebugLogging {
		log.Printf("[EXTRACT] url=%q id=%q title=%q brand=%q", pageURL, product.ID, product.Title, product.Brand)
	}

	return product, nil
}

// ExtractCatalogID pulls a catalog code out of a known product URL shape and
// validates it against the catalog-code pattern. An unrecognized shape yields
// an empty string; the caller may still extract title and price.
func ExtractCatalogID(pageURL string) string {
	if pageURL == "" {
		return ""
	}
	for _, pattern := range catalogURLPatterns {
		if m := pattern.FindStringSubmatch(pageURL); m != nil {
			if err := ValidateCatalogID(m[1]); err == nil {
				return m[1]
			}
		}
	}
	return ""
}

// ValidateCatalogID checks a candidate code against the catalog-code
// pattern, returning ErrInvalidIdentifier when it does not conform.
func ValidateCatalogID(code string) error {
	if !catalogCodePattern.MatchString(code) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidIdentifier, code)
	}
	return nil
}

func (e *ProductExtractor) extractTitle(doc *goquery.Document) string {
	selectors := []string{"#productTitle", "h1#title", "h1.product-title", "h1"}
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return collapseWhitespace(text)
		}
	}
	if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		return collapseWhitespace(strings.TrimSpace(content))
	}
	return ""
}

func (e *ProductExtractor) extractBrand(doc *goquery.Document) string {
	selectors := []string{"#bylineInfo", "a#brand", `[itemprop="brand"]`, ".product-brand"}
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return cleanBrand(text)
		}
	}
	if content, ok := doc.Find(`meta[property="og:brand"], meta[property="product:brand"]`).Attr("content"); ok {
		return cleanBrand(strings.TrimSpace(content))
	}
	return ""
}

// cleanBrand strips retail chrome like "Visit the Sony Store" down to "Sony".
func cleanBrand(raw string) string {
	brand := brandPrefixPattern.ReplaceAllString(raw, "")
	brand = brandSuffixPattern.ReplaceAllString(brand, "")
	return collapseWhitespace(strings.TrimSpace(brand))
}

func (e *ProductExtractor) extractCategory(doc *goquery.Document) string {
	selectors := []string{
		"#wayfinding-breadcrumbs_feature_div li a",
		".breadcrumb a",
		`[itemprop="category"]`,
	}
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return collapseWhitespace(text)
		}
	}
	return ""
}

func (e *ProductExtractor) extractPrice(doc *goquery.Document) *float64 {
	selectors := []string{
		".a-price .a-offscreen",
		"#priceblock_ourprice",
		"#priceblock_dealprice",
		".product-price",
		`[itemprop="price"]`,
	}
	for _, sel := range selectors {
		node := doc.Find(sel).First()
		text := strings.TrimSpace(node.Text())
		if text == "" {
			// itemprop price is often carried in the content attribute.
			text, _ = node.Attr("content")
		}
		if price, ok := parseLocalizedFloat(text); ok && price >= 0 {
			return &price
		}
	}
	if content, ok := doc.Find(`meta[property="product:price:amount"]`).Attr("content"); ok {
		if price, ok := parseLocalizedFloat(content); ok && price >= 0 {
			return &price
		}
	}
	return nil
}

func (e *ProductExtractor) extractImage(doc *goquery.Document) string {
	if src, ok := doc.Find("#landingImage").Attr("src"); ok && src != "" {
		return src
	}
	if src, ok := doc.Find("img.product-image").Attr("src"); ok && src != "" {
		return src
	}
	if content, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	return ""
}

func (e *ProductExtractor) extractRating(doc *goquery.Document) *float64 {
	candidates := []string{
		doc.Find("#acrPopover").AttrOr("title", ""),
		strings.TrimSpace(doc.Find(`[data-hook="rating-out-of-text"]`).First().Text()),
		strings.TrimSpace(doc.Find(`[itemprop="ratingValue"]`).First().Text()),
		doc.Find(`[itemprop="ratingValue"]`).AttrOr("content", ""),
	}
	for _, text := range candidates {
		if text == "" {
			continue
		}
		raw := text
		if m := ratingValuePattern.FindStringSubmatch(text); m != nil {
			raw = m[1]
		}
		if rating, ok := parseLocalizedFloat(raw); ok && rating >= 0 && rating <= 5 {
			return &rating
		}
	}
	return nil
}

func (e *ProductExtractor) extractReviewCount(doc *goquery.Document) *int {
	candidates := []string{
		strings.TrimSpace(doc.Find("#acrCustomerReviewText").First().Text()),
		strings.TrimSpace(doc.Find(`[itemprop="reviewCount"]`).First().Text()),
		doc.Find(`[itemprop="reviewCount"]`).AttrOr("content", ""),
		strings.TrimSpace(doc.Find(".review-count").First().Text()),
	}
	for _, text := range candidates {
		if count, ok := parseLocalizedInt(text); ok && count >= 0 {
			return &count
		}
	}
	return nil
}

func (e *ProductExtractor) extractAvailability(doc *goquery.Document) string {
	text := strings.ToLower(strings.TrimSpace(doc.Find("#availability").First().Text()))
	if text == "" {
		text = strings.ToLower(doc.Find(`[itemprop="availability"]`).AttrOr("href", ""))
	}
	switch {
	case text == "":
		return domain.AvailabilityUnknown
	case strings.Contains(text, "out of stock"), strings.Contains(text, "unavailable"), strings.Contains(text, "outofstock"):
		return domain.AvailabilityOutOfStock
	case strings.Contains(text, "in stock"), strings.Contains(text, "instock"):
		return domain.AvailabilityInStock
	default:
		return domain.AvailabilityUnknown
	}
}

func (e *ProductExtractor) extractSpecifications(doc *goquery.Document) map[string]string {
	specs := make(map[string]string)
	doc.Find("#productDetails_techSpec_section_1 tr, table.prodDetTable tr, table.specs tr").Each(func(_ int, row *goquery.Selection) {
		name := collapseWhitespace(strings.TrimSpace(row.Find("th").First().Text()))
		value := collapseWhitespace(strings.TrimSpace(row.Find("td").First().Text()))
		if name != "" && value != "" {
			specs[name] = value
		}
	})
	if len(specs) == 0 {
		return nil
	}
	return specs
}

var multiSpacePattern = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return multiSpacePattern.ReplaceAllString(s, " ")
}

// parseLocalizedFloat parses locale-formatted numeric text such as
// "$1,299.99", "1.299,99 €" or "4,5". Currency symbols and grouping
// separators are stripped; the decimal separator is inferred from whichever
// of "," or "." appears last.
func parseLocalizedFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}

	var cleaned strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			cleaned.WriteRune(r)
		}
	}
	raw := cleaned.String()
	if !digitsPattern.MatchString(raw) {
		return 0, false
	}

	lastComma := strings.LastIndex(raw, ",")
	lastDot := strings.LastIndex(raw, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// European style: dots group thousands, comma is decimal.
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.Replace(raw, ",", ".", 1)
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case lastComma >= 0:
		digitsAfter := len(raw) - lastComma - 1
		if strings.Count(raw, ",") == 1 && digitsAfter <= 2 {
			raw = strings.Replace(raw, ",", ".", 1)
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// parseLocalizedInt parses an integer out of text like "1,234 ratings".
func parseLocalizedInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	var digits strings.Builder
	seen := false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			seen = true
			continue
		}
		// Stop after the first full number so "4.5 of 1,234" is not merged.
		if seen && r != ',' && r != '.' {
			break
		}
	}
	if !seen {
		return 0, false
	}
	value, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return value, true
}
