package usecase

import (
	"errors"
	"strings"
	"testing"

	"github.com/pricelens/backend/internal/domain"
)

var affiliateTags = map[string]string{
	"amazon": "pricelens-20",
	"ebay":   "5338-pricelens",
}

func TestAddAffiliateLink(t *testing.T) {
	processor := NewAffiliateProcessor(affiliateTags, false)
	enabled := domain.Settings{EnableAffiliate: true}
	disabled := domain.Settings{EnableAffiliate: false}

	t.Run("disabled returns the url unchanged", func(t *testing.T) {
		in := "https://www.amazon.com/dp/B08N5WRWNW?color=red&size=L"
		if got := processor.AddAffiliateLink(in, "amazon", disabled); got != in {
			t.Errorf("url = %q, want byte-identical input", got)
		}
	})

	t.Run("appends the tag and keeps existing parameters", func(t *testing.T) {
		got := processor.AddAffiliateLink("https://www.amazon.com/dp/B08N5WRWNW?color=red&size=L", "amazon", enabled)
		if !strings.Contains(got, "color=red") || !strings.Contains(got, "size=L") {
			t.Errorf("url %q lost existing parameters", got)
		}
		if !strings.Contains(got, "tag=pricelens-20") {
			t.Errorf("url %q missing tracking parameter", got)
		}
	})

	t.Run("uses the platform-specific parameter name", func(t *testing.T) {
		got := processor.AddAffiliateLink("https://www.ebay.com/itm/123", "ebay", enabled)
		if !strings.Contains(got, "campid=5338-pricelens") {
			t.Errorf("url %q missing ebay campid", got)
		}
	})

	t.Run("platform without a configured tag passes through", func(t *testing.T) {
		in := "https://www.walmart.com/ip/123"
		if got := processor.AddAffiliateLink(in, "walmart", enabled); got != in {
			t.Errorf("url = %q, want unchanged", got)
		}
	})

	t.Run("malformed url is returned unchanged", func(t *testing.T) {
		for _, in := range []string{"://nonsense", "not a url at all", ""} {
			if got := processor.AddAffiliateLink(in, "amazon", enabled); got != in {
				t.Errorf("AddAffiliateLink(%q) = %q, want unchanged", in, got)
			}
		}
	})
}

func TestParseAffiliateURL(t *testing.T) {
	if _, err := parseAffiliateURL("https://amazon.example.com/dp/B08N5WRWNW"); err != nil {
		t.Errorf("unexpected error for valid URL: %v", err)
	}

	for _, raw := range []string{"://missing-scheme", "/relative/path?x=1", "headphones"} {
		_, err := parseAffiliateURL(raw)
		if err == nil {
			t.Errorf("parseAffiliateURL(%q) = nil error, want ErrMalformedURL", raw)
			continue
		}
		if !errors.Is(err, domain.ErrMalformedURL) {
			t.Errorf("parseAffiliateURL(%q) = %v, want ErrMalformedURL", raw, err)
		}
	}
}

func TestIsAffiliateLink(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"amazon tag", "https://www.amazon.com/dp/X?tag=pricelens-20", true},
		{"utm source", "https://shop.example.com/p?utm_source=newsletter", true},
		{"ebay campid", "https://www.ebay.com/itm/1?campid=12345", true},
		{"clean url", "https://www.amazon.com/dp/X?color=red", false},
		{"no query", "https://www.amazon.com/dp/X", false},
		{"malformed", "://broken", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAffiliateLink(tt.url); got != tt.want {
				t.Errorf("IsAffiliateLink(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestRemoveAffiliateParams(t *testing.T) {
	t.Run("tracking-only query becomes empty", func(t *testing.T) {
		got := RemoveAffiliateParams("https://www.amazon.com/dp/X?tag=a&utm_source=b")
		if strings.Contains(got, "tag=") || strings.Contains(got, "utm_source=") {
			t.Errorf("url %q still carries tracking parameters", got)
		}
		if strings.Contains(got, "?") && !strings.HasSuffix(got, "?") {
			t.Errorf("url %q should have an empty or absent query", got)
		}
	})

	t.Run("non-tracking parameters survive in order", func(t *testing.T) {
		got := RemoveAffiliateParams("https://shop.example.com/p?color=red&tag=x&size=L&utm_medium=cpc&sort=asc")
		want := "https://shop.example.com/p?color=red&size=L&sort=asc"
		if got != want {
			t.Errorf("url = %q, want %q", got, want)
		}
	})

	t.Run("url without query is unchanged", func(t *testing.T) {
		in := "https://shop.example.com/p"
		if got := RemoveAffiliateParams(in); got != in {
			t.Errorf("url = %q, want unchanged", got)
		}
	})

	t.Run("round trip with AddAffiliateLink", func(t *testing.T) {
		processor := NewAffiliateProcessor(affiliateTags, false)
		in := "https://www.amazon.com/dp/B08N5WRWNW?color=red"
		tagged := processor.AddAffiliateLink(in, "amazon", domain.Settings{EnableAffiliate: true})
		if got := RemoveAffiliateParams(tagged); got != in {
			t.Errorf("round trip = %q, want %q", got, in)
		}
	})
}

func TestProcessResults(t *testing.T) {
	processor := NewAffiliateProcessor(affiliateTags, false)

	batch := []domain.ScoredResult{
		{SearchCandidate: domain.SearchCandidate{Platform: "amazon", ProductURL: "https://www.amazon.com/dp/A?color=red"}},
		{SearchCandidate: domain.SearchCandidate{Platform: "walmart", ProductURL: "https://www.walmart.com/ip/1"}},
	}

	t.Run("disabled passes the batch through unmodified", func(t *testing.T) {
		got := processor.ProcessResults(batch, domain.Settings{EnableAffiliate: false})
		for i := range got {
			if got[i].IsAffiliate || got[i].ProductURL != batch[i].ProductURL || got[i].OriginalURL != "" {
				t.Errorf("result %d modified with affiliate disabled: %+v", i, got[i])
			}
		}
	})

	t.Run("enabled rewrites and preserves the original url", func(t *testing.T) {
		got := processor.ProcessResults(batch, domain.Settings{EnableAffiliate: true})

		amazon := got[0]
		if !amazon.IsAffiliate {
			t.Error("amazon result should be marked affiliate")
		}
		if amazon.OriginalURL != "https://www.amazon.com/dp/A?color=red" {
			t.Errorf("OriginalURL = %q", amazon.OriginalURL)
		}
		if !strings.Contains(amazon.ProductURL, "tag=pricelens-20") {
			t.Errorf("ProductURL = %q, want tracking parameter", amazon.ProductURL)
		}

		walmart := got[1]
		if walmart.IsAffiliate || walmart.OriginalURL != "" {
			t.Errorf("untagged platform must not be marked affiliate: %+v", walmart)
		}

		// Input batch must not be mutated.
		if batch[0].IsAffiliate || strings.Contains(batch[0].ProductURL, "tag=") {
			t.Error("ProcessResults must not mutate its input")
		}
	})
}
