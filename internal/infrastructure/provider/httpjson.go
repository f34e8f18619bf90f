package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pricelens/backend/internal/domain"
)

// HTTPJSON talks to a marketplace search gateway exposing a JSON API:
//
//	GET {base}/api/search?platform=...&q=...
//	  -> {"results":[...]} or a bare array
//
// Real marketplace connectors live behind that gateway; this client stays
// generic and carries no site-specific parsing rules.
type HTTPJSON struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	debug       bool
}

// HTTPJSONOptions configures the gateway client.
type HTTPJSONOptions struct {
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
}

// NewHTTPJSON creates a gateway client with request timeout and outbound
// throttling.
func NewHTTPJSON(opts HTTPJSONOptions) (*HTTPJSON, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("%w: base url is required", domain.ErrInvalidRequest)
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("%w: invalid base url: %v", domain.ErrInvalidRequest, err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = "PriceLens/1.0"
	}
	rps := opts.RequestsPerSec
	if rps <= 0 {
		rps = 2
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 5
	}

	return &HTTPJSON{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     base,
		userAgent:   userAgent,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

// SetDebug enables request logging.
func (c *HTTPJSON) SetDebug(debug bool) {
	c.debug = debug
}

// Search queries the gateway for one platform. Transient failures are
// retried up to 3 times with backoff; every terminal failure wraps
// domain.ErrProviderFailure.
func (c *HTTPJSON) Search(ctx context.Context, platform, query string, _ *domain.ProductData) ([]domain.SearchCandidate, error) {
	endpoint := c.baseURL + "/api/search"
	params := url.Values{}
	params.Set("platform", platform)
	params.Set("q", query)
	reqURL := endpoint + "?" + params.Encode()

	if c.debug {
		log.Printf("[PROVIDER] GET %s", reqURL)
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
		}

		body, status, err := c.doGET(ctx, reqURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, ctx.Err())
			}
			if c.debug {
				log.Printf("[PROVIDER] %s attempt %d failed: %v", platform, attempt, err)
			}
			lastErr = err
			sleepBackoff(ctx, attempt)
			continue
		}

		if status != http.StatusOK {
			lastErr = fmt.Errorf("%w: status %d", domain.ErrProviderFailure, status)
			if status >= 400 && status < 500 && status != http.StatusTooManyRequests {
				// Client errors will not get better on retry.
				return nil, lastErr
			}
			sleepBackoff(ctx, attempt)
			continue
		}

		candidates, err := parseSearchPayload(body, platform)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
		}
		return candidates, nil
	}

	if lastErr == nil {
		lastErr = domain.ErrProviderFailure
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, lastErr)
}

func (c *HTTPJSON) doGET(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return body, resp.StatusCode, nil
}

// parseSearchPayload accepts both object-wrapped and bare-array payloads.
func parseSearchPayload(body []byte, platform string) ([]domain.SearchCandidate, error) {
	var wrapped struct {
		Results []domain.SearchCandidate `json:"results"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Results != nil {
		return normalizeCandidates(wrapped.Results, platform), nil
	}

	var arr []domain.SearchCandidate
	if err := json.Unmarshal(body, &arr); err != nil {
		return nil, fmt.Errorf("search payload parse: %w", err)
	}
	return normalizeCandidates(arr, platform), nil
}

// normalizeCandidates trims fields, stamps the platform and drops hits
// without a title or link.
func normalizeCandidates(in []domain.SearchCandidate, platform string) []domain.SearchCandidate {
	out := make([]domain.SearchCandidate, 0, len(in))
	for _, c := range in {
		c.Title = strings.TrimSpace(c.Title)
		c.ProductURL = strings.TrimSpace(c.ProductURL)
		if c.Title == "" || c.ProductURL == "" {
			continue
		}
		if c.Platform == "" {
			c.Platform = platform
		}
		out = append(out, c)
	}
	return out
}

func sleepBackoff(ctx context.Context, attempt int) {
	select {
	case <-time.After(time.Duration(attempt*500) * time.Millisecond):
	case <-ctx.Done():
	}
}
