package domain

import "errors"

var (
	// ErrRateLimited is returned when admission is denied for a resource key
	// within its sliding window.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrProviderFailure is returned when a marketplace provider call failed
	// or returned an unusable response.
	ErrProviderFailure = errors.New("search provider request failed")

	// ErrInvalidIdentifier is returned when a catalog identifier fails its
	// platform format check.
	ErrInvalidIdentifier = errors.New("invalid catalog identifier format")

	// ErrMalformedURL is returned when affiliate processing is given an
	// unparsable URL. It is recovered locally; callers see the URL unchanged.
	ErrMalformedURL = errors.New("malformed url")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrNoProvider is returned when no search provider is registered for a
	// requested platform and no default is configured.
	ErrNoProvider = errors.New("no search provider for platform")
)
