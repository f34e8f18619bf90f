package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/pricelens/backend/internal/domain"
)

// SlidingWindow is a thread-safe per-key sliding-window admission limiter.
// Each key tracks the timestamps of its admitted requests; entries older
// than the window are evicted on every check, so the window slides with the
// oldest request rather than resetting at wall-clock boundaries.
//
// State is in-memory only and created lazily per key. Multiple orchestration
// contexts should share one injected instance rather than relying on global
// state.
type SlidingWindow struct {
	mu      sync.Mutex
	history map[string][]time.Time
	now     func() time.Time
}

// NewSlidingWindow creates an empty limiter using the wall clock.
func NewSlidingWindow() *SlidingWindow {
	return &SlidingWindow{
		history: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// NewSlidingWindowWithClock creates a limiter with an injected clock, used by
// tests to step time deterministically.
func NewSlidingWindowWithClock(now func() time.Time) *SlidingWindow {
	return &SlidingWindow{
		history: make(map[string][]time.Time),
		now:     now,
	}
}

// Check admits or rejects one request for key. Stale timestamps are evicted
// first; if the key already holds maxRequests admissions within the window
// the call is rejected with domain.ErrRateLimited and nothing is recorded.
// Admission check and history update happen under one lock, so concurrent
// checks against the same key cannot double-admit past the limit.
func (l *SlidingWindow) Check(key string, maxRequests int, window time.Duration) error {
	if maxRequests <= 0 || window <= 0 {
		return fmt.Errorf("%w: key %q has no capacity", domain.ErrRateLimited, key)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-window)

	kept := l.history[key][:0]
	for _, ts := range l.history[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= maxRequests {
		l.history[key] = kept
		return fmt.Errorf("%w for %q: %d requests in %s", domain.ErrRateLimited, key, len(kept), window)
	}

	l.history[key] = append(kept, now)
	return nil
}

// Reset clears one key's history. Other keys are unaffected.
func (l *SlidingWindow) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.history, key)
}

// Pending returns the number of admissions currently recorded for key,
// including entries that would be evicted on the next check.
func (l *SlidingWindow) Pending(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.history[key])
}
