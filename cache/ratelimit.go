package cache

import (
	"strings"
	"time"
)

const (
	rateLimitPrefix = "rate_limit:"

	// RateLimitMax is the number of reserve attempts allowed per email per window
	RateLimitMax = 5

	// RateLimitWindow is the fixed counter window
	RateLimitWindow = time.Hour
)

// RateLimiter enforces the per-email fixed-window reserve cap
type RateLimiter struct {
	store Store
}

// NewRateLimiter creates a RateLimiter over the given store
func NewRateLimiter(store Store) *RateLimiter {
	return &RateLimiter{store: store}
}

// Limited reports whether the email has exhausted its window
func (r *RateLimiter) Limited(email string) bool {
	return r.store.GetCount(rateLimitKey(email)) >= RateLimitMax
}

// Increment counts one successful attempt against the email's window
func (r *RateLimiter) Increment(email string) {
	r.store.IncrementWindow(rateLimitKey(email), RateLimitWindow)
}

func rateLimitKey(email string) string {
	return rateLimitPrefix + strings.ToLower(email)
}
