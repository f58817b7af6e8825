package api

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultLimit matches the original deployment: 30 requests per hour.
const DefaultLimit = 30

// DefaultWindow is the rate limit window.
const DefaultWindow = time.Hour

// RateLimiter is a fixed-window per-key limiter. Counters live in an
// expiring in-memory cache, so idle clients cost nothing.
type RateLimiter struct {
	counters *gocache.Cache
	limit    int
	window   time.Duration
}

// NewRateLimiter creates a limiter allowing limit requests per window
// per key.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &RateLimiter{
		counters: gocache.New(window, 2*window),
		limit:    limit,
		window:   window,
	}
}

// Allow reports whether the request identified by key fits within the
// current window, counting it if so.
func (l *RateLimiter) Allow(key string) bool {
	// Add only succeeds for the first request of a window.
	if err := l.counters.Add(key, 1, l.window); err == nil {
		return l.limit >= 1
	}

	count, err := l.counters.IncrementInt(key, 1)
	if err != nil {
		// Counter expired between Add and Increment: start a new window.
		l.counters.Set(key, 1, l.window)
		return l.limit >= 1
	}
	return count <= l.limit
}
