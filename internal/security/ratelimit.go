// Package security provides request throttling for the API. Login and
// transition endpoints are rate limited per client to blunt brute force and
// accidental request storms.
package security

import (
	"sync"
	"time"
)

// RateLimiter implements a token bucket per identifier (client IP or user
// ID). Thread-safe.
type RateLimiter struct {
	buckets map[string]*bucket
	mu      sync.Mutex

	maxTokens  int           // bucket capacity
	refillRate time.Duration // time to earn one token back

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter creates a limiter allowing maxTokens requests per bucket,
// refilling one token every refillRate.
//
// Example:
//
//	// 5 requests per minute
//	limiter := security.NewRateLimiter(5, 12*time.Second)
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:     make(map[string]*bucket),
		maxTokens:   maxTokens,
		refillRate:  refillRate,
		stopCleanup: make(chan struct{}),
	}

	rl.cleanupTicker = time.NewTicker(10 * time.Minute)
	go rl.cleanup()

	return rl
}

// Allow reports whether a request from the identifier is within its budget,
// consuming a token when it is.
func (rl *RateLimiter) Allow(identifier string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[identifier]
	if !ok {
		rl.buckets[identifier] = &bucket{
			tokens:     rl.maxTokens - 1, // this request consumes one
			lastRefill: time.Now(),
		}
		return true
	}

	if earned := int(time.Since(b.lastRefill) / rl.refillRate); earned > 0 {
		b.tokens += earned
		if b.tokens > rl.maxTokens {
			b.tokens = rl.maxTokens
		}
		b.lastRefill = time.Now()
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// Reset clears the state for an identifier.
func (rl *RateLimiter) Reset(identifier string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, identifier)
}

// cleanup drops buckets inactive for over an hour so the map cannot grow
// without bound.
func (rl *RateLimiter) cleanup() {
	for {
		select {
		case <-rl.cleanupTicker.C:
			rl.mu.Lock()
			now := time.Now()
			for id, b := range rl.buckets {
				if now.Sub(b.lastRefill) > time.Hour {
					delete(rl.buckets, id)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCleanup:
			return
		}
	}
}

// Stop stops the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.cleanupTicker.Stop()
	close(rl.stopCleanup)
}
