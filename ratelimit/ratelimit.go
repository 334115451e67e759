package ratelimit

import (
	"context"
	"sync"
	"time"
)

// RateLimiterConfig holds configuration for rate limiting
type RateLimiterConfig struct {
	MaxRequests int           // Maximum number of requests allowed
	WindowSize  time.Duration // Time window for rate limiting
}

// DefaultConfig stays under the limits public Polygon endpoints apply
func DefaultConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		MaxRequests: 10,          // 10 requests
		WindowSize:  time.Second, // per second
	}
}

// RateLimiter implements sliding window rate limiting over a single
// endpoint. A nil *RateLimiter allows everything.
type RateLimiter struct {
	config   *RateLimiterConfig
	requests []time.Time
	mu       sync.Mutex
	now      func() time.Time
}

// NewRateLimiter returns nil, meaning unlimited, when MaxRequests is not positive
func NewRateLimiter(config *RateLimiterConfig) *RateLimiter {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRequests <= 0 || config.WindowSize <= 0 {
		return nil
	}
	return &RateLimiter{
		config:   config,
		requests: make([]time.Time, 0, config.MaxRequests),
		now:      time.Now,
	}
}

// Allow records a request and reports whether it fits in the current window
func (rl *RateLimiter) Allow() bool {
	_, ok := rl.reserve()
	return ok
}

// Wait blocks until a request fits in the window or ctx is done
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		delay, ok := rl.reserve()
		if ok {
			return nil
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve either records a request now, or returns how long until the
// oldest request in the window expires.
func (rl *RateLimiter) reserve() (time.Duration, bool) {
	if rl == nil {
		return 0, true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.config.WindowSize)

	// Remove expired entries
	valid := rl.requests[:0]
	for _, ts := range rl.requests {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	rl.requests = valid

	if len(rl.requests) >= rl.config.MaxRequests {
		return rl.requests[0].Sub(windowStart), false
	}
	rl.requests = append(rl.requests, now)
	return 0, true
}

// GetStats returns the number of requests in the current window
func (rl *RateLimiter) GetStats() int {
	if rl == nil {
		return 0
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	windowStart := rl.now().Add(-rl.config.WindowSize)
	count := 0
	for _, ts := range rl.requests {
		if ts.After(windowStart) {
			count++
		}
	}
	return count
}
