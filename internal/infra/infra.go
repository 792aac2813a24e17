// Package infra provides shared infrastructure components used across
// the application: rate limiting, bounded retry and logging setup.
package infra

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter provides token-bucket rate limiting for outbound requests.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a rate limiter that allows maxTokens requests
// per window. maxTokens <= 0 disables limiting.
func NewRateLimiter(maxTokens int, window time.Duration) *RateLimiter {
	if maxTokens <= 0 || window <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	every := window / time.Duration(maxTokens)
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(every), maxTokens)}
}

// Wait blocks until a token is available or ctx is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed right now, consuming a token if so.
func (rl *RateLimiter) Allow() bool {
	return rl.limiter.Allow()
}
