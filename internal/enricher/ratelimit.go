package enricher

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter controls the frequency of requests to the LLM provider.
type RateLimiter struct {
	limiter *rate.Limiter

	// additional backoff after a provider 429
	cooldownUntil time.Time
	mu            sync.Mutex
}

// NewRateLimiter creates a rate limiter.
// rps - requests per second, burst - allowed burst
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Wait blocks until the next request is allowed.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	waitUntil := r.cooldownUntil
	r.mu.Unlock()

	if time.Now().Before(waitUntil) {
		select {
		case <-time.After(time.Until(waitUntil)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return r.limiter.Wait(ctx)
}

// SetCooldown pauses all requests after the provider asked us to back off.
func (r *RateLimiter) SetCooldown(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cooldownUntil = time.Now().Add(d)
}
