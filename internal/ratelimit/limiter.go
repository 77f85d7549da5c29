package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter paces operations per key. The write queue uses one key per
// note id so that per-keystroke autosave coalesces into a few durable
// flushes instead of one write per event.
type Limiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
}

// NewLimiter creates a new per-key limiter
func NewLimiter(rps int, burst int) *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// GetLimiter returns the limiter for the given key
func (rl *Limiter) GetLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.rps, rl.burst)
		rl.limiters[key] = limiter
	}

	return limiter
}

// Allow checks if the operation is allowed right now
func (rl *Limiter) Allow(key string) bool {
	return rl.GetLimiter(key).Allow()
}

// Wait blocks until the operation is allowed or the context is cancelled
func (rl *Limiter) Wait(ctx context.Context, key string) error {
	if err := rl.GetLimiter(key).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait failed: %w", err)
	}
	return nil
}

// Forget drops the limiter state for a key. Called when a note's write
// queue drains so the map does not grow with the lifetime of the process.
func (rl *Limiter) Forget(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.limiters, key)
}
