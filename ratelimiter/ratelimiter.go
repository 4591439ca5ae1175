// Package ratelimiter provides in-memory request gating for generation
// backends. Limits are expressed per model as tokens and requests per
// minute, refilled on a fixed interval.
package ratelimiter

import (
	"sync"
	"time"
)

// Limiter is the interface consumed by the session core.
// Implementations can be local (in-memory) or distributed.
type Limiter interface {
	// TryConsume atomically checks capacity and consumes tokens plus one
	// request slot if available. Returns false on insufficient capacity.
	TryConsume(numTokens int) bool

	// TimeUntilAvailable returns how long until the given number of
	// tokens would be available. Read-only.
	TimeUntilAvailable(numTokens int) time.Duration
}

// RateLimiter gates on both a token budget and a request budget.
type RateLimiter struct {
	tokens   *bucket
	requests *bucket
}

var _ Limiter = (*RateLimiter)(nil)

// New creates a limiter with per-minute token and request budgets.
// A zero budget means that dimension is unlimited.
func New(tokensPerMinute, requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		tokens:   newBucket(tokensPerMinute, time.Minute),
		requests: newBucket(requestsPerMinute, time.Minute),
	}
}

// TryConsume atomically checks and consumes from both budgets.
func (rl *RateLimiter) TryConsume(numTokens int) bool {
	return rl.tokens.consume(numTokens) && rl.requests.consume(1)
}

// TimeUntilAvailable returns the longer of the two budgets' waits.
func (rl *RateLimiter) TimeUntilAvailable(numTokens int) time.Duration {
	tokenWait := rl.tokens.timeUntilAvailable(numTokens)
	requestWait := rl.requests.timeUntilAvailable(1)
	if tokenWait > requestWait {
		return tokenWait
	}
	return requestWait
}

// bucket is a fixed-interval refill token bucket. A capacity of zero
// disables the bucket (every consume succeeds).
type bucket struct {
	mu             sync.Mutex
	capacity       int
	remaining      int
	refillInterval time.Duration
	lastRefill     time.Time
}

func newBucket(capacity int, refillInterval time.Duration) *bucket {
	return &bucket{
		capacity:       capacity,
		remaining:      capacity,
		refillInterval: refillInterval,
		lastRefill:     time.Now(),
	}
}

func (b *bucket) consume(tokens int) bool {
	if b.capacity == 0 {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill(time.Now())
	if tokens <= b.remaining {
		b.remaining -= tokens
		return true
	}
	return false
}

func (b *bucket) timeUntilAvailable(tokens int) time.Duration {
	if b.capacity == 0 {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill(time.Now())
	if tokens <= b.remaining {
		return 0
	}
	wait := b.refillInterval - time.Since(b.lastRefill)
	if wait < 0 {
		return 0
	}
	return wait
}

// refill resets the bucket when a full interval has elapsed.
// Callers must hold mu.
func (b *bucket) refill(now time.Time) {
	if now.Sub(b.lastRefill) >= b.refillInterval {
		b.remaining = b.capacity
		b.lastRefill = now
	}
}
