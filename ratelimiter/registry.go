package ratelimiter

import "sync"

// Registry maps model identifiers to their limiters. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	limiters map[string]Limiter
}

// NewRegistry creates an empty in-memory registry.
func NewRegistry() *Registry {
	return &Registry{
		limiters: make(map[string]Limiter),
	}
}

// Get returns the limiter registered for a model, if any.
func (r *Registry) Get(model string) (Limiter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	limiter, ok := r.limiters[model]
	return limiter, ok
}

// Set registers a limiter for a model, replacing any existing one.
func (r *Registry) Set(model string, limiter Limiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limiters[model] = limiter
}
