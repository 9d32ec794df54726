// Package ratelimit gates outbound requests per origin so one slow or strict
// host never starves throughput to others.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// PerOrigin hands out permits per distinct origin (scheme+host). Each origin
// gets its own token bucket of capacity 1 refilled at the configured rate, so
// two acquires for the same origin are always at least one interval apart
// while different origins proceed independently.
type PerOrigin struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
}

// NewPerOrigin creates a limiter enforcing ratePerSecond requests per origin.
// A non-positive rate is treated as unlimited.
func NewPerOrigin(ratePerSecond float64) *PerOrigin {
	limit := rate.Limit(ratePerSecond)
	if ratePerSecond <= 0 {
		limit = rate.Inf
	}
	return &PerOrigin{
		limiters: make(map[string]*rate.Limiter),
		rate:     limit,
	}
}

// Acquire blocks until it is safe to issue one request to origin, or until
// the context is cancelled.
func (p *PerOrigin) Acquire(ctx context.Context, origin string) error {
	return p.limiter(origin).Wait(ctx)
}

func (p *PerOrigin) limiter(origin string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, ok := p.limiters[origin]
	if !ok {
		l = rate.NewLimiter(p.rate, 1)
		p.limiters[origin] = l
	}
	return l
}
