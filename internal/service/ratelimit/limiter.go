package ratelimit

import (
	"sync"
	"time"
)

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter is a keyed token bucket. Every key starts full with capacity tokens
// and regains one token per refillEvery.
type Limiter struct {
	mu          sync.Mutex
	m           map[string]*bucket
	capacity    float64
	refillEvery time.Duration
	now         func() time.Time
}

// New creates a limiter. A non-positive capacity or refill disables limiting.
func New(capacity int, refillEvery time.Duration) *Limiter {
	return &Limiter{
		m:           make(map[string]*bucket),
		capacity:    float64(capacity),
		refillEvery: refillEvery,
		now:         time.Now,
	}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	if l.capacity <= 0 || l.refillEvery <= 0 {
		return true
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: l.capacity, last: now}
		l.m[key] = b
	}

	if elapsed := now.Sub(b.last); elapsed > 0 {
		b.tokens += l.refilled(elapsed)
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Prune drops buckets that have refilled completely. Call it periodically to bound memory.
func (l *Limiter) Prune() int {
	if l.refillEvery <= 0 {
		return 0
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for k, b := range l.m {
		if b.tokens+l.refilled(now.Sub(b.last)) >= l.capacity {
			delete(l.m, k)
			removed++
		}
	}
	return removed
}

func (l *Limiter) refilled(elapsed time.Duration) float64 {
	return float64(elapsed) / float64(l.refillEvery)
}
