// Package ratelimit throttles scrape requests per client using a token
// bucket. A scrape job holds a browser for up to two minutes, so unthrottled
// clients can pin every profile directory the service owns.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks one token bucket per client identifier.
type Limiter struct {
	capacity   int
	refillRate float64

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// NewLimiter creates a limiter allowing capacity burst requests per client,
// refilling at refillRate tokens per second.
func NewLimiter(capacity int, refillRate float64) *Limiter {
	return &Limiter{
		capacity:   capacity,
		refillRate: refillRate,
		buckets:    make(map[string]*bucket),
	}
}

// Allow reports whether the client may proceed, consuming a token if so.
func (l *Limiter) Allow(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[clientID]
	if !ok {
		b = &bucket{tokens: float64(l.capacity), lastRefill: time.Now()}
		l.buckets[clientID] = b
	}

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * l.refillRate
	if b.tokens > float64(l.capacity) {
		b.tokens = float64(l.capacity)
	}
	b.lastRefill = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}
	return false
}

// Prune drops buckets idle longer than maxIdle, bounding memory over time.
func (l *Limiter) Prune(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	for id, b := range l.buckets {
		if b.lastRefill.Before(cutoff) {
			delete(l.buckets, id)
		}
	}
}
