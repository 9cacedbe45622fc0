package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a token bucket refilled at a fixed per-minute rate.
// Allow never blocks; callers that are denied decide whether to wait
// or fall through to another source.
type Limiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	perSec   float64
	last     time.Time
	now      func() time.Time
}

// NewPerMinute creates a limiter allowing ratePerMin calls per minute,
// with burst capacity equal to the rate.
func NewPerMinute(ratePerMin int) *Limiter {
	if ratePerMin <= 0 {
		ratePerMin = 1
	}
	return &Limiter{
		tokens:   float64(ratePerMin),
		capacity: float64(ratePerMin),
		perSec:   float64(ratePerMin) / 60.0,
		last:     time.Now(),
		now:      time.Now,
	}
}

// Allow consumes a token if one is available.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	elapsed := now.Sub(l.last).Seconds()
	l.last = now

	l.tokens += elapsed * l.perSec
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}

	if l.tokens < 1 {
		return false
	}
	l.tokens--
	return true
}
