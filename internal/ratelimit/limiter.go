package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const baseBackoff = 100 * time.Millisecond

// Limiter paces requests to one upstream API and backs off after the
// upstream reports rate limiting
type Limiter struct {
	limiter *rate.Limiter
	name    string
	mu      sync.Mutex
	backoff time.Duration
	maxWait time.Duration
	limited bool
}

// NewLimiter creates a new rate limiter
// perMinute specifies the number of requests allowed per minute
func NewLimiter(name string, perMinute int) *Limiter {
	rps := float64(perMinute) / 60.0
	// Burst of 1/10th of the per-minute limit, between 1 and 5
	burst := min(max(perMinute/10, 1), 5)

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    name,
		backoff: baseBackoff,
		maxWait: 2 * time.Minute,
	}
}

// Wait blocks until a token is available or context is cancelled. After a
// rate-limit signal it first sleeps for the current backoff.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	var pause time.Duration
	if l.limited {
		pause = l.backoff
	}
	l.mu.Unlock()

	if pause > 0 {
		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// Allow reports whether an event may happen now
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// SignalRateLimited should be called when a 429 response is received
// It applies exponential backoff
func (l *Limiter) SignalRateLimited() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.limited {
		l.backoff = min(l.backoff*2, l.maxWait)
	}
	l.limited = true
}

// ResetBackoff resets the backoff duration after successful request
func (l *Limiter) ResetBackoff() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.backoff = baseBackoff
	l.limited = false
}

// GetBackoff returns the pause applied before the next request, zero when
// not rate limited
func (l *Limiter) GetBackoff() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.limited {
		return 0
	}
	return l.backoff
}

// Name returns the limiter name
func (l *Limiter) Name() string {
	return l.name
}
