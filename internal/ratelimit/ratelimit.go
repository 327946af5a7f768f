package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// RateLimiter paces page fetches so retailer sites see human-ish request
// intervals.
type RateLimiter interface {
	Wait(ctx context.Context) error
	SetDelay(min, max time.Duration)
}

type SimpleRateLimiter struct {
	minDelay   time.Duration
	maxDelay   time.Duration
	lastAction time.Time
	mu         sync.Mutex
	jitter     bool
}

func NewSimpleRateLimiter(minDelay, maxDelay time.Duration) *SimpleRateLimiter {
	return &SimpleRateLimiter{
		minDelay: minDelay,
		maxDelay: maxDelay,
		jitter:   true,
	}
}

func (r *SimpleRateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := time.Since(r.lastAction)
	delay := r.calculateDelay()

	if elapsed < delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay - elapsed):
		}
	}

	r.lastAction = time.Now()
	return nil
}

func (r *SimpleRateLimiter) SetDelay(min, max time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.minDelay = min
	r.maxDelay = max
}

func (r *SimpleRateLimiter) calculateDelay() time.Duration {
	if !r.jitter || r.minDelay >= r.maxDelay {
		return r.minDelay
	}

	delta := r.maxDelay - r.minDelay
	jitter := time.Duration(rand.Int63n(int64(delta)))
	return r.minDelay + jitter
}

// Thai storefronts sit behind Cloudflare and escalate to challenge pages
// after only a couple of bad requests, so the limiter doubles its delays
// on a short error burst and eases back much more cautiously.
const (
	errorBurst     = 2
	successStreak  = 8
	backoffFactor  = 2.0
	recoveryFactor = 0.85
	floorDelay     = 2 * time.Second
	ceilingMin     = 90 * time.Second
	ceilingMax     = 3 * time.Minute
)

// AdaptiveRateLimiter widens its delay window when a retailer starts
// erroring and narrows it again on sustained success.
type AdaptiveRateLimiter struct {
	*SimpleRateLimiter

	// streak counts consecutive outcomes: positive successes, negative
	// errors. Either kind resets the other.
	streak int
}

func NewAdaptiveRateLimiter(minDelay, maxDelay time.Duration) *AdaptiveRateLimiter {
	return &AdaptiveRateLimiter{
		SimpleRateLimiter: NewSimpleRateLimiter(minDelay, maxDelay),
	}
}

func (a *AdaptiveRateLimiter) RecordSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.streak < 0 {
		a.streak = 0
	}
	a.streak++

	if a.streak >= successStreak {
		a.minDelay = max(time.Duration(float64(a.minDelay)*recoveryFactor), floorDelay)
		a.streak = 0
	}
}

func (a *AdaptiveRateLimiter) RecordError() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.streak > 0 {
		a.streak = 0
	}
	a.streak--

	if -a.streak >= errorBurst {
		a.minDelay = min(time.Duration(float64(a.minDelay)*backoffFactor), ceilingMin)
		a.maxDelay = min(time.Duration(float64(a.maxDelay)*backoffFactor), ceilingMax)
		a.streak = 0
	}
}
