// Package ratelimit provides sliding-window admission control keyed by a
// caller-supplied identifier. Two implementations share the Admitter
// interface: an in-process limiter and a Redis-backed one for multi-instance
// deployments.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Admitter decides whether a request identified by id may proceed. When the
// request is denied, retryAfter is the duration until the oldest admission
// leaves the window.
type Admitter interface {
	Allow(ctx context.Context, id string) (allowed bool, retryAfter time.Duration, err error)
	Reset(ctx context.Context, id string) error
	ResetAll(ctx context.Context) error
}

// Limiter is a thread-safe in-process sliding-window rate limiter. The
// evict-check-record sequence runs as a single critical section; the lock is
// never held across network calls or sleeps.
type Limiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	requests    map[string][]time.Time
	now         func() time.Time
}

// New creates a limiter allowing maxRequests admissions per window.
func New(maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		requests:    make(map[string][]time.Time),
		now:         time.Now,
	}
}

// Allow runs the admission check for id: evict expired timestamps, admit if
// under budget (recording now), otherwise deny without recording and report
// when the oldest remaining admission expires.
func (l *Limiter) Allow(_ context.Context, id string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	times := l.requests[id]
	kept := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) < l.maxRequests {
		l.requests[id] = append(kept, now)
		return true, 0, nil
	}

	l.requests[id] = kept
	if len(kept) == 0 {
		// Zero budget: nothing will ever expire, the window length is the
		// only honest hint.
		return false, l.window, nil
	}
	retryAfter := kept[0].Add(l.window).Sub(now)
	return false, retryAfter, nil
}

// Reset clears tracked state for one identifier.
func (l *Limiter) Reset(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.requests, id)
	return nil
}

// ResetAll clears all tracked state.
func (l *Limiter) ResetAll(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requests = make(map[string][]time.Time)
	return nil
}

// Configure replaces the limiter's parameters and state wholesale: a fresh
// window, not merged history.
func (l *Limiter) Configure(maxRequests int, window time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maxRequests = maxRequests
	l.window = window
	l.requests = make(map[string][]time.Time)
}
