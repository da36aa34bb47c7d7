package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(maxRequests int, window time.Duration) (*Limiter, *fakeClock) {
	clock := newFakeClock()
	l := New(maxRequests, window)
	l.now = clock.Now
	return l, clock
}

func TestAllowUnderBudget(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, retryAfter, err := l.Allow(ctx, "client-1")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Zero(t, retryAfter)
	}
}

func TestDenyOverBudget(t *testing.T) {
	l, _ := newTestLimiter(2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, err := l.Allow(ctx, "client-1")
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, retryAfter, err := l.Allow(ctx, "client-1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, time.Minute, retryAfter)
}

func TestDeniedRequestNotRecorded(t *testing.T) {
	l, clock := newTestLimiter(1, time.Minute)
	ctx := context.Background()

	allowed, _, _ := l.Allow(ctx, "client-1")
	require.True(t, allowed)

	// Denials must not extend the window.
	for i := 0; i < 5; i++ {
		allowed, _, _ = l.Allow(ctx, "client-1")
		require.False(t, allowed)
	}

	clock.Advance(time.Minute + time.Second)
	allowed, _, _ = l.Allow(ctx, "client-1")
	assert.True(t, allowed)
}

func TestWindowSlides(t *testing.T) {
	l, clock := newTestLimiter(2, time.Minute)
	ctx := context.Background()

	allowed, _, _ := l.Allow(ctx, "client-1")
	require.True(t, allowed)

	clock.Advance(30 * time.Second)
	allowed, _, _ = l.Allow(ctx, "client-1")
	require.True(t, allowed)

	// Budget full; the oldest admission expires in 30s.
	allowed, retryAfter, _ := l.Allow(ctx, "client-1")
	require.False(t, allowed)
	assert.Equal(t, 30*time.Second, retryAfter)

	clock.Advance(31 * time.Second)
	allowed, _, _ = l.Allow(ctx, "client-1")
	assert.True(t, allowed)
}

func TestZeroBudgetAlwaysDenies(t *testing.T) {
	l, _ := newTestLimiter(0, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, retryAfter, err := l.Allow(ctx, "client-1")
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, time.Minute, retryAfter)
	}
}

func TestConfigureZeroBudgetDenies(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	ctx := context.Background()

	allowed, _, _ := l.Allow(ctx, "client-1")
	require.True(t, allowed)

	l.Configure(0, time.Minute)

	allowed, retryAfter, err := l.Allow(ctx, "client-1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, time.Minute, retryAfter)
}

func TestIdentifiersIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	ctx := context.Background()

	allowed, _, _ := l.Allow(ctx, "client-1")
	require.True(t, allowed)

	allowed, _, _ = l.Allow(ctx, "client-1")
	require.False(t, allowed)

	allowed, _, _ = l.Allow(ctx, "client-2")
	assert.True(t, allowed)
}

func TestReset(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	ctx := context.Background()

	_, _, _ = l.Allow(ctx, "client-1")
	_, _, _ = l.Allow(ctx, "client-2")

	require.NoError(t, l.Reset(ctx, "client-1"))

	allowed, _, _ := l.Allow(ctx, "client-1")
	assert.True(t, allowed, "reset identifier admits again")

	allowed, _, _ = l.Allow(ctx, "client-2")
	assert.False(t, allowed, "other identifiers keep their state")
}

func TestResetAll(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	ctx := context.Background()

	_, _, _ = l.Allow(ctx, "client-1")
	_, _, _ = l.Allow(ctx, "client-2")

	require.NoError(t, l.ResetAll(ctx))

	for _, id := range []string{"client-1", "client-2"} {
		allowed, _, _ := l.Allow(ctx, id)
		assert.True(t, allowed)
	}
}

func TestConfigureReplacesState(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	ctx := context.Background()

	_, _, _ = l.Allow(ctx, "client-1")
	allowed, _, _ := l.Allow(ctx, "client-1")
	require.False(t, allowed)

	l.Configure(2, time.Minute)

	// Fresh window: prior admissions are gone.
	for i := 0; i < 2; i++ {
		allowed, _, _ = l.Allow(ctx, "client-1")
		assert.True(t, allowed)
	}
	allowed, _, _ = l.Allow(ctx, "client-1")
	assert.False(t, allowed)
}

func TestConcurrentAdmissions(t *testing.T) {
	const budget = 50
	l := New(budget, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, _, err := l.Allow(ctx, "shared")
			assert.NoError(t, err)
			if allowed {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, budget, admitted)
}
