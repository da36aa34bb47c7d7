package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/grounded-ai/groundedqa/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastPolicy keeps test runs quick.
func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRecoversAfterTransientFailures(t *testing.T) {
	transient := models.NewProviderError("openai", "rate limit", 429, true, nil)

	calls := 0
	err := fastPolicy(3).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return transient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoFatalErrorPropagatesUnchanged(t *testing.T) {
	fatal := models.NewValidationError("question is too short", models.CodeQuestionTooShort)

	calls := 0
	err := fastPolicy(3).Do(context.Background(), func(context.Context) error {
		calls++
		return fatal
	})

	assert.Equal(t, 1, calls, "fatal errors get no second attempt")
	assert.Same(t, fatal, err, "fatal errors pass through unwrapped")
}

func TestDoExhaustionWrapsLastError(t *testing.T) {
	transient := models.NewProviderError("openai", "service unavailable", 503, true, nil)

	calls := 0
	err := fastPolicy(3).Do(context.Background(), func(context.Context) error {
		calls++
		return transient
	})

	assert.Equal(t, 3, calls)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.ErrorTypeRetryExhausted, appErr.Type)
	assert.True(t, errors.Is(err, transient), "exhaustion error wraps the last failure")
}

func TestDoObserverSeesEachTransition(t *testing.T) {
	transient := errors.New("connection refused")

	var attempts []int
	p := fastPolicy(3)
	p.OnRetry = func(err error, attempt int) {
		assert.Equal(t, transient, err)
		attempts = append(attempts, attempt)
	}

	_ = p.Do(context.Background(), func(context.Context) error {
		return transient
	})

	// Two transitions for three attempts; the final failure is not a transition.
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDoObserverPanicSwallowed(t *testing.T) {
	transient := errors.New("timeout talking to upstream")

	p := fastPolicy(2)
	p.OnRetry = func(error, int) {
		panic("observer bug")
	}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls == 1 {
			return transient
		}
		return nil
	})

	require.NoError(t, err, "observer panic must not abort the retry loop")
	assert.Equal(t, 2, calls)
}

func TestDoContextCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := fastPolicy(3).Do(ctx, func(context.Context) error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestDoContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := Policy{
		MaxAttempts: 3,
		BaseDelay:   10 * time.Second,
		MaxDelay:    10 * time.Second,
		Multiplier:  2.0,
	}

	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, func(context.Context) error {
			return errors.New("temporarily unavailable")
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Do did not abort the backoff sleep on cancellation")
	}
}

func TestDelayGrowsAndCaps(t *testing.T) {
	p := Policy{
		BaseDelay:  time.Second,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
	}

	assert.Equal(t, 1*time.Second, p.Delay(1))
	assert.Equal(t, 2*time.Second, p.Delay(2))
	assert.Equal(t, 4*time.Second, p.Delay(3))
	assert.Equal(t, 5*time.Second, p.Delay(4), "capped at MaxDelay")
}

func TestDelayJitterBounded(t *testing.T) {
	p := Policy{
		BaseDelay:  time.Second,
		MaxDelay:   time.Minute,
		Multiplier: 2.0,
		Jitter:     true,
	}

	for i := 0; i < 100; i++ {
		d := p.Delay(1)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 1250*time.Millisecond)
	}
}

func TestIsRetriable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline", context.DeadlineExceeded, false},
		{"retryable app error", models.NewProviderError("openai", "overloaded", 0, true, nil), true},
		{"fatal app error", models.NewValidationError("bad input", ""), false},
		{"app error with 429", models.NewProviderError("openai", "quota", 429, false, nil), true},
		{"app error with 503", models.NewProviderError("openai", "down", 503, false, nil), true},
		{"app error with 401", &models.AppError{Type: models.ErrorTypeProvider, Message: "unauthorized", StatusCode: 401}, false},
		{"rate limit text", errors.New("rate limit hit"), true},
		{"timeout text", errors.New("request timeout"), true},
		{"connection text", errors.New("connection reset by peer"), true},
		{"gateway text", errors.New("502 Bad Gateway"), true},
		{"too many requests text", errors.New("Too Many Requests"), true},
		{"plain error", errors.New("invalid API key"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetriable(tt.err))
		})
	}
}

func TestFromConfigDefaults(t *testing.T) {
	p := FromConfig(models.RetryConfig{})

	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, time.Second, p.BaseDelay)
	assert.Equal(t, time.Minute, p.MaxDelay)
	assert.Equal(t, 2.0, p.Multiplier)
	assert.True(t, p.Jitter)
}
