// Package retry executes the completion call under an exponential-backoff
// policy. Transient failures are contained here; callers only ever see
// success, a fatal error, or a retry-exhaustion error wrapping the last
// transient failure.
package retry

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"net"
	"strings"
	"time"

	"github.com/grounded-ai/groundedqa/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// retriableStatusCodes are HTTP-like upstream statuses treated as transient.
var retriableStatusCodes = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// retriableMessages is the transient-condition vocabulary matched against
// lowercased error text.
var retriableMessages = []string{
	"rate limit",
	"timeout",
	"connection",
	"temporarily unavailable",
	"service unavailable",
	"bad gateway",
	"gateway timeout",
	"too many requests",
}

// Observer is invoked on each retriable transition with the error and the
// attempt number that just failed. Panics are swallowed and logged, never
// propagated.
type Observer func(err error, attempt int)

// Policy is a configurable retry policy. The zero value is not useful;
// construct with DefaultPolicy or FromConfig.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      bool
	OnRetry     Observer
}

// DefaultPolicy returns the standard policy: 3 attempts, 1s base delay,
// 60s delay ceiling, jitter enabled.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    60 * time.Second,
		Multiplier:  2.0,
		Jitter:      true,
	}
}

// FromConfig builds a policy from per-request retry tuning.
func FromConfig(cfg models.RetryConfig) Policy {
	return Policy{
		MaxAttempts: cfg.Attempts(),
		BaseDelay:   cfg.BaseDelay(),
		MaxDelay:    cfg.MaxDelay(),
		Multiplier:  cfg.Backoff(),
		Jitter:      cfg.JitterEnabled(),
	}
}

// Do invokes fn under the policy. Fatal errors propagate immediately with no
// delay. Retriable errors trigger backoff and re-invocation until the
// attempt budget is exhausted, at which point the last error is wrapped in a
// retry-exhaustion error. The context is observed before each attempt and
// during each sleep, so cancellation aborts promptly instead of completing
// the backoff schedule.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				fiberlog.Infof("retry: succeeded after %d attempts", attempt)
			}
			return nil
		}
		lastErr = err

		if !IsRetriable(err) {
			fiberlog.Errorf("retry: non-retriable error on attempt %d: %v", attempt, err)
			return err
		}

		if attempt >= p.MaxAttempts {
			break
		}

		p.notify(err, attempt)

		delay := p.Delay(attempt)
		fiberlog.Warnf("retry: attempt %d/%d failed: %v, retrying in %s", attempt, p.MaxAttempts, err, delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	fiberlog.Errorf("retry: all %d attempts failed, last error: %v", p.MaxAttempts, lastErr)
	return models.NewRetryExhaustedError(p.MaxAttempts, lastErr)
}

// Delay computes the backoff before the attempt following the given 1-based
// attempt number: min(base * multiplier^(attempt-1), max), inflated by up to
// 25% uniform jitter when enabled.
func (p Policy) Delay(attempt int) time.Duration {
	delay := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if p.Jitter {
		delay += delay * 0.25 * rand.Float64()
	}

	return time.Duration(delay)
}

// notify calls the observer, swallowing anything it throws.
func (p Policy) notify(err error, attempt int) {
	if p.OnRetry == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			fiberlog.Errorf("retry: observer panicked: %v", r)
		}
	}()
	p.OnRetry(err, attempt)
}

// IsRetriable classifies an error as transient or fatal. An error is
// transient when it is a known transient category (connection failure,
// timeout, I/O failure), when its message matches the transient-condition
// vocabulary, or when it carries an upstream status in {429,500,502,503,504}.
// Context cancellation is never retried.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		if appErr.Retryable {
			return true
		}
		if retriableStatusCodes[appErr.StatusCode] {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range retriableMessages {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}
