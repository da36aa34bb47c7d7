// Package qa orchestrates the grounded answer pipeline: preprocessing,
// policy validation, rate limiting, the retry-wrapped completion call, and
// output sanitization, in that order.
package qa

import (
	"context"
	"time"

	"github.com/grounded-ai/groundedqa/internal/models"
	"github.com/grounded-ai/groundedqa/internal/services/cache"
	"github.com/grounded-ai/groundedqa/internal/services/completion"
	"github.com/grounded-ai/groundedqa/internal/services/policy"
	"github.com/grounded-ai/groundedqa/internal/services/preprocess"
	"github.com/grounded-ai/groundedqa/internal/services/ratelimit"
	"github.com/grounded-ai/groundedqa/internal/services/retry"
	"github.com/grounded-ai/groundedqa/internal/services/sanitize"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Result is a successful pipeline outcome. CacheTier is empty when the
// answer came from the provider.
type Result struct {
	Answer    string
	CacheTier string
}

// Service runs the answer pipeline. It holds no per-request state; every
// call carries its own config and identifiers.
type Service struct {
	factory     completion.ProviderFactory
	limiter     ratelimit.Admitter
	answerCache *cache.AnswerCache
}

// New creates the pipeline service. answerCache may be nil.
func New(factory completion.ProviderFactory, limiter ratelimit.Admitter, answerCache *cache.AnswerCache) *Service {
	return &Service{
		factory:     factory,
		limiter:     limiter,
		answerCache: answerCache,
	}
}

// Answer runs the full pipeline for one question. Stages run in a fixed
// order and the first failure wins; rate-limit admission is only consumed by
// requests that already passed validation.
func (s *Service) Answer(ctx context.Context, question, contextText string, cfg models.QAConfig, requestID string) (*Result, error) {
	start := time.Now()

	question = preprocess.Normalize(question)
	contextText = preprocess.Normalize(contextText)
	contextText = preprocess.Clip(contextText, cfg.MaxContextChars)

	if err := policy.ValidateInput(question, contextText); err != nil {
		fiberlog.Warnf("[%s] input rejected: %v", requestID, err)
		return nil, err
	}
	if err := policy.ValidateConfig(cfg); err != nil {
		fiberlog.Warnf("[%s] config rejected: %v", requestID, err)
		return nil, err
	}

	if cfg.EnableRateLimiting && s.limiter != nil {
		id := cfg.RateLimitIdentifier
		if id == "" {
			id = models.DefaultRateLimitID
		}
		allowed, retryAfter, err := s.limiter.Allow(ctx, id)
		if err != nil {
			fiberlog.Errorf("[%s] rate limit check failed: %v", requestID, err)
			return nil, models.NewInternalError("rate limit check failed", err)
		}
		if !allowed {
			fiberlog.Warnf("[%s] rate limit exceeded for %q, retry after %v", requestID, id, retryAfter)
			return nil, models.NewRateLimitError(retryAfter)
		}
	}

	prompt := completion.BuildPrompt(question, contextText)

	if answer, tier, ok := s.answerCache.Get(ctx, prompt, requestID); ok {
		s.logElapsed(requestID, cfg, start)
		return &Result{Answer: answer, CacheTier: tier}, nil
	}

	provider, err := s.factory.ProviderFor(cfg.Model)
	if err != nil {
		fiberlog.Errorf("[%s] provider resolution failed: %v", requestID, err)
		return nil, err
	}

	req := completion.Request{
		System:      completion.SystemPrompt,
		Prompt:      prompt,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
	}

	var raw string
	call := func(ctx context.Context) error {
		var callErr error
		raw, callErr = provider.Complete(ctx, req)
		return callErr
	}

	if cfg.EnableRetry {
		pol := retry.FromConfig(cfg.Retry)
		pol.OnRetry = func(err error, attempt int) {
			fiberlog.Warnf("[%s] completion attempt %d failed: %v", requestID, attempt, err)
		}
		err = pol.Do(ctx, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, err
	}

	answer := sanitize.Sanitize(raw)
	s.answerCache.Set(ctx, prompt, answer, requestID)

	s.logElapsed(requestID, cfg, start)
	return &Result{Answer: answer}, nil
}

func (s *Service) logElapsed(requestID string, cfg models.QAConfig, start time.Time) {
	elapsed := time.Since(start)
	threshold := cfg.SlowRequestThreshold()
	if elapsed > threshold {
		fiberlog.Warnf("[%s] slow request: completed in %v (threshold %v)", requestID, elapsed, threshold)
		return
	}
	fiberlog.Debugf("[%s] completed in %v", requestID, elapsed)
}
