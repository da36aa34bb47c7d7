// Package cache provides the optional semantic answer cache: sanitized
// answers keyed by the full prompt, with exact and similarity lookup tiers.
package cache

import (
	"context"
	"fmt"

	"github.com/grounded-ai/groundedqa/internal/models"

	"github.com/botirk38/semanticcache"
	"github.com/botirk38/semanticcache/options"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

const (
	defaultSemanticThreshold = 0.99
	defaultEmbeddingModel    = "text-embedding-3-small"
	defaultCapacity          = 1000
)

// AnswerCache stores sanitized answers keyed by prompt text. Lookups try an
// exact key match first, then semantic similarity above the configured
// threshold. Cache failures are logged and treated as misses.
type AnswerCache struct {
	semanticCache *semanticcache.SemanticCache[string, string]
	threshold     float32
}

// NewAnswerCache builds the cache described by config. A disabled or
// credential-less config yields a nil cache, which all methods tolerate.
func NewAnswerCache(config *models.CacheConfig) (*AnswerCache, error) {
	if config == nil || !config.Enabled || config.OpenAIAPIKey == "" {
		fiberlog.Info("AnswerCache: disabled")
		return nil, nil
	}

	threshold := config.SemanticThreshold
	if threshold <= 0 || threshold > 1 {
		if config.SemanticThreshold != 0 {
			fiberlog.Warnf("AnswerCache: invalid threshold %.2f, using default %.2f", config.SemanticThreshold, defaultSemanticThreshold)
		}
		threshold = defaultSemanticThreshold
	}

	embedModel := config.EmbeddingModel
	if embedModel == "" {
		embedModel = defaultEmbeddingModel
	}

	backend := config.Backend
	if backend == "" {
		backend = models.CacheBackendMemory
	}

	var semanticCache *semanticcache.SemanticCache[string, string]
	var err error

	switch backend {
	case models.CacheBackendMemory:
		capacity := config.Capacity
		if capacity <= 0 {
			capacity = defaultCapacity
		}
		fiberlog.Debugf("AnswerCache: using in-memory LRU backend with capacity=%d", capacity)
		semanticCache, err = semanticcache.New(
			options.WithOpenAIProvider[string, string](config.OpenAIAPIKey, embedModel),
			options.WithLRUBackend[string, string](capacity),
		)

	case models.CacheBackendRedis:
		if config.RedisURL == "" {
			return nil, fmt.Errorf("redis URL not set for redis cache backend")
		}
		fiberlog.Debugf("AnswerCache: using Redis backend")
		semanticCache, err = semanticcache.New(
			options.WithOpenAIProvider[string, string](config.OpenAIAPIKey, embedModel),
			options.WithRedisBackend[string, string](config.RedisURL, 0),
		)

	default:
		return nil, fmt.Errorf("unsupported cache backend: %s (supported: redis, memory)", backend)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create semantic cache: %w", err)
	}

	fiberlog.Infof("AnswerCache: initialized with backend=%s, threshold=%.2f", backend, threshold)
	return &AnswerCache{
		semanticCache: semanticCache,
		threshold:     float32(threshold),
	}, nil
}

// Get looks up a cached answer for the prompt. It reports the tier the hit
// came from: exact key match or semantic similarity.
func (ac *AnswerCache) Get(ctx context.Context, prompt, requestID string) (string, string, bool) {
	if ac == nil || ac.semanticCache == nil {
		return "", "", false
	}

	if hit, found, err := ac.semanticCache.Get(ctx, prompt); found && err == nil {
		fiberlog.Infof("[%s] AnswerCache: exact cache hit", requestID)
		return hit, models.CacheTierExact, true
	} else if err != nil {
		fiberlog.Errorf("[%s] AnswerCache: exact lookup failed: %v", requestID, err)
	}

	if match, err := ac.semanticCache.Lookup(ctx, prompt, ac.threshold); err == nil && match != nil {
		fiberlog.Infof("[%s] AnswerCache: semantic cache hit", requestID)
		return match.Value, models.CacheTierSimilar, true
	} else if err != nil {
		fiberlog.Errorf("[%s] AnswerCache: semantic lookup failed: %v", requestID, err)
	}

	fiberlog.Debugf("[%s] AnswerCache: cache miss", requestID)
	return "", "", false
}

// Set stores a sanitized answer under the prompt. Failures are logged, not
// returned; caching is advisory.
func (ac *AnswerCache) Set(ctx context.Context, prompt, answer, requestID string) {
	if ac == nil || ac.semanticCache == nil {
		return
	}

	if err := ac.semanticCache.Set(ctx, prompt, prompt, answer); err != nil {
		fiberlog.Errorf("[%s] AnswerCache: failed to store answer: %v", requestID, err)
		return
	}
	fiberlog.Debugf("[%s] AnswerCache: stored answer", requestID)
}

// Close releases backend resources.
func (ac *AnswerCache) Close() error {
	if ac == nil || ac.semanticCache == nil {
		return nil
	}
	return ac.semanticCache.Close()
}
