package ratelimit

import (
	"context"
	"fmt"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "ratelimit:"

// allowScript runs the evict-check-record sequence atomically on a sorted
// set of admission timestamps (scores are unix microseconds).
// KEYS[1]: window key for the identifier
// ARGV[1]: now (unix microseconds)
// ARGV[2]: window length (microseconds)
// ARGV[3]: max requests
// Returns {1, 0} when admitted, {0, retry_after_micros} when denied.
const allowScript = `
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local max = tonumber(ARGV[3])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

	local count = redis.call('ZCARD', key)
	if count < max then
		redis.call('ZADD', key, now, now)
		redis.call('PEXPIRE', key, math.ceil(window / 1000))
		return {1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local retry = tonumber(oldest[2]) + window - now
	return {0, retry}
`

// RedisLimiter is a sliding-window limiter whose state lives in Redis, so
// concurrent instances of the service share one admission window per
// identifier.
type RedisLimiter struct {
	client      *redis.Client
	maxRequests int
	window      time.Duration
}

// NewRedisLimiter creates a Redis-backed limiter and verifies connectivity.
func NewRedisLimiter(client *redis.Client, maxRequests int, window time.Duration) *RedisLimiter {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		fiberlog.Errorf("RedisLimiter: connection check failed: %v", err)
	}

	return &RedisLimiter{
		client:      client,
		maxRequests: maxRequests,
		window:      window,
	}
}

// Allow runs the admission check for id as a single atomic script.
func (l *RedisLimiter) Allow(ctx context.Context, id string) (bool, time.Duration, error) {
	keys := []string{rateLimitKeyPrefix + id}
	args := []any{
		time.Now().UnixMicro(),
		l.window.Microseconds(),
		l.maxRequests,
	}

	result, err := l.client.Eval(ctx, allowScript, keys, args...).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(result) != 2 {
		return false, 0, fmt.Errorf("rate limit check returned unexpected result: %v", result)
	}

	if result[0] == 1 {
		return true, 0, nil
	}
	return false, time.Duration(result[1]) * time.Microsecond, nil
}

// Reset clears tracked state for one identifier.
func (l *RedisLimiter) Reset(ctx context.Context, id string) error {
	return l.client.Del(ctx, rateLimitKeyPrefix+id).Err()
}

// ResetAll clears tracked state for every identifier.
func (l *RedisLimiter) ResetAll(ctx context.Context) error {
	iter := l.client.Scan(ctx, 0, rateLimitKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := l.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
