package models

import "time"

// RateLimitConfig configures the pipeline's sliding-window rate limiter.
// When RedisURL is set the limiter state lives in a Redis sorted set so
// multiple instances share one window; otherwise it is in-process.
type RateLimitConfig struct {
	MaxRequests   int    `json:"max_requests,omitzero" yaml:"max_requests,omitempty"`
	WindowSeconds int    `json:"window_seconds,omitzero" yaml:"window_seconds,omitempty"`
	RedisURL      string `json:"redis_url,omitzero" yaml:"redis_url,omitempty"`
}

// Defaults for the limiter: 20 requests per 60-second window.
const (
	DefaultRateLimitMaxRequests   = 20
	DefaultRateLimitWindowSeconds = 60
)

// Max returns the configured request budget or the default.
func (c RateLimitConfig) Max() int {
	if c.MaxRequests <= 0 {
		return DefaultRateLimitMaxRequests
	}
	return c.MaxRequests
}

// Window returns the configured window length or the default.
func (c RateLimitConfig) Window() time.Duration {
	seconds := c.WindowSeconds
	if seconds <= 0 {
		seconds = DefaultRateLimitWindowSeconds
	}
	return time.Duration(seconds) * time.Second
}
