package models

import (
	"fmt"
	"time"
)

// Schema-level bounds for QAConfig. The policy validator applies stricter
// ranges on top of these; both layers are checked independently.
const (
	SchemaMinTemperature   = 0.0
	SchemaMaxTemperature   = 2.0
	SchemaMinContextChars  = 500
	DefaultModel           = "gpt-4o-mini"
	DefaultTemperature     = 0.2
	DefaultMaxContextChars = 6000
	DefaultRateLimitID     = "global"
)

// RetryConfig tunes the retry controller around the completion call.
type RetryConfig struct {
	MaxAttempts int     `json:"max_attempts,omitzero" yaml:"max_attempts,omitempty"`
	BaseDelayMs int     `json:"base_delay_ms,omitzero" yaml:"base_delay_ms,omitempty"`
	MaxDelayMs  int     `json:"max_delay_ms,omitzero" yaml:"max_delay_ms,omitempty"`
	Multiplier  float64 `json:"multiplier,omitzero" yaml:"multiplier,omitempty"`
	Jitter      *bool   `json:"jitter,omitzero" yaml:"jitter,omitempty"`
}

// BaseDelay returns the base delay as a duration, defaulting to 1s.
func (r RetryConfig) BaseDelay() time.Duration {
	if r.BaseDelayMs <= 0 {
		return 1 * time.Second
	}
	return time.Duration(r.BaseDelayMs) * time.Millisecond
}

// MaxDelay returns the delay ceiling as a duration, defaulting to 60s.
func (r RetryConfig) MaxDelay() time.Duration {
	if r.MaxDelayMs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(r.MaxDelayMs) * time.Millisecond
}

// Attempts returns the attempt budget, defaulting to 3.
func (r RetryConfig) Attempts() int {
	if r.MaxAttempts <= 0 {
		return 3
	}
	return r.MaxAttempts
}

// Backoff returns the exponential base, defaulting to 2.0.
func (r RetryConfig) Backoff() float64 {
	if r.Multiplier <= 0 {
		return 2.0
	}
	return r.Multiplier
}

// JitterEnabled reports whether jitter is on (default true).
func (r RetryConfig) JitterEnabled() bool {
	if r.Jitter == nil {
		return true
	}
	return *r.Jitter
}

// QAConfig is the immutable per-request configuration for the answer
// pipeline. It is owned by the caller and passed by value to every stage;
// no component mutates it.
type QAConfig struct {
	Model                  string      `json:"model,omitzero" yaml:"model,omitempty"`
	Temperature            float64     `json:"temperature" yaml:"temperature"`
	MaxContextChars        int         `json:"max_context_chars,omitzero" yaml:"max_context_chars,omitempty"`
	EnableRateLimiting     bool        `json:"enable_rate_limiting,omitzero" yaml:"enable_rate_limiting,omitempty"`
	RateLimitIdentifier    string      `json:"rate_limit_identifier,omitzero" yaml:"rate_limit_identifier,omitempty"`
	EnableRetry            bool        `json:"enable_retry,omitzero" yaml:"enable_retry,omitempty"`
	Retry                  RetryConfig `json:"retry,omitzero" yaml:"retry,omitempty"`
	SlowRequestThresholdMs int         `json:"slow_request_threshold_ms,omitzero" yaml:"slow_request_threshold_ms,omitempty"`
}

// DefaultQAConfig returns the configuration used when the caller provides
// no overrides.
func DefaultQAConfig() QAConfig {
	return QAConfig{
		Model:                  DefaultModel,
		Temperature:            DefaultTemperature,
		MaxContextChars:        DefaultMaxContextChars,
		EnableRateLimiting:     true,
		RateLimitIdentifier:    DefaultRateLimitID,
		EnableRetry:            true,
		SlowRequestThresholdMs: 10000,
	}
}

// ValidateSchema checks the permissive, schema-level ranges. The policy
// validator enforces stricter ranges (e.g. temperature capped at 1.0) as an
// independent second layer.
func (c QAConfig) ValidateSchema() error {
	if c.Temperature < SchemaMinTemperature || c.Temperature > SchemaMaxTemperature {
		return NewValidationError(
			fmt.Sprintf("temperature %.2f outside schema range [%.1f, %.1f]", c.Temperature, SchemaMinTemperature, SchemaMaxTemperature),
			CodeTemperatureRange,
		)
	}
	if c.MaxContextChars < SchemaMinContextChars {
		return NewValidationError(
			fmt.Sprintf("max_context_chars must be at least %d", SchemaMinContextChars),
			CodeContextBudgetRange,
		)
	}
	return nil
}

// SlowRequestThreshold returns the slow-request warning threshold, defaulting
// to 10s when unset.
func (c QAConfig) SlowRequestThreshold() time.Duration {
	if c.SlowRequestThresholdMs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.SlowRequestThresholdMs) * time.Millisecond
}
