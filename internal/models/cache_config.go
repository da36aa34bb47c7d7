package models

// Cache backend types
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Cache tier labels reported on hits
const (
	CacheTierExact   = "exact"
	CacheTierSimilar = "similar"
)

// CacheConfig configures the optional semantic answer cache.
type CacheConfig struct {
	Enabled           bool    `json:"enabled,omitzero" yaml:"enabled,omitempty"`
	Backend           string  `json:"backend,omitzero" yaml:"backend,omitempty"`
	RedisURL          string  `json:"redis_url,omitzero" yaml:"redis_url,omitempty"`
	OpenAIAPIKey      string  `json:"openai_api_key,omitzero" yaml:"openai_api_key,omitempty"`
	EmbeddingModel    string  `json:"embedding_model,omitzero" yaml:"embedding_model,omitempty"`
	SemanticThreshold float64 `json:"semantic_threshold,omitzero" yaml:"semantic_threshold,omitempty"`
	Capacity          int     `json:"capacity,omitzero" yaml:"capacity,omitempty"`
}
