package models

// ProviderConfig holds the connection settings for one completion provider
type ProviderConfig struct {
	APIKey    string            `json:"api_key,omitzero" yaml:"api_key,omitempty"`
	BaseURL   string            `json:"base_url,omitzero" yaml:"base_url,omitempty"`
	TimeoutMs int               `json:"timeout_ms,omitzero" yaml:"timeout_ms,omitempty"`
	Headers   map[string]string `json:"headers,omitzero" yaml:"headers,omitempty"`
}
