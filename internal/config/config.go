package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grounded-ai/groundedqa/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// apiKeyPattern is the allowed shape for provider API keys.
var apiKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)

// Config represents the complete application configuration
type Config struct {
	Server    models.ServerConfig              `yaml:"server"`
	QA        models.QAConfig                  `yaml:"qa"`
	Providers map[string]models.ProviderConfig `yaml:"providers"`
	RateLimit models.RateLimitConfig           `yaml:"rate_limit"`
	Cache     *models.CacheConfig              `yaml:"cache,omitempty"`
}

// LoadFromFile loads configuration from a YAML file with environment variable substitution
func LoadFromFile(configPath string) (*Config, error) {
	// Validate and clean the file path to prevent directory traversal
	cleanPath := filepath.Clean(configPath)

	if strings.Contains(cleanPath, "..") {
		return nil, fmt.Errorf("invalid config path: path traversal not allowed")
	}

	ext := filepath.Ext(cleanPath)
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("invalid config file: only .yaml and .yml files are allowed")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	content := substituteEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	// Normalize provider map keys to lowercase for case-insensitive lookups
	if config.Providers != nil {
		normalized := make(map[string]models.ProviderConfig, len(config.Providers))
		for key, value := range config.Providers {
			normalized[strings.ToLower(key)] = value
		}
		config.Providers = normalized
	}

	config.applyQADefaults()

	return &config, nil
}

// applyQADefaults fills unset QA fields from the pipeline defaults so a
// sparse YAML section still yields a complete configuration.
func (c *Config) applyQADefaults() {
	def := models.DefaultQAConfig()
	if c.QA.Model == "" {
		c.QA.Model = def.Model
	}
	if c.QA.MaxContextChars == 0 {
		c.QA.MaxContextChars = def.MaxContextChars
	}
	if c.QA.RateLimitIdentifier == "" {
		c.QA.RateLimitIdentifier = def.RateLimitIdentifier
	}
	if c.QA.SlowRequestThresholdMs == 0 {
		c.QA.SlowRequestThresholdMs = def.SlowRequestThresholdMs
	}
}

// LoadEnvFiles loads environment variables from .env files in order of precedence
// Loads files in the order provided (first has highest priority)
func LoadEnvFiles(envFiles []string) {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err == nil {
				fmt.Printf("Loaded environment variables from %s\n", envFile)
			}
		}
	}
}

// New creates a new Config instance by loading from the specified config file path
func New(configPath string) (*Config, error) {
	return LoadFromFile(configPath)
}

// substituteEnvVars replaces ${VAR_NAME} and ${VAR_NAME:-default} patterns with environment variables
func substituteEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::(-[^}]*))?\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		submatches := re.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultValue := ""

		if len(submatches) > 2 && submatches[2] != "" {
			defaultValue = strings.TrimPrefix(submatches[2], "-")
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// GetProviderConfig returns the configuration for a specific provider
func (c *Config) GetProviderConfig(provider string) (models.ProviderConfig, bool) {
	cfg, exists := c.Providers[strings.ToLower(provider)]
	return cfg, exists
}

// GetNormalizedLogLevel returns the log level in lowercase for consistent comparison
func (c *Config) GetNormalizedLogLevel() string {
	return strings.ToLower(c.Server.LogLevel)
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Validate checks if all required configuration values are set and that
// configured provider API keys look plausible.
func (c *Config) Validate() error {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "server.port")
	}
	if c.Server.AllowedOrigins == "" {
		missing = append(missing, "server.allowed_origins")
	}
	if len(c.Providers) == 0 {
		missing = append(missing, "providers")
	}

	if len(missing) > 0 {
		return &ValidationError{MissingFields: missing}
	}

	for name, p := range c.Providers {
		if err := validateAPIKey(name, p.APIKey); err != nil {
			return err
		}
	}

	return nil
}

// validateAPIKey checks that a provider key is present and well-formed.
func validateAPIKey(provider, key string) error {
	if key == "" {
		return fmt.Errorf("provider %s: API key not configured", provider)
	}
	if len(key) < 10 {
		return fmt.Errorf("provider %s: API key appears to be invalid (too short)", provider)
	}
	if !apiKeyPattern.MatchString(key) {
		return fmt.Errorf("provider %s: API key contains invalid characters", provider)
	}
	return nil
}

// ValidationError represents configuration validation errors
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return "missing required configuration fields: " + strings.Join(e.MissingFields, ", ")
}
