package completion

import (
	"fmt"
	"sync"

	"github.com/grounded-ai/groundedqa/internal/config"
	"github.com/grounded-ai/groundedqa/internal/models"
	"github.com/grounded-ai/groundedqa/internal/services/policy"
)

// Factory resolves models to providers using the loaded provider
// credentials. Providers are constructed lazily and reused.
type Factory struct {
	cfg *config.Config

	mu        sync.Mutex
	providers map[string]Provider
}

// NewFactory creates a factory over the loaded configuration.
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		cfg:       cfg,
		providers: make(map[string]Provider),
	}
}

// ProviderFor returns the provider serving an allow-listed model. Unknown
// models and models whose provider has no configured credentials both fail.
func (f *Factory) ProviderFor(model string) (Provider, error) {
	providerName, ok := policy.ProviderForModel(model)
	if !ok {
		return nil, models.NewValidationError(
			fmt.Sprintf("model %q is not in allowed list", model),
			models.CodeModelNotAllowed,
		)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if provider, ok := f.providers[providerName]; ok {
		return provider, nil
	}

	providerConfig, ok := f.cfg.GetProviderConfig(providerName)
	if !ok {
		return nil, models.NewProviderError(providerName, "provider not configured", 0, false, nil)
	}

	var provider Provider
	switch providerName {
	case policy.ProviderOpenAI:
		provider = NewOpenAIProvider(providerConfig)
	case policy.ProviderAnthropic:
		provider = NewAnthropicProvider(providerConfig)
	case policy.ProviderGemini:
		provider = NewGeminiProvider(providerConfig)
	default:
		return nil, models.NewProviderError(providerName, "no client implementation", 0, false, nil)
	}

	f.providers[providerName] = provider
	return provider, nil
}
