package completion

import (
	"context"
	"errors"
	"time"

	"github.com/grounded-ai/groundedqa/internal/models"
	"github.com/grounded-ai/groundedqa/internal/utils/clientcache"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// anthropicMaxTokens caps answer length; concise QA answers fit well under it.
const anthropicMaxTokens = 1024

// AnthropicProvider serves completions through the Anthropic Messages API.
type AnthropicProvider struct {
	config  models.ProviderConfig
	clients *clientcache.Cache[*anthropic.Client]
}

// NewAnthropicProvider creates a provider backed by the given credentials.
func NewAnthropicProvider(config models.ProviderConfig) *AnthropicProvider {
	return &AnthropicProvider{
		config:  config,
		clients: clientcache.NewCache[*anthropic.Client](),
	}
}

func (p *AnthropicProvider) client() (*anthropic.Client, error) {
	hash, err := configHash(p.config)
	if err != nil {
		fiberlog.Warnf("anthropic: config hash failed: %v, building uncached client", err)
		return p.buildClient()
	}

	return p.clients.GetOrCreate(hash, func() (*anthropic.Client, error) {
		fiberlog.Debugf("anthropic: creating client (config hash: %s)", hash[:8])
		return p.buildClient()
	})
}

func (p *AnthropicProvider) buildClient() (*anthropic.Client, error) {
	if p.config.APIKey == "" {
		return nil, models.NewProviderError("anthropic", "API key not configured", 0, false, nil)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(p.config.APIKey),
	}
	if p.config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.config.BaseURL))
	}
	for key, value := range p.config.Headers {
		opts = append(opts, option.WithHeader(key, value))
	}

	client := anthropic.NewClient(opts...)
	return &client, nil
}

// Complete issues a single message call and extracts the first text block.
func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (string, error) {
	client, err := p.client()
	if err != nil {
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Temperature: anthropic.Float(req.Temperature),
	}

	start := time.Now()
	message, err := client.Messages.New(ctx, params)
	if err != nil {
		fiberlog.Errorf("anthropic: message request failed after %v: %v", time.Since(start), err)
		return "", mapAnthropicError(err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			fiberlog.Debugf("anthropic: message finished in %v - usage: input:%d, output:%d",
				time.Since(start), message.Usage.InputTokens, message.Usage.OutputTokens)
			return block.Text, nil
		}
	}

	return "", models.NewProviderError("anthropic", "message contained no text block", 0, true, nil)
}

func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		retryable := apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
		return models.NewProviderError("anthropic", "message request failed", apiErr.StatusCode, retryable, err)
	}
	return models.NewProviderError("anthropic", "message request failed", 0, true, err)
}
