package completion

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/grounded-ai/groundedqa/internal/models"
	"github.com/grounded-ai/groundedqa/internal/utils/clientcache"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/openai/openai-go/v2"
	openaiOption "github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

// OpenAIProvider serves completions through the OpenAI Chat Completions API.
type OpenAIProvider struct {
	config  models.ProviderConfig
	clients *clientcache.Cache[*openai.Client]
}

// NewOpenAIProvider creates a provider backed by the given credentials.
func NewOpenAIProvider(config models.ProviderConfig) *OpenAIProvider {
	return &OpenAIProvider{
		config:  config,
		clients: clientcache.NewCache[*openai.Client](),
	}
}

func (p *OpenAIProvider) client() (*openai.Client, error) {
	hash, err := configHash(p.config)
	if err != nil {
		fiberlog.Warnf("openai: config hash failed: %v, building uncached client", err)
		return p.buildClient()
	}

	return p.clients.GetOrCreate(hash, func() (*openai.Client, error) {
		fiberlog.Debugf("openai: creating client (config hash: %s)", hash[:8])
		return p.buildClient()
	})
}

func (p *OpenAIProvider) buildClient() (*openai.Client, error) {
	if p.config.APIKey == "" {
		return nil, models.NewProviderError("openai", "API key not configured", 0, false, nil)
	}

	opts := []openaiOption.RequestOption{
		openaiOption.WithAPIKey(p.config.APIKey),
	}
	if p.config.BaseURL != "" {
		opts = append(opts, openaiOption.WithBaseURL(p.config.BaseURL))
	}
	for key, value := range p.config.Headers {
		opts = append(opts, openaiOption.WithHeader(key, value))
	}
	if p.config.TimeoutMs > 0 {
		httpClient := &http.Client{Timeout: time.Duration(p.config.TimeoutMs) * time.Millisecond}
		opts = append(opts, openaiOption.WithHTTPClient(httpClient))
	}

	client := openai.NewClient(opts...)
	return &client, nil
}

// Complete issues a single chat completion call.
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	client, err := p.client()
	if err != nil {
		return "", err
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(req.Temperature),
	}

	start := time.Now()
	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		fiberlog.Errorf("openai: completion failed after %v: %v", time.Since(start), err)
		return "", mapOpenAIError(err)
	}

	if len(completion.Choices) == 0 {
		return "", models.NewProviderError("openai", "completion returned no choices", 0, true, nil)
	}

	fiberlog.Debugf("openai: completion finished in %v - usage: prompt:%d, completion:%d",
		time.Since(start), completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	return completion.Choices[0].Message.Content, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		retryable := apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
		return models.NewProviderError("openai", "completion request failed", apiErr.StatusCode, retryable, err)
	}
	return models.NewProviderError("openai", "completion request failed", 0, true, err)
}
