package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/grounded-ai/groundedqa/internal/models"
	"github.com/grounded-ai/groundedqa/internal/utils/clientcache"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"google.golang.org/genai"
)

// GeminiProvider serves completions through the Gemini API.
type GeminiProvider struct {
	config  models.ProviderConfig
	clients *clientcache.Cache[*genai.Client]
}

// NewGeminiProvider creates a provider backed by the given credentials.
func NewGeminiProvider(config models.ProviderConfig) *GeminiProvider {
	return &GeminiProvider{
		config:  config,
		clients: clientcache.NewCache[*genai.Client](),
	}
}

func (p *GeminiProvider) client(ctx context.Context) (*genai.Client, error) {
	hash, err := configHash(p.config)
	if err != nil {
		fiberlog.Warnf("gemini: config hash failed: %v, building uncached client", err)
		return p.buildClient(ctx)
	}

	return p.clients.GetOrCreate(hash, func() (*genai.Client, error) {
		fiberlog.Debugf("gemini: creating client (config hash: %s)", hash[:8])
		return p.buildClient(ctx)
	})
}

func (p *GeminiProvider) buildClient(ctx context.Context) (*genai.Client, error) {
	if p.config.APIKey == "" {
		return nil, models.NewProviderError("gemini", "API key not configured", 0, false, nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// Complete issues a single generate-content call.
func (p *GeminiProvider) Complete(ctx context.Context, req Request) (string, error) {
	client, err := p.client(ctx)
	if err != nil {
		return "", err
	}

	temperature := float32(req.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature:       &temperature,
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
	}

	start := time.Now()
	result, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		fiberlog.Errorf("gemini: generate request failed after %v: %v", time.Since(start), err)
		return "", mapGeminiError(err)
	}

	text := result.Text()
	if text == "" {
		return "", models.NewProviderError("gemini", "generate returned no text", 0, true, nil)
	}

	fiberlog.Debugf("gemini: generate finished in %v", time.Since(start))
	return text, nil
}

func mapGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		retryable := apiErr.Code == 429 || apiErr.Code >= 500
		return models.NewProviderError("gemini", "generate request failed", apiErr.Code, retryable, err)
	}
	return models.NewProviderError("gemini", "generate request failed", 0, true, err)
}
