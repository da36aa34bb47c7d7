// Package policy enforces the security guardrails on untrusted input and on
// pipeline configuration. All checks are total and independent; no partial
// validation state is retained between calls.
package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/grounded-ai/groundedqa/internal/models"
)

// Input length ceilings, in characters.
const (
	MinQuestionLength = 1
	MaxQuestionLength = 1000
	MaxContextLength  = 50000

	// Policy-level bounds, stricter than the schema layer.
	MinTemperature  = 0.0
	MaxTemperature  = 1.0
	MinContextChars = 100
	MaxContextChars = MaxContextLength
)

// Provider names used in config and by the completion factory.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// blockedPatterns cover markup injection and prompt-injection phrasing.
// First match short-circuits.
var blockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`), // inline event handlers
	regexp.MustCompile(`(?i)ignore\s+(previous|above|all)\s+(instructions|prompts?)`),
	regexp.MustCompile(`(?i)system\s*:\s*`),
	regexp.MustCompile(`(?i)assistant\s*:\s*`),
	regexp.MustCompile(`(?i)###\s*(instruction|system)`),
}

// allowedModels maps each allow-listed model identifier to the provider
// that serves it.
var allowedModels = map[string]string{
	"gpt-4o":                   ProviderOpenAI,
	"gpt-4o-mini":              ProviderOpenAI,
	"gpt-4-turbo":              ProviderOpenAI,
	"gpt-3.5-turbo":            ProviderOpenAI,
	"claude-sonnet-4-20250514": ProviderAnthropic,
	"claude-haiku-4-5":         ProviderAnthropic,
	"gemini-2.0-flash":         ProviderGemini,
	"gemini-2.0-pro":           ProviderGemini,
}

// ProviderForModel returns the provider serving an allow-listed model.
func ProviderForModel(model string) (string, bool) {
	provider, ok := allowedModels[model]
	return provider, ok
}

// ValidateInput checks question and context against the length ceilings and
// the blocked-pattern set. Checks run in order and the first failure wins.
func ValidateInput(question, context string) error {
	if len(strings.TrimSpace(question)) < MinQuestionLength {
		return models.NewValidationError("question is too short", models.CodeQuestionTooShort)
	}

	if len(question) > MaxQuestionLength {
		return models.NewValidationError(
			fmt.Sprintf("question exceeds maximum length of %d characters", MaxQuestionLength),
			models.CodeQuestionTooLong,
		)
	}

	if len(context) > MaxContextLength {
		return models.NewValidationError(
			fmt.Sprintf("context exceeds maximum length of %d characters", MaxContextLength),
			models.CodeContextTooLong,
		)
	}

	combined := strings.ToLower(question + " " + context)
	for _, pattern := range blockedPatterns {
		if pattern.MatchString(combined) {
			return models.NewValidationError("input contains blocked content patterns", models.CodeBlockedContent)
		}
	}

	return nil
}

// ValidateConfig checks the policy-level configuration constraints. The
// temperature range here is intentionally stricter than the schema range
// accepted at the request boundary; both layers apply.
func ValidateConfig(cfg models.QAConfig) error {
	if cfg.Temperature < MinTemperature || cfg.Temperature > MaxTemperature {
		return models.NewValidationError(
			fmt.Sprintf("temperature must be between %.1f and %.1f", MinTemperature, MaxTemperature),
			models.CodeTemperatureRange,
		)
	}

	if _, ok := allowedModels[cfg.Model]; !ok {
		return models.NewValidationError(
			fmt.Sprintf("model %q is not in allowed list", cfg.Model),
			models.CodeModelNotAllowed,
		)
	}

	if cfg.MaxContextChars < MinContextChars {
		return models.NewValidationError(
			fmt.Sprintf("max_context_chars must be at least %d", MinContextChars),
			models.CodeContextBudgetRange,
		)
	}
	if cfg.MaxContextChars > MaxContextChars {
		return models.NewValidationError(
			fmt.Sprintf("max_context_chars cannot exceed %d", MaxContextChars),
			models.CodeContextBudgetRange,
		)
	}

	return nil
}
