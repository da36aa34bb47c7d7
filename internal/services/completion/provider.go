// Package completion abstracts the upstream LLM services behind a single
// Provider interface and builds the grounded QA prompt sent to them.
package completion

import "context"

// Request is a single completion call: a system instruction, a user prompt,
// and the model parameters resolved for this request.
type Request struct {
	System      string
	Prompt      string
	Model       string
	Temperature float64
}

// Provider issues one completion request against an upstream model service.
// Implementations classify upstream failures as retryable or fatal via the
// error they return; they never retry internally.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ProviderFactory resolves the provider serving a model. The orchestrator
// depends on this interface so tests can substitute canned providers.
type ProviderFactory interface {
	ProviderFor(model string) (Provider, error)
}
