package completion

import (
	"context"
	"sync"
)

// MockResponse is one canned outcome for a MockProvider call.
type MockResponse struct {
	Answer string
	Err    error
}

// MockProvider returns canned responses in FIFO order and records every
// request it sees. Once the canned responses run out, the last one repeats.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	requests  []Request
}

// NewMockProvider creates a mock that plays back the given responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Complete pops the next canned response.
func (m *MockProvider) Complete(_ context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if len(m.responses) == 0 {
		return "", nil
	}

	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp.Answer, resp.Err
}

// CallCount reports how many completion calls were made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of the recorded requests.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// MockFactory returns the same provider for every model.
type MockFactory struct {
	Provider Provider
}

// ProviderFor returns the wrapped provider.
func (f *MockFactory) ProviderFor(string) (Provider, error) {
	return f.Provider, nil
}
