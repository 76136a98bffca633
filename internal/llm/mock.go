package llm

import (
	"context"
	"sync"
)

// MockProvider is a scripted Provider for tests and local development.
// It yields Fragments in order, then waits on Hold (if set), then ends with
// StreamErr (if set). DispatchErr fails the request before any fragment.
type MockProvider struct {
	ProviderName string
	Fragments    []string
	DispatchErr  error
	StreamErr    error
	Hold         <-chan struct{}

	mu       sync.Mutex
	requests []*GenerationRequest
}

// Name returns the configured name, "mock" by default
func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// GenerateStream replays the script
func (m *MockProvider) GenerateStream(ctx context.Context, request *GenerationRequest) (*Stream, error) {
	m.mu.Lock()
	m.requests = append(m.requests, request)
	m.mu.Unlock()

	stream, err := NewStream(m.Name(), func(yield func(Chunk, error) bool) {
		if m.DispatchErr != nil {
			yield(Chunk{}, m.DispatchErr)
			return
		}
		for _, f := range m.Fragments {
			if err := ctx.Err(); err != nil {
				yield(Chunk{}, err)
				return
			}
			if !yield(Chunk{Text: f}, nil) {
				return
			}
		}
		if m.Hold != nil {
			select {
			case <-m.Hold:
			case <-ctx.Done():
				yield(Chunk{}, ctx.Err())
				return
			}
		}
		if m.StreamErr != nil {
			yield(Chunk{}, m.StreamErr)
		}
	})
	if err != nil {
		return nil, err
	}

	model := request.Model
	if model == "" {
		model = m.Name() + "-model"
	}
	return stream.withModel(model), nil
}

// Requests returns every request received so far
func (m *MockProvider) Requests() []*GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*GenerationRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
