package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAfterDispatchFailures(t *testing.T) {
	inner := &MockProvider{DispatchErr: errors.New("503 unavailable")}
	cb := NewCircuitBreakerProvider(inner, CircuitBreakerConfig{MaxFailures: 2, Timeout: time.Minute})

	for i := 0; i < 2; i++ {
		_, err := cb.GenerateStream(context.Background(), &GenerationRequest{})
		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
	}
	assert.Equal(t, "open", cb.State())

	_, err := cb.GenerateStream(context.Background(), &GenerationRequest{})
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)

	// the open circuit did not reach the provider
	assert.Len(t, inner.Requests(), 2)
}

func TestCircuitBreaker_MidStreamErrorsDoNotTrip(t *testing.T) {
	inner := &MockProvider{Fragments: []string{"a"}, StreamErr: errors.New("reset")}
	cb := NewCircuitBreakerProvider(inner, CircuitBreakerConfig{MaxFailures: 1})

	for i := 0; i < 3; i++ {
		stream, err := cb.GenerateStream(context.Background(), &GenerationRequest{})
		require.NoError(t, err)
		assert.Equal(t, "mock-model", stream.Model())
		_, _ = stream.Recv()
		_, err = stream.Recv()
		var streamErr *StreamError
		assert.ErrorAs(t, err, &streamErr)
		stream.Close()
	}
	assert.Equal(t, "closed", cb.State())
	assert.Equal(t, "mock", cb.Name())
}
