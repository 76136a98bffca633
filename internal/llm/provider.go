package llm

import (
	"context"

	"github.com/Conceptual-Machines/wordexpander/internal/models"
)

// Provider defines the interface for LLM providers.
// A provider dispatches one request and hands back the response as a fragment stream.
type Provider interface {
	// GenerateStream dispatches the request. A *TransportError means nothing was
	// received from the model; once a *Stream is returned the request was accepted.
	GenerateStream(ctx context.Context, request *GenerationRequest) (*Stream, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// GenerationRequest contains all parameters needed for one expansion
type GenerationRequest struct {
	Model        string // empty means the provider default
	SystemPrompt string
	Input        string // raw user notes, passed verbatim
	Temperature  float32
	Tone         models.Tone
	Length       models.Length
}

// Usage is the token accounting reported by the model, if any
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Chunk is one element of a provider's raw response sequence
type Chunk struct {
	Text  string
	Usage *Usage
}
