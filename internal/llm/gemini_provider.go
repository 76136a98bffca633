package llm

import (
	"context"
	"fmt"
	"iter"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const (
	providerNameGemini = "gemini"
	geminiUserRole     = "user"
	maxLogEventCount   = 5

	// DefaultGeminiModel is used when neither the request nor the config names a model
	DefaultGeminiModel = "gemini-2.5-flash"
)

// GeminiProvider implements the Provider interface using Google's Gemini API
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// GenerateStream opens a streaming generation against Gemini
func (p *GeminiProvider) GenerateStream(ctx context.Context, request *GenerationRequest) (*Stream, error) {
	startTime := time.Now()
	model := p.modelFor(request)
	log.Printf("✍️  GEMINI STREAM REQUEST STARTED (Model: %s, tone: %s, length: %s)", model, request.Tone, request.Length)

	span := sentry.StartSpan(ctx, "gemini.generate_stream")
	span.SetTag("model", model)
	span.SetTag("provider", providerNameGemini)
	defer span.Finish()

	contents := p.buildGeminiContents(request)
	config := p.buildGeminiConfig(request)

	seq := p.client.Models.GenerateContentStream(ctx, model, contents, config)
	stream, err := NewStream(providerNameGemini, geminiChunks(seq))
	if err != nil {
		log.Printf("❌ GEMINI DISPATCH FAILED after %v: %v", time.Since(startTime), err)
		span.Status = sentry.SpanStatusInternalError
		sentry.CaptureException(err)
		return nil, err
	}

	log.Printf("⏱️  GEMINI FIRST CHUNK in %v", time.Since(startTime))
	span.Status = sentry.SpanStatusOK
	return stream.withModel(model), nil
}

func (p *GeminiProvider) modelFor(request *GenerationRequest) string {
	if request.Model != "" {
		return request.Model
	}
	return p.model
}

// buildGeminiContents wraps the raw notes as the single user turn
func (p *GeminiProvider) buildGeminiContents(request *GenerationRequest) []*genai.Content {
	return []*genai.Content{
		{
			Role:  geminiUserRole,
			Parts: []*genai.Part{{Text: request.Input}},
		},
	}
}

func (p *GeminiProvider) buildGeminiConfig(request *GenerationRequest) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: request.SystemPrompt}},
		},
		Temperature: genai.Ptr(request.Temperature),
	}
}

// geminiChunks maps Gemini responses onto provider-neutral chunks
func geminiChunks(seq iter.Seq2[*genai.GenerateContentResponse, error]) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		eventCount := 0
		for resp, err := range seq {
			if err != nil {
				log.Printf("❌ GEMINI STREAMING ERROR: %v", err)
				yield(Chunk{}, err)
				return
			}

			eventCount++
			chunk := geminiChunk(resp)
			if eventCount <= maxLogEventCount {
				log.Printf("✅ Gemini chunk #%d: +%d bytes", eventCount, len(chunk.Text))
			}
			if !yield(chunk, nil) {
				return
			}
		}
		log.Printf("📦 Gemini stream complete - %d chunks", eventCount)
	}
}

// geminiChunk extracts answer text (thought parts excluded) and usage from one response
func geminiChunk(resp *genai.GenerateContentResponse) Chunk {
	var chunk Chunk
	if resp == nil {
		return chunk
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			chunk.Text += part.Text
		}
	}

	if resp.UsageMetadata != nil {
		chunk.Usage = &Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return chunk
}
