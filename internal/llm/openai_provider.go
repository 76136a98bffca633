package llm

import (
	"context"
	"iter"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const (
	providerNameOpenAI = "openai"

	// DefaultOpenAIModel is used when neither the request nor the config names a model
	DefaultOpenAIModel = "gpt-4o-mini"
)

// OpenAIProvider implements the Provider interface using OpenAI chat completions
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey, model string, opts ...option.RequestOption) *OpenAIProvider {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{
		client: &client,
		model:  model,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// GenerateStream opens a streaming chat completion
func (p *OpenAIProvider) GenerateStream(ctx context.Context, request *GenerationRequest) (*Stream, error) {
	startTime := time.Now()
	params := p.buildRequestParams(request)
	log.Printf("✍️  OPENAI STREAM REQUEST STARTED (Model: %s, tone: %s, length: %s)", params.Model, request.Tone, request.Length)

	span := sentry.StartSpan(ctx, "openai.generate_stream")
	span.SetTag("model", string(params.Model))
	span.SetTag("provider", providerNameOpenAI)
	defer span.Finish()

	stream, err := NewStream(providerNameOpenAI, p.chunks(ctx, params))
	if err != nil {
		log.Printf("❌ OPENAI DISPATCH FAILED after %v: %v", time.Since(startTime), err)
		span.Status = sentry.SpanStatusInternalError
		sentry.CaptureException(err)
		return nil, err
	}

	log.Printf("⏱️  OPENAI FIRST CHUNK in %v", time.Since(startTime))
	span.Status = sentry.SpanStatusOK
	return stream.withModel(string(params.Model)), nil
}

func (p *OpenAIProvider) buildRequestParams(request *GenerationRequest) openai.ChatCompletionNewParams {
	model := request.Model
	if model == "" {
		model = p.model
	}
	return openai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(request.SystemPrompt),
			openai.UserMessage(request.Input),
		},
		Temperature: openai.Float(float64(request.Temperature)),
		// usage arrives in a final chunk with no choices
		StreamOptions: openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		},
	}
}

// chunks defers the HTTP call until the first pull so dispatch errors surface there
func (p *OpenAIProvider) chunks(ctx context.Context, params openai.ChatCompletionNewParams) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		stream := p.client.Chat.Completions.NewStreaming(ctx, params)
		defer func() {
			if err := stream.Close(); err != nil {
				log.Printf("⚠️  Failed to close OpenAI stream: %v", err)
			}
		}()

		eventCount := 0
		for stream.Next() {
			eventCount++
			event := stream.Current()

			var chunk Chunk
			if len(event.Choices) > 0 {
				chunk.Text = event.Choices[0].Delta.Content
			}
			if event.Usage.TotalTokens > 0 {
				chunk.Usage = &Usage{
					InputTokens:  int(event.Usage.PromptTokens),
					OutputTokens: int(event.Usage.CompletionTokens),
					TotalTokens:  int(event.Usage.TotalTokens),
				}
			}
			if eventCount <= maxLogEventCount {
				log.Printf("✅ OpenAI chunk #%d: +%d bytes", eventCount, len(chunk.Text))
			}
			if !yield(chunk, nil) {
				return
			}
		}

		if err := stream.Err(); err != nil {
			log.Printf("❌ OPENAI STREAMING ERROR: %v", err)
			yield(Chunk{}, err)
		}
	}
}
