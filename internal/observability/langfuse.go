package observability

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Conceptual-Machines/wordexpander/internal/config"
	"github.com/Conceptual-Machines/wordexpander/internal/session"
	langfuse "github.com/henomis/langfuse-go"
	"github.com/henomis/langfuse-go/model"
)

const (
	traceName      = "wordexpander.session"
	generationName = "expand"
	levelError     = "ERROR"
)

// LangfuseClient records every finished generation as a Langfuse trace
type LangfuseClient struct {
	client  *langfuse.Langfuse
	enabled bool
}

// InitializeLangfuse creates the Langfuse client.
// The henomis SDK reads LANGFUSE_PUBLIC_KEY, LANGFUSE_SECRET_KEY and LANGFUSE_HOST
// from the environment itself.
func InitializeLangfuse(ctx context.Context, cfg *config.Config) *LangfuseClient {
	if !cfg.LangfuseEnabled || cfg.LangfuseSecretKey == "" || cfg.LangfusePublicKey == "" {
		log.Println("⚠️  Langfuse not configured (LANGFUSE_ENABLED=false or keys not set)")
		return &LangfuseClient{enabled: false}
	}

	log.Printf("✅ Langfuse initialized (host: %s)", cfg.LangfuseHost)
	return &LangfuseClient{
		client:  langfuse.New(ctx),
		enabled: true,
	}
}

// IsEnabled returns whether Langfuse is enabled
func (c *LangfuseClient) IsEnabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// RecordSession queues a trace with one generation for the summary.
// Events are batched by the SDK; Flush sends them.
func (c *LangfuseClient) RecordSession(_ context.Context, summary session.Summary) {
	if !c.IsEnabled() {
		return
	}

	trace, err := c.client.Trace(&model.Trace{
		Name:      traceName,
		SessionID: summary.SessionID,
		Input:     traceInput(summary),
		Output:    summary.Text,
		Metadata: map[string]interface{}{
			"generation": summary.Generation,
			"provider":   summary.Provider,
			"status":     summary.Status.String(),
		},
		Tags: []string{summary.Provider, summary.Status.String()},
	})
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse trace: %v", err)
		return
	}

	generation := buildGeneration(trace.ID, summary)
	if _, err := c.client.Generation(generation, nil); err != nil {
		log.Printf("⚠️  Failed to create Langfuse generation: %v", err)
		return
	}
	if _, err := c.client.GenerationEnd(generation); err != nil {
		log.Printf("⚠️  Failed to end Langfuse generation: %v", err)
	}
}

// Flush sends queued events; called on shutdown
func (c *LangfuseClient) Flush(ctx context.Context) {
	if c.IsEnabled() {
		log.Printf("🔍 Langfuse: Flushing queued traces...")
		c.client.Flush(ctx)
	}
}

func traceInput(summary session.Summary) map[string]interface{} {
	if summary.Request == nil {
		return nil
	}
	return map[string]interface{}{
		"input":  summary.Request.Input,
		"tone":   string(summary.Request.Tone),
		"length": string(summary.Request.Length),
	}
}

func buildGeneration(traceID string, summary session.Summary) *model.Generation {
	start := summary.StartedAt
	end := start.Add(summary.Duration)
	if start.IsZero() {
		end = time.Now()
		start = end.Add(-summary.Duration)
	}

	generation := &model.Generation{
		TraceID:   traceID,
		Name:      generationName,
		StartTime: &start,
		EndTime:   &end,
		Output:    summary.Text,
		Metadata: map[string]interface{}{
			"fragments": summary.Fragments,
			"provider":  summary.Provider,
		},
	}

	generation.Model = summary.ModelName()
	if req := summary.Request; req != nil {
		generation.Input = []map[string]interface{}{
			{"role": "system", "content": req.SystemPrompt},
			{"role": "user", "content": req.Input},
		}
		generation.ModelParameters = model.M{"temperature": req.Temperature}
		generation.Usage = model.Usage{
			Input:     summary.Usage.InputTokens,
			Output:    summary.Usage.OutputTokens,
			Total:     summary.Usage.TotalTokens,
			Unit:      model.ModelUsageUnitTokens,
			TotalCost: CalculateCost(generation.Model, summary.Usage),
		}
	}

	if summary.Status != session.StatusCompleted {
		generation.Level = model.ObservationLevel(levelError)
		if summary.Err != nil {
			generation.StatusMessage = fmt.Sprintf("%v", summary.Err)
		}
	}

	return generation
}
