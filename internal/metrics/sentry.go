package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/wordexpander/internal/session"
	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics handles custom metrics for Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Always enabled if Sentry is configured
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	// Create a span for API request tracking using the request context
	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("endpoint", endpoint)
	span.SetData("status_code", statusCode)

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordSession records a finished generation as a span.
// The generation outlives its HTTP request, so the span hangs off ctx only
// when a transaction is still attached to it.
func (m *SentryMetrics) RecordSession(ctx context.Context, summary session.Summary) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "session.generation")
	defer span.Finish()

	span.SetTag("provider", summary.Provider)
	span.SetTag("status", summary.Status.String())
	if summary.Request != nil {
		span.SetTag("tone", string(summary.Request.Tone))
		span.SetTag("length", string(summary.Request.Length))
	}
	span.SetData("model", summary.ModelName())

	span.SetData("session_id", summary.SessionID)
	span.SetData("generation", summary.Generation)
	span.SetData("duration_ms", summary.Duration.Milliseconds())
	span.SetData("fragments", summary.Fragments)
	span.SetData("input_tokens", summary.Usage.InputTokens)
	span.SetData("output_tokens", summary.Usage.OutputTokens)
	span.SetData("total_tokens", summary.Usage.TotalTokens)

	if summary.Status == session.StatusCompleted {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("Generation %d: %s", summary.Generation, summary.Status)
}
