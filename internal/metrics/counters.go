package metrics

import (
	"context"
	"sync/atomic"

	"github.com/Conceptual-Machines/wordexpander/internal/session"
)

// Totals are process-lifetime generation counts
type Totals struct {
	Completed    int64 `json:"completed"`
	Failed       int64 `json:"failed"`
	Fragments    int64 `json:"fragments"`
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Counters tallies finished generations in memory for the metrics endpoint
type Counters struct {
	completed    atomic.Int64
	failed       atomic.Int64
	fragments    atomic.Int64
	inputTokens  atomic.Int64
	outputTokens atomic.Int64
}

func NewCounters() *Counters {
	return &Counters{}
}

// RecordSession implements session.Recorder
func (c *Counters) RecordSession(_ context.Context, summary session.Summary) {
	if summary.Status == session.StatusCompleted {
		c.completed.Add(1)
	} else {
		c.failed.Add(1)
	}
	c.fragments.Add(int64(summary.Fragments))
	c.inputTokens.Add(int64(summary.Usage.InputTokens))
	c.outputTokens.Add(int64(summary.Usage.OutputTokens))
}

// Totals returns a snapshot of the counters
func (c *Counters) Totals() Totals {
	return Totals{
		Completed:    c.completed.Load(),
		Failed:       c.failed.Load(),
		Fragments:    c.fragments.Load(),
		InputTokens:  c.inputTokens.Load(),
		OutputTokens: c.outputTokens.Load(),
	}
}
