package session

import (
	"context"
	"time"

	"github.com/Conceptual-Machines/wordexpander/internal/llm"
)

// Summary describes one finished generation
type Summary struct {
	SessionID  string
	Generation uint64
	Provider   string
	Model      string // resolved by the provider; Request.Model may be empty
	Request    *llm.GenerationRequest
	Status     Status
	Text       string
	Fragments  int
	Usage      llm.Usage
	StartedAt  time.Time
	Duration   time.Duration
	Err        error
}

// ModelName is the model that served the generation, falling back to the
// requested one when the stream never opened.
func (s Summary) ModelName() string {
	if s.Model != "" {
		return s.Model
	}
	if s.Request != nil {
		return s.Request.Model
	}
	return ""
}

// Recorder receives a Summary after every generation ends
type Recorder interface {
	RecordSession(ctx context.Context, summary Summary)
}

// Recorders fans a summary out to several recorders
type Recorders []Recorder

func (rs Recorders) RecordSession(ctx context.Context, summary Summary) {
	for _, r := range rs {
		if r != nil {
			r.RecordSession(ctx, summary)
		}
	}
}
