package llm

import (
	"io"
	"iter"
)

// Stream is a lazy, ordered, single-use sequence of text fragments.
// Recv and Close must be called from the same goroutine.
type Stream struct {
	provider string
	model    string
	next     func() (Chunk, error, bool)
	stop     func()

	pending *Chunk
	usage   Usage
	err     error
	done    bool
}

// NewStream adapts a provider sequence. The first element is pulled before
// returning so a dispatch failure comes back as a *TransportError instead of
// an empty stream.
func NewStream(provider string, seq iter.Seq2[Chunk, error]) (*Stream, error) {
	next, stop := iter.Pull2(seq)
	s := &Stream{provider: provider, next: next, stop: stop}

	chunk, err, ok := next()
	switch {
	case err != nil:
		stop()
		return nil, &TransportError{Provider: provider, Err: err}
	case !ok:
		s.finish()
	default:
		s.pending = &chunk
	}
	return s, nil
}

// FromFragments builds an already-open stream over fixed fragments.
func FromFragments(provider string, fragments ...string) *Stream {
	s, _ := NewStream(provider, func(yield func(Chunk, error) bool) {
		for _, f := range fragments {
			if !yield(Chunk{Text: f}, nil) {
				return
			}
		}
	})
	return s
}

// Recv returns the next fragment, which may be empty. It returns io.EOF once the
// stream is exhausted and a *StreamError if the model failed mid-stream.
func (s *Stream) Recv() (string, error) {
	if s.pending != nil {
		chunk := *s.pending
		s.pending = nil
		s.observe(chunk)
		return chunk.Text, nil
	}
	if s.err != nil {
		return "", s.err
	}
	if s.done {
		return "", io.EOF
	}

	chunk, err, ok := s.next()
	if !ok {
		s.finish()
		return "", io.EOF
	}
	if err != nil {
		s.err = &StreamError{Provider: s.provider, Err: err}
		s.finish()
		return "", s.err
	}
	s.observe(chunk)
	return chunk.Text, nil
}

// Close releases the underlying response. Safe to call more than once.
func (s *Stream) Close() {
	s.pending = nil
	s.finish()
}

// Usage returns the last token usage reported by the model.
func (s *Stream) Usage() Usage {
	return s.usage
}

// Provider returns the name of the provider that opened the stream.
func (s *Stream) Provider() string {
	return s.provider
}

// Model returns the model that serves the stream, empty if the provider did not say.
func (s *Stream) Model() string {
	return s.model
}

// withModel records the model the provider actually dispatched to
func (s *Stream) withModel(model string) *Stream {
	s.model = model
	return s
}

func (s *Stream) observe(chunk Chunk) {
	if chunk.Usage != nil {
		s.usage = *chunk.Usage
	}
}

func (s *Stream) finish() {
	if !s.done {
		s.done = true
		s.stop()
	}
}
