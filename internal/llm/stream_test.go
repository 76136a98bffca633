package llm

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, s *Stream) ([]string, error) {
	t.Helper()
	var out []string
	for {
		f, err := s.Recv()
		if err != nil {
			return out, err
		}
		out = append(out, f)
	}
}

func TestStreamYieldsInOrder(t *testing.T) {
	s := FromFragments("test", "ご", "", "確認", "ください。")
	got, err := drain(t, s)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"ご", "", "確認", "ください。"}, got)

	// exhausted streams keep reporting EOF
	_, err = s.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamDispatchFailureIsTransportError(t *testing.T) {
	boom := errors.New("401 unauthorized")
	s, err := NewStream("test", func(yield func(Chunk, error) bool) {
		yield(Chunk{}, boom)
	})
	require.Nil(t, s)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "test", transportErr.Provider)
	assert.ErrorIs(t, err, boom)
}

func TestStreamEmptyIsNotAnError(t *testing.T) {
	s, err := NewStream("test", func(yield func(Chunk, error) bool) {})
	require.NoError(t, err)
	require.NotNil(t, s)

	_, err = s.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamMidStreamFailure(t *testing.T) {
	boom := errors.New("connection reset")
	s, err := NewStream("test", func(yield func(Chunk, error) bool) {
		if !yield(Chunk{Text: "a"}, nil) {
			return
		}
		if !yield(Chunk{Text: "b"}, nil) {
			return
		}
		yield(Chunk{}, boom)
	})
	require.NoError(t, err)

	got, err := drain(t, s)
	assert.Equal(t, []string{"a", "b"}, got)

	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.ErrorIs(t, err, boom)

	// the failure is sticky
	_, again := s.Recv()
	assert.Equal(t, err, again)
}

func TestStreamUsageIsLastReported(t *testing.T) {
	s, err := NewStream("test", func(yield func(Chunk, error) bool) {
		if !yield(Chunk{Text: "a", Usage: &Usage{InputTokens: 3, TotalTokens: 3}}, nil) {
			return
		}
		yield(Chunk{Text: "b", Usage: &Usage{InputTokens: 3, OutputTokens: 2, TotalTokens: 5}}, nil)
	})
	require.NoError(t, err)

	_, err = drain(t, s)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, Usage{InputTokens: 3, OutputTokens: 2, TotalTokens: 5}, s.Usage())
}

func TestStreamCloseStopsProducer(t *testing.T) {
	stopped := false
	s, err := NewStream("test", func(yield func(Chunk, error) bool) {
		defer func() { stopped = true }()
		for {
			if !yield(Chunk{Text: "x"}, nil) {
				return
			}
		}
	})
	require.NoError(t, err)

	f, err := s.Recv()
	require.NoError(t, err)
	assert.Equal(t, "x", f)

	s.Close()
	s.Close()
	assert.True(t, stopped)

	_, err = s.Recv()
	assert.ErrorIs(t, err, io.EOF)
}
