package llm

import "fmt"

// TransportError reports that a request could not be dispatched (network, auth,
// quota, open circuit). No fragment was received.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return fmt.Sprintf("%s transport error: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StreamError reports a failure after the stream had started.
type StreamError struct {
	Provider string
	Err      error
}

func (e *StreamError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("stream error: %v", e.Err)
	}
	return fmt.Sprintf("%s stream error: %v", e.Provider, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }
