package session

import "fmt"

// Status is the lifecycle state of a generation session
type Status int

const (
	StatusIdle Status = iota
	StatusInFlight
	StatusCompleted
	StatusFailed
)

var statusNames = map[Status]string{
	StatusIdle:      "idle",
	StatusInFlight:  "in_flight",
	StatusCompleted: "completed",
	StatusFailed:    "failed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText renders the status as its name in JSON
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name
func (s *Status) UnmarshalText(text []byte) error {
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown session status %q", text)
}

// Terminal reports whether no stream is being consumed
func (s Status) Terminal() bool {
	return s != StatusInFlight
}
