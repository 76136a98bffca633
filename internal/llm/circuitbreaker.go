package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// CircuitBreakerConfig configures the circuit breaker behavior.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive dispatch failures before the circuit opens.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before a half-open probe.
	Timeout time.Duration
	// Interval clears failure counts while closed. Zero keeps them until the circuit opens.
	Interval time.Duration
}

// CircuitBreakerProvider fails fast once the wrapped provider keeps refusing
// requests. Only stream initiation counts; errors after the first fragment
// arrive through the Stream and do not trip the breaker. Nothing is retried.
type CircuitBreakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker[*Stream]
}

// NewCircuitBreakerProvider wraps inner with a circuit breaker.
// Zero-valued fields of cfg fall back to defaults.
func NewCircuitBreakerProvider(inner Provider, cfg CircuitBreakerConfig) *CircuitBreakerProvider {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	cb := gobreaker.NewCircuitBreaker[*Stream](gobreaker.Settings{
		Name:        "llm:" + inner.Name(),
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("⚠️  Circuit breaker %s: %s -> %s", name, from.String(), to.String())
		},
		IsSuccessful: func(err error) bool {
			// a caller hanging up is not the provider's fault
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &CircuitBreakerProvider{
		inner:   inner,
		breaker: cb,
	}
}

// Name returns the wrapped provider's name
func (p *CircuitBreakerProvider) Name() string {
	return p.inner.Name()
}

// GenerateStream routes stream initiation through the breaker
func (p *CircuitBreakerProvider) GenerateStream(ctx context.Context, request *GenerationRequest) (*Stream, error) {
	stream, err := p.breaker.Execute(func() (*Stream, error) {
		return p.inner.GenerateStream(ctx, request)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &TransportError{
				Provider: p.inner.Name(),
				Err:      fmt.Errorf("circuit open: %w", err),
			}
		}
		return nil, err
	}
	return stream, nil
}

// State exposes the breaker state for health reporting
func (p *CircuitBreakerProvider) State() string {
	return p.breaker.State().String()
}
