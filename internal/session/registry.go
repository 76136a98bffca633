package session

import (
	"context"
	"sync"
	"time"

	"github.com/Conceptual-Machines/wordexpander/internal/logger"
)

const defaultIdleTTL = 30 * time.Minute

// Factory creates the controller for a new browser session
type Factory func(id string) *Controller

type registryEntry struct {
	controller *Controller
	lastSeen   time.Time
}

// Registry maps browser session IDs to their controllers
type Registry struct {
	factory Factory
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*registryEntry
	closed   bool
}

// NewRegistry creates a registry evicting sessions idle for longer than ttl
func NewRegistry(factory Factory, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = defaultIdleTTL
	}
	return &Registry{
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*registryEntry),
	}
}

// Get returns the controller for id, creating it on first use
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}

	entry, ok := r.sessions[id]
	if !ok {
		entry = &registryEntry{controller: r.factory(id)}
		r.sessions[id] = entry
	}
	entry.lastSeen = r.now()
	return entry.controller, nil
}

// Remove closes and forgets the controller for id
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		entry.controller.Close()
	}
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// InFlight returns the number of sessions with a generation streaming
func (r *Registry) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, entry := range r.sessions {
		if entry.controller.Status() == StatusInFlight {
			n++
		}
	}
	return n
}

// Sweep evicts sessions idle longer than the TTL. In-flight sessions are kept.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var evicted []*Controller
	for id, entry := range r.sessions {
		if entry.lastSeen.After(cutoff) || entry.controller.Status() == StatusInFlight {
			continue
		}
		delete(r.sessions, id)
		evicted = append(evicted, entry.controller)
	}
	r.mu.Unlock()

	for _, c := range evicted {
		c.Close()
	}
	if len(evicted) > 0 {
		logger.Info("Evicted idle sessions", logger.Fields{"count": len(evicted)})
	}
	return len(evicted)
}

// Run sweeps every interval until ctx is done
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close tears down every session and rejects further Gets
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	sessions := r.sessions
	r.sessions = make(map[string]*registryEntry)
	r.mu.Unlock()

	for _, entry := range sessions {
		entry.controller.Close()
	}
}
