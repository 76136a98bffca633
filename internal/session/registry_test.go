package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/wordexpander/internal/llm"
	"github.com/Conceptual-Machines/wordexpander/internal/models"
	"github.com/Conceptual-Machines/wordexpander/internal/prompt"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRegistry(provider llm.Provider, ttl time.Duration) (*Registry, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	builder := prompt.NewPromptBuilder("", prompt.DefaultTemperature)
	r := NewRegistry(func(id string) *Controller {
		return NewController(id, provider, builder)
	}, ttl)
	r.now = clock.Now
	return r, clock
}

func TestRegistryGetCreatesOnce(t *testing.T) {
	r, _ := newTestRegistry(&llm.MockProvider{}, time.Minute)
	defer r.Close()

	a, err := r.Get("browser-a")
	require.NoError(t, err)
	again, err := r.Get("browser-a")
	require.NoError(t, err)
	b, err := r.Get("browser-b")
	require.NoError(t, err)

	assert.Same(t, a, again)
	assert.NotSame(t, a, b)
	assert.Equal(t, "browser-b", b.ID())
	assert.Equal(t, 2, r.Len())
}

func TestRegistrySweepEvictsIdle(t *testing.T) {
	r, clock := newTestRegistry(&llm.MockProvider{}, time.Minute)
	defer r.Close()

	_, err := r.Get("old")
	require.NoError(t, err)
	clock.Advance(45 * time.Second)
	_, err = r.Get("recent")
	require.NoError(t, err)
	clock.Advance(30 * time.Second)

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())

	fresh, err := r.Get("old")
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, fresh.Status())
}

func TestRegistrySweepKeepsInFlight(t *testing.T) {
	hold := make(chan struct{})
	r, clock := newTestRegistry(&llm.MockProvider{Fragments: []string{"x"}, Hold: hold}, time.Minute)
	defer r.Close()

	c, err := r.Get("busy")
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background(), "notes", models.ToneBusiness, models.LengthStandard))

	clock.Advance(time.Hour)
	assert.Equal(t, 0, r.Sweep())
	assert.Equal(t, 1, r.Len())

	close(hold)
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	require.NoError(t, c.Wait(ctx))

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 0, r.Len())
}

func TestRegistryInFlight(t *testing.T) {
	hold := make(chan struct{})
	r, _ := newTestRegistry(&llm.MockProvider{Fragments: []string{"x"}, Hold: hold}, time.Minute)
	defer r.Close()

	busy, err := r.Get("busy")
	require.NoError(t, err)
	_, err = r.Get("idle")
	require.NoError(t, err)
	assert.Equal(t, 0, r.InFlight())

	require.NoError(t, busy.Start(context.Background(), "notes", models.ToneBusiness, models.LengthStandard))
	assert.Equal(t, 1, r.InFlight())
	assert.Equal(t, 2, r.Len())

	close(hold)
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	require.NoError(t, busy.Wait(ctx))
	assert.Equal(t, 0, r.InFlight())
}

func TestRegistryRemoveAndClose(t *testing.T) {
	r, _ := newTestRegistry(&llm.MockProvider{}, 0)

	c, err := r.Get("a")
	require.NoError(t, err)
	r.Remove("a")
	r.Remove("missing")
	assert.Equal(t, 0, r.Len())
	assert.ErrorIs(t, c.Start(context.Background(), "notes", models.ToneBusiness, models.LengthStandard), ErrClosed)

	_, err = r.Get("b")
	require.NoError(t, err)
	r.Close()

	_, err = r.Get("c")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryRunStopsWithContext(t *testing.T) {
	r, _ := newTestRegistry(&llm.MockProvider{}, time.Minute)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(waitTimeout):
		t.Fatal("Run did not return after cancel")
	}
}
