package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Conceptual-Machines/wordexpander/internal/llm"
	"github.com/Conceptual-Machines/wordexpander/internal/logger"
	"github.com/Conceptual-Machines/wordexpander/internal/models"
)

// User-facing messages. The underlying cause is only logged.
const (
	FailureMessage   = "文章の生成中にエラーが発生しました。もう一度お試しください。"
	CancelledMessage = "文章の生成を中止しました。"
)

const snapshotBufSize = 1

var (
	ErrEmptyInput  = errors.New("input is empty")
	ErrInFlight    = errors.New("a generation is already in flight")
	ErrNotInFlight = errors.New("no generation in flight")
	ErrClosed      = errors.New("session closed")

	errSuperseded = errors.New("generation superseded")
)

// closedDone is returned by Done before the first generation
var closedDone = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// RequestBuilder maps user input to a generation request
type RequestBuilder interface {
	Build(rawInput string, tone models.Tone, length models.Length) *llm.GenerationRequest
}

// Snapshot is a read-only copy of the session state
type Snapshot struct {
	SessionID    string        `json:"session_id"`
	Generation   uint64        `json:"generation"`
	Status       Status        `json:"status"`
	Text         string        `json:"text"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Tone         models.Tone   `json:"tone"`
	Length       models.Length `json:"length"`
}

// Controller owns one browser session's generation state. Only the consumption
// goroutine of the current generation appends text; everything else reads snapshots.
type Controller struct {
	id       string
	provider llm.Provider
	builder  RequestBuilder
	recorder Recorder
	now      func() time.Time

	mu         sync.Mutex
	status     Status
	text       strings.Builder
	errMsg     string
	generation uint64
	tone       models.Tone
	length     models.Length
	cancel     context.CancelFunc
	done       chan struct{}
	subs       map[uint64]chan Snapshot
	nextSub    uint64
	closed     bool
}

// Option configures a Controller
type Option func(*Controller)

// WithRecorder reports every finished generation to r
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates an idle controller
func NewController(id string, provider llm.Provider, builder RequestBuilder, opts ...Option) *Controller {
	c := &Controller{
		id:       id,
		provider: provider,
		builder:  builder,
		now:      time.Now,
		tone:     models.DefaultTone,
		length:   models.DefaultLength,
		subs:     make(map[uint64]chan Snapshot),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the browser session ID the controller belongs to
func (c *Controller) ID() string {
	return c.id
}

// Start begins a new generation and returns once it is accepted; the stream is
// consumed on its own goroutine. The generation outlives ctx's cancellation but
// keeps its values.
func (c *Controller) Start(ctx context.Context, rawInput string, tone models.Tone, length models.Length) error {
	if strings.TrimSpace(rawInput) == "" {
		return ErrEmptyInput
	}
	if !tone.Valid() {
		return models.ErrUnknownTone
	}
	if !length.Valid() {
		return models.ErrUnknownLength
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.status == StatusInFlight {
		c.mu.Unlock()
		return ErrInFlight
	}

	c.generation++
	gen := c.generation
	c.status = StatusInFlight
	c.text.Reset()
	c.errMsg = ""
	c.tone = tone
	c.length = length

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	done := make(chan struct{})
	c.done = done
	c.notifyLocked()
	c.mu.Unlock()

	request := c.builder.Build(rawInput, tone, length)
	go c.run(runCtx, cancel, gen, request, done)
	return nil
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, gen uint64, request *llm.GenerationRequest, done chan struct{}) {
	defer close(done)
	defer cancel()

	summary := Summary{
		SessionID:  c.id,
		Generation: gen,
		Provider:   c.provider.Name(),
		Request:    request,
		StartedAt:  c.now(),
	}

	fields := logger.Fields{
		"session_id": c.id,
		"generation": gen,
		"provider":   summary.Provider,
		"tone":       string(request.Tone),
		"length":     string(request.Length),
	}
	logger.Debug("Generation started", fields)

	err := c.consume(ctx, gen, request, &summary)
	if errors.Is(err, errSuperseded) {
		// a newer generation owns the state; nothing to report
		return
	}

	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	snap, applied := c.finish(gen, status, err, ctx.Err() != nil)
	if !applied {
		return
	}

	if err != nil {
		fields["error"] = err.Error()
		logger.Error("Generation failed", err, fields)
	} else {
		logger.Info("Generation completed", fields)
	}

	summary.Status = snap.Status
	summary.Text = snap.Text
	summary.Duration = c.now().Sub(summary.StartedAt)
	summary.Err = err
	if c.recorder != nil {
		c.recorder.RecordSession(context.WithoutCancel(ctx), summary)
	}
}

func (c *Controller) consume(ctx context.Context, gen uint64, request *llm.GenerationRequest, summary *Summary) error {
	stream, err := c.provider.GenerateStream(ctx, request)
	if err != nil {
		return err
	}
	defer stream.Close()
	defer func() { summary.Usage = stream.Usage() }()
	summary.Model = stream.Model()

	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if fragment == "" {
			continue
		}
		if !c.appendFragment(gen, fragment) {
			return errSuperseded
		}
		summary.Fragments++
	}
}

// appendFragment applies one fragment if gen is still the active generation
func (c *Controller) appendFragment(gen uint64, fragment string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.status != StatusInFlight {
		return false
	}
	c.text.WriteString(fragment)
	c.notifyLocked()
	return true
}

// finish moves generation gen to its terminal state and returns the snapshot
// taken under that lock. It reports false if gen is no longer active.
func (c *Controller) finish(gen uint64, status Status, err error, cancelled bool) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.status != StatusInFlight {
		return Snapshot{}, false
	}
	c.status = status
	if err != nil {
		c.errMsg = FailureMessage
		if cancelled {
			c.errMsg = CancelledMessage
		}
	}
	c.cancel = nil
	c.notifyLocked()
	return c.snapshotLocked(), true
}

// Clear empties the accumulated text. Rejected while a generation is in flight.
func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusInFlight {
		return ErrInFlight
	}
	c.text.Reset()
	c.notifyLocked()
	return nil
}

// Cancel aborts the in-flight generation. The session ends Failed with the
// text received so far.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusInFlight || c.cancel == nil {
		return ErrNotInFlight
	}
	c.cancel()
	return nil
}

// DismissError hides the error banner
func (c *Controller) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.errMsg == "" {
		return
	}
	c.errMsg = ""
	c.notifyLocked()
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Status returns the current lifecycle state
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Done is closed when the current generation's consumer has exited
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		return closedDone
	}
	return c.done
}

// Wait blocks until the current generation has finished or ctx is done
func (c *Controller) Wait(ctx context.Context) error {
	select {
	case <-c.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe delivers the current snapshot and then every change. Slow readers
// only see the latest snapshot. The returned func unsubscribes.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Snapshot, snapshotBufSize)
	if c.closed {
		ch <- c.snapshotLocked()
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// Close aborts any in-flight generation and ends all subscriptions
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
	for id, sub := range c.subs {
		delete(c.subs, id)
		close(sub)
	}
	done := c.done
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:    c.id,
		Generation:   c.generation,
		Status:       c.status,
		Text:         c.text.String(),
		ErrorMessage: c.errMsg,
		Tone:         c.tone,
		Length:       c.length,
	}
}

// notifyLocked replaces whatever snapshot a subscriber has not read yet
func (c *Controller) notifyLocked() {
	if len(c.subs) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, sub := range c.subs {
		select {
		case sub <- snap:
		default:
			select {
			case <-sub:
			default:
			}
			sub <- snap
		}
	}
}
