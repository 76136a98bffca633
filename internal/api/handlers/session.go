package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/Conceptual-Machines/wordexpander/internal/api/middleware"
	"github.com/Conceptual-Machines/wordexpander/internal/models"
	"github.com/Conceptual-Machines/wordexpander/internal/session"
	"github.com/gin-gonic/gin"
)

const snapshotEvent = "snapshot"

// SessionHandler exposes the browser session's controller over HTTP
type SessionHandler struct {
	registry *session.Registry
}

func NewSessionHandler(registry *session.Registry) *SessionHandler {
	return &SessionHandler{registry: registry}
}

// GenerateRequest is the body of POST /api/v1/generations
type GenerateRequest struct {
	Input  string `json:"input"`
	Tone   string `json:"tone"`   // Defaults to business
	Length string `json:"length"` // Defaults to standard
}

// controller resolves the current browser session; it writes the error response itself
func (h *SessionHandler) controller(c *gin.Context) (*session.Controller, bool) {
	id, ok := middleware.GetSessionID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session not initialised"})
		return nil, false
	}

	ctrl, err := h.registry.Get(id)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service is shutting down"})
		return nil, false
	}
	return ctrl, true
}

// Start begins a generation for the current session
func (h *SessionHandler) Start(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	tone, err := models.ParseTone(req.Tone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	length, err := models.ParseLength(req.Length)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	// The generation is detached from this request and keeps running after we respond
	err = ctrl.Start(c.Request.Context(), req.Input, tone, length)
	switch {
	case errors.Is(err, session.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Input is empty"})
	case errors.Is(err, session.ErrInFlight):
		c.JSON(http.StatusConflict, gin.H{
			"error":    "A generation is already in progress",
			"snapshot": ctrl.Snapshot(),
		})
	case errors.Is(err, session.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Session closed"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start generation"})
	default:
		c.JSON(http.StatusAccepted, ctrl.Snapshot())
	}
}

// Snapshot returns the session state
func (h *SessionHandler) Snapshot(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

// Events streams snapshots as server-sent events. The stream ends after the
// first snapshot that is not in flight, or when the client goes away.
func (h *SessionHandler) Events(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	updates, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	// Set headers for SSE
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, open := <-updates:
			if !open {
				return
			}
			if err := writeSnapshotEvent(c, snap); err != nil {
				log.Printf("❌ Session events: failed to write SSE event: %v", err)
				return
			}
			if snap.Status != session.StatusInFlight {
				return
			}
		}
	}
}

func writeSnapshotEvent(c *gin.Context, snap session.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", snapshotEvent, payload); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}

// Output returns the accumulated text verbatim for copying
func (h *SessionHandler) Output(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(ctrl.Snapshot().Text))
}

// Clear empties the output
func (h *SessionHandler) Clear(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	if err := ctrl.Clear(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot clear while a generation is in progress"})
		return
	}
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

// Cancel aborts the in-flight generation and waits for it to settle
func (h *SessionHandler) Cancel(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	if err := ctrl.Cancel(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "No generation in progress"})
		return
	}
	if err := ctrl.Wait(c.Request.Context()); err != nil {
		return
	}
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

// Dismiss hides the error banner
func (h *SessionHandler) Dismiss(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	ctrl.DismissError()
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

// Options lists the selectable tones and lengths with their defaults
func Options(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tones":          models.Tones(),
		"lengths":        models.Lengths(),
		"default_tone":   models.DefaultTone,
		"default_length": models.DefaultLength,
	})
}
