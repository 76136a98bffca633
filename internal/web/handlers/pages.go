package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/wordexpander/internal/api/middleware"
	"github.com/Conceptual-Machines/wordexpander/internal/logger"
	"github.com/Conceptual-Machines/wordexpander/internal/models"
	"github.com/Conceptual-Machines/wordexpander/internal/session"
	"github.com/Conceptual-Machines/wordexpander/internal/web/templates"
	"github.com/gin-gonic/gin"
)

type WebHandler struct {
	registry *session.Registry
}

func NewWebHandler(registry *session.Registry) *WebHandler {
	return &WebHandler{registry: registry}
}

// Home renders the expander page seeded with the browser session's state
func (h *WebHandler) Home(c *gin.Context) {
	snapshot := session.Snapshot{
		Tone:   models.DefaultTone,
		Length: models.DefaultLength,
	}

	if id, ok := middleware.GetSessionID(c); ok {
		if ctrl, err := h.registry.Get(id); err == nil {
			snapshot = ctrl.Snapshot()
		}
	}

	data := templates.PageData{
		Tones:    models.Tones(),
		Lengths:  models.Lengths(),
		Snapshot: snapshot,
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	component := templates.Page(data)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		logger.Error("Failed to render page", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render template"})
	}
}
