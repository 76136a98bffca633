package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BreakerState reports the provider circuit breaker state
type BreakerState interface {
	Name() string
	State() string
}

// SessionCounter reports the number of live browser sessions
type SessionCounter interface {
	Len() int
}

type HealthHandler struct {
	breaker  BreakerState
	sessions SessionCounter
}

// NewHealthHandler creates the health handler; breaker may be nil
func NewHealthHandler(breaker BreakerState, sessions SessionCounter) *HealthHandler {
	return &HealthHandler{breaker: breaker, sessions: sessions}
}

// HealthCheck returns the health status of the API.
// An open breaker degrades the service but the process stays healthy.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := "healthy"
	provider := gin.H{"status": "unknown"}

	if h.breaker != nil {
		state := h.breaker.State()
		provider = gin.H{
			"name":    h.breaker.Name(),
			"breaker": state,
		}
		if state == "open" {
			status = "degraded"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"provider": provider,
		"sessions": h.sessions.Len(),
	})
}
