package handlers

import (
	"net/http"
	"time"

	"github.com/Conceptual-Machines/wordexpander/internal/metrics"
	"github.com/gin-gonic/gin"
)

// SessionStats reports live browser sessions
type SessionStats interface {
	SessionCounter
	InFlight() int
}

// GenerationStats reports generation totals since startup
type GenerationStats interface {
	Totals() metrics.Totals
}

type MetricsHandler struct {
	startTime   time.Time
	version     string
	sessions    SessionStats
	generations GenerationStats
}

// NewMetricsHandler creates the metrics handler; generations may be nil
func NewMetricsHandler(version string, sessions SessionStats, generations GenerationStats) *MetricsHandler {
	return &MetricsHandler{
		startTime:   time.Now(),
		version:     version,
		sessions:    sessions,
		generations: generations,
	}
}

type MetricsResponse struct {
	Status      string         `json:"status"`
	Uptime      string         `json:"uptime"`
	Timestamp   string         `json:"timestamp"`
	Version     string         `json:"version"`
	StartTime   string         `json:"start_time"`
	Sessions    SessionMetrics `json:"sessions"`
	Generations metrics.Totals `json:"generations"`
}

type SessionMetrics struct {
	Active   int `json:"active"`
	InFlight int `json:"in_flight"`
}

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	response := MetricsResponse{
		Status:    "healthy",
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		StartTime: h.startTime.UTC().Format(time.RFC3339),
		Sessions: SessionMetrics{
			Active:   h.sessions.Len(),
			InFlight: h.sessions.InFlight(),
		},
	}
	if h.generations != nil {
		response.Generations = h.generations.Totals()
	}

	c.JSON(http.StatusOK, response)
}
