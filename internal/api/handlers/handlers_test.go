package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Conceptual-Machines/wordexpander/internal/llm"
	"github.com/Conceptual-Machines/wordexpander/internal/metrics"
	"github.com/Conceptual-Machines/wordexpander/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBreaker struct{ state string }

func (f fakeBreaker) Name() string  { return "gemini" }
func (f fakeBreaker) State() string { return f.state }

type fakeCounter int

func (f fakeCounter) Len() int { return int(f) }

type fakeSessions struct{ active, inFlight int }

func (f fakeSessions) Len() int      { return f.active }
func (f fakeSessions) InFlight() int { return f.inFlight }

func serve(t *testing.T, handler gin.HandlerFunc) map[string]interface{} {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	body := serve(t, NewHealthHandler(fakeBreaker{"closed"}, fakeCounter(3)).HealthCheck)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(3), body["sessions"])
	assert.Equal(t, "closed", body["provider"].(map[string]interface{})["breaker"])

	body = serve(t, NewHealthHandler(fakeBreaker{"open"}, fakeCounter(0)).HealthCheck)
	assert.Equal(t, "degraded", body["status"])

	body = serve(t, NewHealthHandler(nil, fakeCounter(0)).HealthCheck)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "unknown", body["provider"].(map[string]interface{})["status"])
}

func TestGetMetrics(t *testing.T) {
	counters := metrics.NewCounters()
	counters.RecordSession(context.Background(), session.Summary{
		Status:    session.StatusCompleted,
		Fragments: 3,
		Usage:     llm.Usage{InputTokens: 10, OutputTokens: 20},
	})
	counters.RecordSession(context.Background(), session.Summary{Status: session.StatusFailed})

	body := serve(t, NewMetricsHandler("1.2.3", fakeSessions{active: 2, inFlight: 1}, counters).GetMetrics)
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, "0s", body["uptime"])
	assert.NotContains(t, body, "system")

	sessions := body["sessions"].(map[string]interface{})
	assert.Equal(t, float64(2), sessions["active"])
	assert.Equal(t, float64(1), sessions["in_flight"])

	generations := body["generations"].(map[string]interface{})
	assert.Equal(t, float64(1), generations["completed"])
	assert.Equal(t, float64(1), generations["failed"])
	assert.Equal(t, float64(3), generations["fragments"])
	assert.Equal(t, float64(20), generations["output_tokens"])
}

func TestGetMetricsWithoutCounters(t *testing.T) {
	body := serve(t, NewMetricsHandler("dev", fakeSessions{}, nil).GetMetrics)

	generations := body["generations"].(map[string]interface{})
	assert.Equal(t, float64(0), generations["completed"])
}
