package logger

import (
	"bytes"
	"errors"
	"log"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestFormatFieldsSorted(t *testing.T) {
	got := formatFields(Fields{"b": 2, "a": "x", "c": 1.5, "d": int64(7)})
	assert.Equal(t, "{a=x, b=2, c=1.50, d=7}", got)
	assert.Equal(t, "", formatFields(nil))
}

func TestLevels(t *testing.T) {
	buf := captureLog(t)

	Info("hello", Fields{"k": "v"})
	Warn("careful", nil)
	Debug("details", Fields{"n": 1})
	Error("failed", errors.New("boom"), Fields{"session_id": "s1"})

	out := buf.String()
	assert.Contains(t, out, "[INFO] hello {k=v}")
	assert.Contains(t, out, "[WARN] careful")
	assert.Contains(t, out, "[DEBUG] details {n=1}")
	assert.Contains(t, out, "[ERROR] failed: boom {session_id=s1}")
}

func TestWithContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/api/v1/generations", nil)
	c.Set("request_id", "req-1")
	c.Set("session_id", "sess-1")

	fields := WithContext(c)
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "sess-1", fields["session_id"])
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/v1/generations", fields["path"])
}
