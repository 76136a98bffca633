package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiSample struct {
	endpoint   string
	statusCode int
}

type fakeAPIRecorder struct {
	mu      sync.Mutex
	samples []apiSample
}

func (f *fakeAPIRecorder) RecordAPIRequest(endpoint string, statusCode int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = append(f.samples, apiSample{endpoint, statusCode})
}

func sessionRouter() *gin.Engine {
	router := gin.New()
	router.Use(BrowserSession(NewCookieStore("test-secret", false)))
	router.GET("/whoami", func(c *gin.Context) {
		id, ok := GetSessionID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id)
	})
	return router
}

func TestBrowserSessionIssuesAndReusesID(t *testing.T) {
	router := sessionRouter()

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.Equal(t, http.StatusOK, first.Code)

	id := first.Body.String()
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	cookies := first.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, browserSessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookies[0])
	second := httptest.NewRecorder()
	router.ServeHTTP(second, req)

	assert.Equal(t, id, second.Body.String())
	assert.Empty(t, second.Result().Cookies(), "known session must not be re-issued")
}

func TestBrowserSessionReplacesTamperedCookie(t *testing.T) {
	router := sessionRouter()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: browserSessionCookie, Value: "forged"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
	assert.Len(t, w.Result().Cookies(), 1)
}

func TestBrowserSessionsAreDistinct(t *testing.T) {
	router := sessionRouter()

	a := httptest.NewRecorder()
	router.ServeHTTP(a, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	b := httptest.NewRecorder()
	router.ServeHTTP(b, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.NotEqual(t, a.Body.String(), b.Body.String())
}

func TestRequestTracking(t *testing.T) {
	recorder := &fakeAPIRecorder{}
	router := gin.New()
	router.Use(RequestTracking(recorder))
	router.GET("/items/:id", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	requestID := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, requestID)
	assert.Equal(t, requestID, w.Body.String())

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	require.Len(t, recorder.samples, 1)
	assert.Equal(t, apiSample{"/items/:id", http.StatusOK}, recorder.samples[0])
}

func TestRequestTrackingKeepsUpstreamID(t *testing.T) {
	router := gin.New()
	router.Use(RequestTracking(nil))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	upstream := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", upstream)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, upstream, w.Header().Get("X-Request-ID"))
}

func TestRecoverWithSentry(t *testing.T) {
	router := gin.New()
	router.Use(RecoverWithSentry())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"https://app.example"}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
