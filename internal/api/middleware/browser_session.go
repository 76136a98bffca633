package middleware

import (
	"net/http"

	"github.com/Conceptual-Machines/wordexpander/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	// ContextSessionID is the gin context key holding the browser session ID
	ContextSessionID = "session_id"

	browserSessionCookie = "wordexpander_session"
	browserSessionKey    = "id"
	browserSessionMaxAge = 7 * 24 * 60 * 60
)

// NewCookieStore builds the signed cookie store identifying browser sessions
func NewCookieStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options.Path = "/"
	store.Options.MaxAge = browserSessionMaxAge
	store.Options.HttpOnly = true
	store.Options.Secure = secure // Use secure cookies in production
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}

// BrowserSession assigns every browser a stable session ID kept in a signed cookie.
// A missing or tampered cookie yields a fresh ID.
func BrowserSession(store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := store.Get(c.Request, browserSessionCookie)
		if err != nil {
			logger.Warn("Discarding unreadable session cookie", logger.Fields{
				"request_id": c.GetString("request_id"),
				"error":      err.Error(),
			})
		}

		id, _ := sess.Values[browserSessionKey].(string)
		if _, parseErr := uuid.Parse(id); parseErr != nil {
			id = uuid.New().String()
			sess.Values[browserSessionKey] = id
			if err := sess.Save(c.Request, c.Writer); err != nil {
				logger.Error("Failed to save session cookie", err, logger.Fields{
					"request_id": c.GetString("request_id"),
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
				return
			}
		}

		c.Set(ContextSessionID, id)
		c.Next()
	}
}

// GetSessionID returns the browser session ID set by BrowserSession
func GetSessionID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextSessionID)
	return id, id != ""
}
