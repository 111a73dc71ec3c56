package middleware

import (
	"net/http"

	"planora/internal/session"

	"github.com/gin-gonic/gin"
)

// Context keys set by SessionMiddleware.
const (
	SessionKey = "session"
	UserIDKey  = "user_id"
)

// SessionMiddleware validates the session cookie and stores the parsed
// session in the request context.
func SessionMiddleware(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(session.CookieName)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		sess, err := manager.Parse(value)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			c.Abort()
			return
		}

		c.Set(SessionKey, sess)
		c.Set(UserIDKey, sess.UserID)
		c.Next()
	}
}

// CurrentSession extracts the session placed in the context by
// SessionMiddleware.
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	value, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := value.(*session.Session)
	return sess, ok
}
