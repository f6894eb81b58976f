package middleware

import (
	"net/http"

	"tripmarket/internal/auth"
	"tripmarket/internal/domain"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// SessionParser turns a raw bearer token into a session.
type SessionParser interface {
	Parse(raw string) (domain.Session, error)
}

// Authenticate reads an optional bearer token. Requests without one continue anonymously;
// a token that does not verify is rejected.
func Authenticate(parser SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.BearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			c.Next()
			return
		}
		s, err := parser.Parse(raw)
		if err != nil {
			abortWith(c, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		c.Set(sessionKey, s)
		c.Next()
	}
}

// SessionFrom returns the session stored by Authenticate or RequireRole.
func SessionFrom(c *gin.Context) (domain.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return domain.Session{}, false
	}
	s, ok := v.(domain.Session)
	return s, ok && !s.Empty()
}

func abortWith(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"error":      message,
		"code":       code,
		"request_id": GetRequestID(c),
	})
}
