package middleware

import (
	"context"
	"net/http"

	"tripmarket/internal/domain"
	"tripmarket/internal/utils"

	"github.com/gin-gonic/gin"
)

// Guard re-validates a session against the stored role.
type Guard interface {
	RequireAnyRole(ctx context.Context, session *domain.Session, roles ...domain.Role) (domain.Session, error)
}

// RequireRole rejects the request unless the caller's persisted role satisfies one of roles.
// On success the stored session is replaced by the re-validated one.
func RequireRole(guard Guard, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var session *domain.Session
		if s, ok := SessionFrom(c); ok {
			session = &s
		}
		checked, err := guard.RequireAnyRole(c.Request.Context(), session, roles...)
		if err != nil {
			if domain.IsUnauthorized(err) {
				abortWith(c, http.StatusUnauthorized, "unauthorized", err.Error())
				return
			}
			utils.Logger(c.Request.Context(), "guard").WithError(err).Error("role lookup failed")
			abortWith(c, http.StatusInternalServerError, "internal_error", "internal error")
			return
		}
		c.Set(sessionKey, checked)
		c.Next()
	}
}

// OptionalRole re-validates a session when one is present and lets anonymous callers through.
// A session whose user no longer exists continues anonymously.
func OptionalRole(guard Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := SessionFrom(c)
		if !ok {
			c.Next()
			return
		}
		checked, err := guard.RequireAnyRole(c.Request.Context(), &s, domain.RoleUser, domain.RoleSupport)
		if err != nil {
			if !domain.IsUnauthorized(err) {
				utils.Logger(c.Request.Context(), "guard").WithError(err).Error("role lookup failed")
				abortWith(c, http.StatusInternalServerError, "internal_error", "internal error")
				return
			}
			checked = domain.Session{}
		}
		c.Set(sessionKey, checked)
		c.Next()
	}
}
