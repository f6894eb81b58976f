package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type roleRequest struct {
	Role string `json:"role"`
}

func (a *API) ListUsers(c *gin.Context) {
	users, err := a.Users.ListUsers(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// UpdateUserRole is admin-only; the route carries the guard.
func (a *API) UpdateUserRole(c *gin.Context) {
	var req roleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := a.Users.UpdateRole(c.Request.Context(), c.Param("id"), req.Role); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
