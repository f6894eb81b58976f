package handlers

import (
	"errors"
	"net/http"

	"tripmarket/internal/domain"
	"tripmarket/internal/http/middleware"
	"tripmarket/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error payload every handler sends.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Success:   false,
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
// Gateway and store failures are logged with their cause and answered with a generic message.
func RespondDomainError(c *gin.Context, err error) {
	var ve domain.ValidationError
	switch {
	case errors.As(err, &ve):
		var details any
		if ve.Field != "" {
			details = gin.H{"field": ve.Field}
		}
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), details)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, "forbidden", err.Error(), nil)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case domain.IsInvalidTransition(err):
		respondError(c, http.StatusConflict, "invalid_transition", err.Error(), nil)
	case domain.IsInvalidSignature(err):
		respondError(c, http.StatusBadRequest, "invalid_signature", err.Error(), nil)
	case domain.IsDuplicateReview(err):
		respondError(c, http.StatusConflict, "duplicate_review", err.Error(), nil)
	case domain.IsGateway(err):
		utils.Logger(c.Request.Context(), "http").WithError(err).Error("gateway failure")
		respondError(c, http.StatusBadGateway, "gateway_error", "payment gateway unavailable", nil)
	default:
		utils.Logger(c.Request.Context(), "http").WithError(err).Error("request failed")
		respondError(c, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
