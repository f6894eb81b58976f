package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetBookingInvoicePDF returns the booking invoice (inline).
func (a *API) GetBookingInvoicePDF(c *gin.Context) {
	s, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	pdfBytes, filename, err := a.Docs.GenerateBookingInvoice(c.Request.Context(), s, c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
