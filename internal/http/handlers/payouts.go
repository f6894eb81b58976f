package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (a *API) ListHostPayouts(c *gin.Context) {
	s, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	list, err := a.Payouts.ListForHost(c.Request.Context(), s.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "payouts": list})
}

func (a *API) GetBookingPayout(c *gin.Context) {
	s, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	p, err := a.Payouts.GetForBooking(c.Request.Context(), s, c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "payout": p})
}

func (a *API) MarkInstallmentPaid(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_installment", "installment must be 1 or 2", nil)
		return
	}
	p, err := a.Payouts.MarkInstallmentPaid(c.Request.Context(), c.Param("bookingId"), n)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "payout": p})
}
