package handlers

import (
	"io"
	"net/http"

	"tripmarket/internal/gateway"
	"tripmarket/internal/services"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody bounds the raw body read before the signature check.
const maxWebhookBody = 1 << 20

type verifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

func (a *API) CreatePaymentOrder(c *gin.Context) {
	s, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req services.OrderInput
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := a.Payments.CreateOrder(c.Request.Context(), s, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": res.Order, "key": res.Key})
}

// PaymentWebhook verifies the signature over the exact bytes received, then dispatches.
// Accepted and ignored events both answer 200 so the gateway stops redelivering.
func (a *API) PaymentWebhook(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", "could not read body", nil)
		return
	}
	if err := a.Payments.HandleWebhook(c.Request.Context(), raw, c.GetHeader(gateway.SignatureHeader)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// VerifyCheckout confirms the checkout signature. It never credits; the webhook does.
func (a *API) VerifyCheckout(c *gin.Context) {
	var req verifyRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := a.Payments.VerifyCheckoutSignature(req.OrderID, req.PaymentID, req.Signature); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "verified": true})
}

func (a *API) PaymentHistory(c *gin.Context) {
	s, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	list, err := a.Payments.PaymentHistory(c.Request.Context(), s, c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "payments": list})
}
