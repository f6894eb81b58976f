package models

import "time"

// PaymentEvent is a credited gateway payment. gateway_payment_id is unique,
// which is what makes webhook redelivery harmless.
type PaymentEvent struct {
	GatewayPaymentID string    `json:"gatewayPaymentId"`
	BookingID        string    `json:"bookingId"`
	GatewayOrderID   string    `json:"gatewayOrderId"`
	Amount           float64   `json:"amount"`
	CreditedAmount   float64   `json:"creditedAmount"` // part of Amount that fit the open balance
	CreatedAt        time.Time `json:"createdAt"`
}

// PaymentResult tells the caller what ApplyPayment did.
type PaymentResult struct {
	Booking   Booking
	Applied   bool // false when the payment id had already been credited
	Confirmed bool // booking moved to CONFIRMED by this credit
	Credited  float64
}

type Review struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	BookingID    string    `json:"bookingId"`
	TravelPlanID string    `json:"travelPlanId"`
	HostID       string    `json:"hostId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type RatingStats struct {
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}

type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "PENDING"
	PayoutPaid      PayoutStatus = "PAID"
	PayoutCancelled PayoutStatus = "CANCELLED"
)

type PayoutInstallment struct {
	Amount  float64      `json:"amount"`
	Percent float64      `json:"percent"`
	Date    time.Time    `json:"date"`
	Status  PayoutStatus `json:"status"`
	PaidAt  *time.Time   `json:"paidAt,omitempty"`
}

type Payout struct {
	ID          string            `json:"id"`
	BookingID   string            `json:"bookingId"`
	HostID      string            `json:"hostId"`
	TotalAmount float64           `json:"totalAmount"`
	First       PayoutInstallment `json:"firstPayment"`
	Second      PayoutInstallment `json:"secondPayment"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}
