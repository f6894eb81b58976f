package models

import (
	"fmt"
	"math"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingNotPaid   BookingStatus = "NOTPAID"
	BookingRefunded  BookingStatus = "REFUNDED"
)

// bookingTransitions is the full set of legal status changes.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled, BookingNotPaid},
	BookingNotPaid:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {},
	BookingCancelled: {},
	BookingRefunded:  {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "PENDING"
	PaymentPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentFullyPaid     PaymentStatus = "FULLY_PAID"
	PaymentOverdue       PaymentStatus = "OVERDUE"
	PaymentRefunded      PaymentStatus = "REFUNDED"
	PaymentCancelled     PaymentStatus = "CANCELLED"
)

// Guest is one traveler on a booking roster.
type Guest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Age   int    `json:"age,omitempty"`
}

type Booking struct {
	ID                  string        `json:"id"`
	UserID              string        `json:"userId"`
	TravelPlanID        string        `json:"travelPlanId"`
	StartDate           time.Time     `json:"startDate"`
	EndDate             time.Time     `json:"endDate"`
	TotalPrice          float64       `json:"totalPrice"`
	PricePerPerson      float64       `json:"pricePerPerson"`
	Participants        int           `json:"participants"`
	Guests              []Guest       `json:"guests"`
	SpecialRequirements string        `json:"specialRequirements,omitempty"`
	Status              BookingStatus `json:"status"`
	PaymentStatus       PaymentStatus `json:"paymentStatus"`
	AmountPaid          float64       `json:"amountPaid"`
	RemainingAmount     float64       `json:"remainingAmount"`
	MinPaymentAmount    float64       `json:"minPaymentAmount"`
	PaymentDeadline     time.Time     `json:"paymentDeadline"`
	RefundAmount        float64       `json:"refundAmount"`
	FormSubmitted       bool          `json:"formSubmitted"`
	IsReviewed          bool          `json:"isReviewed"`
	GatewayOrderID      string        `json:"gatewayOrderId,omitempty"`
	GatewayPaymentID    string        `json:"gatewayPaymentId,omitempty"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// BookingInput is what a traveler submits to create a booking.
type BookingInput struct {
	TravelPlanID        string    `json:"travelPlanId"`
	StartDate           time.Time `json:"startDate"`
	EndDate             time.Time `json:"endDate"`
	Participants        int       `json:"participants"`
	Guests              []Guest   `json:"guests"`
	SpecialRequirements string    `json:"specialRequirements"`
}

// GuestInfoUpdate replaces the guest roster of a booking.
type GuestInfoUpdate struct {
	Participants        int     `json:"participants"`
	Guests              []Guest `json:"guests"`
	SpecialRequirements string  `json:"specialRequirements"`
}

// PaymentCredit is one captured gateway payment, in major units.
type PaymentCredit struct {
	AmountDelta      float64 `json:"amountDelta"`
	GatewayPaymentID string  `json:"gatewayPaymentId"`
	GatewayOrderID   string  `json:"gatewayOrderId"`
}

func roundMoney(x float64) float64 {
	return math.Round(x*100) / 100
}

// ApplyCredit adds a payment to the running balance, never past the total.
// It returns the amount actually credited.
func (b *Booking) ApplyCredit(delta float64) float64 {
	if delta < 0 {
		delta = 0
	}
	before := b.AmountPaid
	paid := roundMoney(b.AmountPaid + delta)
	if paid > b.TotalPrice {
		paid = b.TotalPrice
	}
	b.AmountPaid = paid
	b.RemainingAmount = roundMoney(b.TotalPrice - paid)
	if b.RemainingAmount <= 0 {
		b.RemainingAmount = 0
		b.PaymentStatus = PaymentFullyPaid
	} else {
		b.PaymentStatus = PaymentPartiallyPaid
	}
	return roundMoney(paid - before)
}

// Reprice recomputes the totals after a participant change, keeping amount_paid.
func (b *Booking) Reprice(participants int) {
	b.Participants = participants
	b.TotalPrice = roundMoney(b.PricePerPerson * float64(participants))
	b.RemainingAmount = roundMoney(b.TotalPrice - b.AmountPaid)
	b.SettlePaymentStatus()
}

// SettlePaymentStatus derives the payment status from the balance once something is paid.
// OVERDUE survives while a balance is still open; with nothing paid the status is left alone.
func (b *Booking) SettlePaymentStatus() {
	if b.AmountPaid <= 0 {
		return
	}
	switch {
	case b.RemainingAmount <= 0:
		b.RemainingAmount = 0
		b.PaymentStatus = PaymentFullyPaid
	case b.PaymentStatus != PaymentOverdue:
		b.PaymentStatus = PaymentPartiallyPaid
	}
}

// OwnedBy reports whether userID is the traveler who made the booking.
func (b Booking) OwnedBy(userID string) bool {
	return userID != "" && b.UserID == userID
}
