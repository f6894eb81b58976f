package services

import (
	"context"
	"sync"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"
	"tripmarket/internal/utils"
)

// memBookings is an in-memory BookingStore with the same credit and
// compare-and-set semantics as the MySQL repository.
type memBookings struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
	ledger   map[string]models.PaymentEvent
}

func newMemBookings(bs ...models.Booking) *memBookings {
	m := &memBookings{bookings: map[string]models.Booking{}, ledger: map[string]models.PaymentEvent{}}
	for _, b := range bs {
		m.bookings[b.ID] = b
	}
	return m
}

func (m *memBookings) Create(_ context.Context, b models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = b
	return nil
}

func (m *memBookings) GetByID(_ context.Context, id string) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}

func (m *memBookings) ListByUser(_ context.Context, userID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Booking{}
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookings) UpdateGuests(_ context.Context, b models.Booking) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.bookings[b.ID]
	if !ok || cur.AmountPaid > b.TotalPrice {
		return false, nil
	}
	cur.Participants = b.Participants
	cur.Guests = b.Guests
	cur.SpecialRequirements = b.SpecialRequirements
	cur.TotalPrice = b.TotalPrice
	cur.RemainingAmount = utils.RoundMoney(b.TotalPrice - cur.AmountPaid)
	cur.SettlePaymentStatus()
	cur.MinPaymentAmount = b.MinPaymentAmount
	cur.FormSubmitted = true
	cur.UpdatedAt = b.UpdatedAt
	m.bookings[b.ID] = cur
	return true, nil
}

func (m *memBookings) UpdateStatus(_ context.Context, id string, from, to models.BookingStatus, payment models.PaymentStatus, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.bookings[id]
	if !ok || cur.Status != from {
		return false, nil
	}
	cur.Status = to
	if payment != "" {
		cur.PaymentStatus = payment
	}
	cur.UpdatedAt = at
	m.bookings[id] = cur
	return true, nil
}

func (m *memBookings) SetGatewayOrder(_ context.Context, id, orderID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.bookings[id]
	if !ok {
		return domain.NotFoundError{Resource: "booking"}
	}
	cur.GatewayOrderID = orderID
	cur.UpdatedAt = at
	m.bookings[id] = cur
	return nil
}

func (m *memBookings) ApplyPayment(_ context.Context, bookingID string, credit models.PaymentCredit, at time.Time) (models.PaymentResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return models.PaymentResult{}, domain.NotFoundError{Resource: "booking"}
	}
	if _, seen := m.ledger[credit.GatewayPaymentID]; seen {
		return models.PaymentResult{Booking: b}, nil
	}
	res := models.PaymentResult{Applied: true}
	res.Credited = b.ApplyCredit(credit.AmountDelta)
	m.ledger[credit.GatewayPaymentID] = models.PaymentEvent{
		GatewayPaymentID: credit.GatewayPaymentID,
		BookingID:        bookingID,
		Amount:           credit.AmountDelta,
		CreditedAmount:   res.Credited,
		CreatedAt:        at,
	}
	if b.Status == models.BookingPending || b.Status == models.BookingNotPaid {
		b.Status = models.BookingConfirmed
		res.Confirmed = true
	}
	b.GatewayPaymentID = credit.GatewayPaymentID
	b.UpdatedAt = at
	m.bookings[bookingID] = b
	res.Booking = b
	return res, nil
}

func (m *memBookings) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, b := range m.bookings {
		if b.PaymentDeadline.IsZero() || !b.PaymentDeadline.Before(now) {
			continue
		}
		switch {
		case b.Status == models.BookingPending && b.PaymentStatus == models.PaymentPending:
			b.Status = models.BookingNotPaid
			b.PaymentStatus = models.PaymentOverdue
		case b.Status == models.BookingConfirmed && b.PaymentStatus == models.PaymentPartiallyPaid:
			b.PaymentStatus = models.PaymentOverdue
		default:
			continue
		}
		m.bookings[id] = b
		n++
	}
	return n, nil
}

// memReviews gates inserts on the booking flag the way the conditional UPDATE does.
type memReviews struct {
	mu       sync.Mutex
	bookings *memBookings
	rows     []models.Review
}

func (m *memReviews) CreateForBooking(_ context.Context, rv models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings.mu.Lock()
	defer m.bookings.mu.Unlock()

	b, ok := m.bookings.bookings[rv.BookingID]
	switch {
	case !ok || b.UserID != rv.UserID:
		return domain.NotFoundError{Resource: "booking"}
	case b.IsReviewed:
		return domain.DuplicateReviewError{BookingID: rv.BookingID}
	case b.Status != models.BookingConfirmed:
		return domain.ValidationError{Field: "booking", Msg: "only confirmed bookings can be reviewed"}
	}
	b.IsReviewed = true
	m.bookings.bookings[rv.BookingID] = b
	m.rows = append(m.rows, rv)
	return nil
}

func (m *memReviews) ListByTrip(_ context.Context, travelPlanID string) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Review{}
	for _, rv := range m.rows {
		if rv.TravelPlanID == travelPlanID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (m *memReviews) TripStats(_ context.Context, travelPlanID string) (models.RatingStats, error) {
	return m.stats(func(rv models.Review) bool { return rv.TravelPlanID == travelPlanID }), nil
}

func (m *memReviews) HostStats(_ context.Context, hostID string) (models.RatingStats, error) {
	return m.stats(func(rv models.Review) bool { return rv.HostID == hostID }), nil
}

func (m *memReviews) stats(match func(models.Review) bool) models.RatingStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st models.RatingStats
	sum := 0
	for _, rv := range m.rows {
		if match(rv) {
			sum += rv.Rating
			st.ReviewCount++
		}
	}
	if st.ReviewCount > 0 {
		st.AverageRating = float64(sum) / float64(st.ReviewCount)
	}
	return st
}
