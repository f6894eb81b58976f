package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"
	"tripmarket/internal/events"
	"tripmarket/internal/utils"

	"github.com/google/uuid"
)

// BookingService owns the booking lifecycle: creation, guest roster, status changes and payment credits.
type BookingService struct {
	Bookings BookingStore
	Trips    TripStore
	Payouts  PayoutScheduler
	Events   events.Publisher
	Policy   domain.BookingPolicy
	Now      func() time.Time
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utils.NowUTC()
}

func (s BookingService) CreateBooking(ctx context.Context, userID string, in models.BookingInput) (models.Booking, error) {
	if strings.TrimSpace(userID) == "" {
		return models.Booking{}, domain.UnauthorizedError{Msg: "missing session"}
	}
	in.TravelPlanID = utils.TrimOrEmpty(in.TravelPlanID)
	if in.TravelPlanID == "" {
		return models.Booking{}, domain.ValidationError{Field: "travelPlanId", Msg: "required"}
	}
	if in.Participants < 1 {
		return models.Booking{}, domain.ValidationError{Field: "participants", Msg: "must be at least 1"}
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return models.Booking{}, domain.ValidationError{Field: "startDate", Msg: "start and end dates are required"}
	}
	if in.StartDate.After(in.EndDate) {
		return models.Booking{}, domain.ValidationError{Field: "startDate", Msg: "must not be after endDate"}
	}
	guests, err := cleanGuests(in.Guests, in.Participants)
	if err != nil {
		return models.Booking{}, err
	}

	plan, err := s.Trips.GetByID(ctx, in.TravelPlanID)
	if err != nil {
		return models.Booking{}, err
	}
	if plan.Status != models.TripActive {
		return models.Booking{}, domain.NotFoundError{Resource: "travel plan"}
	}
	if plan.MaxParticipants > 0 && in.Participants > plan.MaxParticipants {
		return models.Booking{}, domain.ValidationError{
			Field: "participants",
			Msg:   fmt.Sprintf("at most %d participants allowed", plan.MaxParticipants),
		}
	}

	now := s.now()
	total := utils.RoundMoney(plan.Price * float64(in.Participants))
	b := models.Booking{
		ID:                  uuid.NewString(),
		UserID:              userID,
		TravelPlanID:        plan.ID,
		StartDate:           in.StartDate.UTC(),
		EndDate:             in.EndDate.UTC(),
		TotalPrice:          total,
		PricePerPerson:      plan.Price,
		Participants:        in.Participants,
		Guests:              guests,
		SpecialRequirements: utils.TrimOrEmpty(in.SpecialRequirements),
		Status:              models.BookingPending,
		PaymentStatus:       models.PaymentPending,
		AmountPaid:          0,
		RemainingAmount:     total,
		MinPaymentAmount:    s.Policy.MinPayment(total),
		PaymentDeadline:     s.Policy.PaymentDeadline(in.StartDate.UTC(), now),
		FormSubmitted:       len(guests) > 0,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.Bookings.Create(ctx, b); err != nil {
		return models.Booking{}, err
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "booking", "create", fmt.Sprintf("booking_id=%s plan=%s total=%s", b.ID, plan.ID, utils.FormatMoney(total)))
	return b, nil
}

// cleanGuests trims the roster and rejects unnamed entries or more guests than participants.
func cleanGuests(in []models.Guest, participants int) ([]models.Guest, error) {
	out := make([]models.Guest, 0, len(in))
	for i, g := range in {
		g.Name = utils.NormalizeSpace(g.Name)
		g.Email = utils.TrimOrEmpty(g.Email)
		g.Phone = utils.TrimOrEmpty(g.Phone)
		if g.Name == "" {
			return nil, domain.ValidationError{Field: "guests", Msg: fmt.Sprintf("guest %d has no name", i+1)}
		}
		if g.Age < 0 {
			return nil, domain.ValidationError{Field: "guests", Msg: fmt.Sprintf("guest %d has a negative age", i+1)}
		}
		out = append(out, g)
	}
	if len(out) > participants {
		return nil, domain.ValidationError{Field: "guests", Msg: "more guests than participants"}
	}
	return out, nil
}

func (s BookingService) UpdateGuestInfo(ctx context.Context, callerID, bookingID string, upd models.GuestInfoUpdate) (models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if !b.OwnedBy(callerID) {
		return models.Booking{}, domain.ForbiddenError{Resource: "booking"}
	}
	if b.Status == models.BookingCancelled || b.Status == models.BookingRefunded {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: "booking is " + string(b.Status)}
	}
	if upd.Participants < 1 {
		return models.Booking{}, domain.ValidationError{Field: "participants", Msg: "must be at least 1"}
	}
	guests, err := cleanGuests(upd.Guests, upd.Participants)
	if err != nil {
		return models.Booking{}, err
	}

	if upd.Participants > b.Participants {
		plan, err := s.Trips.GetByID(ctx, b.TravelPlanID)
		if err != nil {
			return models.Booking{}, err
		}
		if plan.MaxParticipants > 0 && upd.Participants > plan.MaxParticipants {
			return models.Booking{}, domain.ValidationError{
				Field: "participants",
				Msg:   fmt.Sprintf("at most %d participants allowed", plan.MaxParticipants),
			}
		}
	}
	if upd.Participants != b.Participants {
		b.Reprice(upd.Participants)
		if b.TotalPrice < b.AmountPaid {
			return models.Booking{}, domain.ValidationError{Field: "participants", Msg: "new total is below the amount already paid"}
		}
		b.MinPaymentAmount = s.Policy.MinPayment(b.TotalPrice)
	}

	b.Guests = guests
	b.SpecialRequirements = utils.TrimOrEmpty(upd.SpecialRequirements)
	b.FormSubmitted = true
	b.UpdatedAt = s.now()

	ok, err := s.Bookings.UpdateGuests(ctx, b)
	if err != nil {
		return models.Booking{}, err
	}
	if !ok {
		return models.Booking{}, domain.ValidationError{Field: "participants", Msg: "new total is below the amount already paid"}
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "booking", "update_guests", fmt.Sprintf("booking_id=%s participants=%d guests=%d", b.ID, b.Participants, len(guests)))
	return s.Bookings.GetByID(ctx, b.ID)
}

// UpdateBookingStatus applies one transition from the booking state table.
// The write is a compare-and-set, so a concurrent change surfaces as an invalid transition.
func (s BookingService) UpdateBookingStatus(ctx context.Context, bookingID string, to models.BookingStatus) (models.Booking, error) {
	if !to.IsValid() {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: "unknown status " + string(to)}
	}
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if !b.Status.CanTransitionTo(to) {
		return models.Booking{}, domain.InvalidTransitionError{From: string(b.Status), To: string(to)}
	}

	var payment models.PaymentStatus
	if to == models.BookingCancelled && b.AmountPaid == 0 {
		payment = models.PaymentCancelled
	}

	now := s.now()
	moved, err := s.Bookings.UpdateStatus(ctx, b.ID, b.Status, to, payment, now)
	if err != nil {
		return models.Booking{}, err
	}
	if !moved {
		current, err := s.Bookings.GetByID(ctx, b.ID)
		if err != nil {
			return models.Booking{}, err
		}
		return models.Booking{}, domain.InvalidTransitionError{From: string(current.Status), To: string(to)}
	}

	from := b.Status
	b.Status = to
	if payment != "" {
		b.PaymentStatus = payment
	}
	b.UpdatedAt = now
	utils.LogEvent(utils.RequestIDFrom(ctx), "booking", "update_status", fmt.Sprintf("booking_id=%s %s->%s", b.ID, from, to))

	switch to {
	case models.BookingConfirmed:
		s.publish(ctx, events.BookingConfirmed, b)
		s.schedulePayout(ctx, b)
	case models.BookingCancelled:
		s.publish(ctx, events.BookingCancelled, b)
	}
	return b, nil
}

// ChangeStatus is UpdateBookingStatus with the caller's rights applied: SUPPORT and ADMIN
// may make any legal transition, the owning traveler may only cancel.
func (s BookingService) ChangeStatus(ctx context.Context, caller domain.Session, bookingID string, to models.BookingStatus) (models.Booking, error) {
	if caller.Role.Satisfies(domain.RoleSupport) {
		return s.UpdateBookingStatus(ctx, bookingID, to)
	}
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if !b.OwnedBy(caller.UserID) {
		return models.Booking{}, domain.ForbiddenError{Resource: "booking"}
	}
	if to != models.BookingCancelled {
		return models.Booking{}, domain.ForbiddenError{Msg: "travelers may only cancel their bookings"}
	}
	return s.UpdateBookingStatus(ctx, bookingID, to)
}

// ApplyPaymentEvent credits one captured gateway payment. Redelivery of the same
// gateway payment id returns the booking unchanged.
func (s BookingService) ApplyPaymentEvent(ctx context.Context, bookingID string, credit models.PaymentCredit) (models.Booking, error) {
	if strings.TrimSpace(bookingID) == "" {
		return models.Booking{}, domain.ValidationError{Field: "bookingId", Msg: "required"}
	}
	credit.GatewayPaymentID = utils.TrimOrEmpty(credit.GatewayPaymentID)
	if credit.GatewayPaymentID == "" {
		return models.Booking{}, domain.ValidationError{Field: "gatewayPaymentId", Msg: "required"}
	}
	credit.AmountDelta = utils.RoundMoney(credit.AmountDelta)
	if credit.AmountDelta <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "amount", Msg: "must be positive"}
	}

	res, err := s.Bookings.ApplyPayment(ctx, bookingID, credit, s.now())
	if err != nil {
		return models.Booking{}, err
	}
	rid := utils.RequestIDFrom(ctx)
	if !res.Applied {
		utils.LogEvent(rid, "booking", "apply_payment", "duplicate payment_id="+credit.GatewayPaymentID+" ignored")
		return res.Booking, nil
	}

	b := res.Booking
	utils.LogEvent(rid, "booking", "apply_payment", fmt.Sprintf("booking_id=%s payment_id=%s paid=%s remaining=%s",
		b.ID, credit.GatewayPaymentID, utils.FormatMoney(b.AmountPaid), utils.FormatMoney(b.RemainingAmount)))
	s.publish(ctx, events.PaymentCredited, b)
	if res.Confirmed {
		s.publish(ctx, events.BookingConfirmed, b)
		s.schedulePayout(ctx, b)
	}
	return b, nil
}

// GetBooking is visible to the traveler, the host of the plan, and SUPPORT/ADMIN staff.
func (s BookingService) GetBooking(ctx context.Context, caller domain.Session, bookingID string) (models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if b.OwnedBy(caller.UserID) || caller.Role.Satisfies(domain.RoleSupport) {
		return b, nil
	}
	if caller.Role == domain.RoleHost {
		plan, err := s.Trips.GetByID(ctx, b.TravelPlanID)
		if err != nil && !domain.IsNotFound(err) {
			return models.Booking{}, err
		}
		if err == nil && plan.HostID == caller.UserID {
			return b, nil
		}
	}
	return models.Booking{}, domain.ForbiddenError{Resource: "booking"}
}

func (s BookingService) ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.UnauthorizedError{Msg: "missing session"}
	}
	return s.Bookings.ListByUser(ctx, userID)
}

// MarkOverdue flags bookings whose payment deadline has passed.
func (s BookingService) MarkOverdue(ctx context.Context) (int64, error) {
	n, err := s.Bookings.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "booking", "mark_overdue", fmt.Sprintf("bookings=%d", n))
	return n, nil
}

func (s BookingService) schedulePayout(ctx context.Context, b models.Booking) {
	if s.Payouts == nil {
		return
	}
	if _, err := s.Payouts.ScheduleForBooking(ctx, b); err != nil {
		utils.Logger(ctx, "booking").WithError(err).WithField("booking_id", b.ID).Warn("payout scheduling failed")
	}
}

func (s BookingService) publish(ctx context.Context, eventType string, b models.Booking) {
	if s.Events == nil {
		return
	}
	err := s.Events.Publish(ctx, events.TopicBookingEvents, events.Event{
		Type:       eventType,
		Key:        b.ID,
		OccurredAt: s.now(),
		Data: map[string]any{
			"bookingId":       b.ID,
			"userId":          b.UserID,
			"travelPlanId":    b.TravelPlanID,
			"status":          string(b.Status),
			"paymentStatus":   string(b.PaymentStatus),
			"amountPaid":      b.AmountPaid,
			"remainingAmount": b.RemainingAmount,
		},
	})
	if err != nil {
		utils.Logger(ctx, "booking").WithError(err).WithField("event", eventType).Warn("publish failed")
	}
}
