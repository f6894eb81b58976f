package services

import (
	"context"
	"fmt"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"
	"tripmarket/internal/events"
	"tripmarket/internal/utils"

	"github.com/google/uuid"
)

type PayoutService struct {
	Payouts PayoutStore
	Trips   TripStore
	Events  events.Publisher
	Policy  domain.PayoutPolicy
	Now     func() time.Time
}

func (s PayoutService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utils.NowUTC()
}

// ScheduleForBooking creates the two-installment host payout for a confirmed booking.
// Calling it again for the same booking returns the existing schedule.
func (s PayoutService) ScheduleForBooking(ctx context.Context, b models.Booking) (models.Payout, error) {
	if b.Status != models.BookingConfirmed {
		return models.Payout{}, domain.ValidationError{Field: "status", Msg: "payouts are scheduled for confirmed bookings only"}
	}
	plan, err := s.Trips.GetByID(ctx, b.TravelPlanID)
	if err != nil {
		return models.Payout{}, err
	}

	split := domain.ComputePayoutSchedule(b.TotalPrice, b.StartDate, b.EndDate, s.Policy)
	now := s.now()
	p := models.Payout{
		ID:          uuid.NewString(),
		BookingID:   b.ID,
		HostID:      plan.HostID,
		TotalAmount: split.HostTotal,
		First: models.PayoutInstallment{
			Amount:  split.FirstAmount,
			Percent: split.FirstPercent,
			Date:    split.FirstDate,
			Status:  models.PayoutPending,
		},
		Second: models.PayoutInstallment{
			Amount:  split.SecondAmount,
			Percent: split.SecondPercent,
			Date:    split.SecondDate,
			Status:  models.PayoutPending,
		},
		Notes:     fmt.Sprintf("commission %s", utils.FormatMoney(split.Commission)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.Payouts.Create(ctx, p)
	if err != nil {
		return models.Payout{}, err
	}
	if !created {
		return s.Payouts.GetByBookingID(ctx, b.ID)
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "payout", "schedule", fmt.Sprintf("booking_id=%s host=%s total=%s", b.ID, p.HostID, utils.FormatMoney(p.TotalAmount)))
	s.publish(ctx, events.PayoutScheduled, p, 0)
	return p, nil
}

func (s PayoutService) MarkInstallmentPaid(ctx context.Context, bookingID string, installment int) (models.Payout, error) {
	ok, err := s.Payouts.MarkInstallmentPaid(ctx, bookingID, installment, s.now())
	if err != nil {
		return models.Payout{}, err
	}
	p, err := s.Payouts.GetByBookingID(ctx, bookingID)
	if err != nil {
		return models.Payout{}, err
	}
	if !ok {
		return models.Payout{}, domain.ValidationError{Field: "installment", Msg: fmt.Sprintf("installment %d is not pending", installment)}
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "payout", "mark_paid", fmt.Sprintf("booking_id=%s installment=%d", bookingID, installment))
	s.publish(ctx, events.PayoutPaid, p, installment)
	return p, nil
}

// GetForBooking returns the payout of one booking. Hosts only see their own.
func (s PayoutService) GetForBooking(ctx context.Context, caller domain.Session, bookingID string) (models.Payout, error) {
	p, err := s.Payouts.GetByBookingID(ctx, bookingID)
	if err != nil {
		return models.Payout{}, err
	}
	if p.HostID != caller.UserID && !caller.Role.Satisfies(domain.RoleSupport) {
		return models.Payout{}, domain.ForbiddenError{Resource: "payout"}
	}
	return p, nil
}

func (s PayoutService) ListForHost(ctx context.Context, hostID string) ([]models.Payout, error) {
	return s.Payouts.ListByHost(ctx, hostID)
}

func (s PayoutService) publish(ctx context.Context, eventType string, p models.Payout, installment int) {
	if s.Events == nil {
		return
	}
	data := map[string]any{
		"bookingId":   p.BookingID,
		"hostId":      p.HostID,
		"totalAmount": p.TotalAmount,
	}
	if installment > 0 {
		data["installment"] = installment
	}
	err := s.Events.Publish(ctx, events.TopicPayoutNotifications, events.Event{
		Type:       eventType,
		Key:        p.BookingID,
		OccurredAt: s.now(),
		Data:       data,
	})
	if err != nil {
		utils.Logger(ctx, "payout").WithError(err).WithField("event", eventType).Warn("publish failed")
	}
}
