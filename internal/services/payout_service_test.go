package services

import (
	"context"
	"testing"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"
	"tripmarket/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestScheduleForBooking(t *testing.T) {
	payouts := new(MockPayoutStore)
	trips := new(MockTripStore)
	trips.On("GetByID", mock.Anything, "tp-1").Return(activePlan(), nil)
	payouts.On("Create", mock.Anything, mock.AnythingOfType("models.Payout")).Return(true, nil).Once()
	pub := &recordingPublisher{}

	svc := PayoutService{Payouts: payouts, Trips: trips, Events: pub, Policy: domain.DefaultPayoutPolicy(), Now: fixedClock(testNow)}
	p, err := svc.ScheduleForBooking(context.Background(), confirmedBooking())
	require.NoError(t, err)

	assert.Equal(t, "h-1", p.HostID)
	assert.Equal(t, 900.0, p.TotalAmount)
	assert.Equal(t, 450.0, p.First.Amount)
	assert.Equal(t, 450.0, p.Second.Amount)
	assert.Equal(t, p.TotalAmount, p.First.Amount+p.Second.Amount)
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), p.First.Date)
	assert.Equal(t, time.Date(2026, 12, 12, 0, 0, 0, 0, time.UTC), p.Second.Date)
	assert.Equal(t, models.PayoutPending, p.First.Status)
	assert.Equal(t, "commission 100.00", p.Notes)

	assert.Equal(t, []string{events.PayoutScheduled}, pub.types())
	assert.Equal(t, events.TopicPayoutNotifications, pub.topics[0])
}

func TestScheduleForBookingExisting(t *testing.T) {
	payouts := new(MockPayoutStore)
	trips := new(MockTripStore)
	trips.On("GetByID", mock.Anything, "tp-1").Return(activePlan(), nil)
	payouts.On("Create", mock.Anything, mock.Anything).Return(false, nil)
	existing := models.Payout{ID: "po-1", BookingID: "b-1", HostID: "h-1"}
	payouts.On("GetByBookingID", mock.Anything, "b-1").Return(existing, nil)
	pub := &recordingPublisher{}

	svc := PayoutService{Payouts: payouts, Trips: trips, Events: pub, Policy: domain.DefaultPayoutPolicy(), Now: fixedClock(testNow)}
	p, err := svc.ScheduleForBooking(context.Background(), confirmedBooking())
	require.NoError(t, err)
	assert.Equal(t, "po-1", p.ID)
	assert.Empty(t, pub.events)
}

func TestScheduleForBookingRequiresConfirmed(t *testing.T) {
	payouts := new(MockPayoutStore)
	svc := PayoutService{Payouts: payouts, Trips: new(MockTripStore), Policy: domain.DefaultPayoutPolicy()}

	_, err := svc.ScheduleForBooking(context.Background(), pendingBooking())
	assert.True(t, domain.IsValidation(err))
	payouts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMarkInstallmentPaid(t *testing.T) {
	paid := models.Payout{BookingID: "b-1", HostID: "h-1", First: models.PayoutInstallment{Status: models.PayoutPaid}}

	t.Run("pending installment", func(t *testing.T) {
		payouts := new(MockPayoutStore)
		payouts.On("MarkInstallmentPaid", mock.Anything, "b-1", 1, testNow).Return(true, nil)
		payouts.On("GetByBookingID", mock.Anything, "b-1").Return(paid, nil)
		pub := &recordingPublisher{}
		svc := PayoutService{Payouts: payouts, Events: pub, Now: fixedClock(testNow)}

		p, err := svc.MarkInstallmentPaid(context.Background(), "b-1", 1)
		require.NoError(t, err)
		assert.Equal(t, models.PayoutPaid, p.First.Status)
		assert.Equal(t, []string{events.PayoutPaid}, pub.types())
		assert.Equal(t, 1, pub.events[0].Data["installment"])
	})

	t.Run("already paid", func(t *testing.T) {
		payouts := new(MockPayoutStore)
		payouts.On("MarkInstallmentPaid", mock.Anything, "b-1", 1, testNow).Return(false, nil)
		payouts.On("GetByBookingID", mock.Anything, "b-1").Return(paid, nil)
		pub := &recordingPublisher{}
		svc := PayoutService{Payouts: payouts, Events: pub, Now: fixedClock(testNow)}

		_, err := svc.MarkInstallmentPaid(context.Background(), "b-1", 1)
		assert.True(t, domain.IsValidation(err))
		assert.Empty(t, pub.events)
	})

	t.Run("no payout", func(t *testing.T) {
		payouts := new(MockPayoutStore)
		payouts.On("MarkInstallmentPaid", mock.Anything, "b-9", 2, testNow).Return(false, nil)
		payouts.On("GetByBookingID", mock.Anything, "b-9").Return(models.Payout{}, domain.NotFoundError{Resource: "payout"})
		svc := PayoutService{Payouts: payouts, Now: fixedClock(testNow)}

		_, err := svc.MarkInstallmentPaid(context.Background(), "b-9", 2)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestGetPayoutForBooking(t *testing.T) {
	payouts := new(MockPayoutStore)
	payouts.On("GetByBookingID", mock.Anything, "b-1").Return(models.Payout{BookingID: "b-1", HostID: "h-1"}, nil)
	svc := PayoutService{Payouts: payouts}
	ctx := context.Background()

	_, err := svc.GetForBooking(ctx, domain.Session{UserID: "h-1", Role: domain.RoleHost}, "b-1")
	assert.NoError(t, err)
	_, err = svc.GetForBooking(ctx, domain.Session{UserID: "s-1", Role: domain.RoleSupport}, "b-1")
	assert.NoError(t, err)
	_, err = svc.GetForBooking(ctx, domain.Session{UserID: "h-2", Role: domain.RoleHost}, "b-1")
	assert.True(t, domain.IsForbidden(err))
}
