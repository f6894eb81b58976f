package services

import (
	"context"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"
	"tripmarket/internal/gateway"
)

// The services depend on these narrow interfaces; the repositories package
// provides the MySQL implementations.

type RoleLookup interface {
	GetRole(ctx context.Context, userID string) (domain.Role, error)
}

type UserStore interface {
	RoleLookup
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, u models.User) error
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, userID string, role domain.Role, at time.Time) error
}

type BookingStore interface {
	Create(ctx context.Context, b models.Booking) error
	GetByID(ctx context.Context, id string) (models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	UpdateGuests(ctx context.Context, b models.Booking) (bool, error)
	UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus, payment models.PaymentStatus, at time.Time) (bool, error)
	SetGatewayOrder(ctx context.Context, id, orderID string, at time.Time) error
	ApplyPayment(ctx context.Context, bookingID string, credit models.PaymentCredit, at time.Time) (models.PaymentResult, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type TripStore interface {
	Create(ctx context.Context, t models.TravelPlan) error
	GetByID(ctx context.Context, id string) (models.TravelPlan, error)
	ListActive(ctx context.Context) ([]models.TravelPlan, error)
	ListByHost(ctx context.Context, hostID string) ([]models.TravelPlan, error)
	UpdateStatus(ctx context.Context, id string, status models.TripStatus, at time.Time) error
}

type ReviewStore interface {
	CreateForBooking(ctx context.Context, rv models.Review) error
	ListByTrip(ctx context.Context, travelPlanID string) ([]models.Review, error)
	TripStats(ctx context.Context, travelPlanID string) (models.RatingStats, error)
	HostStats(ctx context.Context, hostID string) (models.RatingStats, error)
}

type PayoutStore interface {
	Create(ctx context.Context, p models.Payout) (bool, error)
	GetByBookingID(ctx context.Context, bookingID string) (models.Payout, error)
	ListByHost(ctx context.Context, hostID string) ([]models.Payout, error)
	MarkInstallmentPaid(ctx context.Context, bookingID string, installment int, paidAt time.Time) (bool, error)
}

type PaymentLedger interface {
	ListByBooking(ctx context.Context, bookingID string) ([]models.PaymentEvent, error)
}

// OrderGateway is the part of the gateway client the payment service uses.
type OrderGateway interface {
	CreateOrder(ctx context.Context, in gateway.OrderRequest) (gateway.Order, error)
	KeyID() string
}

// SnapshotStore is an optional shared level behind the trip listing cache.
type SnapshotStore interface {
	Load(ctx context.Context) (models.TripSnapshot, bool, error)
	Save(ctx context.Context, snap models.TripSnapshot) error
	Clear(ctx context.Context) error
}

// PayoutScheduler is called once a booking is confirmed.
type PayoutScheduler interface {
	ScheduleForBooking(ctx context.Context, b models.Booking) (models.Payout, error)
}
