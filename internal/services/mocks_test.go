package services

import (
	"context"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"
	"tripmarket/internal/events"
	"tripmarket/internal/gateway"

	"github.com/stretchr/testify/mock"
)

type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) Create(ctx context.Context, b models.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingStore) GetByID(ctx context.Context, id string) (models.Booking, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *MockBookingStore) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingStore) UpdateGuests(ctx context.Context, b models.Booking) (bool, error) {
	args := m.Called(ctx, b)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingStore) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus, payment models.PaymentStatus, at time.Time) (bool, error) {
	args := m.Called(ctx, id, from, to, payment, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingStore) SetGatewayOrder(ctx context.Context, id, orderID string, at time.Time) error {
	args := m.Called(ctx, id, orderID, at)
	return args.Error(0)
}

func (m *MockBookingStore) ApplyPayment(ctx context.Context, bookingID string, credit models.PaymentCredit, at time.Time) (models.PaymentResult, error) {
	args := m.Called(ctx, bookingID, credit, at)
	return args.Get(0).(models.PaymentResult), args.Error(1)
}

func (m *MockBookingStore) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockTripStore struct {
	mock.Mock
}

func (m *MockTripStore) Create(ctx context.Context, t models.TravelPlan) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTripStore) GetByID(ctx context.Context, id string) (models.TravelPlan, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.TravelPlan), args.Error(1)
}

func (m *MockTripStore) ListActive(ctx context.Context) ([]models.TravelPlan, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.TravelPlan), args.Error(1)
}

func (m *MockTripStore) ListByHost(ctx context.Context, hostID string) ([]models.TravelPlan, error) {
	args := m.Called(ctx, hostID)
	return args.Get(0).([]models.TravelPlan), args.Error(1)
}

func (m *MockTripStore) UpdateStatus(ctx context.Context, id string, status models.TripStatus, at time.Time) error {
	args := m.Called(ctx, id, status, at)
	return args.Error(0)
}

type MockPayoutStore struct {
	mock.Mock
}

func (m *MockPayoutStore) Create(ctx context.Context, p models.Payout) (bool, error) {
	args := m.Called(ctx, p)
	return args.Bool(0), args.Error(1)
}

func (m *MockPayoutStore) GetByBookingID(ctx context.Context, bookingID string) (models.Payout, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).(models.Payout), args.Error(1)
}

func (m *MockPayoutStore) ListByHost(ctx context.Context, hostID string) ([]models.Payout, error) {
	args := m.Called(ctx, hostID)
	return args.Get(0).([]models.Payout), args.Error(1)
}

func (m *MockPayoutStore) MarkInstallmentPaid(ctx context.Context, bookingID string, installment int, paidAt time.Time) (bool, error) {
	args := m.Called(ctx, bookingID, installment, paidAt)
	return args.Bool(0), args.Error(1)
}

type MockPayoutScheduler struct {
	mock.Mock
}

func (m *MockPayoutScheduler) ScheduleForBooking(ctx context.Context, b models.Booking) (models.Payout, error) {
	args := m.Called(ctx, b)
	return args.Get(0).(models.Payout), args.Error(1)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetRole(ctx context.Context, userID string) (domain.Role, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Role), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, u models.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserStore) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserStore) UpdateRole(ctx context.Context, userID string, role domain.Role, at time.Time) error {
	args := m.Called(ctx, userID, role, at)
	return args.Error(0)
}

type MockOrderGateway struct {
	mock.Mock
}

func (m *MockOrderGateway) CreateOrder(ctx context.Context, in gateway.OrderRequest) (gateway.Order, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(gateway.Order), args.Error(1)
}

func (m *MockOrderGateway) KeyID() string {
	return "rzp_test_key"
}

type MockPaymentApplier struct {
	mock.Mock
}

func (m *MockPaymentApplier) ApplyPaymentEvent(ctx context.Context, bookingID string, credit models.PaymentCredit) (models.Booking, error) {
	args := m.Called(ctx, bookingID, credit)
	return args.Get(0).(models.Booking), args.Error(1)
}

type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) Load(ctx context.Context) (models.TripSnapshot, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.TripSnapshot), args.Bool(1), args.Error(2)
}

func (m *MockSnapshotStore) Save(ctx context.Context, snap models.TripSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockSnapshotStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// recordingPublisher keeps every published event for assertions.
type recordingPublisher struct {
	events []events.Event
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, ev events.Event) error {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
