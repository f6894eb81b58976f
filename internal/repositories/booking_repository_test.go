package repositories

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

var bookingRowColumns = []string{
	"id", "user_id", "travel_plan_id", "start_date", "end_date",
	"total_price", "price_per_person", "participants", "guests", "special_requirements",
	"status", "payment_status", "amount_paid", "remaining_amount", "min_payment_amount", "payment_deadline",
	"refund_amount", "form_submitted", "is_reviewed", "gateway_order_id", "gateway_payment_id",
	"created_at", "updated_at",
}

func bookingRow(b models.Booking) *sqlmock.Rows {
	var deadline driver.Value
	if !b.PaymentDeadline.IsZero() {
		deadline = b.PaymentDeadline
	}
	return sqlmock.NewRows(bookingRowColumns).AddRow(
		b.ID, b.UserID, b.TravelPlanID, b.StartDate, b.EndDate,
		b.TotalPrice, b.PricePerPerson, b.Participants, []byte(`[{"name":"Asha"}]`), b.SpecialRequirements,
		string(b.Status), string(b.PaymentStatus), b.AmountPaid, b.RemainingAmount, b.MinPaymentAmount, deadline,
		b.RefundAmount, b.FormSubmitted, b.IsReviewed, b.GatewayOrderID, b.GatewayPaymentID,
		b.CreatedAt, b.UpdatedAt,
	)
}

func sampleBooking() models.Booking {
	start := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	return models.Booking{
		ID:               "b-0001",
		UserID:           "u-1",
		TravelPlanID:     "tp-1",
		StartDate:        start,
		EndDate:          start.AddDate(0, 0, 4),
		TotalPrice:       1000,
		PricePerPerson:   500,
		Participants:     2,
		Status:           models.BookingPending,
		PaymentStatus:    models.PaymentPending,
		RemainingAmount:  1000,
		MinPaymentAmount: 200,
		PaymentDeadline:  start.AddDate(0, 0, -7),
		CreatedAt:        start.AddDate(0, -1, 0),
		UpdatedAt:        start.AddDate(0, -1, 0),
	}
}

func TestBookingGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM bookings WHERE id=\\?").WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(bookingRowColumns))

	_, err = BookingRepository{DB: db}.GetByID(context.Background(), "missing")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingGetByIDDecodesGuests(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	want := sampleBooking()
	mock.ExpectQuery("FROM bookings WHERE id=\\?").WithArgs(want.ID).WillReturnRows(bookingRow(want))

	got, err := BookingRepository{DB: db}.GetByID(context.Background(), want.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got.Guests) != 1 || got.Guests[0].Name != "Asha" {
		t.Fatalf("guests decoded incorrectly: %+v", got.Guests)
	}
	if got.Status != models.BookingPending || !got.PaymentDeadline.Equal(want.PaymentDeadline) {
		t.Fatalf("unexpected booking: %+v", got)
	}
}

func TestBookingApplyPaymentCreditsAndConfirms(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	b := sampleBooking()
	credit := models.PaymentCredit{AmountDelta: 400, GatewayPaymentID: "pay_1", GatewayOrderID: "order_1"}
	at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payment_events").
		WithArgs("pay_1", b.ID, "order_1", 400.0, 400.0, at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM bookings WHERE id=\\? FOR UPDATE").WithArgs(b.ID).WillReturnRows(bookingRow(b))
	mock.ExpectExec("UPDATE bookings").
		WithArgs(400.0, 600.0, "PARTIALLY_PAID", "CONFIRMED", "order_1", "pay_1", at, b.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := BookingRepository{DB: db}.ApplyPayment(context.Background(), b.ID, credit, at)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !res.Applied || !res.Confirmed {
		t.Fatalf("expected applied and confirmed, got %+v", res)
	}
	if res.Booking.AmountPaid != 400 || res.Booking.RemainingAmount != 600 {
		t.Fatalf("balance wrong: paid=%v remaining=%v", res.Booking.AmountPaid, res.Booking.RemainingAmount)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingApplyPaymentDuplicateIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	b := sampleBooking()
	b.Status = models.BookingConfirmed
	b.PaymentStatus = models.PaymentPartiallyPaid
	b.AmountPaid = 400
	b.RemainingAmount = 600

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payment_events").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()
	mock.ExpectQuery("FROM bookings WHERE id=\\?").WithArgs(b.ID).WillReturnRows(bookingRow(b))

	res, err := BookingRepository{DB: db}.ApplyPayment(context.Background(), b.ID,
		models.PaymentCredit{AmountDelta: 400, GatewayPaymentID: "pay_1"}, time.Now())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Applied || res.Confirmed {
		t.Fatalf("duplicate delivery must not apply, got %+v", res)
	}
	if res.Booking.AmountPaid != 400 {
		t.Fatalf("amount changed on duplicate: %v", res.Booking.AmountPaid)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingApplyPaymentCapsAtTotal(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	b := sampleBooking()
	b.Status = models.BookingConfirmed
	b.PaymentStatus = models.PaymentPartiallyPaid
	b.AmountPaid = 900
	b.RemainingAmount = 100
	at := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payment_events").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(bookingRow(b))
	mock.ExpectExec("UPDATE payment_events SET credited_amount=").
		WithArgs(100.0, "pay_2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").
		WithArgs(1000.0, 0.0, "FULLY_PAID", "CONFIRMED", nil, "pay_2", at, b.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := BookingRepository{DB: db}.ApplyPayment(context.Background(), b.ID,
		models.PaymentCredit{AmountDelta: 250, GatewayPaymentID: "pay_2"}, at)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Confirmed {
		t.Fatalf("already confirmed booking must not report a new confirmation")
	}
	if res.Booking.AmountPaid != 1000 || res.Booking.PaymentStatus != models.PaymentFullyPaid {
		t.Fatalf("expected capped full payment, got %+v", res.Booking)
	}
	if res.Credited != 100 {
		t.Fatalf("expected 100 credited, got %v", res.Credited)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingApplyPaymentOnCancelledKeepsStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	b := sampleBooking()
	b.Status = models.BookingCancelled
	b.PaymentStatus = models.PaymentCancelled
	at := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payment_events").
		WithArgs("pay_3", b.ID, "", 300.0, 300.0, at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(bookingRow(b))
	mock.ExpectExec("UPDATE bookings").
		WithArgs(300.0, 700.0, "PARTIALLY_PAID", "CANCELLED", nil, "pay_3", at, b.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := BookingRepository{DB: db}.ApplyPayment(context.Background(), b.ID,
		models.PaymentCredit{AmountDelta: 300, GatewayPaymentID: "pay_3"}, at)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Confirmed || res.Booking.Status != models.BookingCancelled {
		t.Fatalf("cancelled booking must stay cancelled, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingUpdateStatusCompareAndSet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec("UPDATE bookings SET status=\\?, payment_status=\\?").
		WithArgs("CANCELLED", "CANCELLED", at, "b-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 0))

	moved, err := BookingRepository{DB: db}.UpdateStatus(context.Background(), "b-1",
		models.BookingPending, models.BookingCancelled, models.PaymentCancelled, at)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if moved {
		t.Fatalf("expected no row to move when status changed underneath")
	}
}

func TestBookingMarkOverdueSumsBothSweeps(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec("SET status='NOTPAID'").WithArgs(now, now).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("WHERE status='CONFIRMED' AND payment_status='PARTIALLY_PAID'").WithArgs(now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := BookingRepository{DB: db}.MarkOverdue(context.Background(), now)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 bookings touched, got %d", n)
	}
}

func TestBookingUpdateGuestsDerivesPaymentStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	b := sampleBooking()
	b.Participants = 1
	b.TotalPrice = 500
	b.MinPaymentAmount = 150
	b.Guests = []models.Guest{{Name: "Asha"}}

	for _, affected := range []int64{1, 0} {
		mock.ExpectExec(`payment_status=CASE WHEN amount_paid > 0 AND \? - amount_paid <= 0 THEN 'FULLY_PAID'`).
			WithArgs(1, []byte(`[{"name":"Asha"}]`), sqlmock.AnyArg(), 500.0, 500.0, 150.0, 500.0, b.UpdatedAt, b.ID, 500.0).
			WillReturnResult(sqlmock.NewResult(0, affected))
	}

	repo := BookingRepository{DB: db}
	ok, err := repo.UpdateGuests(context.Background(), b)
	if err != nil || !ok {
		t.Fatalf("expected the roster to be written, got ok=%v err=%v", ok, err)
	}
	ok, err = repo.UpdateGuests(context.Background(), b)
	if err != nil || ok {
		t.Fatalf("expected no write when the total is below amount_paid, got ok=%v err=%v", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
