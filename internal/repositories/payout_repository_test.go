package repositories

import (
	"context"
	"testing"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestPayoutCreateDuplicateReportsNotCreated(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO payouts").WillReturnError(&mysql.MySQLError{Number: 1062})

	created, err := PayoutRepository{DB: db}.Create(context.Background(), models.Payout{ID: "p-1", BookingID: "b-1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created {
		t.Fatalf("duplicate payout must report created=false")
	}
}

func TestPayoutMarkInstallmentPaid(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec("UPDATE payouts SET second_status='PAID'").
		WithArgs(at, at, "b-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := PayoutRepository{DB: db}.MarkInstallmentPaid(context.Background(), "b-1", 2, at)
	if err != nil || !ok {
		t.Fatalf("expected installment marked, got ok=%v err=%v", ok, err)
	}

	if _, err := (PayoutRepository{DB: db}).MarkInstallmentPaid(context.Background(), "b-1", 3, at); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for installment 3, got %v", err)
	}
}

func TestPayoutGetByBookingIDScansInstallments(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	first := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	paid := first.Add(2 * time.Hour)
	rows := sqlmock.NewRows([]string{
		"id", "booking_id", "host_id", "total_amount",
		"first_amount", "first_percent", "first_date", "first_status", "first_paid_at",
		"second_amount", "second_percent", "second_date", "second_status", "second_paid_at",
		"notes", "created_at", "updated_at",
	}).AddRow(
		"p-1", "b-1", "h-1", 900.0,
		450.0, 50.0, first, "PAID", paid,
		450.0, 50.0, first.AddDate(0, 0, 11), "PENDING", nil,
		"", first, first,
	)
	mock.ExpectQuery("FROM payouts WHERE booking_id=\\?").WithArgs("b-1").WillReturnRows(rows)

	p, err := PayoutRepository{DB: db}.GetByBookingID(context.Background(), "b-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.First.Status != models.PayoutPaid || p.First.PaidAt == nil || !p.First.PaidAt.Equal(paid) {
		t.Fatalf("first installment wrong: %+v", p.First)
	}
	if p.Second.Status != models.PayoutPending || p.Second.PaidAt != nil {
		t.Fatalf("second installment wrong: %+v", p.Second)
	}
}
