package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"
)

func TestDocsServiceGenerateInvoice(t *testing.T) {
	loader := func(_ context.Context, id string) (invoiceData, error) {
		return invoiceData{
			Booking: models.Booking{
				ID:              id,
				UserID:          "u-1",
				StartDate:       time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
				EndDate:         time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC),
				TotalPrice:      1000,
				PricePerPerson:  500,
				Participants:    2,
				Guests:          []models.Guest{{Name: "Asha", Email: "asha@example.com"}, {Name: "Ravi"}},
				Status:          models.BookingConfirmed,
				PaymentStatus:   models.PaymentPartiallyPaid,
				AmountPaid:      300,
				RemainingAmount: 700,
				PaymentDeadline: time.Date(2026, 11, 24, 0, 0, 0, 0, time.UTC),
			},
			Plan: models.TravelPlan{ID: "tp-1", Title: "Goa Escape", Destination: "Goa"},
		}, nil
	}

	svc := DocsService{Loader: loader, Currency: "INR"}

	pdf, filename, err := svc.GenerateBookingInvoice(context.Background(), domain.Session{UserID: "u-1", Role: domain.RoleUser}, "b-12345678")
	if err != nil {
		t.Fatalf("GenerateBookingInvoice returned error: %v", err)
	}
	if len(pdf) == 0 || !strings.HasPrefix(string(pdf), "%PDF") {
		t.Fatalf("GenerateBookingInvoice returned no PDF")
	}
	if filename != "INVOICE_12345678_Goa_Escape.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}

	_, _, err = svc.GenerateBookingInvoice(context.Background(), domain.Session{UserID: "u-2", Role: domain.RoleUser}, "b-12345678")
	if !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden for another traveler, got %v", err)
	}

	if _, _, err := svc.GenerateBookingInvoice(context.Background(), domain.Session{UserID: "s-1", Role: domain.RoleSupport}, "b-12345678"); err != nil {
		t.Fatalf("support should read any invoice, got %v", err)
	}
}

func TestSafeFilenamePart(t *testing.T) {
	if got := safeFilenamePart(" a/b:c "); got != "a_b_c" {
		t.Fatalf("got %q", got)
	}
	if got := safeFilenamePart(""); got != "NA" {
		t.Fatalf("got %q", got)
	}
}
