package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"
	"tripmarket/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders booking documents as PDF.
type DocsService struct {
	Bookings BookingStore
	Trips    TripStore
	Currency string
	Now      func() time.Time
	Loader   func(ctx context.Context, bookingID string) (invoiceData, error)
}

type invoiceData struct {
	Booking models.Booking
	Plan    models.TravelPlan
}

func (s DocsService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utils.NowUTC()
}

// GenerateBookingInvoice returns the invoice PDF and its file name. Owners and SUPPORT/ADMIN may download it.
func (s DocsService) GenerateBookingInvoice(ctx context.Context, caller domain.Session, bookingID string) ([]byte, string, error) {
	data, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if !data.Booking.OwnedBy(caller.UserID) && !caller.Role.Satisfies(domain.RoleSupport) {
		return nil, "", domain.ForbiddenError{Resource: "booking"}
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "docs", "generate_invoice", "booking_id="+bookingID)
	return buildBookingInvoicePDF(data, s.Currency, s.now())
}

func (s DocsService) load(ctx context.Context, bookingID string) (invoiceData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, bookingID)
	}
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return invoiceData{}, err
	}
	plan, err := s.Trips.GetByID(ctx, b.TravelPlanID)
	if err != nil && !domain.IsNotFound(err) {
		return invoiceData{}, err
	}
	return invoiceData{Booking: b, Plan: plan}, nil
}

func buildBookingInvoicePDF(d invoiceData, currency string, issued time.Time) ([]byte, string, error) {
	b := d.Booking
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	invNo := "INV-" + strings.ToUpper(utils.LastN(b.ID, 8))
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice No : "+invNo)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued     : "+utils.FormatDateTime(issued))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Booking    : "+b.ID)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Trip")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		fmt.Sprintf("Title       : %s", safe(d.Plan.Title, "-")),
		fmt.Sprintf("Destination : %s", safe(d.Plan.Destination, "-")),
		fmt.Sprintf("Dates       : %s to %s", utils.FormatDate(b.StartDate), utils.FormatDate(b.EndDate)),
		fmt.Sprintf("Status      : %s / %s", b.Status, b.PaymentStatus),
	}
	for _, l := range lines {
		pdf.Cell(0, 6, l)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Guests")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	if len(b.Guests) == 0 {
		pdf.Cell(0, 6, "Guest details not submitted yet")
		pdf.Ln(6)
	}
	for i, g := range b.Guests {
		pdf.Cell(0, 6, fmt.Sprintf("%d) %s %s", i+1, safe(g.Name, "-"), safe(g.Email, "")))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Amounts")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Price per person : %s x %d", utils.FormatAmount(currency, b.PricePerPerson), b.Participants))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Paid             : "+utils.FormatAmount(currency, b.AmountPaid))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Remaining        : "+utils.FormatAmount(currency, b.RemainingAmount))
	pdf.Ln(6)
	if b.RemainingAmount > 0 {
		pdf.Cell(0, 6, "Balance due by   : "+utils.FormatDate(b.PaymentDeadline))
		pdf.Ln(6)
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+utils.FormatAmount(currency, b.TotalPrice))
	pdf.Ln(12)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("INVOICE_%s_%s.pdf", safeFilenamePart(utils.LastN(b.ID, 8)), safeFilenamePart(d.Plan.Title))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
