package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"
	"tripmarket/internal/gateway"
	"tripmarket/internal/utils"
)

// PaymentApplier credits a captured payment to a booking. BookingService implements it.
type PaymentApplier interface {
	ApplyPaymentEvent(ctx context.Context, bookingID string, credit models.PaymentCredit) (models.Booking, error)
}

// PaymentService is the gateway adapter: it creates orders and turns verified webhooks into credits.
type PaymentService struct {
	Bookings      BookingStore
	Ledger        PaymentLedger
	Credits       PaymentApplier
	Gateway       OrderGateway
	WebhookSecret string
	KeySecret     string
	Currency      string
	Now           func() time.Time
}

type OrderInput struct {
	Amount    float64           `json:"amount"`
	Currency  string            `json:"currency"`
	BookingID string            `json:"bookingId"`
	Notes     map[string]string `json:"notes"`
}

type OrderResult struct {
	Order gateway.Order `json:"order"`
	Key   string        `json:"key"`
}

func (s PaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utils.NowUTC()
}

// Receipt builds the gateway receipt id, at most 22 characters.
func Receipt(bookingID string, at time.Time) string {
	ms := strconv.FormatInt(at.UnixMilli(), 10)
	return fmt.Sprintf("rcpt_%s_%s", utils.LastN(bookingID, 8), utils.LastN(ms, 8))
}

// CreateOrder opens a gateway order for part or all of the remaining balance.
// The amount is converted to minor units here and nowhere else.
func (s PaymentService) CreateOrder(ctx context.Context, caller domain.Session, in OrderInput) (OrderResult, error) {
	amount := utils.RoundMoney(in.Amount)
	if amount <= 0 {
		return OrderResult{}, domain.ValidationError{Field: "amount", Msg: "must be positive"}
	}
	in.BookingID = utils.TrimOrEmpty(in.BookingID)
	if in.BookingID == "" {
		return OrderResult{}, domain.ValidationError{Field: "bookingId", Msg: "required"}
	}

	b, err := s.Bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		return OrderResult{}, err
	}
	if !b.OwnedBy(caller.UserID) && !caller.Role.Satisfies(domain.RoleSupport) {
		return OrderResult{}, domain.ForbiddenError{Resource: "booking"}
	}
	if b.Status == models.BookingCancelled || b.Status == models.BookingRefunded {
		return OrderResult{}, domain.ValidationError{Field: "bookingId", Msg: "booking is " + string(b.Status)}
	}
	if amount > b.RemainingAmount {
		return OrderResult{}, domain.ValidationError{
			Field: "amount",
			Msg:   fmt.Sprintf("exceeds remaining balance %s", utils.FormatMoney(b.RemainingAmount)),
		}
	}

	currency := strings.ToUpper(utils.TrimOrEmpty(in.Currency))
	if currency == "" {
		currency = s.Currency
	}
	notes := gateway.Notes{}
	for k, v := range in.Notes {
		notes[k] = v
	}
	notes["bookingId"] = b.ID
	notes["userId"] = b.UserID

	now := s.now()
	order, err := s.Gateway.CreateOrder(ctx, gateway.OrderRequest{
		Amount:   utils.ToMinorUnits(amount),
		Currency: currency,
		Receipt:  Receipt(b.ID, now),
		Notes:    notes,
	})
	if err != nil {
		utils.Logger(ctx, "payment").WithError(err).WithField("booking_id", b.ID).Error("gateway order failed")
		return OrderResult{}, domain.GatewayError{Op: "create_order", Err: err}
	}
	if err := s.Bookings.SetGatewayOrder(ctx, b.ID, order.ID, now); err != nil {
		return OrderResult{}, err
	}

	utils.LogEvent(utils.RequestIDFrom(ctx), "payment", "create_order", fmt.Sprintf("booking_id=%s order_id=%s amount=%s", b.ID, order.ID, utils.FormatMoney(amount)))
	return OrderResult{Order: order, Key: s.Gateway.KeyID()}, nil
}

// VerifyWebhook authenticates the raw body before anything is parsed.
func (s PaymentService) VerifyWebhook(raw []byte, signature string) (gateway.WebhookEvent, error) {
	if strings.TrimSpace(signature) == "" {
		return gateway.WebhookEvent{}, domain.InvalidSignatureError{Msg: "missing signature"}
	}
	if !gateway.VerifySignature(s.WebhookSecret, raw, signature) {
		return gateway.WebhookEvent{}, domain.InvalidSignatureError{Msg: "signature mismatch"}
	}
	var ev gateway.WebhookEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return gateway.WebhookEvent{}, domain.ValidationError{Field: "body", Msg: "malformed webhook payload", Err: err}
	}
	return ev, nil
}

func (s PaymentService) HandleEvent(ctx context.Context, ev gateway.WebhookEvent) error {
	log := utils.Logger(ctx, "payment").WithField("event", ev.Event)
	p := ev.Payment()

	switch ev.Event {
	case gateway.EventPaymentCaptured:
		bookingID := p.Notes["bookingId"]
		if bookingID == "" {
			bookingID = p.Notes["booking_id"]
		}
		if bookingID == "" {
			return domain.ValidationError{Field: "notes.bookingId", Msg: "missing on captured payment"}
		}
		b, err := s.Credits.ApplyPaymentEvent(ctx, bookingID, models.PaymentCredit{
			AmountDelta:      utils.FromMinorUnits(p.Amount),
			GatewayPaymentID: p.ID,
			GatewayOrderID:   p.OrderID,
		})
		if err != nil {
			return err
		}
		log.WithField("booking_id", b.ID).WithField("payment_status", b.PaymentStatus).Info("payment captured")
		return nil
	case gateway.EventPaymentFailed:
		log.WithField("payment_id", p.ID).WithField("reason", p.ErrorDescription).Warn("payment failed")
		return nil
	default:
		log.Info("webhook event ignored")
		return nil
	}
}

// HandleWebhook verifies and dispatches one gateway delivery. Only a bad signature or a
// store failure is returned; a signed event that cannot be applied is logged and acknowledged,
// since redelivering it would never succeed.
func (s PaymentService) HandleWebhook(ctx context.Context, raw []byte, signature string) error {
	ev, err := s.VerifyWebhook(raw, signature)
	if err != nil {
		if domain.IsInvalidSignature(err) {
			return err
		}
		utils.Logger(ctx, "payment").WithError(err).Warn("signed webhook dropped")
		return nil
	}
	err = s.HandleEvent(ctx, ev)
	if err != nil && (domain.IsValidation(err) || domain.IsNotFound(err)) {
		utils.Logger(ctx, "payment").WithError(err).WithField("event", ev.Event).
			WithField("payment_id", ev.Payment().ID).Warn("signed webhook dropped")
		return nil
	}
	return err
}

// VerifyCheckoutSignature checks the signature returned to the checkout client.
// It records nothing; the webhook remains the only source of credits.
func (s PaymentService) VerifyCheckoutSignature(orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" {
		return domain.ValidationError{Field: "orderId", Msg: "order and payment ids are required"}
	}
	if !gateway.VerifySignature(s.KeySecret, gateway.CheckoutPayload(orderID, paymentID), signature) {
		return domain.InvalidSignatureError{Msg: "checkout signature mismatch"}
	}
	return nil
}

// PaymentHistory lists the credited gateway payments of a booking.
func (s PaymentService) PaymentHistory(ctx context.Context, caller domain.Session, bookingID string) ([]models.PaymentEvent, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.OwnedBy(caller.UserID) && !caller.Role.Satisfies(domain.RoleSupport) {
		return nil, domain.ForbiddenError{Resource: "booking"}
	}
	return s.Ledger.ListByBooking(ctx, b.ID)
}
