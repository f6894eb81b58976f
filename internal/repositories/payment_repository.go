package repositories

import (
	"context"
	"database/sql"
	"time"

	intconfig "tripmarket/internal/config"
	intdb "tripmarket/internal/db"
	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"
)

// PaymentRepository reads the payment_events ledger. Writes happen inside
// BookingRepository.ApplyPayment so the ledger and the balance never diverge.
type PaymentRepository struct {
	DB      *sql.DB
	Timeout time.Duration
}

func (r PaymentRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// ListByBooking returns every credited payment for a booking, oldest first.
func (r PaymentRepository) ListByBooking(ctx context.Context, bookingID string) ([]models.PaymentEvent, error) {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	rows, err := r.db().QueryContext(ctx, `
		SELECT gateway_payment_id, booking_id, gateway_order_id, amount, credited_amount, created_at
		FROM payment_events
		WHERE booking_id=?
		ORDER BY created_at ASC`, bookingID)
	if err != nil {
		return nil, domain.StoreError{Op: "payment_events.list", Err: err}
	}
	defer rows.Close()

	out := []models.PaymentEvent{}
	for rows.Next() {
		var ev models.PaymentEvent
		if err := rows.Scan(&ev.GatewayPaymentID, &ev.BookingID, &ev.GatewayOrderID, &ev.Amount, &ev.CreditedAmount, &ev.CreatedAt); err != nil {
			return nil, domain.StoreError{Op: "payment_events.list", Err: err}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError{Op: "payment_events.list", Err: err}
	}
	return out, nil
}
