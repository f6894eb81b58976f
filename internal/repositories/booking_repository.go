package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	intconfig "tripmarket/internal/config"
	intdb "tripmarket/internal/db"
	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"
	"tripmarket/internal/utils"
)

const bookingColumns = `id, user_id, travel_plan_id, start_date, end_date,
	total_price, price_per_person, participants, COALESCE(guests, JSON_ARRAY()), COALESCE(special_requirements,''),
	status, payment_status, amount_paid, remaining_amount, min_payment_amount, payment_deadline,
	refund_amount, form_submitted, is_reviewed, COALESCE(gateway_order_id,''), COALESCE(gateway_payment_id,''),
	created_at, updated_at`

type BookingRepository struct {
	DB      *sql.DB
	Timeout time.Duration
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (models.Booking, error) {
	var (
		b        models.Booking
		guests   []byte
		deadline sql.NullTime
		status   string
		payment  string
	)
	if err := row.Scan(
		&b.ID, &b.UserID, &b.TravelPlanID, &b.StartDate, &b.EndDate,
		&b.TotalPrice, &b.PricePerPerson, &b.Participants, &guests, &b.SpecialRequirements,
		&status, &payment, &b.AmountPaid, &b.RemainingAmount, &b.MinPaymentAmount, &deadline,
		&b.RefundAmount, &b.FormSubmitted, &b.IsReviewed, &b.GatewayOrderID, &b.GatewayPaymentID,
		&b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return models.Booking{}, err
	}
	b.Status = models.BookingStatus(status)
	b.PaymentStatus = models.PaymentStatus(payment)
	if deadline.Valid {
		b.PaymentDeadline = deadline.Time
	}
	b.Guests = []models.Guest{}
	if len(guests) > 0 {
		if err := json.Unmarshal(guests, &b.Guests); err != nil {
			return models.Booking{}, err
		}
	}
	return b, nil
}

func encodeGuests(guests []models.Guest) ([]byte, error) {
	if guests == nil {
		guests = []models.Guest{}
	}
	return json.Marshal(guests)
}

// Create inserts a fully computed booking row.
func (r BookingRepository) Create(ctx context.Context, b models.Booking) error {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	guests, err := encodeGuests(b.Guests)
	if err != nil {
		return domain.ValidationError{Field: "guests", Msg: "cannot encode", Err: err}
	}

	_, err = r.db().ExecContext(ctx, `
		INSERT INTO bookings (
			id, user_id, travel_plan_id, start_date, end_date,
			total_price, price_per_person, participants, guests, special_requirements,
			status, payment_status, amount_paid, remaining_amount, min_payment_amount, payment_deadline,
			refund_amount, form_submitted, is_reviewed, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.ID, b.UserID, b.TravelPlanID, b.StartDate, b.EndDate,
		b.TotalPrice, b.PricePerPerson, b.Participants, guests, intdb.NullIfEmpty(b.SpecialRequirements),
		string(b.Status), string(b.PaymentStatus), b.AmountPaid, b.RemainingAmount, b.MinPaymentAmount, intdb.NullTime(b.PaymentDeadline),
		b.RefundAmount, b.FormSubmitted, b.IsReviewed, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return domain.StoreError{Op: "bookings.create", Err: err}
	}
	return nil
}

func (r BookingRepository) GetByID(ctx context.Context, id string) (models.Booking, error) {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	b, err := scanBooking(r.db().QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.Booking{}, domain.StoreError{Op: "bookings.get", Err: err}
	}
	return b, nil
}

// ListByUser returns a traveler's bookings, newest first.
func (r BookingRepository) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	rows, err := r.db().QueryContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, domain.StoreError{Op: "bookings.list", Err: err}
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, domain.StoreError{Op: "bookings.list", Err: err}
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError{Op: "bookings.list", Err: err}
	}
	return out, nil
}

// UpdateGuests commits a new roster. remaining_amount and payment_status are derived from the
// stored amount_paid so a concurrent credit cannot be lost; the row is left alone if the new
// total is below it.
func (r BookingRepository) UpdateGuests(ctx context.Context, b models.Booking) (bool, error) {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	guests, err := encodeGuests(b.Guests)
	if err != nil {
		return false, domain.ValidationError{Field: "guests", Msg: "cannot encode", Err: err}
	}

	res, err := r.db().ExecContext(ctx, `
		UPDATE bookings
		SET participants=?, guests=?, special_requirements=?,
		    total_price=?, remaining_amount=? - amount_paid, min_payment_amount=?,
		    payment_status=CASE
		        WHEN amount_paid > 0 AND ? - amount_paid <= 0 THEN 'FULLY_PAID'
		        WHEN amount_paid > 0 AND payment_status <> 'OVERDUE' THEN 'PARTIALLY_PAID'
		        ELSE payment_status
		    END,
		    form_submitted=1, updated_at=?
		WHERE id=? AND amount_paid <= ?`,
		b.Participants, guests, intdb.NullIfEmpty(b.SpecialRequirements),
		b.TotalPrice, b.TotalPrice, b.MinPaymentAmount,
		b.TotalPrice,
		b.UpdatedAt,
		b.ID, b.TotalPrice,
	)
	if err != nil {
		return false, domain.StoreError{Op: "bookings.update_guests", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domain.StoreError{Op: "bookings.update_guests", Err: err}
	}
	return n > 0, nil
}

// UpdateStatus is a compare-and-set on status; it reports whether the row moved.
// A non-empty payment status is written in the same statement.
func (r BookingRepository) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus, payment models.PaymentStatus, at time.Time) (bool, error) {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	query := `UPDATE bookings SET status=?, updated_at=? WHERE id=? AND status=?`
	args := []any{string(to), at, id, string(from)}
	if payment != "" {
		query = `UPDATE bookings SET status=?, payment_status=?, updated_at=? WHERE id=? AND status=?`
		args = []any{string(to), string(payment), at, id, string(from)}
	}

	res, err := r.db().ExecContext(ctx, query, args...)
	if err != nil {
		return false, domain.StoreError{Op: "bookings.update_status", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domain.StoreError{Op: "bookings.update_status", Err: err}
	}
	return n > 0, nil
}

func (r BookingRepository) SetGatewayOrder(ctx context.Context, id, orderID string, at time.Time) error {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	res, err := r.db().ExecContext(ctx, `UPDATE bookings SET gateway_order_id=?, updated_at=? WHERE id=?`, orderID, at, id)
	if err != nil {
		return domain.StoreError{Op: "bookings.set_order", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "booking"}
	}
	return nil
}

// ApplyPayment credits a captured payment exactly once per gateway payment id.
// The ledger insert, the row lock and the balance update share one transaction.
// The ledger keeps the gateway amount and the amount that fit the open balance.
func (r BookingRepository) ApplyPayment(ctx context.Context, bookingID string, credit models.PaymentCredit, at time.Time) (models.PaymentResult, error) {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var result models.PaymentResult
	duplicate := false

	err := intdb.WithTx(ctx, r.db(), func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO payment_events (gateway_payment_id, booking_id, gateway_order_id, amount, credited_amount, created_at)
			VALUES (?,?,?,?,?,?)`,
			credit.GatewayPaymentID, bookingID, credit.GatewayOrderID, credit.AmountDelta, credit.AmountDelta, at,
		)
		if err != nil {
			if intdb.IsDuplicateKey(err) {
				duplicate = true
				return errDuplicatePayment
			}
			return domain.StoreError{Op: "payment_events.insert", Err: err}
		}

		b, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=? FOR UPDATE`, bookingID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFoundError{Resource: "booking", Err: err}
			}
			return domain.StoreError{Op: "bookings.lock", Err: err}
		}

		log := utils.Logger(ctx, "booking").WithField("booking_id", bookingID).WithField("payment_id", credit.GatewayPaymentID)
		if b.Status == models.BookingCancelled || b.Status == models.BookingRefunded {
			log.WithField("status", b.Status).Warn("payment captured on a closed booking, refund needed")
		}

		credited := b.ApplyCredit(credit.AmountDelta)
		if credited != credit.AmountDelta {
			log.WithField("amount", credit.AmountDelta).WithField("credited", credited).Warn("payment exceeds open balance")
			if _, err := tx.ExecContext(ctx, `UPDATE payment_events SET credited_amount=? WHERE gateway_payment_id=?`,
				credited, credit.GatewayPaymentID); err != nil {
				return domain.StoreError{Op: "payment_events.credited", Err: err}
			}
		}
		result.Credited = credited
		if b.Status == models.BookingPending || b.Status == models.BookingNotPaid {
			b.Status = models.BookingConfirmed
			result.Confirmed = true
		}
		if credit.GatewayOrderID != "" {
			b.GatewayOrderID = credit.GatewayOrderID
		}
		b.GatewayPaymentID = credit.GatewayPaymentID
		b.UpdatedAt = at

		_, err = tx.ExecContext(ctx, `
			UPDATE bookings
			SET amount_paid=?, remaining_amount=?, payment_status=?, status=?,
			    gateway_order_id=?, gateway_payment_id=?, updated_at=?
			WHERE id=?`,
			b.AmountPaid, b.RemainingAmount, string(b.PaymentStatus), string(b.Status),
			intdb.NullIfEmpty(b.GatewayOrderID), b.GatewayPaymentID, b.UpdatedAt,
			b.ID,
		)
		if err != nil {
			return domain.StoreError{Op: "bookings.apply_payment", Err: err}
		}

		result.Booking = b
		result.Applied = true
		return nil
	})

	if duplicate {
		b, err := r.GetByID(ctx, bookingID)
		if err != nil {
			return models.PaymentResult{}, err
		}
		return models.PaymentResult{Booking: b}, nil
	}
	if err != nil {
		if domain.IsNotFound(err) || domain.IsStore(err) {
			return models.PaymentResult{}, err
		}
		return models.PaymentResult{}, domain.StoreError{Op: "bookings.apply_payment", Err: err}
	}
	return result, nil
}

// MarkOverdue flags unpaid balances whose deadline has passed. Unpaid PENDING bookings
// also move to NOTPAID. It returns the number of bookings touched.
func (r BookingRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var total int64
	err := intdb.WithTx(ctx, r.db(), func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE bookings
			SET status='NOTPAID', payment_status='OVERDUE', updated_at=?
			WHERE status='PENDING' AND payment_status='PENDING'
			  AND payment_deadline IS NOT NULL AND payment_deadline < ?`, now, now)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		total += n

		res, err = tx.ExecContext(ctx, `
			UPDATE bookings
			SET payment_status='OVERDUE', updated_at=?
			WHERE status='CONFIRMED' AND payment_status='PARTIALLY_PAID'
			  AND payment_deadline IS NOT NULL AND payment_deadline < ?`, now, now)
		if err != nil {
			return err
		}
		n, _ = res.RowsAffected()
		total += n
		return nil
	})
	if err != nil {
		return 0, domain.StoreError{Op: "bookings.mark_overdue", Err: err}
	}
	return total, nil
}

var errDuplicatePayment = errors.New("payment already credited")
