package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intconfig "tripmarket/internal/config"
	intdb "tripmarket/internal/db"
	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"
)

const payoutColumns = `id, booking_id, host_id, total_amount,
	first_amount, first_percent, first_date, first_status, first_paid_at,
	second_amount, second_percent, second_date, second_status, second_paid_at,
	COALESCE(notes,''), created_at, updated_at`

type PayoutRepository struct {
	DB      *sql.DB
	Timeout time.Duration
}

func (r PayoutRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func scanPayout(row rowScanner) (models.Payout, error) {
	var (
		p                     models.Payout
		firstStatus, secondSt string
		firstPaid, secondPaid sql.NullTime
	)
	if err := row.Scan(
		&p.ID, &p.BookingID, &p.HostID, &p.TotalAmount,
		&p.First.Amount, &p.First.Percent, &p.First.Date, &firstStatus, &firstPaid,
		&p.Second.Amount, &p.Second.Percent, &p.Second.Date, &secondSt, &secondPaid,
		&p.Notes, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return models.Payout{}, err
	}
	p.First.Status = models.PayoutStatus(firstStatus)
	p.Second.Status = models.PayoutStatus(secondSt)
	if firstPaid.Valid {
		t := firstPaid.Time
		p.First.PaidAt = &t
	}
	if secondPaid.Valid {
		t := secondPaid.Time
		p.Second.PaidAt = &t
	}
	return p, nil
}

// Create inserts the payout schedule. It returns false when one already exists for the booking.
func (r PayoutRepository) Create(ctx context.Context, p models.Payout) (bool, error) {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	_, err := r.db().ExecContext(ctx, `
		INSERT INTO payouts (
			id, booking_id, host_id, total_amount,
			first_amount, first_percent, first_date, first_status,
			second_amount, second_percent, second_date, second_status,
			notes, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.BookingID, p.HostID, p.TotalAmount,
		p.First.Amount, p.First.Percent, p.First.Date, string(p.First.Status),
		p.Second.Amount, p.Second.Percent, p.Second.Date, string(p.Second.Status),
		intdb.NullIfEmpty(p.Notes), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return false, nil
		}
		return false, domain.StoreError{Op: "payouts.create", Err: err}
	}
	return true, nil
}

func (r PayoutRepository) GetByBookingID(ctx context.Context, bookingID string) (models.Payout, error) {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	p, err := scanPayout(r.db().QueryRowContext(ctx, `SELECT `+payoutColumns+` FROM payouts WHERE booking_id=? LIMIT 1`, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payout{}, domain.NotFoundError{Resource: "payout", Err: err}
		}
		return models.Payout{}, domain.StoreError{Op: "payouts.get", Err: err}
	}
	return p, nil
}

func (r PayoutRepository) ListByHost(ctx context.Context, hostID string) ([]models.Payout, error) {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	rows, err := r.db().QueryContext(ctx, `SELECT `+payoutColumns+` FROM payouts WHERE host_id=? ORDER BY first_date ASC`, hostID)
	if err != nil {
		return nil, domain.StoreError{Op: "payouts.list", Err: err}
	}
	defer rows.Close()

	out := []models.Payout{}
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, domain.StoreError{Op: "payouts.list", Err: err}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError{Op: "payouts.list", Err: err}
	}
	return out, nil
}

// MarkInstallmentPaid moves installment 1 or 2 from PENDING to PAID.
// It returns false when the installment was not pending.
func (r PayoutRepository) MarkInstallmentPaid(ctx context.Context, bookingID string, installment int, paidAt time.Time) (bool, error) {
	var prefix string
	switch installment {
	case 1:
		prefix = "first"
	case 2:
		prefix = "second"
	default:
		return false, domain.ValidationError{Field: "installment", Msg: "must be 1 or 2"}
	}

	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	query := fmt.Sprintf(`UPDATE payouts SET %[1]s_status='PAID', %[1]s_paid_at=?, updated_at=? WHERE booking_id=? AND %[1]s_status='PENDING'`, prefix)
	res, err := r.db().ExecContext(ctx, query, paidAt, paidAt, bookingID)
	if err != nil {
		return false, domain.StoreError{Op: "payouts.mark_paid", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domain.StoreError{Op: "payouts.mark_paid", Err: err}
	}
	return n > 0, nil
}
