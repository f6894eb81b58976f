package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	intconfig "tripmarket/internal/config"
	intdb "tripmarket/internal/db"
	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"
)

type ReviewRepository struct {
	DB      *sql.DB
	Timeout time.Duration
}

func (r ReviewRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// CreateForBooking flips bookings.is_reviewed and inserts the review in one transaction.
// The conditional UPDATE is the gate: of two concurrent callers only one sees a changed row.
func (r ReviewRepository) CreateForBooking(ctx context.Context, rv models.Review) error {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	err := intdb.WithTx(ctx, r.db(), func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE bookings SET is_reviewed=1, updated_at=?
			WHERE id=? AND user_id=? AND status='CONFIRMED' AND is_reviewed=0`,
			rv.CreatedAt, rv.BookingID, rv.UserID,
		)
		if err != nil {
			return domain.StoreError{Op: "bookings.flip_reviewed", Err: err}
		}
		n, err := res.RowsAffected()
		if err != nil {
			return domain.StoreError{Op: "bookings.flip_reviewed", Err: err}
		}
		if n == 0 {
			return diagnoseReviewGate(ctx, tx, rv)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO reviews (id, user_id, booking_id, travel_plan_id, host_id, rating, comment, created_at)
			VALUES (?,?,?,?,?,?,?,?)`,
			rv.ID, rv.UserID, rv.BookingID, rv.TravelPlanID, rv.HostID, rv.Rating, intdb.NullIfEmpty(rv.Comment), rv.CreatedAt,
		)
		if err != nil {
			if intdb.IsDuplicateKey(err) {
				return domain.DuplicateReviewError{BookingID: rv.BookingID}
			}
			return domain.StoreError{Op: "reviews.insert", Err: err}
		}
		return nil
	})
	return err
}

// diagnoseReviewGate explains why the conditional flip touched no row.
func diagnoseReviewGate(ctx context.Context, tx *sql.Tx, rv models.Review) error {
	var (
		userID   string
		status   string
		reviewed bool
	)
	err := tx.QueryRowContext(ctx, `SELECT user_id, status, is_reviewed FROM bookings WHERE id=?`, rv.BookingID).
		Scan(&userID, &status, &reviewed)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.NotFoundError{Resource: "booking"}
	case err != nil:
		return domain.StoreError{Op: "bookings.review_gate", Err: err}
	case userID != rv.UserID:
		return domain.NotFoundError{Resource: "booking"}
	case reviewed:
		return domain.DuplicateReviewError{BookingID: rv.BookingID}
	case status != string(models.BookingConfirmed):
		return domain.ValidationError{Field: "booking", Msg: "only confirmed bookings can be reviewed"}
	default:
		return domain.DuplicateReviewError{BookingID: rv.BookingID}
	}
}

func (r ReviewRepository) ListByTrip(ctx context.Context, travelPlanID string) ([]models.Review, error) {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	rows, err := r.db().QueryContext(ctx, `
		SELECT id, user_id, booking_id, travel_plan_id, host_id, rating, COALESCE(comment,''), created_at
		FROM reviews WHERE travel_plan_id=? ORDER BY created_at DESC`, travelPlanID)
	if err != nil {
		return nil, domain.StoreError{Op: "reviews.list", Err: err}
	}
	defer rows.Close()

	out := []models.Review{}
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.BookingID, &rv.TravelPlanID, &rv.HostID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, domain.StoreError{Op: "reviews.list", Err: err}
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError{Op: "reviews.list", Err: err}
	}
	return out, nil
}

func (r ReviewRepository) TripStats(ctx context.Context, travelPlanID string) (models.RatingStats, error) {
	return r.stats(ctx, "travel_plan_id", travelPlanID)
}

func (r ReviewRepository) HostStats(ctx context.Context, hostID string) (models.RatingStats, error) {
	return r.stats(ctx, "host_id", hostID)
}

func (r ReviewRepository) stats(ctx context.Context, column, id string) (models.RatingStats, error) {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var st models.RatingStats
	err := r.db().QueryRowContext(ctx,
		`SELECT COALESCE(AVG(rating),0), COUNT(*) FROM reviews WHERE `+column+`=?`, id,
	).Scan(&st.AverageRating, &st.ReviewCount)
	if err != nil {
		return models.RatingStats{}, domain.StoreError{Op: "reviews.stats", Err: err}
	}
	return st, nil
}
