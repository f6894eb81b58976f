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
)

// Ratings are aggregated from reviews at read time; travel_plans stores no counters.
const tripSelect = `
	SELECT t.id, t.host_id, t.title, t.description, t.destination, t.country, t.state, t.city,
	       t.price, t.max_participants, t.no_of_days, t.start_date, t.end_date, t.status,
	       COALESCE(t.filters, JSON_ARRAY()), COALESCE(t.languages, JSON_ARRAY()),
	       COALESCE(r.avg_rating, 0), COALESCE(r.review_count, 0),
	       t.created_at, t.updated_at
	FROM travel_plans t
	LEFT JOIN (
		SELECT travel_plan_id, AVG(rating) AS avg_rating, COUNT(*) AS review_count
		FROM reviews
		GROUP BY travel_plan_id
	) r ON r.travel_plan_id = t.id`

type TripRepository struct {
	DB      *sql.DB
	Timeout time.Duration
}

func (r TripRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func scanTrip(row rowScanner) (models.TravelPlan, error) {
	var (
		t          models.TravelPlan
		start, end sql.NullTime
		status     string
		filters    []byte
		languages  []byte
	)
	if err := row.Scan(
		&t.ID, &t.HostID, &t.Title, &t.Description, &t.Destination, &t.Country, &t.State, &t.City,
		&t.Price, &t.MaxParticipants, &t.NoOfDays, &start, &end, &status,
		&filters, &languages,
		&t.AverageRating, &t.ReviewCount,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return models.TravelPlan{}, err
	}
	t.Status = models.TripStatus(status)
	if start.Valid {
		t.StartDate = start.Time
	}
	if end.Valid {
		t.EndDate = end.Time
	}
	t.Filters = decodeStringList(filters)
	t.Languages = decodeStringList(languages)
	return t, nil
}

func decodeStringList(raw []byte) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

func encodeStringList(in []string) []byte {
	if in == nil {
		in = []string{}
	}
	b, _ := json.Marshal(in)
	return b
}

func (r TripRepository) Create(ctx context.Context, t models.TravelPlan) error {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	_, err := r.db().ExecContext(ctx, `
		INSERT INTO travel_plans (
			id, host_id, title, description, destination, country, state, city,
			price, max_participants, no_of_days, start_date, end_date, status,
			filters, languages, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.HostID, t.Title, t.Description, t.Destination, t.Country, t.State, t.City,
		t.Price, t.MaxParticipants, t.NoOfDays, intdb.NullTime(t.StartDate), intdb.NullTime(t.EndDate), string(t.Status),
		encodeStringList(t.Filters), encodeStringList(t.Languages), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return domain.StoreError{Op: "travel_plans.create", Err: err}
	}
	return nil
}

func (r TripRepository) GetByID(ctx context.Context, id string) (models.TravelPlan, error) {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	t, err := scanTrip(r.db().QueryRowContext(ctx, tripSelect+` WHERE t.id=? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TravelPlan{}, domain.NotFoundError{Resource: "travel plan", Err: err}
		}
		return models.TravelPlan{}, domain.StoreError{Op: "travel_plans.get", Err: err}
	}
	return t, nil
}

// ListActive returns every ACTIVE plan, newest first. This is the listing cache's source.
func (r TripRepository) ListActive(ctx context.Context) ([]models.TravelPlan, error) {
	return r.listWhere(ctx, "travel_plans.list_active", ` WHERE t.status=? ORDER BY t.created_at DESC`, string(models.TripActive))
}

func (r TripRepository) ListByHost(ctx context.Context, hostID string) ([]models.TravelPlan, error) {
	return r.listWhere(ctx, "travel_plans.list_host", ` WHERE t.host_id=? ORDER BY t.created_at DESC`, hostID)
}

func (r TripRepository) listWhere(ctx context.Context, op, where string, args ...any) ([]models.TravelPlan, error) {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	rows, err := r.db().QueryContext(ctx, tripSelect+where, args...)
	if err != nil {
		return nil, domain.StoreError{Op: op, Err: err}
	}
	defer rows.Close()

	out := []models.TravelPlan{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, domain.StoreError{Op: op, Err: err}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError{Op: op, Err: err}
	}
	return out, nil
}

func (r TripRepository) UpdateStatus(ctx context.Context, id string, status models.TripStatus, at time.Time) error {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	res, err := r.db().ExecContext(ctx, `UPDATE travel_plans SET status=?, updated_at=? WHERE id=?`, string(status), at, id)
	if err != nil {
		return domain.StoreError{Op: "travel_plans.update_status", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "travel plan"}
	}
	return nil
}
