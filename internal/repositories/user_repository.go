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

const userColumns = `id, name, email, phone, password_hash, role, status, created_at, updated_at`

type UserRepository struct {
	DB      *sql.DB
	Timeout time.Duration
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetRole returns the role stored for the user. The role guard calls this on every check.
func (r UserRepository) GetRole(ctx context.Context, userID string) (domain.Role, error) {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var role string
	err := r.db().QueryRowContext(ctx, `SELECT role FROM users WHERE id=? LIMIT 1`, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.NotFoundError{Resource: "user", Err: err}
		}
		return "", domain.StoreError{Op: "users.get_role", Err: err}
	}
	return domain.Role(role), nil
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	u, err := scanUser(r.db().QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email=? LIMIT 1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, domain.StoreError{Op: "users.get_by_email", Err: err}
	}
	return u, nil
}

func (r UserRepository) Create(ctx context.Context, u models.User) error {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	_, err := r.db().ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, password_hash, role, status, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.Status, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ValidationError{Field: "email", Msg: "already registered", Err: err}
		}
		return domain.StoreError{Op: "users.create", Err: err}
	}
	return nil
}

func (r UserRepository) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	rows, err := r.db().QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, domain.StoreError{Op: "users.list", Err: err}
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, domain.StoreError{Op: "users.list", Err: err}
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError{Op: "users.list", Err: err}
	}
	return out, nil
}

func (r UserRepository) UpdateRole(ctx context.Context, userID string, role domain.Role, at time.Time) error {
	ctx, cancel := intdb.WithTimeout(ctx, r.Timeout)
	defer cancel()

	res, err := r.db().ExecContext(ctx, `UPDATE users SET role=?, updated_at=? WHERE id=?`, string(role), at, userID)
	if err != nil {
		return domain.StoreError{Op: "users.update_role", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "user"}
	}
	return nil
}
