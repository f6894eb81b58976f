package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestUserGetRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT role FROM users WHERE id=").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("HOST"))
	mock.ExpectQuery("SELECT role FROM users WHERE id=").
		WithArgs("u-404").
		WillReturnRows(sqlmock.NewRows([]string{"role"}))
	mock.ExpectQuery("SELECT role FROM users WHERE id=").
		WithArgs("u-2").
		WillReturnError(errors.New("connection reset"))

	repo := UserRepository{DB: db}
	role, err := repo.GetRole(context.Background(), "u-1")
	if err != nil || role != domain.RoleHost {
		t.Fatalf("GetRole = %q, %v", role, err)
	}
	if _, err := repo.GetRole(context.Background(), "u-404"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := repo.GetRole(context.Background(), "u-2"); !domain.IsStore(err) {
		t.Fatalf("expected store error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	u := models.User{ID: "u-1", Name: "Asha", Email: "asha@example.com", PasswordHash: "x", Role: "USER", Status: "active", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.Status, u.CreatedAt, u.UpdatedAt).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err = UserRepository{DB: db}.Create(context.Background(), u)
	var ve domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "email" {
		t.Fatalf("expected email validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserUpdateRoleMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE users SET role=").
		WithArgs("SUPPORT", at, "u-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := (UserRepository{DB: db}).UpdateRole(context.Background(), "u-9", domain.RoleSupport, at); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
