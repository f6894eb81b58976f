package db

import (
	"context"
	"database/sql"
	"fmt"
)

type tableDDL struct {
	name string
	ddl  string
}

// schema lists every table in dependency order.
var schema = []tableDDL{
	{"users", `
CREATE TABLE IF NOT EXISTS users (
	id CHAR(36) NOT NULL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(50) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL DEFAULT 'USER',
	status VARCHAR(20) NOT NULL DEFAULT 'active',
	created_at DATETIME(3) NOT NULL,
	updated_at DATETIME(3) NOT NULL,
	UNIQUE KEY uniq_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"travel_plans", `
CREATE TABLE IF NOT EXISTS travel_plans (
	id CHAR(36) NOT NULL PRIMARY KEY,
	host_id CHAR(36) NOT NULL,
	title VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	destination VARCHAR(255) NOT NULL,
	country VARCHAR(100) NOT NULL DEFAULT '',
	state VARCHAR(100) NOT NULL DEFAULT '',
	city VARCHAR(100) NOT NULL DEFAULT '',
	price DECIMAL(12,2) NOT NULL,
	max_participants INT NOT NULL,
	no_of_days INT NOT NULL DEFAULT 1,
	start_date DATETIME(3) NULL,
	end_date DATETIME(3) NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'DRAFT',
	filters JSON NULL,
	languages JSON NULL,
	created_at DATETIME(3) NOT NULL,
	updated_at DATETIME(3) NOT NULL,
	KEY idx_plans_status_created (status, created_at),
	KEY idx_plans_host (host_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id CHAR(36) NOT NULL PRIMARY KEY,
	user_id CHAR(36) NOT NULL,
	travel_plan_id CHAR(36) NOT NULL,
	start_date DATETIME(3) NOT NULL,
	end_date DATETIME(3) NOT NULL,
	total_price DECIMAL(12,2) NOT NULL,
	price_per_person DECIMAL(12,2) NOT NULL,
	participants INT NOT NULL,
	guests JSON NULL,
	special_requirements TEXT NULL,
	status VARCHAR(20) NOT NULL,
	payment_status VARCHAR(20) NOT NULL,
	amount_paid DECIMAL(12,2) NOT NULL DEFAULT 0,
	remaining_amount DECIMAL(12,2) NOT NULL,
	min_payment_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
	payment_deadline DATETIME(3) NULL,
	refund_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
	form_submitted TINYINT(1) NOT NULL DEFAULT 0,
	is_reviewed TINYINT(1) NOT NULL DEFAULT 0,
	gateway_order_id VARCHAR(64) NULL,
	gateway_payment_id VARCHAR(64) NULL,
	created_at DATETIME(3) NOT NULL,
	updated_at DATETIME(3) NOT NULL,
	KEY idx_bookings_user (user_id),
	KEY idx_bookings_plan (travel_plan_id),
	KEY idx_bookings_deadline (payment_status, payment_deadline)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"payment_events", `
CREATE TABLE IF NOT EXISTS payment_events (
	gateway_payment_id VARCHAR(64) NOT NULL PRIMARY KEY,
	booking_id CHAR(36) NOT NULL,
	gateway_order_id VARCHAR(64) NOT NULL DEFAULT '',
	amount DECIMAL(12,2) NOT NULL,
	credited_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
	created_at DATETIME(3) NOT NULL,
	KEY idx_payment_events_booking (booking_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"reviews", `
CREATE TABLE IF NOT EXISTS reviews (
	id CHAR(36) NOT NULL PRIMARY KEY,
	user_id CHAR(36) NOT NULL,
	booking_id CHAR(36) NOT NULL,
	travel_plan_id CHAR(36) NOT NULL,
	host_id CHAR(36) NOT NULL,
	rating TINYINT NOT NULL,
	comment TEXT NULL,
	created_at DATETIME(3) NOT NULL,
	UNIQUE KEY uniq_reviews_booking (booking_id),
	KEY idx_reviews_plan (travel_plan_id),
	KEY idx_reviews_host (host_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"payouts", `
CREATE TABLE IF NOT EXISTS payouts (
	id CHAR(36) NOT NULL PRIMARY KEY,
	booking_id CHAR(36) NOT NULL,
	host_id CHAR(36) NOT NULL,
	total_amount DECIMAL(12,2) NOT NULL,
	first_amount DECIMAL(12,2) NOT NULL,
	first_percent DECIMAL(5,2) NOT NULL,
	first_date DATETIME(3) NOT NULL,
	first_status VARCHAR(20) NOT NULL,
	first_paid_at DATETIME(3) NULL,
	second_amount DECIMAL(12,2) NOT NULL,
	second_percent DECIMAL(5,2) NOT NULL,
	second_date DATETIME(3) NOT NULL,
	second_status VARCHAR(20) NOT NULL,
	second_paid_at DATETIME(3) NULL,
	notes TEXT NULL,
	created_at DATETIME(3) NOT NULL,
	updated_at DATETIME(3) NOT NULL,
	UNIQUE KEY uniq_payouts_booking (booking_id),
	KEY idx_payouts_host (host_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
}

// TableNames returns the managed tables in creation order.
func TableNames() []string {
	out := make([]string, 0, len(schema))
	for _, t := range schema {
		out = append(out, t.name)
	}
	return out
}

// EnsureSchema creates missing tables and reports which ones it created.
func EnsureSchema(ctx context.Context, conn *sql.DB) ([]string, error) {
	created := []string{}
	for _, t := range schema {
		if HasTable(ctx, conn, t.name) {
			continue
		}
		if _, err := conn.ExecContext(ctx, t.ddl); err != nil {
			return created, fmt.Errorf("create table %s: %w", t.name, err)
		}
		created = append(created, t.name)
	}
	return created, nil
}
