package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/clinicbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the two tables on first start. The unique index on
// phone enforces the single-active-booking invariant at the storage level;
// (phone, appointment_date) stays unique as a structural backstop.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS departments (
			name TEXT PRIMARY KEY,
			daily_capacity INTEGER NOT NULL CHECK (daily_capacity > 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS appointments (
			id TEXT PRIMARY KEY,
			phone TEXT NOT NULL,
			department_name TEXT NOT NULL REFERENCES departments(name),
			appointment_date TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (phone),
			UNIQUE (phone, appointment_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_dept_date
			ON appointments (department_name, appointment_date)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SeedDepartments inserts the configured departments, ignoring ones that
// already exist so restarts are harmless.
func SeedDepartments(ctx context.Context, db *pgxpool.Pool, departments []domain.Department) error {
	for _, d := range departments {
		_, err := db.Exec(ctx,
			`INSERT INTO departments (name, daily_capacity) VALUES ($1, $2)
			 ON CONFLICT (name) DO NOTHING`, d.Name, d.DailyCapacity)
		if err != nil {
			return fmt.Errorf("seed department %q: %w", d.Name, err)
		}
	}
	return nil
}
