package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/clinicbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGDepartmentRepository backs the administrative department operations.
// It is outside the booking request path; the request path reads
// capacities from the in-process registry.
type PGDepartmentRepository struct {
	db *pgxpool.Pool
}

func NewPGDepartmentRepository(db *pgxpool.Pool) *PGDepartmentRepository {
	return &PGDepartmentRepository{db: db}
}

func (r *PGDepartmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	rows, err := r.db.Query(ctx, `SELECT name, daily_capacity FROM departments ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	departments := make([]domain.Department, 0)
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.Name, &d.DailyCapacity); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (r *PGDepartmentRepository) Add(ctx context.Context, department domain.Department) error {
	if department.Name == "" || department.DailyCapacity <= 0 {
		return fmt.Errorf("department %q capacity %d: %w", department.Name, department.DailyCapacity, domain.ErrMissingParameter)
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO departments (name, daily_capacity) VALUES ($1, $2)`,
		department.Name, department.DailyCapacity)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%q: %w", department.Name, domain.ErrDepartmentExists)
		}
		return fmt.Errorf("add department: %w", err)
	}
	return nil
}
