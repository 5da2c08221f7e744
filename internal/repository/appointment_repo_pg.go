package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/clinicbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGAppointmentRepository struct {
	db *pgxpool.Pool
}

func NewPGAppointmentRepository(db *pgxpool.Pool) *PGAppointmentRepository {
	return &PGAppointmentRepository{db: db}
}

func (r *PGAppointmentRepository) CountBooked(ctx context.Context, department, date string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM appointments WHERE department_name=$1 AND appointment_date=$2`,
		department, date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count booked: %w", err)
	}
	return count, nil
}

func (r *PGAppointmentRepository) TryReserve(ctx context.Context, appt *domain.Appointment, capacity int) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin reserve tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Locking the department row serializes concurrent reserves for the
	// same department, so count-then-insert cannot race past capacity.
	var name string
	if err := tx.QueryRow(ctx,
		`SELECT name FROM departments WHERE name=$1 FOR UPDATE`, appt.Department).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%q: %w", appt.Department, domain.ErrUnknownDepartment)
		}
		return fmt.Errorf("lock department: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM appointments WHERE phone=$1)`, appt.Phone).Scan(&exists); err != nil {
		return fmt.Errorf("check phone: %w", err)
	}
	if exists {
		return fmt.Errorf("phone %s: %w", appt.Phone, domain.ErrAlreadyBooked)
	}

	var count int
	if err := tx.QueryRow(ctx,
		`SELECT count(*) FROM appointments WHERE department_name=$1 AND appointment_date=$2`,
		appt.Department, appt.Date).Scan(&count); err != nil {
		return fmt.Errorf("count slots: %w", err)
	}
	if count >= capacity {
		return fmt.Errorf("%s on %s: %w", appt.Department, appt.Date, domain.ErrFull)
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO appointments (id, phone, department_name, appointment_date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		appt.ID, appt.Phone, appt.Department, appt.Date).Scan(&appt.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("phone %s: %w", appt.Phone, domain.ErrAlreadyBooked)
		}
		return fmt.Errorf("insert appointment: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *PGAppointmentRepository) Cancel(ctx context.Context, phone string) (*domain.Appointment, error) {
	row := r.db.QueryRow(ctx,
		`DELETE FROM appointments WHERE phone=$1
		 RETURNING id, phone, department_name, appointment_date, created_at`, phone)

	var a domain.Appointment
	if err := row.Scan(&a.ID, &a.Phone, &a.Department, &a.Date, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoActiveBooking
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}
	return &a, nil
}

func (r *PGAppointmentRepository) GetByPhone(ctx context.Context, phone string) (*domain.Appointment, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, phone, department_name, appointment_date, created_at
		 FROM appointments WHERE phone=$1`, phone)

	var a domain.Appointment
	if err := row.Scan(&a.ID, &a.Phone, &a.Department, &a.Date, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoActiveBooking
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return &a, nil
}

func (r *PGAppointmentRepository) PurgeOutsideWindow(ctx context.Context, validDates []string) ([]domain.Appointment, error) {
	rows, err := r.db.Query(ctx,
		`DELETE FROM appointments WHERE NOT (appointment_date = ANY($1))
		 RETURNING id, phone, department_name, appointment_date, created_at`, validDates)
	if err != nil {
		return nil, fmt.Errorf("purge appointments: %w", err)
	}
	defer rows.Close()

	var removed []domain.Appointment
	for rows.Next() {
		var a domain.Appointment
		if err := rows.Scan(&a.ID, &a.Phone, &a.Department, &a.Date, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan purged appointment: %w", err)
		}
		removed = append(removed, a)
	}
	return removed, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ AppointmentRepository = (*PGAppointmentRepository)(nil)
