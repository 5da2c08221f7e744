package repository

import (
	"context"

	"github.com/Domenick1991/clinicbooking/internal/domain"
)

// AppointmentRepository is the reservation store. TryReserve must be atomic
// with respect to concurrent callers: the phone-uniqueness check, the
// capacity check and the insert happen as one step, so the capacity
// invariant holds under any interleaving.
type AppointmentRepository interface {
	CountBooked(ctx context.Context, department, date string) (int, error)
	TryReserve(ctx context.Context, appt *domain.Appointment, capacity int) error
	Cancel(ctx context.Context, phone string) (*domain.Appointment, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Appointment, error)
	PurgeOutsideWindow(ctx context.Context, validDates []string) ([]domain.Appointment, error)
}
