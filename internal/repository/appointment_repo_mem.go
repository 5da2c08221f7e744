package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/clinicbooking/internal/domain"
)

// MemoryAppointmentRepository keeps every appointment in process memory.
// A single mutex covers both the slot sets and the phone index, which makes
// each operation a serializable critical section.
type MemoryAppointmentRepository struct {
	mu      sync.Mutex
	slots   map[string]map[string][]string // department -> date -> phones
	byPhone map[string]domain.Appointment
}

func NewMemoryAppointmentRepository() *MemoryAppointmentRepository {
	return &MemoryAppointmentRepository{
		slots:   make(map[string]map[string][]string),
		byPhone: make(map[string]domain.Appointment),
	}
}

func (r *MemoryAppointmentRepository) CountBooked(ctx context.Context, department, date string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots[department][date]), nil
}

func (r *MemoryAppointmentRepository) TryReserve(ctx context.Context, appt *domain.Appointment, capacity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byPhone[appt.Phone]; ok {
		return fmt.Errorf("phone %s: %w", appt.Phone, domain.ErrAlreadyBooked)
	}

	dates, ok := r.slots[appt.Department]
	if !ok {
		dates = make(map[string][]string)
		r.slots[appt.Department] = dates
	}
	if len(dates[appt.Date]) >= capacity {
		return fmt.Errorf("%s on %s: %w", appt.Department, appt.Date, domain.ErrFull)
	}

	appt.CreatedAt = time.Now()
	dates[appt.Date] = append(dates[appt.Date], appt.Phone)
	r.byPhone[appt.Phone] = *appt
	return nil
}

func (r *MemoryAppointmentRepository) Cancel(ctx context.Context, phone string) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.byPhone[phone]
	if !ok {
		return nil, domain.ErrNoActiveBooking
	}

	r.removeSlot(appt.Department, appt.Date, phone)
	delete(r.byPhone, phone)
	return &appt, nil
}

func (r *MemoryAppointmentRepository) GetByPhone(ctx context.Context, phone string) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.byPhone[phone]
	if !ok {
		return nil, domain.ErrNoActiveBooking
	}
	return &appt, nil
}

func (r *MemoryAppointmentRepository) PurgeOutsideWindow(ctx context.Context, validDates []string) ([]domain.Appointment, error) {
	valid := make(map[string]struct{}, len(validDates))
	for _, d := range validDates {
		valid[d] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []domain.Appointment
	for _, dates := range r.slots {
		for date, phones := range dates {
			if _, ok := valid[date]; ok {
				continue
			}
			for _, phone := range phones {
				if appt, ok := r.byPhone[phone]; ok {
					removed = append(removed, appt)
					delete(r.byPhone, phone)
				}
			}
			delete(dates, date)
		}
	}

	// the phone index may only ever reference dates present in the slot
	// sets, but sweep it too so a drifted entry cannot survive
	for phone, appt := range r.byPhone {
		if _, ok := valid[appt.Date]; !ok {
			removed = append(removed, appt)
			r.removeSlot(appt.Department, appt.Date, phone)
			delete(r.byPhone, phone)
		}
	}

	return removed, nil
}

func (r *MemoryAppointmentRepository) removeSlot(department, date, phone string) {
	phones := r.slots[department][date]
	for i, p := range phones {
		if p == phone {
			r.slots[department][date] = append(phones[:i], phones[i+1:]...)
			return
		}
	}
}

var _ AppointmentRepository = (*MemoryAppointmentRepository)(nil)
