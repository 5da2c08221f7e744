package availability

import (
	"context"
	"fmt"
	"log"

	"github.com/Domenick1991/clinicbooking/internal/domain"
	"github.com/Domenick1991/clinicbooking/internal/registry"
	"github.com/Domenick1991/clinicbooking/internal/repository"
	"github.com/Domenick1991/clinicbooking/internal/schedule"
)

type AvailabilityUseCase interface {
	List(ctx context.Context) (map[string][]domain.DateAvailability, error)
}

type Cache interface {
	GetAvailability(ctx context.Context) (map[string][]domain.DateAvailability, error)
	SetAvailability(ctx context.Context, availability map[string][]domain.DateAvailability) error
}

type AvailabilityService struct {
	store       repository.AppointmentRepository
	departments *registry.Registry
	clock       schedule.Clock
	cache       Cache
}

func NewAvailabilityService(store repository.AppointmentRepository, departments *registry.Registry, clock schedule.Clock, cache Cache) *AvailabilityService {
	return &AvailabilityService{store: store, departments: departments, clock: clock, cache: cache}
}

// List reports, for every department and both window dates, how many slots
// are taken and how many remain.
func (s *AvailabilityService) List(ctx context.Context) (map[string][]domain.DateAvailability, error) {
	window := schedule.CurrentWindow(s.clock.Now())
	removed, err := s.store.PurgeOutsideWindow(ctx, window.Dates())
	if err != nil {
		return nil, fmt.Errorf("purge outside window: %w", err)
	}
	if len(removed) > 0 {
		log.Printf("availability sweep removed %d stale appointments", len(removed))
	}

	if s.cache != nil {
		if cached, err := s.cache.GetAvailability(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	availability := make(map[string][]domain.DateAvailability)
	for _, dept := range s.departments.All() {
		entries := make([]domain.DateAvailability, 0, 2)
		for _, date := range window.Dates() {
			booked, err := s.store.CountBooked(ctx, dept.Name, date)
			if err != nil {
				return nil, fmt.Errorf("count booked for %s on %s: %w", dept.Name, date, err)
			}
			available := dept.DailyCapacity - booked
			if available < 0 {
				available = 0
			}
			entries = append(entries, domain.DateAvailability{Date: date, Available: available, Booked: booked})
		}
		availability[dept.Name] = entries
	}

	if s.cache != nil {
		_ = s.cache.SetAvailability(ctx, availability)
	}
	return availability, nil
}

var _ AvailabilityUseCase = (*AvailabilityService)(nil)
