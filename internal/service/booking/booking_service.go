package booking

import (
	"context"
	"fmt"
	"log"
	"regexp"

	"github.com/Domenick1991/clinicbooking/internal/domain"
	"github.com/Domenick1991/clinicbooking/internal/kafka"
	"github.com/Domenick1991/clinicbooking/internal/registry"
	"github.com/Domenick1991/clinicbooking/internal/repository"
	"github.com/Domenick1991/clinicbooking/internal/schedule"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	Book(ctx context.Context, input BookInput) (*domain.Appointment, error)
	Cancel(ctx context.Context, phone string) (*domain.Appointment, error)
	ExpireOutdated(ctx context.Context) ([]domain.Appointment, error)
}

type Cache interface {
	InvalidateAvailability(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// phones are mainland mobile numbers: 11 digits, 1 then 3-9
var phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

type BookingService struct {
	store              repository.AppointmentRepository
	departments        *registry.Registry
	clock              schedule.Clock
	cache              Cache
	producer           Producer
	appointmentsTopic  string
	notificationsTopic string
}

type BookInput struct {
	Date       string `json:"date"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	store repository.AppointmentRepository,
	departments *registry.Registry,
	clock schedule.Clock,
	cache Cache,
	producer Producer,
	appointmentsTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		store:             store,
		departments:       departments,
		clock:             clock,
		cache:             cache,
		producer:          producer,
		appointmentsTopic: appointmentsTopic,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) Book(ctx context.Context, input BookInput) (*domain.Appointment, error) {
	window, err := s.sweep(ctx)
	if err != nil {
		return nil, err
	}

	if input.Date == "" || input.Department == "" || input.Phone == "" {
		return nil, domain.ErrMissingParameter
	}
	if !window.Contains(input.Date) {
		return nil, fmt.Errorf("%s: %w", input.Date, domain.ErrOutOfWindow)
	}
	capacity, err := s.departments.CapacityOf(input.Department)
	if err != nil {
		return nil, err
	}
	if !phonePattern.MatchString(input.Phone) {
		return nil, fmt.Errorf("%s: %w", input.Phone, domain.ErrInvalidPhone)
	}

	appt := &domain.Appointment{
		ID:         uuid.NewString(),
		Phone:      input.Phone,
		Department: input.Department,
		Date:       input.Date,
	}
	if err := s.store.TryReserve(ctx, appt, capacity); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	if err := s.publish(ctx, "appointment_booked", appt); err != nil {
		log.Printf("WARNING: failed to publish appointment_booked for %s: %v", appt.ID, err)
	}
	return appt, nil
}

func (s *BookingService) Cancel(ctx context.Context, phone string) (*domain.Appointment, error) {
	if _, err := s.sweep(ctx); err != nil {
		return nil, err
	}

	if phone == "" {
		return nil, domain.ErrMissingParameter
	}
	if !phonePattern.MatchString(phone) {
		return nil, fmt.Errorf("%s: %w", phone, domain.ErrInvalidPhone)
	}

	cancelled, err := s.store.Cancel(ctx, phone)
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	if err := s.publish(ctx, "appointment_cancelled", cancelled); err != nil {
		log.Printf("WARNING: failed to publish appointment_cancelled for %s: %v", cancelled.ID, err)
	}
	return cancelled, nil
}

// ExpireOutdated purges every appointment whose date has left the window
// and announces each removal. This is the worker's sweep entry point; the
// same purge also runs silently ahead of every Book and Cancel.
func (s *BookingService) ExpireOutdated(ctx context.Context) ([]domain.Appointment, error) {
	window := schedule.CurrentWindow(s.clock.Now())
	removed, err := s.store.PurgeOutsideWindow(ctx, window.Dates())
	if err != nil {
		return nil, fmt.Errorf("purge outside window: %w", err)
	}
	if len(removed) == 0 {
		return removed, nil
	}

	s.invalidateCache(ctx)
	for i := range removed {
		if err := s.publish(ctx, "appointment_expired", &removed[i]); err != nil {
			log.Printf("WARNING: failed to publish appointment_expired for %s: %v", removed[i].ID, err)
		}
	}
	return removed, nil
}

func (s *BookingService) sweep(ctx context.Context) (schedule.Window, error) {
	window := schedule.CurrentWindow(s.clock.Now())
	if _, err := s.store.PurgeOutsideWindow(ctx, window.Dates()); err != nil {
		return window, fmt.Errorf("purge outside window: %w", err)
	}
	return window, nil
}

func (s *BookingService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAvailability(ctx); err != nil {
		log.Printf("WARNING: failed to invalidate availability cache: %v", err)
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, appt *domain.Appointment) error {
	if s.producer == nil || s.appointmentsTopic == "" {
		return nil
	}
	event := kafka.AppointmentEvent{
		Type:       eventType,
		ID:         appt.ID,
		Phone:      appt.Phone,
		Department: appt.Department,
		Date:       appt.Date,
		CreatedAt:  appt.CreatedAt,
	}
	if err := s.producer.Publish(ctx, s.appointmentsTopic, appt.ID, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, appt.ID, event)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
