package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/clinicbooking/internal/domain"
	"github.com/Domenick1991/clinicbooking/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) CountBooked(ctx context.Context, department, date string) (int, error) {
	args := m.Called(ctx, department, date)
	return args.Int(0), args.Error(1)
}

func (m *MockAppointmentRepository) TryReserve(ctx context.Context, appt *domain.Appointment, capacity int) error {
	args := m.Called(ctx, appt, capacity)
	return args.Error(0)
}

func (m *MockAppointmentRepository) Cancel(ctx context.Context, phone string) (*domain.Appointment, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) GetByPhone(ctx context.Context, phone string) (*domain.Appointment, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) PurgeOutsideWindow(ctx context.Context, validDates []string) ([]domain.Appointment, error) {
	args := m.Called(ctx, validDates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Appointment), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) InvalidateAvailability(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// window for every test below: 2024-03-11 and 2024-03-12
var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func testDepartments(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.New([]domain.Department{
		{Name: "内科", DailyCapacity: 10},
		{Name: "外科", DailyCapacity: 10},
	})
	assert.NoError(t, err)
	return r
}

func newTestService(repo *MockAppointmentRepository, cache Cache, producer Producer, t *testing.T) *BookingService {
	return NewBookingService(
		repo,
		testDepartments(t),
		fixedClock{now: testNow},
		cache,
		producer,
		"appointments",
		WithNotificationsTopic("notifications"),
	)
}

func TestBook_Success(t *testing.T) {
	repo := &MockAppointmentRepository{}
	cache := &MockCache{}
	producer := &MockProducer{}
	service := newTestService(repo, cache, producer, t)
	ctx := context.Background()

	repo.On("PurgeOutsideWindow", ctx, []string{"2024-03-11", "2024-03-12"}).Return([]domain.Appointment{}, nil).Once()
	repo.On("TryReserve", ctx, mock.AnythingOfType("*domain.Appointment"), 10).Return(nil).Once()
	cache.On("InvalidateAvailability", ctx).Return(nil).Once()
	producer.On("Publish", ctx, "appointments", mock.Anything, mock.Anything).Return(nil).Once()
	producer.On("Publish", ctx, "notifications", mock.Anything, mock.Anything).Return(nil).Once()

	appt, err := service.Book(ctx, BookInput{Date: "2024-03-11", Department: "内科", Phone: "13912345678"})

	assert.NoError(t, err)
	assert.NotNil(t, appt)
	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, "内科", appt.Department)
	assert.Equal(t, "2024-03-11", appt.Date)
	assert.Equal(t, "13912345678", appt.Phone)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestBook_MissingParameter(t *testing.T) {
	repo := &MockAppointmentRepository{}
	service := newTestService(repo, nil, nil, t)
	ctx := context.Background()

	repo.On("PurgeOutsideWindow", ctx, mock.Anything).Return([]domain.Appointment{}, nil)

	for _, input := range []BookInput{
		{Department: "内科", Phone: "13912345678"},
		{Date: "2024-03-11", Phone: "13912345678"},
		{Date: "2024-03-11", Department: "内科"},
	} {
		_, err := service.Book(ctx, input)
		assert.ErrorIs(t, err, domain.ErrMissingParameter)
	}
	repo.AssertNotCalled(t, "TryReserve", mock.Anything, mock.Anything, mock.Anything)
}

func TestBook_WindowEdges(t *testing.T) {
	tests := []struct {
		date    string
		wantErr error
	}{
		{"2024-03-10", domain.ErrOutOfWindow}, // today
		{"2024-03-13", domain.ErrOutOfWindow}, // today+3
		{"2024-03-11", nil},                   // tomorrow
		{"2024-03-12", nil},                   // day after tomorrow
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			repo := &MockAppointmentRepository{}
			service := newTestService(repo, nil, nil, t)
			ctx := context.Background()

			repo.On("PurgeOutsideWindow", ctx, mock.Anything).Return([]domain.Appointment{}, nil)
			if tt.wantErr == nil {
				repo.On("TryReserve", ctx, mock.AnythingOfType("*domain.Appointment"), 10).Return(nil).Once()
			}

			_, err := service.Book(ctx, BookInput{Date: tt.date, Department: "内科", Phone: "13912345678"})
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "TryReserve", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestBook_UnknownDepartment(t *testing.T) {
	repo := &MockAppointmentRepository{}
	service := newTestService(repo, nil, nil, t)
	ctx := context.Background()

	repo.On("PurgeOutsideWindow", ctx, mock.Anything).Return([]domain.Appointment{}, nil).Once()

	_, err := service.Book(ctx, BookInput{Date: "2024-03-11", Department: "眼科", Phone: "13912345678"})
	assert.ErrorIs(t, err, domain.ErrUnknownDepartment)
	repo.AssertNotCalled(t, "TryReserve", mock.Anything, mock.Anything, mock.Anything)
}

func TestBook_InvalidPhoneNeverTouchesStore(t *testing.T) {
	for _, phone := range []string{"12345", "2391234567", "1291234567a", "139123456789", "10912345678"} {
		t.Run(phone, func(t *testing.T) {
			repo := &MockAppointmentRepository{}
			service := newTestService(repo, nil, nil, t)
			ctx := context.Background()

			repo.On("PurgeOutsideWindow", ctx, mock.Anything).Return([]domain.Appointment{}, nil).Once()

			_, err := service.Book(ctx, BookInput{Date: "2024-03-11", Department: "内科", Phone: phone})
			assert.ErrorIs(t, err, domain.ErrInvalidPhone)
			repo.AssertNotCalled(t, "TryReserve", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestBook_StoreRejections(t *testing.T) {
	for _, storeErr := range []error{domain.ErrAlreadyBooked, domain.ErrFull} {
		t.Run(storeErr.Error(), func(t *testing.T) {
			repo := &MockAppointmentRepository{}
			producer := &MockProducer{}
			service := newTestService(repo, nil, producer, t)
			ctx := context.Background()

			repo.On("PurgeOutsideWindow", ctx, mock.Anything).Return([]domain.Appointment{}, nil).Once()
			repo.On("TryReserve", ctx, mock.AnythingOfType("*domain.Appointment"), 10).Return(storeErr).Once()

			_, err := service.Book(ctx, BookInput{Date: "2024-03-11", Department: "内科", Phone: "13912345678"})
			assert.ErrorIs(t, err, storeErr)
			producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestBook_PurgeFailureSurfacesAsStorageError(t *testing.T) {
	repo := &MockAppointmentRepository{}
	service := newTestService(repo, nil, nil, t)
	ctx := context.Background()

	repo.On("PurgeOutsideWindow", ctx, mock.Anything).Return(nil, errors.New("connection reset")).Once()

	_, err := service.Book(ctx, BookInput{Date: "2024-03-11", Department: "内科", Phone: "13912345678"})
	assert.Error(t, err)
	assert.False(t, domain.IsBusinessError(err))
}

func TestCancel_Success(t *testing.T) {
	repo := &MockAppointmentRepository{}
	cache := &MockCache{}
	producer := &MockProducer{}
	service := newTestService(repo, cache, producer, t)
	ctx := context.Background()

	cancelled := &domain.Appointment{ID: "id-1", Phone: "13912345678", Department: "内科", Date: "2024-03-11"}
	repo.On("PurgeOutsideWindow", ctx, []string{"2024-03-11", "2024-03-12"}).Return([]domain.Appointment{}, nil).Once()
	repo.On("Cancel", ctx, "13912345678").Return(cancelled, nil).Once()
	cache.On("InvalidateAvailability", ctx).Return(nil).Once()
	producer.On("Publish", ctx, "appointments", "id-1", mock.Anything).Return(nil).Once()
	producer.On("Publish", ctx, "notifications", "id-1", mock.Anything).Return(nil).Once()

	appt, err := service.Cancel(ctx, "13912345678")
	assert.NoError(t, err)
	assert.Equal(t, cancelled, appt)
	repo.AssertExpectations(t)
}

func TestCancel_NoActiveBooking(t *testing.T) {
	repo := &MockAppointmentRepository{}
	service := newTestService(repo, nil, nil, t)
	ctx := context.Background()

	repo.On("PurgeOutsideWindow", ctx, mock.Anything).Return([]domain.Appointment{}, nil).Once()
	repo.On("Cancel", ctx, "13912345678").Return(nil, domain.ErrNoActiveBooking).Once()

	_, err := service.Cancel(ctx, "13912345678")
	assert.ErrorIs(t, err, domain.ErrNoActiveBooking)
}

func TestCancel_Validation(t *testing.T) {
	repo := &MockAppointmentRepository{}
	service := newTestService(repo, nil, nil, t)
	ctx := context.Background()

	repo.On("PurgeOutsideWindow", ctx, mock.Anything).Return([]domain.Appointment{}, nil)

	_, err := service.Cancel(ctx, "")
	assert.ErrorIs(t, err, domain.ErrMissingParameter)

	_, err = service.Cancel(ctx, "12345")
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)

	repo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
}

func TestExpireOutdated_PublishesEachRemoval(t *testing.T) {
	repo := &MockAppointmentRepository{}
	cache := &MockCache{}
	producer := &MockProducer{}
	service := newTestService(repo, cache, producer, t)
	ctx := context.Background()

	removed := []domain.Appointment{
		{ID: "id-1", Phone: "13912345670", Department: "内科", Date: "2024-03-10"},
		{ID: "id-2", Phone: "13912345671", Department: "外科", Date: "2024-03-09"},
	}
	repo.On("PurgeOutsideWindow", ctx, []string{"2024-03-11", "2024-03-12"}).Return(removed, nil).Once()
	cache.On("InvalidateAvailability", ctx).Return(nil).Once()
	producer.On("Publish", ctx, "appointments", "id-1", mock.Anything).Return(nil).Once()
	producer.On("Publish", ctx, "notifications", "id-1", mock.Anything).Return(nil).Once()
	producer.On("Publish", ctx, "appointments", "id-2", mock.Anything).Return(nil).Once()
	producer.On("Publish", ctx, "notifications", "id-2", mock.Anything).Return(nil).Once()

	got, err := service.ExpireOutdated(ctx)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	producer.AssertExpectations(t)
}

func TestExpireOutdated_NothingToRemove(t *testing.T) {
	repo := &MockAppointmentRepository{}
	cache := &MockCache{}
	producer := &MockProducer{}
	service := newTestService(repo, cache, producer, t)
	ctx := context.Background()

	repo.On("PurgeOutsideWindow", ctx, mock.Anything).Return([]domain.Appointment{}, nil).Once()

	got, err := service.ExpireOutdated(ctx)
	assert.NoError(t, err)
	assert.Empty(t, got)
	cache.AssertNotCalled(t, "InvalidateAvailability", mock.Anything)
	producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBook_NilCacheAndProducer(t *testing.T) {
	repo := &MockAppointmentRepository{}
	service := NewBookingService(repo, testDepartments(t), fixedClock{now: testNow}, nil, nil, "")
	ctx := context.Background()

	repo.On("PurgeOutsideWindow", ctx, mock.Anything).Return([]domain.Appointment{}, nil).Once()
	repo.On("TryReserve", ctx, mock.AnythingOfType("*domain.Appointment"), 10).Return(nil).Once()

	appt, err := service.Book(ctx, BookInput{Date: "2024-03-11", Department: "内科", Phone: "13912345678"})
	assert.NoError(t, err)
	assert.NotNil(t, appt)
}
