package registry

import (
	"testing"

	"github.com/Domenick1991/clinicbooking/internal/domain"
	"github.com/stretchr/testify/assert"
)

func seeded(t *testing.T) *Registry {
	t.Helper()
	r, err := New([]domain.Department{
		{Name: "内科", DailyCapacity: 10},
		{Name: "外科", DailyCapacity: 10},
	})
	assert.NoError(t, err)
	return r
}

func TestCapacityOf(t *testing.T) {
	r := seeded(t)

	capacity, err := r.CapacityOf("内科")
	assert.NoError(t, err)
	assert.Equal(t, 10, capacity)

	_, err = r.CapacityOf("眼科")
	assert.ErrorIs(t, err, domain.ErrUnknownDepartment)
}

func TestAddRejectsDuplicates(t *testing.T) {
	r := seeded(t)

	err := r.Add("内科", 5)
	assert.ErrorIs(t, err, domain.ErrDepartmentExists)

	// the original capacity must survive the rejected add
	capacity, err := r.CapacityOf("内科")
	assert.NoError(t, err)
	assert.Equal(t, 10, capacity)
}

func TestAddRejectsBadInput(t *testing.T) {
	r := seeded(t)

	assert.ErrorIs(t, r.Add("", 10), domain.ErrMissingParameter)
	assert.ErrorIs(t, r.Add("眼科", 0), domain.ErrMissingParameter)
	assert.ErrorIs(t, r.Add("眼科", -1), domain.ErrMissingParameter)
}

func TestAllKeepsInsertionOrder(t *testing.T) {
	r := seeded(t)
	assert.NoError(t, r.Add("眼科", 3))

	all := r.All()
	assert.Equal(t, []domain.Department{
		{Name: "内科", DailyCapacity: 10},
		{Name: "外科", DailyCapacity: 10},
		{Name: "眼科", DailyCapacity: 3},
	}, all)
}

func TestNewRejectsDuplicateSeed(t *testing.T) {
	_, err := New([]domain.Department{
		{Name: "内科", DailyCapacity: 10},
		{Name: "内科", DailyCapacity: 8},
	})
	assert.ErrorIs(t, err, domain.ErrDepartmentExists)
}
