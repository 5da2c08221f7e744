package registry

import (
	"fmt"
	"sync"

	"github.com/Domenick1991/clinicbooking/internal/domain"
)

// Registry maps department names to their daily slot capacity. It is
// populated once at startup and read on every booking request; Add is an
// administrative operation outside the request path.
type Registry struct {
	mu         sync.RWMutex
	capacities map[string]int
	order      []string
}

func New(departments []domain.Department) (*Registry, error) {
	r := &Registry{capacities: make(map[string]int)}
	for _, d := range departments {
		if err := r.Add(d.Name, d.DailyCapacity); err != nil {
			return nil, fmt.Errorf("seed department %q: %w", d.Name, err)
		}
	}
	return r, nil
}

func (r *Registry) Add(name string, capacity int) error {
	if name == "" || capacity <= 0 {
		return fmt.Errorf("department %q capacity %d: %w", name, capacity, domain.ErrMissingParameter)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.capacities[name]; ok {
		return fmt.Errorf("%q: %w", name, domain.ErrDepartmentExists)
	}
	r.capacities[name] = capacity
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) CapacityOf(name string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	capacity, ok := r.capacities[name]
	if !ok {
		return 0, fmt.Errorf("%q: %w", name, domain.ErrUnknownDepartment)
	}
	return capacity, nil
}

// All returns the departments in insertion order, so availability listings
// stay stable across calls.
func (r *Registry) All() []domain.Department {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Department, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, domain.Department{Name: name, DailyCapacity: r.capacities[name]})
	}
	return out
}
