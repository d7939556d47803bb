package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
)

type employeeRepository struct {
	s *Store
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

type holidayRepository struct {
	s *Store
}

func (r *holidayRepository) ListActive(ctx context.Context, from, to time.Time) ([]calendar.Holiday, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	from, to = calendar.Day(from), calendar.Day(to)
	var out []calendar.Holiday
	for _, h := range r.s.holidays {
		if h.IsActive && !h.Date.Before(from) && !h.Date.After(to) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
