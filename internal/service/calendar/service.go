package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
)

// ClassifierImpl combines the holiday calendar with the employee joining date.
// Restricted holidays are optional days off and do not make a date a holiday.
type ClassifierImpl struct {
	calendar.HolidayRepository
	employee.EmployeeRepository
}

func NewClassifier(holidays calendar.HolidayRepository, employees employee.EmployeeRepository) calendar.Classifier {
	return &ClassifierImpl{
		HolidayRepository:  holidays,
		EmployeeRepository: employees,
	}
}

func (c *ClassifierImpl) Classify(ctx context.Context, employeeID string, date time.Time) (calendar.Classification, error) {
	classes, err := c.ClassifyRange(ctx, employeeID, date, date)
	if err != nil {
		return calendar.Classification{}, err
	}
	return classes[0], nil
}

func (c *ClassifierImpl) ClassifyRange(ctx context.Context, employeeID string, from, to time.Time) ([]calendar.Classification, error) {
	from, to = calendar.Day(from), calendar.Day(to)
	if to.Before(from) {
		return nil, fmt.Errorf("classify range: %s is before %s", to.Format(calendar.DateLayout), from.Format(calendar.DateLayout))
	}

	emp, err := c.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	holidays, err := c.HolidayRepository.ListActive(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	names := make(map[time.Time]string, len(holidays))
	for _, h := range holidays {
		if h.IsRestricted || !h.IsActive {
			continue
		}
		names[calendar.Day(h.Date)] = h.Name
	}

	joined := calendar.Day(emp.JoiningDate)
	dates := calendar.Dates(from, to)
	classes := make([]calendar.Classification, 0, len(dates))
	for _, d := range dates {
		class := calendar.Classification{
			Date:          d,
			JoiningDate:   &joined,
			BeforeJoining: d.Before(joined),
			IsWeekend:     calendar.IsWeekend(d),
		}
		if name, ok := names[d]; ok {
			n := name
			class.IsHoliday = true
			class.HolidayName = &n
		}
		classes = append(classes, class)
	}
	return classes, nil
}

// RestrictedHolidayOn returns the active restricted holiday dated date, if any.
func RestrictedHolidayOn(ctx context.Context, holidays calendar.HolidayRepository, date time.Time) (*calendar.Holiday, error) {
	list, err := holidays.ListActive(ctx, date, date)
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	for _, h := range list {
		if h.IsRestricted {
			found := h
			return &found, nil
		}
	}
	return nil, nil
}
