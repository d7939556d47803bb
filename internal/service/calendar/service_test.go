package calendar

import (
	"context"
	"testing"
	"time"

	domain "github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func setup() *memory.Store {
	s := memory.NewStore()
	s.AddEmployee(employee.Employee{ID: "emp-1", FullName: "Ayu Lestari", JoiningDate: day(8)})
	s.AddHoliday(domain.Holiday{ID: "h-1", Date: day(11), Name: "Weekend Holiday", IsActive: true})
	s.AddHoliday(domain.Holiday{ID: "h-2", Date: day(14), Name: "Founders Day", IsActive: true})
	s.AddHoliday(domain.Holiday{ID: "h-3", Date: day(15), Name: "Optional Festival", IsActive: true, IsRestricted: true})
	return s
}

func TestClassifyRange(t *testing.T) {
	s := setup()
	c := NewClassifier(s.Holidays(), s.Employees())

	classes, err := c.ClassifyRange(context.Background(), "emp-1", day(6), day(15))
	require.NoError(t, err)
	require.Len(t, classes, 10)

	kinds := make(map[int]domain.Kind)
	for _, cl := range classes {
		kinds[cl.Date.Day()] = cl.Kind()
	}

	assert.Equal(t, domain.KindBeforeJoining, kinds[6])
	assert.Equal(t, domain.KindRegular, kinds[8])
	assert.Equal(t, domain.KindWeekend, kinds[11], "weekend wins over a holiday on Saturday")
	assert.Equal(t, domain.KindWeekend, kinds[12])
	assert.Equal(t, domain.KindHoliday, kinds[14])
	assert.Equal(t, domain.KindRegular, kinds[15], "restricted holidays are not days off")

	assert.True(t, classes[5].IsHoliday, "the weekend flag does not hide the holiday fact")
	require.NotNil(t, classes[8].HolidayName)
	assert.Equal(t, "Founders Day", *classes[8].HolidayName)
}

func TestClassifyUnknownEmployee(t *testing.T) {
	s := setup()
	c := NewClassifier(s.Holidays(), s.Employees())

	_, err := c.Classify(context.Background(), "nobody", day(14))
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestRestrictedHolidayOn(t *testing.T) {
	s := setup()

	h, err := RestrictedHolidayOn(context.Background(), s.Holidays(), day(15))
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, "Optional Festival", h.Name)

	h, err = RestrictedHolidayOn(context.Background(), s.Holidays(), day(14))
	require.NoError(t, err)
	assert.Nil(t, h)
}
