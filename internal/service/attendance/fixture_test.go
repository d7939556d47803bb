package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping/internal/repository/memory"
	calsvc "github.com/cmlabs-hris/hris-timekeeping/internal/service/calendar"
	"github.com/stretchr/testify/require"
)

// January 2025: the 6th is a Monday, the 11th/12th a weekend, the 13th a holiday.
func jan(day, hour, minute int) time.Time {
	return time.Date(2025, 1, day, hour, minute, 0, 0, time.UTC)
}

var (
	self    = employee.Actor{UserID: "u-1", EmployeeID: "emp-1"}
	other   = employee.Actor{UserID: "u-2", EmployeeID: "emp-2"}
	manager = employee.Actor{UserID: "u-9", EmployeeID: "emp-9", Privileged: true}
)

type fixture struct {
	store *memory.Store
	clock *clock.FakeClock
	svc   attendance.AttendanceService
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	clk := clock.Fake(now)
	store := memory.NewStore(memory.WithNow(clk.Now), memory.WithLockTimeout(2*time.Second))
	store.AddEmployee(employee.Employee{ID: "emp-1", FullName: "Ayu Lestari", JoiningDate: jan(6, 0, 0)})
	store.AddEmployee(employee.Employee{ID: "emp-2", FullName: "Budi Santoso", JoiningDate: jan(1, 0, 0)})
	store.AddHoliday(calendar.Holiday{ID: "h-1", Date: jan(11, 0, 0), Name: "Saturday Festival", IsActive: true})
	store.AddHoliday(calendar.Holiday{ID: "h-2", Date: jan(13, 0, 0), Name: "Founders Day", IsActive: true})

	classifier := calsvc.NewClassifier(store.Holidays(), store.Employees())
	svc := NewAttendanceService(store, store, store.Attendance(), store.Employees(), store.Leaves(), classifier, clk, attendance.DefaultPolicy())

	return &fixture{store: store, clock: clk, svc: svc}
}

func (f *fixture) record(t *testing.T, employeeID string, date time.Time) attendance.AttendanceRecord {
	t.Helper()
	rec, err := f.store.Attendance().GetByEmployeeAndDate(context.Background(), employeeID, date)
	require.NoError(t, err)
	require.NotNil(t, rec)
	return *rec
}

func requireCode(t *testing.T, err error, code apperror.Code) {
	t.Helper()
	require.Error(t, err)
	got, ok := apperror.CodeOf(err)
	require.True(t, ok, "expected an apperror, got %v", err)
	require.Equal(t, code, got, err.Error())
}

func ptr[T any](v T) *T {
	return &v
}
