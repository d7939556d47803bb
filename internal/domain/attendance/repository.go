package attendance

import (
	"context"
	"time"
)

// AttendanceRepository persists attendance rows. Dates are civil dates at midnight UTC.
type AttendanceRepository interface {
	// GetByID returns ErrAttendanceNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (AttendanceRecord, error)

	// GetByEmployeeAndDate returns nil, nil when the employee has no row for the date.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*AttendanceRecord, error)

	// ListByEmployee returns rows in [from, to] ordered by date.
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]AttendanceRecord, error)

	ListByDate(ctx context.Context, date time.Time) ([]AttendanceRecord, error)

	// ListByLeaveRecord returns the rows stamped with the leave.
	ListByLeaveRecord(ctx context.Context, leaveRecordID string) ([]AttendanceRecord, error)

	// Save inserts rec, or updates the existing row of (employee, date). The ID is
	// assigned on insert and the stored row is returned.
	Save(ctx context.Context, rec AttendanceRecord) (AttendanceRecord, error)

	Delete(ctx context.Context, id string) error
}
