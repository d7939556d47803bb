package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
)

type AttendanceService interface {
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	SubmitTimesheet(ctx context.Context, req SubmitTimesheetRequest) (TimesheetResponse, error)
	ApproveOrRejectTimesheet(ctx context.Context, req TimesheetDecisionRequest) (TimesheetResponse, error)
	DeleteTimesheet(ctx context.Context, req DeleteTimesheetRequest) error

	GetAttendance(ctx context.Context, id string, actor employee.Actor) (AttendanceResponse, error)
	GetMonthlySummary(ctx context.Context, req MonthlySummaryRequest) (MonthlySummary, error)

	// ReclassifyDate recomputes every stored row of date and returns how many changed.
	ReclassifyDate(ctx context.Context, date time.Time) (int, error)
}
