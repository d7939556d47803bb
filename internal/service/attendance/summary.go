package attendance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
)

// GetMonthlySummary implements attendance.AttendanceService.
// Every day of the month is re-derived against the current date, so days
// without a stored row appear with the type and alert they would have.
func (s *AttendanceServiceImpl) GetMonthlySummary(ctx context.Context, req attendance.MonthlySummaryRequest) (attendance.MonthlySummary, error) {
	if err := req.Validate(); err != nil {
		return attendance.MonthlySummary{}, err
	}
	if !req.Actor.CanActFor(req.EmployeeID) {
		return attendance.MonthlySummary{}, attendance.ErrForbidden
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.MonthlySummary{}, err
	}

	from := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	records, err := s.AttendanceRepository.ListByEmployee(ctx, emp.ID, from, to)
	if err != nil {
		return attendance.MonthlySummary{}, fmt.Errorf("list attendance: %w", err)
	}
	byDate := make(map[time.Time]attendance.AttendanceRecord, len(records))
	for _, rec := range records {
		byDate[calendar.Day(rec.Date)] = rec
	}

	classes, err := s.classifier.ClassifyRange(ctx, emp.ID, from, to)
	if err != nil {
		return attendance.MonthlySummary{}, err
	}

	now := s.clock.Now()
	today := s.policy.Today(now)
	summary := attendance.MonthlySummary{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName,
		Month:        req.Month,
		Year:         req.Year,
		Days:         make([]attendance.DaySummary, 0, len(classes)),
	}

	for _, cal := range classes {
		rec, stored := byDate[cal.Date]
		if !stored {
			rec = attendance.AttendanceRecord{
				EmployeeID:       emp.ID,
				Date:             cal.Date,
				ScheduledSeconds: s.policy.ScheduledSeconds,
			}
		}
		rec = attendance.Recompute(rec, s.policy.Facts(now, cal))

		day := attendance.DaySummary{
			Date:               cal.Date.Format(calendar.DateLayout),
			Weekday:            cal.Date.Weekday().String(),
			DayType:            rec.DayType,
			HolidayName:        cal.HolidayName,
			In:                 rec.In,
			Out:                rec.Out,
			TotalWorkedSeconds: rec.TotalWorkedSeconds,
			ExtraSeconds:       rec.ExtraSeconds,
			ExtraStatus:        rec.ExtraStatus,
			IsWorkingFromHome:  rec.IsWorkingFromHome,
			TimesheetStatus:    rec.TimesheetStatus,
			AlertFlag:          rec.AlertFlag,
			AlertMessage:       rec.AlertMessage,
		}
		if stored {
			id := rec.ID
			day.RecordID = &id
		}
		summary.Days = append(summary.Days, day)

		accumulate(&summary.Totals, rec, stored, cal.Date.After(today))
	}

	summary.Totals.NetExtraSeconds = summary.Totals.OvertimeSeconds - summary.Totals.UndertimeSeconds
	if owed := summary.Totals.NetExtraSeconds; owed > 0 {
		summary.Compensation = attendance.Compensation{
			OwedSeconds: owed,
			OwedHours:   math.Round(float64(owed)/36) / 100,
		}
	}
	return summary, nil
}

// accumulate adds one day to the totals. Worked and extra time only count once
// settled: punches always, timesheets when approved.
func accumulate(t *attendance.MonthlyTotals, rec attendance.AttendanceRecord, stored, future bool) {
	switch rec.DayType {
	case attendance.DayTypeWorkingDay:
		t.WorkingDays++
	case attendance.DayTypeHalfDay:
		t.HalfDays++
	case attendance.DayTypeLeaveDay:
		t.LeaveDays++
	case attendance.DayTypeHoliday:
		t.Holidays++
	case attendance.DayTypeWeekendOff:
		t.WeekendDays++
	case attendance.DayTypeBeforeJoining:
		t.BeforeJoiningDays++
	}

	if rec.AlertFlag {
		t.AlertDays++
	}
	if rec.TimesheetStatus != nil && *rec.TimesheetStatus == attendance.TimesheetPending {
		t.PendingTimesheets++
	}

	if rec.CountsTowardsTotals() {
		t.WorkedSeconds += rec.TotalWorkedSeconds
	}

	isWorkday := rec.DayType == attendance.DayTypeWorkingDay || rec.DayType == attendance.DayTypeHalfDay
	if !isWorkday || future {
		return
	}
	t.ScheduledSeconds += rec.ScheduledSeconds
	if !stored || !rec.CountsTowardsTotals() {
		return
	}
	if rec.ExtraSeconds > 0 {
		t.OvertimeSeconds += rec.ExtraSeconds
	} else {
		t.UndertimeSeconds -= rec.ExtraSeconds
	}
}
