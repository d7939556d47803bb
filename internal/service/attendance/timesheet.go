package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
)

// hoursTolerance is how far total_hours may drift from an explicit home_in/home_out span.
const hoursTolerance = time.Minute

// SubmitTimesheet implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SubmitTimesheet(ctx context.Context, req attendance.SubmitTimesheetRequest) (attendance.TimesheetResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.TimesheetResponse{}, err
	}
	if !req.Actor.CanActFor(req.EmployeeID) {
		return attendance.TimesheetResponse{}, attendance.ErrForbidden
	}
	if _, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID); err != nil {
		return attendance.TimesheetResponse{}, err
	}

	now := s.clock.Now()
	date, _ := validator.IsValidDate(req.Date)
	if date.After(s.policy.Today(now)) {
		return attendance.TimesheetResponse{}, validationError("date", "timesheets cannot be submitted for future dates")
	}

	var in, out *time.Time
	if req.HomeIn != nil {
		homeIn, _ := validator.IsValidDateTime(*req.HomeIn)
		homeOut, _ := validator.IsValidDateTime(*req.HomeOut)
		if !s.policy.DateOf(homeIn).Equal(date) {
			return attendance.TimesheetResponse{}, validationError("home_in", "home_in must fall on the timesheet date")
		}
		if homeOut.After(now) {
			return attendance.TimesheetResponse{}, validationError("home_out", "home_out cannot be in the future")
		}
		if !s.policy.DateOf(homeOut).Equal(date) {
			return attendance.TimesheetResponse{}, validationError("home_out", "home_out must fall on the timesheet date")
		}
		if !homeOut.After(homeIn) {
			return attendance.TimesheetResponse{}, attendance.ErrInvalidOrdering
		}
		if math.Abs(homeOut.Sub(homeIn).Seconds()-req.TotalHours*3600) > hoursTolerance.Seconds() {
			return attendance.TimesheetResponse{}, validationError("total_hours", "total_hours must match the span between home_in and home_out")
		}
		in, out = &homeIn, &homeOut
	} else {
		start := s.policy.WorkdayStartOn(date)
		end := start.Add(time.Duration(math.Round(req.TotalHours*3600)) * time.Second)
		in, out = &start, &end
	}

	loc := attendance.LocationOffice
	if req.IsWFH {
		loc = attendance.LocationHome
	}
	autoApprove := req.Actor.Privileged || !req.IsWFH

	rec, err := s.mutateDay(ctx, req.EmployeeID, date, req.Actor, func(ctx context.Context, rec *attendance.AttendanceRecord, cal calendar.Classification) error {
		if rec.HasActiveTimesheet() {
			return attendance.ErrDuplicateSubmission
		}
		if err := s.checkCalendarPolicy(ctx, rec, cal); err != nil {
			return err
		}

		// The timesheet replaces any punches of the day.
		rec.ClearSessions()
		rec.SetPair(loc, in, out)

		hours := req.TotalHours
		rec.TimesheetHours = &hours
		rec.IsWorkingFromHome = req.IsWFH
		rec.EntrySource = attendance.EntrySourceTimesheet
		rec.Comments = req.Comments
		rec.AttachmentRef = req.AttachmentRef
		rec.AdminNotes = nil

		status := attendance.TimesheetPending
		rec.ApprovedBy, rec.ApprovedAt = nil, nil
		if autoApprove {
			status = attendance.TimesheetApproved
			approvedAt := now
			rec.ApprovedBy = req.Actor.AuditID()
			rec.ApprovedAt = &approvedAt
		}
		rec.TimesheetStatus = &status
		return nil
	})
	if err != nil {
		return attendance.TimesheetResponse{}, err
	}

	slog.Info("timesheet submitted",
		"employee_id", rec.EmployeeID,
		"date", rec.Date.Format(calendar.DateLayout),
		"is_wfh", req.IsWFH,
		"status", *rec.TimesheetStatus,
	)
	return attendance.TimesheetResponse{
		Attendance:   attendance.NewAttendanceResponse(rec),
		Status:       *rec.TimesheetStatus,
		AutoApproved: autoApprove,
	}, nil
}

// ApproveOrRejectTimesheet implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ApproveOrRejectTimesheet(ctx context.Context, req attendance.TimesheetDecisionRequest) (attendance.TimesheetResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.TimesheetResponse{}, err
	}
	if !req.Actor.Privileged {
		return attendance.TimesheetResponse{}, attendance.ErrForbidden
	}

	current, err := s.AttendanceRepository.GetByID(ctx, req.AttendanceID)
	if err != nil {
		return attendance.TimesheetResponse{}, err
	}

	status := attendance.TimesheetApproved
	if req.Action == attendance.DecisionReject {
		status = attendance.TimesheetRejected
	}

	rec, err := s.mutateDay(ctx, current.EmployeeID, current.Date, req.Actor, func(ctx context.Context, rec *attendance.AttendanceRecord, cal calendar.Classification) error {
		if rec.ID != current.ID {
			return attendance.ErrAttendanceNotFound
		}
		if rec.TimesheetStatus == nil || *rec.TimesheetStatus != attendance.TimesheetPending {
			return attendance.ErrInvalidStateTransition
		}

		decidedAt := s.clock.Now()
		rec.TimesheetStatus = &status
		rec.ApprovedBy = req.Actor.AuditID()
		rec.ApprovedAt = &decidedAt
		rec.AdminNotes = req.AdminNotes
		if status == attendance.TimesheetRejected {
			// Rejected hours are not worked time; the day goes back to needing punches.
			rec.ClearSessions()
		}
		return nil
	})
	if err != nil {
		return attendance.TimesheetResponse{}, err
	}

	slog.Info("timesheet decided",
		"attendance_id", rec.ID,
		"employee_id", rec.EmployeeID,
		"status", status,
	)
	return attendance.TimesheetResponse{
		Attendance: attendance.NewAttendanceResponse(rec),
		Status:     status,
	}, nil
}

// DeleteTimesheet implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteTimesheet(ctx context.Context, req attendance.DeleteTimesheetRequest) error {
	current, err := s.AttendanceRepository.GetByID(ctx, req.AttendanceID)
	if err != nil {
		return err
	}
	if !req.Actor.CanActFor(current.EmployeeID) {
		return attendance.ErrForbidden
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.locker.Lock(ctx, attendance.LockKey(current.EmployeeID, current.Date)); err != nil {
			return err
		}
		rec, err := s.AttendanceRepository.GetByID(ctx, current.ID)
		if err != nil {
			return err
		}
		if rec.TimesheetStatus == nil || *rec.TimesheetStatus != attendance.TimesheetRejected {
			return attendance.ErrDeletionNotAllowed
		}
		if err := s.AttendanceRepository.Delete(ctx, rec.ID); err != nil {
			return fmt.Errorf("delete attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("rejected timesheet deleted", "attendance_id", current.ID, "employee_id", current.EmployeeID)
	return nil
}
