package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	tx     database.Transactor
	locker database.Locker
	attendance.AttendanceRepository
	employee.EmployeeRepository
	leave.LeaveRecordRepository
	classifier calendar.Classifier
	clock      clock.Clock
	policy     attendance.Policy
}

func NewAttendanceService(
	tx database.Transactor,
	locker database.Locker,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	leaveRepo leave.LeaveRecordRepository,
	classifier calendar.Classifier,
	clk clock.Clock,
	policy attendance.Policy,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:                    tx,
		locker:                locker,
		AttendanceRepository:  attendanceRepo,
		EmployeeRepository:    employeeRepo,
		LeaveRecordRepository: leaveRepo,
		classifier:            classifier,
		clock:                 clk,
		policy:                policy,
	}
}

func validationError(field, message string) error {
	return validator.ValidationErrors{{Field: field, Message: message}}
}

type dayMutation func(ctx context.Context, rec *attendance.AttendanceRecord, cal calendar.Classification) error

// mutateDay loads the (employee, date) row under its lock, applies fn, then
// recomputes and saves it. A missing row starts out empty; it is only stored if
// fn succeeds.
func (s *AttendanceServiceImpl) mutateDay(ctx context.Context, employeeID string, date time.Time, actor employee.Actor, fn dayMutation) (attendance.AttendanceRecord, error) {
	var saved attendance.AttendanceRecord
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.locker.Lock(ctx, attendance.LockKey(employeeID, date)); err != nil {
			return err
		}

		cal, err := s.classifier.Classify(ctx, employeeID, date)
		if err != nil {
			return err
		}

		rec, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, date)
		if err != nil {
			return fmt.Errorf("load attendance: %w", err)
		}
		if rec == nil {
			rec = &attendance.AttendanceRecord{
				EmployeeID:       employeeID,
				Date:             date,
				ScheduledSeconds: s.policy.ScheduledSeconds,
				EntrySource:      attendance.EntrySourcePunch,
				CreatedBy:        actor.AuditID(),
			}
		}

		if err := fn(ctx, rec, cal); err != nil {
			return err
		}
		rec.UpdatedBy = actor.AuditID()

		next := attendance.Recompute(*rec, s.policy.Facts(s.clock.Now(), cal))
		saved, err = s.AttendanceRepository.Save(ctx, next)
		if err != nil {
			return fmt.Errorf("save attendance: %w", err)
		}
		return nil
	})
	return saved, err
}

// checkCalendarPolicy rejects attendance on days the employee is not expected to work.
func (s *AttendanceServiceImpl) checkCalendarPolicy(ctx context.Context, rec *attendance.AttendanceRecord, cal calendar.Classification) error {
	switch cal.Kind() {
	case calendar.KindBeforeJoining:
		return attendance.ErrBeforeJoining
	case calendar.KindWeekend:
		return attendance.ErrWeekend
	case calendar.KindHoliday:
		return attendance.ErrHoliday
	}
	if rec.LeaveRecordID != nil {
		return attendance.ErrOnLeave
	}

	leaves, err := s.LeaveRecordRepository.FindOverlapping(ctx, rec.EmployeeID, rec.Date, rec.Date, leave.StatusApproved)
	if err != nil {
		return fmt.Errorf("find approved leave: %w", err)
	}
	if len(leaves) > 0 {
		return attendance.ErrOnLeave
	}
	return nil
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !req.Actor.CanActFor(req.EmployeeID) {
		return attendance.AttendanceResponse{}, attendance.ErrForbidden
	}
	if _, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.clock.Now()
	today := s.policy.Today(now)
	loc := req.EffectiveLocation()

	var wfhIn, wfhOut *time.Time
	if req.IsRetroactive() {
		in, _ := validator.IsValidDateTime(*req.WFHIn)
		if in.After(now) {
			return attendance.AttendanceResponse{}, validationError("wfh_in", "wfh_in cannot be in the future")
		}
		wfhIn = &in
		if req.WFHOut != nil {
			out, _ := validator.IsValidDateTime(*req.WFHOut)
			if out.After(now) {
				return attendance.AttendanceResponse{}, validationError("wfh_out", "wfh_out cannot be in the future")
			}
			if !s.policy.DateOf(out).Equal(s.policy.DateOf(in)) {
				return attendance.AttendanceResponse{}, validationError("wfh_out", "wfh_out must fall on the same date as wfh_in")
			}
			wfhOut = &out
		}
	}

	date := today
	switch {
	case wfhIn != nil:
		date = s.policy.DateOf(*wfhIn)
		if req.Date != nil {
			if requested, _ := validator.IsValidDate(*req.Date); !requested.Equal(date) {
				return attendance.AttendanceResponse{}, validationError("wfh_in", "wfh_in must fall on the requested date")
			}
		}
	case req.Date != nil:
		requested, _ := validator.IsValidDate(*req.Date)
		if !requested.Equal(today) {
			return attendance.AttendanceResponse{}, validationError("date", "only retroactive work-from-home entries may check in for another date")
		}
	}

	rec, err := s.mutateDay(ctx, req.EmployeeID, date, req.Actor, func(ctx context.Context, rec *attendance.AttendanceRecord, cal calendar.Classification) error {
		if rec.HasActiveTimesheet() {
			return attendance.ErrTimesheetOwned
		}
		if err := s.checkCalendarPolicy(ctx, rec, cal); err != nil {
			return err
		}
		if rec.TimesheetStatus != nil {
			// A punch supersedes a rejected timesheet.
			rec.ClearTimesheet()
		}

		switch rec.State(loc) {
		case attendance.CheckedIn:
			return attendance.ErrAlreadyCheckedIn
		case attendance.CheckedOut:
			return attendance.ErrAlreadyCheckedOut
		}

		if wfhIn != nil {
			if wfhOut != nil && !wfhOut.After(*wfhIn) {
				return attendance.ErrInvalidOrdering
			}
			rec.SetPair(loc, wfhIn, wfhOut)
			rec.EntrySource = attendance.EntrySourceManual
		} else {
			in := now
			rec.SetPair(loc, &in, nil)
		}

		if loc == attendance.LocationHome {
			rec.IsWorkingFromHome = true
		}
		if req.Note != nil {
			rec.Note = req.Note
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("attendance check-in",
		"employee_id", rec.EmployeeID,
		"date", rec.Date.Format(calendar.DateLayout),
		"location", loc,
		"retroactive", wfhIn != nil,
		"day_type", rec.DayType,
	)
	return attendance.NewAttendanceResponse(rec), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !req.Actor.CanActFor(req.EmployeeID) {
		return attendance.AttendanceResponse{}, attendance.ErrForbidden
	}
	if _, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.clock.Now()
	date := s.policy.Today(now)
	if req.Date != nil {
		date, _ = validator.IsValidDate(*req.Date)
		if date.After(s.policy.Today(now)) {
			return attendance.AttendanceResponse{}, validationError("date", "cannot check out of a future date")
		}
	}

	rec, err := s.mutateDay(ctx, req.EmployeeID, date, req.Actor, func(ctx context.Context, rec *attendance.AttendanceRecord, cal calendar.Classification) error {
		switch rec.State(req.Location) {
		case attendance.NotStarted:
			return attendance.ErrNotCheckedIn
		case attendance.CheckedOut:
			return attendance.ErrAlreadyCheckedOut
		}

		in, _ := rec.Pair(req.Location)
		if !now.After(*in) {
			return attendance.ErrInvalidOrdering
		}
		out := now
		rec.SetPair(req.Location, in, &out)

		if req.Note != nil {
			rec.Note = req.Note
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("attendance check-out",
		"employee_id", rec.EmployeeID,
		"date", rec.Date.Format(calendar.DateLayout),
		"location", req.Location,
		"total_worked_seconds", rec.TotalWorkedSeconds,
		"extra_status", rec.ExtraStatus,
	)
	return attendance.NewAttendanceResponse(rec), nil
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string, actor employee.Actor) (attendance.AttendanceResponse, error) {
	rec, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !actor.CanActFor(rec.EmployeeID) {
		return attendance.AttendanceResponse{}, attendance.ErrForbidden
	}
	return attendance.NewAttendanceResponse(rec), nil
}

// ReclassifyDate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ReclassifyDate(ctx context.Context, date time.Time) (int, error) {
	date = calendar.Day(date)
	records, err := s.AttendanceRepository.ListByDate(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("list attendance for %s: %w", date.Format(calendar.DateLayout), err)
	}

	changed := 0
	for _, stored := range records {
		err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.locker.Lock(ctx, attendance.LockKey(stored.EmployeeID, date)); err != nil {
				return err
			}
			cal, err := s.classifier.Classify(ctx, stored.EmployeeID, date)
			if err != nil {
				return err
			}
			cur, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, stored.EmployeeID, date)
			if err != nil || cur == nil {
				return err
			}

			next := attendance.Recompute(*cur, s.policy.Facts(s.clock.Now(), cal))
			if !derivedChanged(*cur, next) {
				return nil
			}
			if _, err := s.AttendanceRepository.Save(ctx, next); err != nil {
				return fmt.Errorf("save attendance: %w", err)
			}
			changed++
			return nil
		})
		if err != nil {
			return changed, fmt.Errorf("reclassify %s for %s: %w", date.Format(calendar.DateLayout), stored.EmployeeID, err)
		}
	}
	return changed, nil
}

func derivedChanged(a, b attendance.AttendanceRecord) bool {
	return a.DayType != b.DayType ||
		a.AlertFlag != b.AlertFlag ||
		stringValue(a.AlertMessage) != stringValue(b.AlertMessage) ||
		a.TotalWorkedSeconds != b.TotalWorkedSeconds ||
		a.OfficeSecondsWorked != b.OfficeSecondsWorked ||
		a.HomeSecondsWorked != b.HomeSecondsWorked ||
		a.ExtraSeconds != b.ExtraSeconds ||
		a.ExtraStatus != b.ExtraStatus
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
