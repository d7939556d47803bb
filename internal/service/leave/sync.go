package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
)

// leaveWorkdays lists the non-weekend dates of the leave, ascending.
func leaveWorkdays(rec leave.LeaveRecord) []time.Time {
	var days []time.Time
	for _, d := range calendar.Dates(rec.FromDate, rec.ToDate) {
		if !calendar.IsWeekend(d) {
			days = append(days, d)
		}
	}
	return days
}

// stampAttendance links every workday of an approved leave to the leave and
// recomputes the rows. The caller holds the date locks.
func (s *LeaveServiceImpl) stampAttendance(ctx context.Context, rec leave.LeaveRecord, actor employee.Actor) error {
	for _, d := range leaveWorkdays(rec) {
		row, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, rec.EmployeeID, d)
		if err != nil {
			return fmt.Errorf("load attendance: %w", err)
		}
		if row == nil {
			row = &attendance.AttendanceRecord{
				EmployeeID:       rec.EmployeeID,
				Date:             d,
				ScheduledSeconds: s.opts.Policy.ScheduledSeconds,
				EntrySource:      attendance.EntrySourceManual,
				CreatedBy:        actor.AuditID(),
			}
		}
		leaveID := rec.ID
		row.LeaveRecordID = &leaveID

		if err := s.saveRecomputed(ctx, *row, actor); err != nil {
			return err
		}
	}
	return nil
}

// unstampAttendance clears the leave linkage of a cancelled leave. Rows stay.
func (s *LeaveServiceImpl) unstampAttendance(ctx context.Context, rec leave.LeaveRecord, actor employee.Actor) error {
	rows, err := s.AttendanceRepository.ListByLeaveRecord(ctx, rec.ID)
	if err != nil {
		return fmt.Errorf("list stamped attendance: %w", err)
	}
	for _, row := range rows {
		row.LeaveRecordID = nil
		if err := s.saveRecomputed(ctx, row, actor); err != nil {
			return err
		}
	}
	return nil
}

func (s *LeaveServiceImpl) saveRecomputed(ctx context.Context, row attendance.AttendanceRecord, actor employee.Actor) error {
	cal, err := s.classifier.Classify(ctx, row.EmployeeID, row.Date)
	if err != nil {
		return err
	}
	row.UpdatedBy = actor.AuditID()
	next := attendance.Recompute(row, s.opts.Policy.Facts(s.clock.Now(), cal))
	if _, err := s.AttendanceRepository.Save(ctx, next); err != nil {
		return fmt.Errorf("save attendance: %w", err)
	}
	return nil
}
