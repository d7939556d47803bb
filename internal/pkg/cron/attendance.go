package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
)

type AttendanceJobs struct {
	attendanceSvc attendance.AttendanceService
	clock         clock.Clock
	policy        attendance.Policy

	mu       sync.Mutex
	lastDone time.Time
}

func NewAttendanceJobs(attendanceSvc attendance.AttendanceService, clk clock.Clock, policy attendance.Policy) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		clock:         clk,
		policy:        policy,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("reclassify_previous_day", 1*time.Hour, j.ReclassifyPreviousDay)
}

// ReclassifyPreviousDay recomputes yesterday's rows once per day so sessions
// left open and calendar changes made after the fact show up in day types and
// alerts.
func (j *AttendanceJobs) ReclassifyPreviousDay(ctx context.Context) error {
	yesterday := j.policy.Today(j.clock.Now()).AddDate(0, 0, -1)

	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.lastDone.Before(yesterday) {
		return nil
	}

	slog.Info("Cron: Starting attendance reclassification", "date", yesterday.Format(calendar.DateLayout))

	changed, err := j.attendanceSvc.ReclassifyDate(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("reclassify %s: %w", yesterday.Format(calendar.DateLayout), err)
	}
	j.lastDone = yesterday

	slog.Info("Cron: Reclassified attendance", "date", yesterday.Format(calendar.DateLayout), "updated", changed)
	return nil
}
