package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
	"github.com/google/uuid"
)

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func dayKey(employeeID string, date time.Time) string {
	return employeeID + "|" + calendar.Day(date).Format(calendar.DateLayout)
}

type attendanceRepository struct {
	s *Store
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.AttendanceRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.attendance[id]
	if !ok {
		return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
	}
	return rec, nil
}

func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.AttendanceRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.attendanceKey[dayKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	rec := r.s.attendance[id]
	return &rec, nil
}

func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.AttendanceRecord, error) {
	from, to = calendar.Day(from), calendar.Day(to)
	return r.list(func(rec attendance.AttendanceRecord) bool {
		return rec.EmployeeID == employeeID && !rec.Date.Before(from) && !rec.Date.After(to)
	}), nil
}

func (r *attendanceRepository) ListByDate(ctx context.Context, date time.Time) ([]attendance.AttendanceRecord, error) {
	date = calendar.Day(date)
	return r.list(func(rec attendance.AttendanceRecord) bool {
		return rec.Date.Equal(date)
	}), nil
}

func (r *attendanceRepository) ListByLeaveRecord(ctx context.Context, leaveRecordID string) ([]attendance.AttendanceRecord, error) {
	return r.list(func(rec attendance.AttendanceRecord) bool {
		return rec.LeaveRecordID != nil && *rec.LeaveRecordID == leaveRecordID
	}), nil
}

func (r *attendanceRepository) list(match func(attendance.AttendanceRecord) bool) []attendance.AttendanceRecord {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []attendance.AttendanceRecord
	for _, rec := range r.s.attendance {
		if match(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func (r *attendanceRepository) Save(ctx context.Context, rec attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	rec.Date = calendar.Day(rec.Date)
	key := dayKey(rec.EmployeeID, rec.Date)

	if id, ok := r.s.attendanceKey[key]; ok {
		prev := r.s.attendance[id]
		rec.ID = id
		rec.CreatedAt = prev.CreatedAt
		rec.CreatedBy = prev.CreatedBy
		rec.UpdatedAt = now
		r.s.attendance[id] = rec
		r.s.onRollback(ctx, func() { r.s.attendance[id] = prev })
		return rec, nil
	}

	if rec.ID == "" {
		rec.ID = newID()
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now
	r.s.attendance[rec.ID] = rec
	r.s.attendanceKey[key] = rec.ID
	id := rec.ID
	r.s.onRollback(ctx, func() {
		delete(r.s.attendance, id)
		delete(r.s.attendanceKey, key)
	})
	return rec, nil
}

func (r *attendanceRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.attendance[id]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	key := dayKey(prev.EmployeeID, prev.Date)
	delete(r.s.attendance, id)
	delete(r.s.attendanceKey, key)
	r.s.onRollback(ctx, func() {
		r.s.attendance[id] = prev
		r.s.attendanceKey[key] = id
	})
	return nil
}
