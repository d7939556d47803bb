package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
)

type leaveRecordRepository struct {
	s *Store
}

func (r *leaveRecordRepository) Create(ctx context.Context, rec leave.LeaveRecord) (leave.LeaveRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = newID()
	}
	if _, exists := r.s.leaves[rec.ID]; exists {
		return leave.LeaveRecord{}, fmt.Errorf("leave record %s already exists", rec.ID)
	}
	now := r.s.now()
	rec.FromDate, rec.ToDate = calendar.Day(rec.FromDate), calendar.Day(rec.ToDate)
	rec.CreatedAt, rec.UpdatedAt = now, now
	r.s.leaves[rec.ID] = rec

	id := rec.ID
	r.s.onRollback(ctx, func() { delete(r.s.leaves, id) })
	return rec, nil
}

func (r *leaveRecordRepository) GetByID(ctx context.Context, id string) (leave.LeaveRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.leaves[id]
	if !ok {
		return leave.LeaveRecord{}, leave.ErrLeaveNotFound
	}
	return rec, nil
}

func (r *leaveRecordRepository) UpdateStatus(ctx context.Context, rec leave.LeaveRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.leaves[rec.ID]
	if !ok {
		return leave.ErrLeaveNotFound
	}
	next := prev
	next.Status = rec.Status
	next.RejectionReason = rec.RejectionReason
	next.DecidedBy = rec.DecidedBy
	next.DecidedAt = rec.DecidedAt
	next.UpdatedAt = r.s.now()
	r.s.leaves[rec.ID] = next

	r.s.onRollback(ctx, func() { r.s.leaves[prev.ID] = prev })
	return nil
}

func (r *leaveRecordRepository) ListByEmployee(ctx context.Context, employeeID string, filter leave.LeaveFilter) ([]leave.LeaveRecord, error) {
	return r.list(func(rec leave.LeaveRecord) bool {
		if rec.EmployeeID != employeeID {
			return false
		}
		if filter.Status != nil && rec.Status != *filter.Status {
			return false
		}
		if filter.Year != nil && rec.Year() != *filter.Year {
			return false
		}
		return true
	}), nil
}

func (r *leaveRecordRepository) FindOverlapping(ctx context.Context, employeeID string, from, to time.Time, statuses ...leave.LeaveStatus) ([]leave.LeaveRecord, error) {
	from, to = calendar.Day(from), calendar.Day(to)
	return r.list(func(rec leave.LeaveRecord) bool {
		if rec.EmployeeID != employeeID || rec.FromDate.After(to) || rec.ToDate.Before(from) {
			return false
		}
		for _, st := range statuses {
			if rec.Status == st {
				return true
			}
		}
		return false
	}), nil
}

func (r *leaveRecordRepository) list(match func(leave.LeaveRecord) bool) []leave.LeaveRecord {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []leave.LeaveRecord
	for _, rec := range r.s.leaves {
		if match(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FromDate.Equal(out[j].FromDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].FromDate.Before(out[j].FromDate)
	})
	return out
}

func balanceKey(employeeID, leaveType string, year int) string {
	return fmt.Sprintf("%s|%s|%d", employeeID, leaveType, year)
}

type leaveBalanceRepository struct {
	s *Store
}

func (r *leaveBalanceRepository) Get(ctx context.Context, employeeID, leaveType string, year int) (*leave.LeaveBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.balances[balanceKey(employeeID, leaveType, year)]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *leaveBalanceRepository) Create(ctx context.Context, b leave.LeaveBalance) (leave.LeaveBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := balanceKey(b.EmployeeID, b.LeaveType, b.Year)
	if _, exists := r.s.balances[key]; exists {
		return leave.LeaveBalance{}, fmt.Errorf("leave balance %s already exists", key)
	}
	if b.ID == "" {
		b.ID = newID()
	}
	now := r.s.now()
	b.CreatedAt, b.UpdatedAt = now, now
	r.s.balances[key] = b

	r.s.onRollback(ctx, func() { delete(r.s.balances, key) })
	return b, nil
}

func (r *leaveBalanceRepository) Update(ctx context.Context, b leave.LeaveBalance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := balanceKey(b.EmployeeID, b.LeaveType, b.Year)
	prev, ok := r.s.balances[key]
	if !ok {
		return leave.ErrBalanceNotFound
	}
	b.ID = prev.ID
	b.CreatedAt = prev.CreatedAt
	b.UpdatedAt = r.s.now()
	r.s.balances[key] = b

	r.s.onRollback(ctx, func() { r.s.balances[key] = prev })
	return nil
}

func (r *leaveBalanceRepository) ListByEmployee(ctx context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []leave.LeaveBalance
	for _, b := range r.s.balances {
		if b.EmployeeID == employeeID && b.Year == year {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaveType < out[j].LeaveType })
	return out, nil
}

func quotaKey(employeeID, leaveType string, year int) string {
	return fmt.Sprintf("%s|%s|%d", employeeID, leaveType, year)
}

type quotaProvider struct {
	s *Store
}

// Allocation prefers an employee-specific quota over the default.
func (q *quotaProvider) Allocation(ctx context.Context, employeeID, leaveType string, year int) (*leave.QuotaAllocation, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()

	for _, key := range []string{quotaKey(employeeID, leaveType, year), quotaKey("", leaveType, year)} {
		if a, ok := q.s.quotas[key]; ok {
			return &a, nil
		}
	}
	return nil, nil
}
