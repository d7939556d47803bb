// Package memory is an in-process implementation of the timekeeping repositories.
// Writes are visible to other goroutines before commit; isolation between
// concurrent mutations comes from the keyed locks the services take.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
)

const defaultLockTimeout = 5 * time.Second

type Store struct {
	mu sync.RWMutex

	attendance map[string]attendance.AttendanceRecord
	// attendanceKey maps employee|date to a record id.
	attendanceKey map[string]string
	leaves        map[string]leave.LeaveRecord
	balances      map[string]leave.LeaveBalance
	employees     map[string]employee.Employee
	holidays      []calendar.Holiday
	quotas        map[string]leave.QuotaAllocation

	locks       *keyedLocks
	lockTimeout time.Duration
	now         func() time.Time
}

type Option func(*Store)

func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// WithNow sets the clock used for created/updated timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		attendance:    make(map[string]attendance.AttendanceRecord),
		attendanceKey: make(map[string]string),
		leaves:        make(map[string]leave.LeaveRecord),
		balances:      make(map[string]leave.LeaveBalance),
		employees:     make(map[string]employee.Employee),
		quotas:        make(map[string]leave.QuotaAllocation),
		locks:         newKeyedLocks(),
		lockTimeout:   defaultLockTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ========================================
// TRANSACTIONS
// ========================================

type txKey struct{}

type txState struct {
	undo []func()
	held []string
}

func txFrom(ctx context.Context) *txState {
	tx, _ := ctx.Value(txKey{}).(*txState)
	return tx
}

// WithinTransaction runs fn as one unit of work. A failed or panicking fn has
// its writes undone and its locks released. A lock timeout is retried once and
// then reported as database.ErrBusy.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	err := s.run(ctx, fn)
	if errors.Is(err, database.ErrLockTimeout) {
		slog.Warn("lock wait timed out, retrying transaction", "error", err)
		err = s.run(ctx, fn)
		if errors.Is(err, database.ErrLockTimeout) {
			return fmt.Errorf("%w: %v", database.ErrBusy, err)
		}
	}
	return err
}

func (s *Store) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx := &txState{}
	committed := false
	defer func() {
		if !committed {
			for i := len(tx.undo) - 1; i >= 0; i-- {
				tx.undo[i]()
			}
		}
		for i := len(tx.held) - 1; i >= 0; i-- {
			s.locks.release(tx.held[i])
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	committed = true
	return nil
}

// Lock acquires keys for the lifetime of the enclosing transaction. Keys the
// transaction already holds are skipped.
func (s *Store) Lock(ctx context.Context, keys ...string) error {
	tx := txFrom(ctx)
	if tx == nil {
		return database.ErrNoTransaction
	}
	for _, key := range keys {
		if tx.holds(key) {
			continue
		}
		if err := s.locks.acquire(ctx, key, s.lockTimeout); err != nil {
			return fmt.Errorf("lock %s: %w", key, err)
		}
		tx.held = append(tx.held, key)
	}
	return nil
}

func (tx *txState) holds(key string) bool {
	for _, k := range tx.held {
		if k == key {
			return true
		}
	}
	return false
}

// onRollback registers undo when ctx carries a transaction. Callers hold s.mu.
func (s *Store) onRollback(ctx context.Context, undo func()) {
	if tx := txFrom(ctx); tx != nil {
		tx.undo = append(tx.undo, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			undo()
		})
	}
}

type keyedLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{slots: make(map[string]chan struct{})}
}

func (k *keyedLocks) slot(key string) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()
	ch, ok := k.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		k.slots[key] = ch
	}
	return ch
}

func (k *keyedLocks) acquire(ctx context.Context, key string, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case k.slot(key) <- struct{}{}:
		return nil
	case <-timer.C:
		return database.ErrLockTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (k *keyedLocks) release(key string) {
	<-k.slot(key)
}

// ========================================
// SEEDING
// ========================================

func (s *Store) AddEmployee(e employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
}

func (s *Store) AddHoliday(h calendar.Holiday) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.Date = calendar.Day(h.Date)
	s.holidays = append(s.holidays, h)
}

// SetQuota configures the allocation for an employee, or the default for every
// employee when employeeID is empty.
func (s *Store) SetQuota(employeeID string, q leave.QuotaAllocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotas[quotaKey(employeeID, q.LeaveType, q.Year)] = q
}

// PutBalance stores b as-is, replacing any row for the same key.
func (s *Store) PutBalance(b leave.LeaveBalance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = newID()
	}
	s.balances[balanceKey(b.EmployeeID, b.LeaveType, b.Year)] = b
}

// ========================================
// REPOSITORY VIEWS
// ========================================

func (s *Store) Attendance() attendance.AttendanceRepository { return &attendanceRepository{s} }
func (s *Store) Leaves() leave.LeaveRecordRepository        { return &leaveRecordRepository{s} }
func (s *Store) Balances() leave.LeaveBalanceRepository     { return &leaveBalanceRepository{s} }
func (s *Store) Quotas() leave.QuotaProvider                { return &quotaProvider{s} }
func (s *Store) Employees() employee.EmployeeRepository     { return &employeeRepository{s} }
func (s *Store) Holidays() calendar.HolidayRepository       { return &holidayRepository{s} }
