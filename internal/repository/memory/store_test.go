package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jan15 = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func TestSaveUpsertsByEmployeeAndDate(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Attendance()

	first, err := repo.Save(ctx, attendance.AttendanceRecord{EmployeeID: "emp-1", Date: jan15.Add(10 * time.Hour)})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	assert.Equal(t, jan15, first.Date)

	note := "updated"
	second, err := repo.Save(ctx, attendance.AttendanceRecord{EmployeeID: "emp-1", Date: jan15, Note: &note})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := repo.GetByEmployeeAndDate(ctx, "emp-1", jan15)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "updated", *got.Note)

	missing, err := repo.GetByEmployeeAndDate(ctx, "emp-2", jan15)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.PutBalance(leave.LeaveBalance{EmployeeID: "emp-1", LeaveType: leave.TypeCasual, Year: 2025, TotalAllocated: decimal.NewFromInt(10)})
	boom := errors.New("boom")

	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.Attendance().Save(ctx, attendance.AttendanceRecord{EmployeeID: "emp-1", Date: jan15}); err != nil {
			return err
		}
		b, err := s.Balances().Get(ctx, "emp-1", leave.TypeCasual, 2025)
		if err != nil {
			return err
		}
		b.Pending = decimal.NewFromInt(4)
		if err := s.Balances().Update(ctx, *b); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rec, err := s.Attendance().GetByEmployeeAndDate(ctx, "emp-1", jan15)
	require.NoError(t, err)
	assert.Nil(t, rec)

	b, err := s.Balances().Get(ctx, "emp-1", leave.TypeCasual, 2025)
	require.NoError(t, err)
	assert.True(t, b.Pending.IsZero())
}

func TestTransactionRollsBackAndReleasesOnPanic(t *testing.T) {
	ctx := context.Background()
	s := NewStore(WithLockTimeout(50 * time.Millisecond))

	assert.Panics(t, func() {
		_ = s.WithinTransaction(ctx, func(ctx context.Context) error {
			require.NoError(t, s.Lock(ctx, "k"))
			_, _ = s.Attendance().Save(ctx, attendance.AttendanceRecord{EmployeeID: "emp-1", Date: jan15})
			panic("boom")
		})
	})

	recs, _ := s.Attendance().ListByDate(ctx, jan15)
	assert.Empty(t, recs)

	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.Lock(ctx, "k")
	})
	assert.NoError(t, err, "lock released after panic")
}

func TestLockTimeoutBecomesBusy(t *testing.T) {
	ctx := context.Background()
	s := NewStore(WithLockTimeout(20 * time.Millisecond))

	holding := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = s.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.Lock(ctx, "balance:emp-1:CASUAL:2025"); err != nil {
				return err
			}
			close(holding)
			<-done
			return nil
		})
	}()
	<-holding

	attempts := 0
	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		attempts++
		return s.Lock(ctx, "balance:emp-1:CASUAL:2025")
	})
	close(done)

	assert.ErrorIs(t, err, database.ErrBusy)
	assert.Equal(t, 2, attempts, "retried once before giving up")
}

func TestLockSerializesTransactions(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithinTransaction(ctx, func(ctx context.Context) error {
				if err := s.Lock(ctx, "same"); err != nil {
					return err
				}
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestNestedTransactionJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := NewStore(WithLockTimeout(20 * time.Millisecond))
	boom := errors.New("boom")

	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Lock(ctx, "k"))
		inner := s.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.Lock(ctx, "k"); err != nil {
				return err
			}
			_, err := s.Attendance().Save(ctx, attendance.AttendanceRecord{EmployeeID: "emp-1", Date: jan15})
			return err
		})
		require.NoError(t, inner)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	recs, _ := s.Attendance().ListByDate(ctx, jan15)
	assert.Empty(t, recs, "inner writes roll back with the outer transaction")
}

func TestLockOutsideTransaction(t *testing.T) {
	err := NewStore().Lock(context.Background(), "k")
	assert.ErrorIs(t, err, database.ErrNoTransaction)
}

func TestFindOverlapping(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Leaves()

	mk := func(from, to int, status leave.LeaveStatus) {
		_, err := repo.Create(ctx, leave.LeaveRecord{
			EmployeeID: "emp-1",
			LeaveType:  leave.TypeCasual,
			FromDate:   time.Date(2025, 1, from, 0, 0, 0, 0, time.UTC),
			ToDate:     time.Date(2025, 1, to, 0, 0, 0, 0, time.UTC),
			NoOfDays:   decimal.NewFromInt(int64(to - from + 1)),
			Status:     status,
		})
		require.NoError(t, err)
	}
	mk(6, 8, leave.StatusApproved)
	mk(13, 14, leave.StatusRejected)
	mk(20, 20, leave.StatusPending)

	got, err := repo.FindOverlapping(ctx, "emp-1",
		time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		leave.StatusPending, leave.StatusApproved)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, leave.StatusApproved, got[0].Status)
	assert.Equal(t, leave.StatusPending, got[1].Status)
}

func TestQuotaPrefersEmployeeSpecific(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.SetQuota("", leave.QuotaAllocation{LeaveType: leave.TypeCasual, Year: 2025, TotalAllocated: decimal.NewFromInt(12)})
	s.SetQuota("emp-2", leave.QuotaAllocation{LeaveType: leave.TypeCasual, Year: 2025, TotalAllocated: decimal.NewFromInt(15)})

	q, err := s.Quotas().Allocation(ctx, "emp-1", leave.TypeCasual, 2025)
	require.NoError(t, err)
	assert.True(t, q.TotalAllocated.Equal(decimal.NewFromInt(12)))

	q, err = s.Quotas().Allocation(ctx, "emp-2", leave.TypeCasual, 2025)
	require.NoError(t, err)
	assert.True(t, q.TotalAllocated.Equal(decimal.NewFromInt(15)))

	q, err = s.Quotas().Allocation(ctx, "emp-1", leave.TypeSick, 2025)
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestHolidaysListActive(t *testing.T) {
	s := NewStore()
	s.AddHoliday(calendar.Holiday{ID: "h1", Date: jan15, Name: "Founders Day", IsActive: true})
	s.AddHoliday(calendar.Holiday{ID: "h2", Date: jan15.AddDate(0, 0, 1), Name: "Retired", IsActive: false})

	got, err := s.Holidays().ListActive(context.Background(), jan15, jan15.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Founders Day", got[0].Name)
}
