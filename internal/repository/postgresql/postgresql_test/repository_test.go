package postgresql_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-timekeeping/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(day int) time.Time {
	return time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC)
}

func at(day, hour, minute int) *time.Time {
	t := time.Date(2025, 1, day, hour, minute, 0, 0, time.UTC)
	return &t
}

func seedEmployee(t *testing.T, setup *TestDatabaseSetup, id string, privileged bool) {
	t.Helper()
	_, err := setup.DB.Exec(context.Background(), `
		INSERT INTO employees (id, full_name, joining_date, is_privileged)
		VALUES ($1, 'Test Employee', '2025-01-01', $2)
	`, id, privileged)
	require.NoError(t, err)
}

func TestAttendanceSaveUpsertsByEmployeeAndDate(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)

	note := "morning shift"
	first, err := repo.Save(ctx, attendance.AttendanceRecord{
		EmployeeID:       "emp-1",
		Date:             date(6),
		OfficeIn:         at(6, 9, 5),
		ScheduledSeconds: attendance.DefaultScheduledSeconds,
		ExtraStatus:      attendance.ExtraNone,
		DayType:          attendance.DayTypeWorkingDay,
		EntrySource:      attendance.EntrySourcePunch,
		Note:             &note,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	first.OfficeOut = at(6, 18, 10)
	first.TotalWorkedSeconds = 32700
	first.ExtraSeconds = 300
	first.ExtraStatus = attendance.ExtraOvertime
	second, err := repo.Save(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, attendance.ExtraOvertime, second.ExtraStatus)
	require.NotNil(t, second.OfficeOut)
	assert.True(t, second.OfficeOut.Equal(*at(6, 18, 10)))

	got, err := repo.GetByEmployeeAndDate(ctx, "emp-1", date(6))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 32700, got.TotalWorkedSeconds)
	require.NotNil(t, got.Note)
	assert.Equal(t, note, *got.Note)

	missing, err := repo.GetByEmployeeAndDate(ctx, "emp-1", date(7))
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.GetByID(ctx, "no-such-id")
	assert.True(t, errors.Is(err, attendance.ErrAttendanceNotFound))

	list, err := repo.ListByEmployee(ctx, "emp-1", date(1), date(31))
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	tx := postgresql.NewTxManager(setup.DB, time.Second)
	repo := postgresql.NewAttendanceRepository(setup.DB)

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := tx.Lock(ctx, attendance.LockKey("emp-1", date(6))); err != nil {
			return err
		}
		_, err := repo.Save(ctx, attendance.AttendanceRecord{
			EmployeeID:  "emp-1",
			Date:        date(6),
			ExtraStatus: attendance.ExtraNone,
			DayType:     attendance.DayTypeWorkingDay,
			EntrySource: attendance.EntrySourcePunch,
		})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.GetByEmployeeAndDate(ctx, "emp-1", date(6))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLockTimeoutBecomesBusy(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	tx := postgresql.NewTxManager(setup.DB, 200*time.Millisecond)
	key := leave.BalanceLockKey("emp-1", leave.TypeCasual, 2025)

	held := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := tx.Lock(ctx, key); err != nil {
				return err
			}
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return tx.Lock(ctx, key)
	})
	close(release)
	wg.Wait()

	code, ok := apperror.CodeOf(err)
	require.True(t, ok, "expected BUSY, got %v", err)
	assert.Equal(t, apperror.CodeBusy, code)
}

func TestLeaveRecordRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveRecordRepository(setup.DB)

	created, err := repo.Create(ctx, leave.LeaveRecord{
		EmployeeID: "emp-1",
		LeaveType:  leave.TypeCasual,
		FromDate:   date(14),
		ToDate:     date(17),
		NoOfDays:   decimal.RequireFromString("3.5"),
		Status:     leave.StatusPending,
		Reason:     "family",
	})
	require.NoError(t, err)
	assert.True(t, created.NoOfDays.Equal(decimal.RequireFromString("3.5")))

	overlapping, err := repo.FindOverlapping(ctx, "emp-1", date(17), date(20), leave.StatusPending, leave.StatusApproved)
	require.NoError(t, err)
	require.Len(t, overlapping, 1)

	none, err := repo.FindOverlapping(ctx, "emp-1", date(18), date(20), leave.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, none)

	decidedBy := "u-9"
	decidedAt := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	created.Status = leave.StatusApproved
	created.DecidedBy = &decidedBy
	created.DecidedAt = &decidedAt
	require.NoError(t, repo.UpdateStatus(ctx, created))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, got.Status)
	require.NotNil(t, got.DecidedBy)
	assert.Equal(t, decidedBy, *got.DecidedBy)

	pending := leave.StatusPending
	year := 2025
	list, err := repo.ListByEmployee(ctx, "emp-1", leave.LeaveFilter{Status: &pending, Year: &year})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, leave.ErrLeaveNotFound))
}

func TestLeaveBalanceRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveBalanceRepository(setup.DB)

	missing, err := repo.Get(ctx, "emp-1", leave.TypeCasual, 2025)
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := repo.Create(ctx, leave.LeaveBalance{
		EmployeeID:     "emp-1",
		LeaveType:      leave.TypeCasual,
		Year:           2025,
		TotalAllocated: decimal.RequireFromString("10"),
		RHAllocated:    2,
	})
	require.NoError(t, err)

	created.Pending = decimal.RequireFromString("4")
	created.RHPending = 1
	require.NoError(t, repo.Update(ctx, created))

	got, err := repo.Get(ctx, "emp-1", leave.TypeCasual, 2025)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Available().Equal(decimal.RequireFromString("6")))
	assert.Equal(t, 1, got.RHAvailable())

	got.Used = decimal.RequireFromString("7")
	assert.Error(t, repo.Update(ctx, *got), "the check constraint rejects an overdrawn row")

	ghost := *got
	ghost.LeaveType = leave.TypeSick
	ghost.Used = decimal.Zero
	assert.True(t, errors.Is(repo.Update(ctx, ghost), leave.ErrBalanceNotFound))
}

func TestQuotaPrefersEmployeeRow(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	quotas := postgresql.NewLeaveQuotaRepository(setup.DB)

	_, err := setup.DB.Exec(ctx, `
		INSERT INTO leave_quota_allocations (id, employee_id, leave_type, year, total_allocated, rh_allocated)
		VALUES ('q-1', NULL, 'CASUAL', 2025, 12, 2), ('q-2', 'emp-1', 'CASUAL', 2025, 15.5, 3)
	`)
	require.NoError(t, err)

	own, err := quotas.Allocation(ctx, "emp-1", leave.TypeCasual, 2025)
	require.NoError(t, err)
	require.NotNil(t, own)
	assert.True(t, own.TotalAllocated.Equal(decimal.RequireFromString("15.5")))
	assert.Equal(t, 3, own.RHAllocated)

	fallback, err := quotas.Allocation(ctx, "emp-2", leave.TypeCasual, 2025)
	require.NoError(t, err)
	require.NotNil(t, fallback)
	assert.True(t, fallback.TotalAllocated.Equal(decimal.RequireFromString("12")))

	none, err := quotas.Allocation(ctx, "emp-2", leave.TypeSick, 2025)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestEmployeeAndHolidayRepositories(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	seedEmployee(t, setup, "emp-1", true)

	_, err := setup.DB.Exec(ctx, `
		INSERT INTO holidays (id, holiday_date, name, is_restricted, is_active)
		VALUES ('h-1', '2025-01-13', 'Founders Day', FALSE, TRUE),
		       ('h-2', '2025-01-20', 'Harvest Offering', TRUE, TRUE),
		       ('h-3', '2025-01-21', 'Withdrawn', FALSE, FALSE)
	`)
	require.NoError(t, err)

	emp, err := postgresql.NewEmployeeRepository(setup.DB).GetByID(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, emp.IsPrivileged)
	assert.True(t, emp.JoiningDate.Equal(date(1)))

	holidays, err := postgresql.NewHolidayRepository(setup.DB).ListActive(ctx, date(1), date(31))
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "Founders Day", holidays[0].Name)
	assert.True(t, holidays[1].IsRestricted)
}
