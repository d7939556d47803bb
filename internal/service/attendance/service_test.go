package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkIn(loc attendance.Location) attendance.CheckInRequest {
	return attendance.CheckInRequest{EmployeeID: "emp-1", Location: loc, Actor: self}
}

func checkOut(loc attendance.Location) attendance.CheckOutRequest {
	return attendance.CheckOutRequest{EmployeeID: "emp-1", Location: loc, Actor: self}
}

func TestCheckInCheckOutFullDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan(15, 9, 5))

	in, err := f.svc.CheckIn(ctx, checkIn(attendance.LocationOffice))
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15", in.Date)
	assert.Equal(t, attendance.EntrySourcePunch, in.EntrySource)
	assert.True(t, in.AlertFlag, "open session on a working day")

	f.clock.Set(jan(15, 18, 10))
	out, err := f.svc.CheckOut(ctx, checkOut(attendance.LocationOffice))
	require.NoError(t, err)

	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, 32700, out.TotalWorkedSeconds)
	assert.Equal(t, 300, out.ExtraSeconds)
	assert.Equal(t, attendance.ExtraOvertime, out.ExtraStatus)
	assert.Equal(t, attendance.DayTypeWorkingDay, out.DayType)
	assert.False(t, out.AlertFlag)
	require.NotNil(t, out.In)
	assert.Equal(t, jan(15, 9, 5), *out.In)
	assert.Equal(t, jan(15, 18, 10), *out.Out)
}

func TestCheckInCheckOutStateMachine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan(15, 9, 0))

	_, err := f.svc.CheckOut(ctx, checkOut(attendance.LocationOffice))
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	_, err = f.svc.CheckIn(ctx, checkIn(attendance.LocationOffice))
	require.NoError(t, err)

	_, err = f.svc.CheckIn(ctx, checkIn(attendance.LocationOffice))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	f.clock.Advance(3 * time.Hour)
	_, err = f.svc.CheckOut(ctx, checkOut(attendance.LocationOffice))
	require.NoError(t, err)

	_, err = f.svc.CheckIn(ctx, checkIn(attendance.LocationOffice))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
	_, err = f.svc.CheckOut(ctx, checkOut(attendance.LocationOffice))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	// Home is an independent session on the same record.
	f.clock.Advance(time.Hour)
	_, err = f.svc.CheckIn(ctx, checkIn(attendance.LocationHome))
	require.NoError(t, err)
	f.clock.Advance(2 * time.Hour)
	res, err := f.svc.CheckOut(ctx, checkOut(attendance.LocationHome))
	require.NoError(t, err)

	assert.Equal(t, 3*3600, res.OfficeSecondsWorked)
	assert.Equal(t, 2*3600, res.HomeSecondsWorked)
	assert.Equal(t, 5*3600, res.TotalWorkedSeconds)
	assert.True(t, res.IsWorkingFromHome)
	assert.Equal(t, attendance.DayTypeWorkingDay, res.DayType)
}

func TestCheckOutInvalidOrdering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan(15, 9, 0))

	_, err := f.svc.CheckIn(ctx, checkIn(attendance.LocationOffice))
	require.NoError(t, err)

	_, err = f.svc.CheckOut(ctx, checkOut(attendance.LocationOffice))
	assert.ErrorIs(t, err, attendance.ErrInvalidOrdering)

	rec := f.record(t, "emp-1", jan(15, 0, 0))
	assert.Nil(t, rec.OfficeOut, "failed check-out leaves the session open")
}

func TestCheckInPolicyViolations(t *testing.T) {
	ctx := context.Background()

	t.Run("weekend", func(t *testing.T) {
		f := newFixture(t, jan(12, 9, 0))
		_, err := f.svc.CheckIn(ctx, checkIn(attendance.LocationOffice))
		assert.ErrorIs(t, err, attendance.ErrWeekend)
		requireCode(t, err, apperror.CodePolicyViolation)
	})

	t.Run("holiday", func(t *testing.T) {
		f := newFixture(t, jan(13, 9, 0))
		_, err := f.svc.CheckIn(ctx, checkIn(attendance.LocationOffice))
		assert.ErrorIs(t, err, attendance.ErrHoliday)
	})

	t.Run("before joining", func(t *testing.T) {
		f := newFixture(t, jan(3, 9, 0))
		_, err := f.svc.CheckIn(ctx, checkIn(attendance.LocationOffice))
		assert.ErrorIs(t, err, attendance.ErrBeforeJoining)
	})

	t.Run("approved leave", func(t *testing.T) {
		f := newFixture(t, jan(15, 9, 0))
		_, err := f.store.Leaves().Create(ctx, leave.LeaveRecord{
			EmployeeID: "emp-1",
			LeaveType:  leave.TypeCasual,
			FromDate:   jan(14, 0, 0),
			ToDate:     jan(16, 0, 0),
			NoOfDays:   decimal.NewFromInt(3),
			Status:     leave.StatusApproved,
		})
		require.NoError(t, err)

		_, err = f.svc.CheckIn(ctx, checkIn(attendance.LocationOffice))
		assert.ErrorIs(t, err, attendance.ErrOnLeave)

		recs, err := f.store.Attendance().ListByDate(ctx, jan(15, 0, 0))
		require.NoError(t, err)
		assert.Empty(t, recs, "rejected check-in stores nothing")
	})

	t.Run("approved timesheet", func(t *testing.T) {
		f := newFixture(t, jan(15, 9, 0))
		_, err := f.svc.SubmitTimesheet(ctx, attendance.SubmitTimesheetRequest{
			EmployeeID: "emp-1", Date: "2025-01-15", TotalHours: 8, Actor: self,
		})
		require.NoError(t, err)

		_, err = f.svc.CheckIn(ctx, checkIn(attendance.LocationOffice))
		assert.ErrorIs(t, err, attendance.ErrTimesheetOwned)
	})
}

func TestCheckInForbiddenForOtherEmployee(t *testing.T) {
	f := newFixture(t, jan(15, 9, 0))
	req := checkIn(attendance.LocationOffice)
	req.Actor = other

	_, err := f.svc.CheckIn(context.Background(), req)
	assert.ErrorIs(t, err, attendance.ErrForbidden)
}

func TestConcurrentCheckIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan(15, 9, 0))

	const workers = 10
	var (
		wg   sync.WaitGroup
		errs = make([]error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CheckIn(ctx, checkIn(attendance.LocationOffice))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	}
	assert.Equal(t, 1, succeeded)

	recs, err := f.store.Attendance().ListByDate(ctx, jan(15, 0, 0))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRetroactiveWorkFromHome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan(15, 10, 0))

	req := attendance.CheckInRequest{
		EmployeeID: "emp-1",
		Date:       ptr("2025-01-14"),
		IsWFH:      true,
		WFHIn:      ptr("2025-01-14T09:00:00Z"),
		WFHOut:     ptr("2025-01-14T17:30:00Z"),
		Note:       ptr("forgot to punch while at home"),
		Actor:      self,
	}

	res, err := f.svc.CheckIn(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-14", res.Date)
	assert.Equal(t, attendance.EntrySourceManual, res.EntrySource)
	assert.True(t, res.IsWorkingFromHome)
	assert.Equal(t, 30600, res.HomeSecondsWorked)
	assert.Equal(t, attendance.DayTypeWorkingDay, res.DayType)
	assert.False(t, res.AlertFlag)

	_, err = f.svc.CheckIn(ctx, req)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestRetroactiveWorkFromHomeValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan(15, 10, 0))

	base := func() attendance.CheckInRequest {
		return attendance.CheckInRequest{
			EmployeeID: "emp-1",
			IsWFH:      true,
			WFHIn:      ptr("2025-01-14T09:00:00Z"),
			WFHOut:     ptr("2025-01-14T17:00:00Z"),
			Note:       ptr("offsite"),
			Actor:      self,
		}
	}

	noNote := base()
	noNote.Note = nil
	_, err := f.svc.CheckIn(ctx, noNote)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "note")

	reversed := base()
	reversed.WFHOut = ptr("2025-01-14T08:00:00Z")
	_, err = f.svc.CheckIn(ctx, reversed)
	assert.ErrorIs(t, err, attendance.ErrInvalidOrdering)

	wrongDate := base()
	wrongDate.Date = ptr("2025-01-10")
	_, err = f.svc.CheckIn(ctx, wrongDate)
	require.ErrorAs(t, err, &verrs)

	future := base()
	future.WFHIn = ptr("2025-01-16T09:00:00Z")
	future.WFHOut = nil
	_, err = f.svc.CheckIn(ctx, future)
	require.ErrorAs(t, err, &verrs)

	pastOffice := checkIn(attendance.LocationOffice)
	pastOffice.Date = ptr("2025-01-14")
	_, err = f.svc.CheckIn(ctx, pastOffice)
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "date")
}

func TestRetroactiveWorkFromHomeOutBounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan(15, 12, 0))

	tests := []struct {
		name   string
		wfhIn  string
		wfhOut string
		date   time.Time
	}{
		{"out in the future", "2025-01-15T08:00:00Z", "2025-01-15T17:00:00Z", jan(15, 0, 0)},
		{"out days later", "2025-01-14T09:00:00Z", "2025-01-20T09:00:00Z", jan(14, 0, 0)},
		{"out on the next day", "2025-01-13T09:00:00Z", "2025-01-14T09:00:00Z", jan(13, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CheckIn(ctx, attendance.CheckInRequest{
				EmployeeID: "emp-1",
				IsWFH:      true,
				WFHIn:      ptr(tt.wfhIn),
				WFHOut:     ptr(tt.wfhOut),
				Note:       ptr("offsite"),
				Actor:      self,
			})
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.ToMap(), "wfh_out")

			rec, err := f.store.Attendance().GetByEmployeeAndDate(ctx, "emp-1", tt.date)
			require.NoError(t, err)
			assert.Nil(t, rec, "nothing is stored for a rejected entry")
		})
	}
}

func TestCheckOutOfPreviousDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan(14, 22, 0))

	_, err := f.svc.CheckIn(ctx, checkIn(attendance.LocationOffice))
	require.NoError(t, err)

	f.clock.Set(jan(15, 1, 30))
	req := checkOut(attendance.LocationOffice)
	req.Date = ptr("2025-01-14")
	res, err := f.svc.CheckOut(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-14", res.Date)
	assert.Equal(t, 3*3600+1800, res.TotalWorkedSeconds)
}

func TestGetAttendance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan(15, 9, 0))

	created, err := f.svc.CheckIn(ctx, checkIn(attendance.LocationOffice))
	require.NoError(t, err)

	got, err := f.svc.GetAttendance(ctx, created.ID, self)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = f.svc.GetAttendance(ctx, created.ID, other)
	assert.ErrorIs(t, err, attendance.ErrForbidden)

	_, err = f.svc.GetAttendance(ctx, "missing", manager)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestReclassifyDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan(14, 9, 0))

	_, err := f.svc.CheckIn(ctx, checkIn(attendance.LocationOffice))
	require.NoError(t, err)
	assert.Equal(t, attendance.DayTypeHalfDay, f.record(t, "emp-1", jan(14, 0, 0)).DayType)

	// A holiday declared after the fact reclassifies the stored row.
	f.store.AddHoliday(calendar.Holiday{ID: "h-3", Date: jan(14, 0, 0), Name: "Emergency Closure", IsActive: true})
	f.clock.Set(jan(15, 0, 5))

	changed, err := f.svc.ReclassifyDate(ctx, jan(14, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	rec := f.record(t, "emp-1", jan(14, 0, 0))
	assert.Equal(t, attendance.DayTypeHoliday, rec.DayType)
	assert.False(t, rec.AlertFlag)

	changed, err = f.svc.ReclassifyDate(ctx, jan(14, 0, 0))
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestCheckInCalendarPolicyPrecedence(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want error
	}{
		{"before joining", jan(3, 9, 0), attendance.ErrBeforeJoining},
		{"weekend wins over a Saturday holiday", jan(11, 9, 0), attendance.ErrWeekend},
		{"plain weekend", jan(12, 9, 0), attendance.ErrWeekend},
		{"weekday holiday", jan(13, 9, 0), attendance.ErrHoliday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.now)
			_, err := f.svc.CheckIn(context.Background(), checkIn(attendance.LocationOffice))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
