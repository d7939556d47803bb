package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
)

// TimeInputs are the raw punches of one day.
type TimeInputs struct {
	OfficeIn, OfficeOut *time.Time
	HomeIn, HomeOut     *time.Time
	// Legacy pairs are only read when no location pair is present.
	LegacyIn, LegacyOut *time.Time
	ScheduledSeconds    int
}

type Aggregation struct {
	OfficeSeconds int
	HomeSeconds   int
	TotalSeconds  int
	EarliestIn    *time.Time
	LatestOut     *time.Time
	ExtraSeconds  int
	ExtraStatus   ExtraStatus
	// HasCompletePair is true when at least one location has both bounds.
	HasCompletePair bool
	HasAnyPunch     bool
}

// WorkedSeconds is max(0, out-in) truncated to whole seconds, or 0 if a bound is missing.
func WorkedSeconds(in, out *time.Time) int {
	if in == nil || out == nil {
		return 0
	}
	d := out.Sub(*in)
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}

// Aggregate computes worked time across the office and home pairs. The total is
// the sum of both locations, not the span from first in to last out.
func Aggregate(in TimeInputs) Aggregation {
	officeIn, officeOut := in.OfficeIn, in.OfficeOut
	if officeIn == nil && officeOut == nil && in.HomeIn == nil && in.HomeOut == nil {
		officeIn, officeOut = in.LegacyIn, in.LegacyOut
	}

	agg := Aggregation{
		OfficeSeconds: WorkedSeconds(officeIn, officeOut),
		HomeSeconds:   WorkedSeconds(in.HomeIn, in.HomeOut),
	}
	agg.TotalSeconds = agg.OfficeSeconds + agg.HomeSeconds
	agg.EarliestIn = earliest(officeIn, in.HomeIn)
	agg.LatestOut = latest(officeOut, in.HomeOut)
	agg.HasCompletePair = (officeIn != nil && officeOut != nil) || (in.HomeIn != nil && in.HomeOut != nil)
	agg.HasAnyPunch = officeIn != nil || officeOut != nil || in.HomeIn != nil || in.HomeOut != nil

	agg.ExtraSeconds = agg.TotalSeconds - in.ScheduledSeconds
	switch {
	case agg.ExtraSeconds > 0:
		agg.ExtraStatus = ExtraOvertime
	case agg.ExtraSeconds < 0:
		agg.ExtraStatus = ExtraUndertime
	default:
		agg.ExtraStatus = ExtraNone
	}
	return agg
}

func earliest(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return copyTime(b)
	case b == nil || !b.Before(*a):
		return copyTime(a)
	default:
		return copyTime(b)
	}
}

func latest(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return copyTime(b)
	case b == nil || !b.After(*a):
		return copyTime(a)
	default:
		return copyTime(b)
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// DayFacts is everything the resolver needs about one day.
type DayFacts struct {
	Date               time.Time
	Today              time.Time
	JoiningDate        *time.Time
	IsHoliday          bool
	OnLeave            bool
	HasAttendance      bool
	TotalWorkedSeconds int
	ScheduledSeconds   int
	HalfDayThreshold   float64
}

// ResolveDayType applies the day-type precedence; the first matching rule wins.
func ResolveDayType(f DayFacts) DayType {
	date := calendar.Day(f.Date)
	cal := calendar.Classification{
		Date:          date,
		JoiningDate:   f.JoiningDate,
		BeforeJoining: f.JoiningDate != nil && date.Before(calendar.Day(*f.JoiningDate)),
		IsWeekend:     calendar.IsWeekend(date),
		IsHoliday:     f.IsHoliday,
	}
	switch cal.Kind() {
	case calendar.KindBeforeJoining:
		return DayTypeBeforeJoining
	case calendar.KindWeekend:
		return DayTypeWeekendOff
	case calendar.KindHoliday:
		return DayTypeHoliday
	}
	if f.OnLeave {
		return DayTypeLeaveDay
	}

	threshold := f.HalfDayThreshold * float64(f.ScheduledSeconds)
	switch {
	case date.After(calendar.Day(f.Today)):
		return DayTypeWorkingDay
	case float64(f.TotalWorkedSeconds) >= threshold:
		return DayTypeWorkingDay
	case f.HasAttendance:
		return DayTypeHalfDay
	default:
		return DayTypeWorkingDay
	}
}

// CalendarFacts are the inputs to Recompute that do not live on the record.
type CalendarFacts struct {
	Today            time.Time
	JoiningDate      *time.Time
	IsHoliday        bool
	HalfDayThreshold float64
}

// Recompute returns rec with every derived field rebuilt from its punches,
// its leave linkage and cal. It does not mutate rec and is idempotent.
func Recompute(rec AttendanceRecord, cal CalendarFacts) AttendanceRecord {
	if rec.ScheduledSeconds <= 0 {
		rec.ScheduledSeconds = DefaultScheduledSeconds
	}
	rec.Date = calendar.Day(rec.Date)

	agg := Aggregate(TimeInputs{
		OfficeIn:         rec.OfficeIn,
		OfficeOut:        rec.OfficeOut,
		HomeIn:           rec.HomeIn,
		HomeOut:          rec.HomeOut,
		LegacyIn:         rec.In,
		LegacyOut:        rec.Out,
		ScheduledSeconds: rec.ScheduledSeconds,
	})

	legacyOnly := rec.OfficeIn == nil && rec.OfficeOut == nil && rec.HomeIn == nil && rec.HomeOut == nil
	if legacyOnly {
		rec.OfficeIn, rec.OfficeOut = copyTime(rec.In), copyTime(rec.Out)
	}

	rec.OfficeSecondsWorked = agg.OfficeSeconds
	rec.HomeSecondsWorked = agg.HomeSeconds
	rec.TotalWorkedSeconds = agg.TotalSeconds
	rec.ExtraSeconds = agg.ExtraSeconds
	rec.ExtraStatus = agg.ExtraStatus
	rec.In = agg.EarliestIn
	rec.Out = agg.LatestOut

	rec.DayType = ResolveDayType(DayFacts{
		Date:               rec.Date,
		Today:              cal.Today,
		JoiningDate:        cal.JoiningDate,
		IsHoliday:          cal.IsHoliday,
		OnLeave:            rec.LeaveRecordID != nil,
		HasAttendance:      agg.HasAnyPunch,
		TotalWorkedSeconds: agg.TotalSeconds,
		ScheduledSeconds:   rec.ScheduledSeconds,
		HalfDayThreshold:   cal.HalfDayThreshold,
	})

	rec.AlertFlag = false
	rec.AlertMessage = nil
	isWorkday := rec.DayType == DayTypeWorkingDay || rec.DayType == DayTypeHalfDay
	isFuture := rec.Date.After(calendar.Day(cal.Today))
	if isWorkday && !isFuture && !agg.HasCompletePair {
		msg := alertMessage(rec)
		rec.AlertFlag = true
		rec.AlertMessage = &msg
	}
	return rec
}

func alertMessage(rec AttendanceRecord) string {
	var missing []string
	for _, loc := range []Location{LocationOffice, LocationHome} {
		in, out := rec.Pair(loc)
		switch {
		case in != nil && out == nil:
			missing = append(missing, fmt.Sprintf("checked in at %s but never checked out", loc))
		case in == nil && out != nil:
			missing = append(missing, fmt.Sprintf("checked out at %s without a check-in", loc))
		}
	}
	if len(missing) == 0 {
		return "no attendance recorded"
	}
	return strings.Join(missing, "; ")
}
