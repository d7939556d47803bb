package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
)

// Policy holds the tunable rules of the attendance workflows.
type Policy struct {
	ScheduledSeconds int
	HalfDayThreshold float64
	// WorkdayStart is the offset from local midnight at which synthesized
	// timesheet sessions begin.
	WorkdayStart time.Duration
	Location     *time.Location
}

func DefaultPolicy() Policy {
	return Policy{
		ScheduledSeconds: DefaultScheduledSeconds,
		HalfDayThreshold: 0.5,
		WorkdayStart:     9 * time.Hour,
		Location:         time.UTC,
	}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Today is the civil date of now in the policy time zone.
func (p Policy) Today(now time.Time) time.Time {
	return calendar.DayIn(now, p.location())
}

// DateOf is the civil date of t in the policy time zone.
func (p Policy) DateOf(t time.Time) time.Time {
	return calendar.DayIn(t, p.location())
}

// WorkdayStartOn is the instant the working day begins on date.
func (p Policy) WorkdayStartOn(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.location()).Add(p.WorkdayStart)
}

// Facts builds the Recompute inputs for a classified date.
func (p Policy) Facts(now time.Time, cal calendar.Classification) CalendarFacts {
	return CalendarFacts{
		Today:            p.Today(now),
		JoiningDate:      cal.JoiningDate,
		IsHoliday:        cal.IsHoliday,
		HalfDayThreshold: p.HalfDayThreshold,
	}
}
