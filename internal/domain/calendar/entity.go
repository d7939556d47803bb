package calendar

import (
	"time"
)

type Holiday struct {
	ID           string
	Date         time.Time
	Name         string
	IsRestricted bool
	IsActive     bool
}

// Kind is the coarse calendar class of a date for one employee.
type Kind string

const (
	KindBeforeJoining Kind = "BEFORE_JOINING"
	KindWeekend       Kind = "WEEKEND"
	KindHoliday       Kind = "HOLIDAY"
	KindRegular       Kind = "REGULAR"
)

// Classification holds the calendar facts for one (employee, date).
// More than one flag can be true; Kind applies the precedence.
type Classification struct {
	Date          time.Time
	JoiningDate   *time.Time
	BeforeJoining bool
	IsWeekend     bool
	IsHoliday     bool
	HolidayName   *string
}

func (c Classification) Kind() Kind {
	switch {
	case c.BeforeJoining:
		return KindBeforeJoining
	case c.IsWeekend:
		return KindWeekend
	case c.IsHoliday:
		return KindHoliday
	default:
		return KindRegular
	}
}

// Day truncates t to its civil date in t's location and returns it as midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayIn returns the civil date of t as observed in loc.
func DayIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Day(t.In(loc))
}

func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Dates lists every civil date in [from, to].
func Dates(from, to time.Time) []time.Time {
	from, to = Day(from), Day(to)
	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

const DateLayout = "2006-01-02"

func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}
