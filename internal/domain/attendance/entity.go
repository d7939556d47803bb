package attendance

import (
	"fmt"
	"time"
)

type DayType string

const (
	DayTypeBeforeJoining DayType = "BEFORE_JOINING"
	DayTypeWeekendOff    DayType = "WEEKEND_OFF"
	DayTypeHoliday       DayType = "HOLIDAY"
	DayTypeLeaveDay      DayType = "LEAVE_DAY"
	DayTypeWorkingDay    DayType = "WORKING_DAY"
	DayTypeHalfDay       DayType = "HALF_DAY"
)

type Location string

const (
	LocationOffice Location = "OFFICE"
	LocationHome   Location = "HOME"
)

func (l Location) Valid() bool {
	return l == LocationOffice || l == LocationHome
}

type EntrySource string

const (
	EntrySourcePunch     EntrySource = "PUNCH"
	EntrySourceManual    EntrySource = "MANUAL"
	EntrySourceTimesheet EntrySource = "TIMESHEET"
)

type TimesheetStatus string

const (
	TimesheetPending  TimesheetStatus = "PENDING"
	TimesheetApproved TimesheetStatus = "APPROVED"
	TimesheetRejected TimesheetStatus = "REJECTED"
)

type ExtraStatus string

const (
	ExtraOvertime  ExtraStatus = "overtime"
	ExtraUndertime ExtraStatus = "undertime"
	ExtraNone      ExtraStatus = "none"
)

// SessionState is the punch state of one location on one day.
type SessionState int

const (
	NotStarted SessionState = iota
	CheckedIn
	CheckedOut
)

// DefaultScheduledSeconds is a nine hour working day.
const DefaultScheduledSeconds = 9 * 60 * 60

// AttendanceRecord is the single attendance row of an employee for a civil date.
// In/Out and every *Seconds field, DayType, ExtraStatus and the alert are derived
// by Recompute and must not be set by hand.
type AttendanceRecord struct {
	ID         string
	EmployeeID string
	Date       time.Time

	OfficeIn  *time.Time
	OfficeOut *time.Time
	HomeIn    *time.Time
	HomeOut   *time.Time
	In        *time.Time
	Out       *time.Time

	ScheduledSeconds    int
	OfficeSecondsWorked int
	HomeSecondsWorked   int
	TotalWorkedSeconds  int
	ExtraSeconds        int
	ExtraStatus         ExtraStatus

	DayType           DayType
	IsWorkingFromHome bool
	AlertFlag         bool
	AlertMessage      *string
	EntrySource       EntrySource
	LeaveRecordID     *string
	Note              *string

	TimesheetStatus *TimesheetStatus
	TimesheetHours  *float64
	Comments        *string
	AttachmentRef   *string
	ApprovedBy      *string
	ApprovedAt      *time.Time
	AdminNotes      *string

	CreatedBy *string
	UpdatedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Pair returns the check-in and check-out of loc.
func (r AttendanceRecord) Pair(loc Location) (in, out *time.Time) {
	if loc == LocationHome {
		return r.HomeIn, r.HomeOut
	}
	return r.OfficeIn, r.OfficeOut
}

// SetPair overwrites the check-in and check-out of loc.
func (r *AttendanceRecord) SetPair(loc Location, in, out *time.Time) {
	if loc == LocationHome {
		r.HomeIn, r.HomeOut = in, out
		return
	}
	r.OfficeIn, r.OfficeOut = in, out
}

// ClearSessions drops every punch of the day.
func (r *AttendanceRecord) ClearSessions() {
	r.OfficeIn, r.OfficeOut = nil, nil
	r.HomeIn, r.HomeOut = nil, nil
	r.In, r.Out = nil, nil
}

// ClearTimesheet turns the record back into a plain punch record.
func (r *AttendanceRecord) ClearTimesheet() {
	r.TimesheetStatus = nil
	r.TimesheetHours = nil
	r.Comments = nil
	r.AttachmentRef = nil
	r.ApprovedBy, r.ApprovedAt = nil, nil
	r.AdminNotes = nil
	r.IsWorkingFromHome = false
	r.EntrySource = EntrySourcePunch
}

func (r AttendanceRecord) State(loc Location) SessionState {
	in, out := r.Pair(loc)
	switch {
	case in == nil:
		return NotStarted
	case out == nil:
		return CheckedIn
	default:
		return CheckedOut
	}
}

// HasActiveTimesheet reports whether a PENDING or APPROVED timesheet owns the day.
func (r AttendanceRecord) HasActiveTimesheet() bool {
	if r.TimesheetStatus == nil {
		return false
	}
	return *r.TimesheetStatus == TimesheetPending || *r.TimesheetStatus == TimesheetApproved
}

// CountsTowardsTotals reports whether the worked time of the record is settled:
// punch records always are, timesheet records only once approved.
func (r AttendanceRecord) CountsTowardsTotals() bool {
	return r.TimesheetStatus == nil || *r.TimesheetStatus == TimesheetApproved
}

// LockKey names the exclusive lock guarding the (employee, date) row.
func LockKey(employeeID string, date time.Time) string {
	return fmt.Sprintf("attendance:%s:%s", employeeID, date.Format("2006-01-02"))
}
