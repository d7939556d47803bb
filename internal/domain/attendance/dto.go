package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
)

// ========================================
// CHECK-IN / CHECK-OUT
// ========================================

type CheckInRequest struct {
	EmployeeID string   `json:"employee_id"`
	Date       *string  `json:"date,omitempty"`
	Location   Location `json:"location"`
	Note       *string  `json:"note,omitempty"`
	IsWFH      bool     `json:"is_wfh"`
	// WFHIn and WFHOut make a retroactive work-from-home entry (RFC 3339).
	WFHIn  *string `json:"wfh_in,omitempty"`
	WFHOut *string `json:"wfh_out,omitempty"`

	Actor employee.Actor `json:"-"`
}

// EffectiveLocation is HOME for work-from-home requests, else the requested location.
func (r *CheckInRequest) EffectiveLocation() Location {
	if r.IsWFH {
		return LocationHome
	}
	return r.Location
}

// IsRetroactive reports whether the request carries its own timestamps.
func (r *CheckInRequest) IsRetroactive() bool {
	return r.IsWFH && r.WFHIn != nil
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if r.Date != nil {
		if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
	}

	switch {
	case r.IsWFH && r.Location == LocationOffice:
		errs.Add("location", "work-from-home entries must use location HOME")
	case !r.IsWFH && !r.Location.Valid():
		errs.Add("location", "location must be OFFICE or HOME")
	}

	if !r.IsWFH && (r.WFHIn != nil || r.WFHOut != nil) {
		errs.Add("is_wfh", "wfh_in and wfh_out require is_wfh")
	}
	if r.WFHOut != nil && r.WFHIn == nil {
		errs.Add("wfh_in", "wfh_in is required when wfh_out is given")
	}
	if r.WFHIn != nil {
		if _, ok := validator.IsValidDateTime(*r.WFHIn); !ok {
			errs.Add("wfh_in", "wfh_in must be an RFC 3339 timestamp")
		}
		if validator.IsBlank(r.Note) {
			errs.Add("note", "note is required for a retroactive work-from-home entry")
		}
	}
	if r.WFHOut != nil {
		if _, ok := validator.IsValidDateTime(*r.WFHOut); !ok {
			errs.Add("wfh_out", "wfh_out must be an RFC 3339 timestamp")
		}
	}

	return errs.Err()
}

type CheckOutRequest struct {
	EmployeeID string   `json:"employee_id"`
	Date       *string  `json:"date,omitempty"`
	Location   Location `json:"location"`
	Note       *string  `json:"note,omitempty"`

	Actor employee.Actor `json:"-"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if r.Date != nil {
		if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
	}
	if !r.Location.Valid() {
		errs.Add("location", "location must be OFFICE or HOME")
	}

	return errs.Err()
}

// ========================================
// TIMESHEETS
// ========================================

type SubmitTimesheetRequest struct {
	EmployeeID    string  `json:"employee_id"`
	Date          string  `json:"date"`
	TotalHours    float64 `json:"total_hours"`
	Comments      *string `json:"comments,omitempty"`
	IsWFH         bool    `json:"is_wfh"`
	HomeIn        *string `json:"home_in,omitempty"`
	HomeOut       *string `json:"home_out,omitempty"`
	AttachmentRef *string `json:"attachment_ref,omitempty"`

	Actor employee.Actor `json:"-"`
}

func (r *SubmitTimesheetRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if validator.IsEmpty(r.Date) {
		errs.Add("date", "date is required")
	} else if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	if r.TotalHours <= 0 || r.TotalHours > 24 {
		errs.Add("total_hours", "total_hours must be greater than 0 and at most 24")
	}

	if (r.HomeIn != nil || r.HomeOut != nil) && !r.IsWFH {
		errs.Add("is_wfh", "home_in and home_out require is_wfh")
	}
	if (r.HomeIn == nil) != (r.HomeOut == nil) {
		errs.Add("home_in", "home_in and home_out must be given together")
	}
	if r.HomeIn != nil {
		if _, ok := validator.IsValidDateTime(*r.HomeIn); !ok {
			errs.Add("home_in", "home_in must be an RFC 3339 timestamp")
		}
	}
	if r.HomeOut != nil {
		if _, ok := validator.IsValidDateTime(*r.HomeOut); !ok {
			errs.Add("home_out", "home_out must be an RFC 3339 timestamp")
		}
	}

	return errs.Err()
}

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

type TimesheetDecisionRequest struct {
	AttendanceID string  `json:"-"`
	Action       string  `json:"action"`
	AdminNotes   *string `json:"admin_notes,omitempty"`

	Actor employee.Actor `json:"-"`
}

func (r *TimesheetDecisionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AttendanceID) {
		errs.Add("id", "attendance id is required")
	}
	if !validator.IsInSlice(r.Action, []string{DecisionApprove, DecisionReject}) {
		errs.Add("action", "action must be approve or reject")
	}
	if r.Action == DecisionReject && validator.IsBlank(r.AdminNotes) {
		errs.Add("admin_notes", "admin_notes is required when rejecting")
	}

	return errs.Err()
}

type DeleteTimesheetRequest struct {
	AttendanceID string
	Actor        employee.Actor
}

// ========================================
// MONTHLY SUMMARY
// ========================================

type MonthlySummaryRequest struct {
	EmployeeID string
	Month      int
	Year       int

	Actor employee.Actor
}

func (r *MonthlySummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if r.Month < 1 || r.Month > 12 {
		errs.Add("month", "month must be between 1 and 12")
	}
	if r.Year < 1970 || r.Year > 9999 {
		errs.Add("year", "year is out of range")
	}

	return errs.Err()
}

// ========================================
// RESPONSES
// ========================================

type AttendanceResponse struct {
	ID                  string           `json:"id"`
	EmployeeID          string           `json:"employee_id"`
	Date                string           `json:"date"`
	OfficeIn            *time.Time       `json:"office_in,omitempty"`
	OfficeOut           *time.Time       `json:"office_out,omitempty"`
	HomeIn              *time.Time       `json:"home_in,omitempty"`
	HomeOut             *time.Time       `json:"home_out,omitempty"`
	In                  *time.Time       `json:"in,omitempty"`
	Out                 *time.Time       `json:"out,omitempty"`
	ScheduledSeconds    int              `json:"scheduled_seconds"`
	OfficeSecondsWorked int              `json:"office_seconds_worked"`
	HomeSecondsWorked   int              `json:"home_seconds_worked"`
	TotalWorkedSeconds  int              `json:"total_worked_seconds"`
	ExtraSeconds        int              `json:"extra_seconds"`
	ExtraStatus         ExtraStatus      `json:"extra_status"`
	DayType             DayType          `json:"day_type"`
	IsWorkingFromHome   bool             `json:"is_working_from_home"`
	AlertFlag           bool             `json:"alert_flag"`
	AlertMessage        *string          `json:"alert_message,omitempty"`
	EntrySource         EntrySource      `json:"entry_source"`
	LeaveRecordID       *string          `json:"leave_record_id,omitempty"`
	Note                *string          `json:"note,omitempty"`
	TimesheetStatus     *TimesheetStatus `json:"timesheet_status,omitempty"`
	TimesheetHours      *float64         `json:"timesheet_hours,omitempty"`
	Comments            *string          `json:"comments,omitempty"`
	AttachmentRef       *string          `json:"attachment_ref,omitempty"`
	ApprovedBy          *string          `json:"approved_by,omitempty"`
	ApprovedAt          *time.Time       `json:"approved_at,omitempty"`
	AdminNotes          *string          `json:"admin_notes,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

func NewAttendanceResponse(r AttendanceRecord) AttendanceResponse {
	return AttendanceResponse{
		ID:                  r.ID,
		EmployeeID:          r.EmployeeID,
		Date:                r.Date.Format("2006-01-02"),
		OfficeIn:            r.OfficeIn,
		OfficeOut:           r.OfficeOut,
		HomeIn:              r.HomeIn,
		HomeOut:             r.HomeOut,
		In:                  r.In,
		Out:                 r.Out,
		ScheduledSeconds:    r.ScheduledSeconds,
		OfficeSecondsWorked: r.OfficeSecondsWorked,
		HomeSecondsWorked:   r.HomeSecondsWorked,
		TotalWorkedSeconds:  r.TotalWorkedSeconds,
		ExtraSeconds:        r.ExtraSeconds,
		ExtraStatus:         r.ExtraStatus,
		DayType:             r.DayType,
		IsWorkingFromHome:   r.IsWorkingFromHome,
		AlertFlag:           r.AlertFlag,
		AlertMessage:        r.AlertMessage,
		EntrySource:         r.EntrySource,
		LeaveRecordID:       r.LeaveRecordID,
		Note:                r.Note,
		TimesheetStatus:     r.TimesheetStatus,
		TimesheetHours:      r.TimesheetHours,
		Comments:            r.Comments,
		AttachmentRef:       r.AttachmentRef,
		ApprovedBy:          r.ApprovedBy,
		ApprovedAt:          r.ApprovedAt,
		AdminNotes:          r.AdminNotes,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

type TimesheetResponse struct {
	Attendance   AttendanceResponse `json:"attendance"`
	Status       TimesheetStatus    `json:"status"`
	AutoApproved bool               `json:"auto_approved"`
}

type DaySummary struct {
	Date               string           `json:"date"`
	Weekday            string           `json:"weekday"`
	DayType            DayType          `json:"day_type"`
	HolidayName        *string          `json:"holiday_name,omitempty"`
	RecordID           *string          `json:"record_id,omitempty"`
	In                 *time.Time       `json:"in,omitempty"`
	Out                *time.Time       `json:"out,omitempty"`
	TotalWorkedSeconds int              `json:"total_worked_seconds"`
	ExtraSeconds       int              `json:"extra_seconds"`
	ExtraStatus        ExtraStatus      `json:"extra_status"`
	IsWorkingFromHome  bool             `json:"is_working_from_home"`
	TimesheetStatus    *TimesheetStatus `json:"timesheet_status,omitempty"`
	AlertFlag          bool             `json:"alert_flag"`
	AlertMessage       *string          `json:"alert_message,omitempty"`
}

type MonthlyTotals struct {
	WorkingDays       int `json:"working_days"`
	HalfDays          int `json:"half_days"`
	LeaveDays         int `json:"leave_days"`
	Holidays          int `json:"holidays"`
	WeekendDays       int `json:"weekend_days"`
	BeforeJoiningDays int `json:"before_joining_days"`
	AlertDays         int `json:"alert_days"`
	PendingTimesheets int `json:"pending_timesheets"`

	WorkedSeconds    int `json:"worked_seconds"`
	ScheduledSeconds int `json:"scheduled_seconds"`
	OvertimeSeconds  int `json:"overtime_seconds"`
	UndertimeSeconds int `json:"undertime_seconds"`
	NetExtraSeconds  int `json:"net_extra_seconds"`
}

type Compensation struct {
	OwedSeconds int     `json:"owed_seconds"`
	OwedHours   float64 `json:"owed_hours"`
}

type MonthlySummary struct {
	EmployeeID   string        `json:"employee_id"`
	EmployeeName string        `json:"employee_name"`
	Month        int           `json:"month"`
	Year         int           `json:"year"`
	Days         []DaySummary  `json:"days"`
	Totals       MonthlyTotals `json:"totals"`
	Compensation Compensation  `json:"compensation"`
}
