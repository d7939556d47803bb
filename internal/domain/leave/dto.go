package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type ApplyLeaveRequest struct {
	EmployeeID            string          `json:"employee_id"`
	LeaveType             string          `json:"leave_type"`
	FromDate              string          `json:"from_date"`
	ToDate                string          `json:"to_date"`
	NoOfDays              decimal.Decimal `json:"no_of_days"`
	Reason                string          `json:"reason"`
	RestrictedHolidayDate *string         `json:"restricted_holiday_date,omitempty"`

	Actor employee.Actor `json:"-"`
}

func (r *ApplyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if validator.IsEmpty(r.LeaveType) {
		errs.Add("leave_type", "leave_type is required")
	}
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}

	from, fromOK := validator.IsValidDate(r.FromDate)
	if !fromOK {
		errs.Add("from_date", "from_date must be in YYYY-MM-DD format")
	}
	to, toOK := validator.IsValidDate(r.ToDate)
	if !toOK {
		errs.Add("to_date", "to_date must be in YYYY-MM-DD format")
	}
	if fromOK && toOK {
		switch {
		case to.Before(from):
			errs.Add("to_date", "to_date must not be before from_date")
		case from.Year() != to.Year():
			errs.Add("to_date", "a leave cannot span two calendar years")
		}
	}

	if !IsHalfDayMultiple(r.NoOfDays) {
		errs.Add("no_of_days", "no_of_days must be a positive multiple of 0.5")
	} else if fromOK && toOK && !to.Before(from) {
		span := decimal.NewFromInt(int64(to.Sub(from).Hours()/24) + 1)
		if r.NoOfDays.GreaterThan(span) {
			errs.Add("no_of_days", "no_of_days exceeds the number of days in the range")
		}
	}

	if r.LeaveType == TypeRestrictedHoliday {
		if fromOK && toOK && !from.Equal(to) {
			errs.Add("to_date", "a restricted holiday covers a single date")
		}
		if !r.NoOfDays.Equal(decimal.NewFromInt(1)) {
			errs.Add("no_of_days", "a restricted holiday is exactly one day")
		}
		if r.RestrictedHolidayDate != nil {
			rh, ok := validator.IsValidDate(*r.RestrictedHolidayDate)
			if !ok {
				errs.Add("restricted_holiday_date", "restricted_holiday_date must be in YYYY-MM-DD format")
			} else if fromOK && !rh.Equal(from) {
				errs.Add("restricted_holiday_date", "restricted_holiday_date must match from_date")
			}
		}
	} else if r.RestrictedHolidayDate != nil {
		errs.Add("restricted_holiday_date", "only RESTRICTED_HOLIDAY leaves reference a restricted holiday")
	}

	return errs.Err()
}

type SetLeaveStatusRequest struct {
	LeaveID         string      `json:"-"`
	Status          LeaveStatus `json:"status"`
	RejectionReason *string     `json:"rejection_reason,omitempty"`

	Actor employee.Actor `json:"-"`
}

func (r *SetLeaveStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LeaveID) {
		errs.Add("id", "leave id is required")
	}
	if !r.Status.Valid() || r.Status == StatusPending {
		errs.Add("status", "status must be APPROVED, REJECTED or CANCELLED")
	}
	if r.RejectionReason != nil && r.Status != StatusRejected {
		errs.Add("rejection_reason", "rejection_reason only applies to REJECTED")
	}

	return errs.Err()
}

type ListLeavesRequest struct {
	EmployeeID string
	Status     *string
	Year       *int

	Actor employee.Actor
}

func (r *ListLeavesRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if r.Status != nil && !LeaveStatus(*r.Status).Valid() {
		errs.Add("status", "status must be PENDING, APPROVED, REJECTED or CANCELLED")
	}

	return errs.Err()
}

type LeaveRecordResponse struct {
	ID                    string          `json:"id"`
	EmployeeID            string          `json:"employee_id"`
	LeaveType             string          `json:"leave_type"`
	FromDate              string          `json:"from_date"`
	ToDate                string          `json:"to_date"`
	NoOfDays              decimal.Decimal `json:"no_of_days"`
	Status                LeaveStatus     `json:"status"`
	RestrictedHolidayDate *string         `json:"restricted_holiday_date,omitempty"`
	Reason                string          `json:"reason"`
	RejectionReason       *string         `json:"rejection_reason,omitempty"`
	DecidedBy             *string         `json:"decided_by,omitempty"`
	DecidedAt             *time.Time      `json:"decided_at,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

func NewLeaveRecordResponse(l LeaveRecord) LeaveRecordResponse {
	resp := LeaveRecordResponse{
		ID:              l.ID,
		EmployeeID:      l.EmployeeID,
		LeaveType:       l.LeaveType,
		FromDate:        l.FromDate.Format("2006-01-02"),
		ToDate:          l.ToDate.Format("2006-01-02"),
		NoOfDays:        l.NoOfDays,
		Status:          l.Status,
		Reason:          l.Reason,
		RejectionReason: l.RejectionReason,
		DecidedBy:       l.DecidedBy,
		DecidedAt:       l.DecidedAt,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
	if l.RestrictedHolidayDate != nil {
		s := l.RestrictedHolidayDate.Format("2006-01-02")
		resp.RestrictedHolidayDate = &s
	}
	return resp
}

type LeaveBalanceResponse struct {
	LeaveType      string          `json:"leave_type"`
	Year           int             `json:"year"`
	TotalAllocated decimal.Decimal `json:"total_allocated"`
	CarriedForward decimal.Decimal `json:"carried_forward"`
	Used           decimal.Decimal `json:"used"`
	Pending        decimal.Decimal `json:"pending"`
	Available      decimal.Decimal `json:"available"`
	RHAllocated    int             `json:"rh_allocated"`
	RHUsed         int             `json:"rh_used"`
	RHPending      int             `json:"rh_pending"`
	RHAvailable    int             `json:"rh_available"`
}

func NewLeaveBalanceResponse(b LeaveBalance) LeaveBalanceResponse {
	return LeaveBalanceResponse{
		LeaveType:      b.LeaveType,
		Year:           b.Year,
		TotalAllocated: b.TotalAllocated,
		CarriedForward: b.CarriedForward,
		Used:           b.Used,
		Pending:        b.Pending,
		Available:      b.Available(),
		RHAllocated:    b.RHAllocated,
		RHUsed:         b.RHUsed,
		RHPending:      b.RHPending,
		RHAvailable:    b.RHAvailable(),
	}
}
