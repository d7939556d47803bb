package leave

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type LeaveStatus string

const (
	StatusPending   LeaveStatus = "PENDING"
	StatusApproved  LeaveStatus = "APPROVED"
	StatusRejected  LeaveStatus = "REJECTED"
	StatusCancelled LeaveStatus = "CANCELLED"
)

func (s LeaveStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Well-known leave types. Other types are accepted as opaque codes.
const (
	TypeCasual            = "CASUAL"
	TypeSick              = "SICK"
	TypeEarned            = "EARNED"
	TypeRestrictedHoliday = "RESTRICTED_HOLIDAY"
)

type LeaveRecord struct {
	ID                    string
	EmployeeID            string
	LeaveType             string
	FromDate              time.Time
	ToDate                time.Time
	NoOfDays              decimal.Decimal
	Status                LeaveStatus
	RestrictedHolidayDate *time.Time
	Reason                string
	RejectionReason       *string
	DecidedBy             *string
	DecidedAt             *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (l LeaveRecord) IsRestrictedHoliday() bool {
	return l.LeaveType == TypeRestrictedHoliday
}

// Year is the balance year charged for the leave.
func (l LeaveRecord) Year() int {
	return l.FromDate.Year()
}

// BalanceType is the leave type whose balance row the leave is charged to.
// Restricted holidays are hosted on hostType's row.
func (l LeaveRecord) BalanceType(hostType string) string {
	if l.IsRestrictedHoliday() {
		return hostType
	}
	return l.LeaveType
}

type LeaveBalance struct {
	ID             string
	EmployeeID     string
	LeaveType      string
	Year           int
	TotalAllocated decimal.Decimal
	CarriedForward decimal.Decimal
	Used           decimal.Decimal
	Pending        decimal.Decimal
	RHAllocated    int
	RHUsed         int
	RHPending      int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (b LeaveBalance) Available() decimal.Decimal {
	return b.TotalAllocated.Sub(b.Used).Sub(b.Pending)
}

func (b LeaveBalance) RHAvailable() int {
	return b.RHAllocated - b.RHUsed - b.RHPending
}

// QuotaAllocation seeds a balance row the first time it is needed.
type QuotaAllocation struct {
	LeaveType      string
	Year           int
	TotalAllocated decimal.Decimal
	CarriedForward decimal.Decimal
	RHAllocated    int
}

// BalanceLockKey names the exclusive lock guarding a balance row.
func BalanceLockKey(employeeID, leaveType string, year int) string {
	return fmt.Sprintf("balance:%s:%s:%d", employeeID, leaveType, year)
}

// ApplyLockKey serializes leave applications of one employee so overlap checks
// across leave types see each other.
func ApplyLockKey(employeeID string) string {
	return "leave-apply:" + employeeID
}
