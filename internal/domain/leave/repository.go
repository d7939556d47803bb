package leave

import (
	"context"
	"time"
)

type LeaveFilter struct {
	Status *LeaveStatus
	Year   *int
}

type LeaveRecordRepository interface {
	Create(ctx context.Context, rec LeaveRecord) (LeaveRecord, error)

	// GetByID returns ErrLeaveNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (LeaveRecord, error)

	// UpdateStatus persists the status, decision and rejection fields of rec.
	UpdateStatus(ctx context.Context, rec LeaveRecord) error

	ListByEmployee(ctx context.Context, employeeID string, filter LeaveFilter) ([]LeaveRecord, error)

	// FindOverlapping returns the employee's leaves in one of statuses whose
	// range intersects [from, to].
	FindOverlapping(ctx context.Context, employeeID string, from, to time.Time, statuses ...LeaveStatus) ([]LeaveRecord, error)
}

type LeaveBalanceRepository interface {
	// Get returns nil, nil when the row does not exist.
	Get(ctx context.Context, employeeID, leaveType string, year int) (*LeaveBalance, error)
	Create(ctx context.Context, b LeaveBalance) (LeaveBalance, error)
	Update(ctx context.Context, b LeaveBalance) error
	ListByEmployee(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error)
}

// QuotaProvider supplies the initial allocation of a balance row.
type QuotaProvider interface {
	// Allocation returns nil, nil when no quota is configured.
	Allocation(ctx context.Context, employeeID, leaveType string, year int) (*QuotaAllocation, error)
}
