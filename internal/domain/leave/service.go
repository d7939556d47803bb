package leave

import (
	"context"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
)

type LeaveService interface {
	ApplyLeave(ctx context.Context, req ApplyLeaveRequest) (LeaveRecordResponse, error)
	SetLeaveStatus(ctx context.Context, req SetLeaveStatusRequest) (LeaveRecordResponse, error)

	GetLeave(ctx context.Context, id string, actor employee.Actor) (LeaveRecordResponse, error)
	ListLeaves(ctx context.Context, req ListLeavesRequest) ([]LeaveRecordResponse, error)
	ListBalances(ctx context.Context, employeeID string, year int, actor employee.Actor) ([]LeaveBalanceResponse, error)
}
