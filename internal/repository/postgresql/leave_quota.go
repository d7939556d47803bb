package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveQuotaRepositoryImpl struct {
	db *database.DB
}

// NewLeaveQuotaRepository reads leave_quota_allocations. An employee-specific
// row wins over the company-wide default (employee_id NULL).
func NewLeaveQuotaRepository(db *database.DB) leave.QuotaProvider {
	return &leaveQuotaRepositoryImpl{db: db}
}

// Allocation implements leave.QuotaProvider.
func (r *leaveQuotaRepositoryImpl) Allocation(ctx context.Context, employeeID, leaveType string, year int) (*leave.QuotaAllocation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT leave_type, year, total_allocated::text, carried_forward::text, rh_allocated
		FROM leave_quota_allocations
		WHERE leave_type = $2 AND year = $3 AND (employee_id = $1 OR employee_id IS NULL)
		ORDER BY employee_id NULLS LAST
		LIMIT 1
	`

	var (
		quota              leave.QuotaAllocation
		allocated, carried string
	)
	err := q.QueryRow(ctx, query, employeeID, leaveType, year).Scan(
		&quota.LeaveType, &quota.Year, &allocated, &carried, &quota.RHAllocated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quota allocation: %w", err)
	}

	if quota.TotalAllocated, err = parseNumeric("total_allocated", allocated); err != nil {
		return nil, err
	}
	if quota.CarriedForward, err = parseNumeric("carried_forward", carried); err != nil {
		return nil, err
	}
	return &quota, nil
}
