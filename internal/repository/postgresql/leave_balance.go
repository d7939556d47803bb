package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const leaveBalanceColumns = `
	id, employee_id, leave_type, year,
	total_allocated::text, carried_forward::text, used::text, pending::text,
	rh_allocated, rh_used, rh_pending,
	created_at, updated_at`

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.LeaveBalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

func scanLeaveBalance(row pgx.Row) (leave.LeaveBalance, error) {
	var (
		b                                  leave.LeaveBalance
		allocated, carried, used, pending string
	)
	err := row.Scan(
		&b.ID, &b.EmployeeID, &b.LeaveType, &b.Year,
		&allocated, &carried, &used, &pending,
		&b.RHAllocated, &b.RHUsed, &b.RHPending,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return leave.LeaveBalance{}, err
	}

	if b.TotalAllocated, err = parseNumeric("total_allocated", allocated); err != nil {
		return leave.LeaveBalance{}, err
	}
	if b.CarriedForward, err = parseNumeric("carried_forward", carried); err != nil {
		return leave.LeaveBalance{}, err
	}
	if b.Used, err = parseNumeric("used", used); err != nil {
		return leave.LeaveBalance{}, err
	}
	if b.Pending, err = parseNumeric("pending", pending); err != nil {
		return leave.LeaveBalance{}, err
	}
	return b, nil
}

// Get implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Get(ctx context.Context, employeeID, leaveType string, year int) (*leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveBalanceColumns + `
		FROM leave_balances
		WHERE employee_id = $1 AND leave_type = $2 AND year = $3
	`
	b, err := scanLeaveBalance(q.QueryRow(ctx, query, employeeID, leaveType, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get leave balance: %w", err)
	}
	return &b, nil
}

// Create implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Create(ctx context.Context, b leave.LeaveBalance) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	if b.ID == "" {
		b.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO leave_balances (
			id, employee_id, leave_type, year,
			total_allocated, carried_forward, used, pending,
			rh_allocated, rh_used, rh_pending,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5::numeric, $6::numeric, $7::numeric, $8::numeric,
			$9, $10, $11,
			NOW(), NOW()
		) RETURNING ` + leaveBalanceColumns

	created, err := scanLeaveBalance(q.QueryRow(ctx, query,
		b.ID, b.EmployeeID, b.LeaveType, b.Year,
		b.TotalAllocated.String(), b.CarriedForward.String(), b.Used.String(), b.Pending.String(),
		b.RHAllocated, b.RHUsed, b.RHPending,
	))
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to create leave balance: %w", err)
	}
	return created, nil
}

// Update implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Update(ctx context.Context, b leave.LeaveBalance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET total_allocated = $4::numeric, carried_forward = $5::numeric,
			used = $6::numeric, pending = $7::numeric,
			rh_allocated = $8, rh_used = $9, rh_pending = $10,
			updated_at = NOW()
		WHERE employee_id = $1 AND leave_type = $2 AND year = $3
	`
	commandTag, err := q.Exec(ctx, query,
		b.EmployeeID, b.LeaveType, b.Year,
		b.TotalAllocated.String(), b.CarriedForward.String(), b.Used.String(), b.Pending.String(),
		b.RHAllocated, b.RHUsed, b.RHPending,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave balance: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return fmt.Errorf("%w: %s/%d", leave.ErrBalanceNotFound, b.LeaveType, b.Year)
	}
	return nil
}

// ListByEmployee implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveBalanceColumns + `
		FROM leave_balances
		WHERE employee_id = $1 AND year = $2
		ORDER BY leave_type
	`
	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	defer rows.Close()

	var balances []leave.LeaveBalance
	for rows.Next() {
		b, err := scanLeaveBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
