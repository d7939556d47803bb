package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const leaveRecordColumns = `
	id, employee_id, leave_type, from_date, to_date, no_of_days::text, status,
	restricted_holiday_date, reason, rejection_reason, decided_by, decided_at,
	created_at, updated_at`

type leaveRecordRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRecordRepository(db *database.DB) leave.LeaveRecordRepository {
	return &leaveRecordRepositoryImpl{db: db}
}

func scanLeaveRecord(row pgx.Row) (leave.LeaveRecord, error) {
	var (
		lr     leave.LeaveRecord
		days   string
		status string
	)
	err := row.Scan(
		&lr.ID, &lr.EmployeeID, &lr.LeaveType, &lr.FromDate, &lr.ToDate, &days, &status,
		&lr.RestrictedHolidayDate, &lr.Reason, &lr.RejectionReason, &lr.DecidedBy, &lr.DecidedAt,
		&lr.CreatedAt, &lr.UpdatedAt,
	)
	if err != nil {
		return leave.LeaveRecord{}, err
	}

	lr.NoOfDays, err = parseNumeric("no_of_days", days)
	if err != nil {
		return leave.LeaveRecord{}, err
	}
	lr.Status = leave.LeaveStatus(status)
	return lr, nil
}

func (r *leaveRecordRepositoryImpl) queryList(ctx context.Context, query string, args ...any) ([]leave.LeaveRecord, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave records: %w", err)
	}
	defer rows.Close()

	var records []leave.LeaveRecord
	for rows.Next() {
		lr, err := scanLeaveRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave record: %w", err)
		}
		records = append(records, lr)
	}
	return records, rows.Err()
}

// Create implements leave.LeaveRecordRepository.
func (r *leaveRecordRepositoryImpl) Create(ctx context.Context, rec leave.LeaveRecord) (leave.LeaveRecord, error) {
	q := GetQuerier(ctx, r.db)

	if rec.ID == "" {
		rec.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO leave_records (
			id, employee_id, leave_type, from_date, to_date, no_of_days, status,
			restricted_holiday_date, reason,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6::numeric, $7,
			$8, $9,
			NOW(), NOW()
		) RETURNING ` + leaveRecordColumns

	created, err := scanLeaveRecord(q.QueryRow(ctx, query,
		rec.ID, rec.EmployeeID, rec.LeaveType, rec.FromDate, rec.ToDate, rec.NoOfDays.String(), string(rec.Status),
		rec.RestrictedHolidayDate, rec.Reason,
	))
	if err != nil {
		return leave.LeaveRecord{}, fmt.Errorf("failed to create leave record: %w", err)
	}
	return created, nil
}

// GetByID implements leave.LeaveRecordRepository.
func (r *leaveRecordRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRecordColumns + ` FROM leave_records WHERE id = $1`
	lr, err := scanLeaveRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRecord{}, fmt.Errorf("%w: %s", leave.ErrLeaveNotFound, id)
		}
		return leave.LeaveRecord{}, fmt.Errorf("failed to get leave record: %w", err)
	}
	return lr, nil
}

// UpdateStatus implements leave.LeaveRecordRepository.
func (r *leaveRecordRepositoryImpl) UpdateStatus(ctx context.Context, rec leave.LeaveRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_records
		SET status = $2, rejection_reason = $3, decided_by = $4, decided_at = $5, updated_at = NOW()
		WHERE id = $1
	`
	commandTag, err := q.Exec(ctx, query, rec.ID, string(rec.Status), rec.RejectionReason, rec.DecidedBy, rec.DecidedAt)
	if err != nil {
		return fmt.Errorf("failed to update leave status: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return fmt.Errorf("%w: %s", leave.ErrLeaveNotFound, rec.ID)
	}
	return nil
}

// ListByEmployee implements leave.LeaveRecordRepository.
func (r *leaveRecordRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, filter leave.LeaveFilter) ([]leave.LeaveRecord, error) {
	var (
		where = []string{"employee_id = $1"}
		args  = []any{employeeID}
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		where = append(where, fmt.Sprintf("EXTRACT(YEAR FROM from_date) = $%d", len(args)))
	}

	query := `
		SELECT ` + leaveRecordColumns + `
		FROM leave_records
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY from_date DESC, created_at DESC
	`
	return r.queryList(ctx, query, args...)
}

// FindOverlapping implements leave.LeaveRecordRepository.
func (r *leaveRecordRepositoryImpl) FindOverlapping(ctx context.Context, employeeID string, from, to time.Time, statuses ...leave.LeaveStatus) ([]leave.LeaveRecord, error) {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}

	query := `
		SELECT ` + leaveRecordColumns + `
		FROM leave_records
		WHERE employee_id = $1
		  AND from_date <= $3
		  AND to_date >= $2
		  AND (cardinality($4::text[]) = 0 OR status = ANY($4::text[]))
		ORDER BY from_date
	`
	return r.queryList(ctx, query, employeeID, from, to, values)
}
