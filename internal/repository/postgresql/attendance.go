package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	id, employee_id, attendance_date,
	office_in, office_out, home_in, home_out, clock_in, clock_out,
	scheduled_seconds, office_seconds_worked, home_seconds_worked, total_worked_seconds,
	extra_seconds, extra_status, day_type, is_working_from_home,
	alert_flag, alert_message, entry_source, leave_record_id, note,
	timesheet_status, timesheet_hours, comments, attachment_ref,
	approved_by, approved_at, admin_notes,
	created_by, updated_by, created_at, updated_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.AttendanceRecord, error) {
	var (
		att             attendance.AttendanceRecord
		extraStatus     string
		dayType         string
		entrySource     string
		timesheetStatus *string
	)
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date,
		&att.OfficeIn, &att.OfficeOut, &att.HomeIn, &att.HomeOut, &att.In, &att.Out,
		&att.ScheduledSeconds, &att.OfficeSecondsWorked, &att.HomeSecondsWorked, &att.TotalWorkedSeconds,
		&att.ExtraSeconds, &extraStatus, &dayType, &att.IsWorkingFromHome,
		&att.AlertFlag, &att.AlertMessage, &entrySource, &att.LeaveRecordID, &att.Note,
		&timesheetStatus, &att.TimesheetHours, &att.Comments, &att.AttachmentRef,
		&att.ApprovedBy, &att.ApprovedAt, &att.AdminNotes,
		&att.CreatedBy, &att.UpdatedBy, &att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		return attendance.AttendanceRecord{}, err
	}

	att.ExtraStatus = attendance.ExtraStatus(extraStatus)
	att.DayType = attendance.DayType(dayType)
	att.EntrySource = attendance.EntrySource(entrySource)
	if timesheetStatus != nil {
		status := attendance.TimesheetStatus(*timesheetStatus)
		att.TimesheetStatus = &status
	}
	return att, nil
}

func (a *attendanceRepository) queryList(ctx context.Context, query string, args ...any) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.AttendanceRecord
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}
	return records, rows.Err()
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = $1`
	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceRecord{}, fmt.Errorf("%w: %s", attendance.ErrAttendanceNotFound, id)
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE employee_id = $1 AND attendance_date = $2`
	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return &att, nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.AttendanceRecord, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1 AND attendance_date BETWEEN $2 AND $3
		ORDER BY attendance_date
	`
	return a.queryList(ctx, query, employeeID, from, to)
}

// ListByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByDate(ctx context.Context, date time.Time) ([]attendance.AttendanceRecord, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE attendance_date = $1
		ORDER BY employee_id
	`
	return a.queryList(ctx, query, date)
}

// ListByLeaveRecord implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByLeaveRecord(ctx context.Context, leaveRecordID string) ([]attendance.AttendanceRecord, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE leave_record_id = $1
		ORDER BY attendance_date
	`
	return a.queryList(ctx, query, leaveRecordID)
}

// Save implements attendance.AttendanceRepository.
func (a *attendanceRepository) Save(ctx context.Context, rec attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	if rec.ID == "" {
		rec.ID = uuid.Must(uuid.NewV7()).String()
	}

	var timesheetStatus *string
	if rec.TimesheetStatus != nil {
		s := string(*rec.TimesheetStatus)
		timesheetStatus = &s
	}

	query := `
		INSERT INTO attendances (
			id, employee_id, attendance_date,
			office_in, office_out, home_in, home_out, clock_in, clock_out,
			scheduled_seconds, office_seconds_worked, home_seconds_worked, total_worked_seconds,
			extra_seconds, extra_status, day_type, is_working_from_home,
			alert_flag, alert_message, entry_source, leave_record_id, note,
			timesheet_status, timesheet_hours, comments, attachment_ref,
			approved_by, approved_at, admin_notes,
			created_by, updated_by, created_at, updated_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, $16, $17,
			$18, $19, $20, $21, $22,
			$23, $24, $25, $26,
			$27, $28, $29,
			$30, $31, NOW(), NOW()
		)
		ON CONFLICT (employee_id, attendance_date) DO UPDATE SET
			office_in = EXCLUDED.office_in,
			office_out = EXCLUDED.office_out,
			home_in = EXCLUDED.home_in,
			home_out = EXCLUDED.home_out,
			clock_in = EXCLUDED.clock_in,
			clock_out = EXCLUDED.clock_out,
			scheduled_seconds = EXCLUDED.scheduled_seconds,
			office_seconds_worked = EXCLUDED.office_seconds_worked,
			home_seconds_worked = EXCLUDED.home_seconds_worked,
			total_worked_seconds = EXCLUDED.total_worked_seconds,
			extra_seconds = EXCLUDED.extra_seconds,
			extra_status = EXCLUDED.extra_status,
			day_type = EXCLUDED.day_type,
			is_working_from_home = EXCLUDED.is_working_from_home,
			alert_flag = EXCLUDED.alert_flag,
			alert_message = EXCLUDED.alert_message,
			entry_source = EXCLUDED.entry_source,
			leave_record_id = EXCLUDED.leave_record_id,
			note = EXCLUDED.note,
			timesheet_status = EXCLUDED.timesheet_status,
			timesheet_hours = EXCLUDED.timesheet_hours,
			comments = EXCLUDED.comments,
			attachment_ref = EXCLUDED.attachment_ref,
			approved_by = EXCLUDED.approved_by,
			approved_at = EXCLUDED.approved_at,
			admin_notes = EXCLUDED.admin_notes,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING ` + attendanceColumns

	saved, err := scanAttendance(q.QueryRow(ctx, query,
		rec.ID, rec.EmployeeID, rec.Date,
		rec.OfficeIn, rec.OfficeOut, rec.HomeIn, rec.HomeOut, rec.In, rec.Out,
		rec.ScheduledSeconds, rec.OfficeSecondsWorked, rec.HomeSecondsWorked, rec.TotalWorkedSeconds,
		rec.ExtraSeconds, string(rec.ExtraStatus), string(rec.DayType), rec.IsWorkingFromHome,
		rec.AlertFlag, rec.AlertMessage, string(rec.EntrySource), rec.LeaveRecordID, rec.Note,
		timesheetStatus, rec.TimesheetHours, rec.Comments, rec.AttachmentRef,
		rec.ApprovedBy, rec.ApprovedAt, rec.AdminNotes,
		rec.CreatedBy, rec.UpdatedBy,
	))
	if err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to save attendance: %w", err)
	}
	return saved, nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM attendances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return fmt.Errorf("%w: %s", attendance.ErrAttendanceNotFound, id)
	}
	return nil
}
