package attendance

import "github.com/cmlabs-hris/hris-timekeeping/internal/pkg/apperror"

// Attendance domain errors
var (
	// Punch errors
	ErrAlreadyCheckedIn  = apperror.New(apperror.CodeAlreadyCheckedIn, "already checked in at this location")
	ErrAlreadyCheckedOut = apperror.New(apperror.CodeAlreadyCheckedOut, "already checked out at this location")
	ErrNotCheckedIn      = apperror.New(apperror.CodeNotCheckedIn, "not checked in at this location")
	ErrInvalidOrdering   = apperror.New(apperror.CodeInvalidOrdering, "check-out must be after check-in")

	// Calendar policy
	ErrWeekend        = apperror.New(apperror.CodePolicyViolation, "attendance cannot be recorded on a weekend")
	ErrHoliday        = apperror.New(apperror.CodePolicyViolation, "attendance cannot be recorded on a holiday")
	ErrOnLeave        = apperror.New(apperror.CodePolicyViolation, "an approved leave covers this date")
	ErrBeforeJoining  = apperror.New(apperror.CodePolicyViolation, "date is before the employee's joining date")
	ErrTimesheetOwned = apperror.New(apperror.CodePolicyViolation, "a timesheet already covers this date")

	// Timesheet errors
	ErrDuplicateSubmission    = apperror.New(apperror.CodeDuplicateSubmission, "a pending or approved timesheet already exists for this date")
	ErrInvalidStateTransition = apperror.New(apperror.CodeInvalidStateTransition, "timesheet is not pending")
	ErrDeletionNotAllowed     = apperror.New(apperror.CodeDeletionNotAllowed, "only rejected timesheets can be deleted")

	// General errors
	ErrAttendanceNotFound = apperror.New(apperror.CodeNotFound, "attendance record not found")
	ErrForbidden          = apperror.New(apperror.CodeForbidden, "not allowed to access this attendance record")
)
