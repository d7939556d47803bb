package leave

import "github.com/cmlabs-hris/hris-timekeeping/internal/pkg/apperror"

var (
	ErrLeaveNotFound          = apperror.New(apperror.CodeNotFound, "leave record not found")
	ErrBalanceNotFound        = apperror.New(apperror.CodeBalanceNotFound, "no leave balance is allocated for this type and year")
	ErrInsufficientBalance    = apperror.New(apperror.CodeInsufficientBalance, "insufficient leave balance")
	ErrLedgerUnderflow        = apperror.New(apperror.CodeInsufficientBalance, "leave balance would become negative")
	ErrInvalidStateTransition = apperror.New(apperror.CodeInvalidStateTransition, "leave status transition not allowed")
	ErrOverlappingLeave       = apperror.New(apperror.CodeOverlappingLeave, "leave overlaps an existing pending or approved leave")
	ErrRestrictedHolidayDate  = apperror.New(apperror.CodePolicyViolation, "date is not a restricted holiday")
	ErrForbidden              = apperror.New(apperror.CodeForbidden, "not allowed to change this leave")
)
