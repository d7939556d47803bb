// Package apperror carries the stable error codes returned by the timekeeping core.
package apperror

import "errors"

type Code string

const (
	CodePolicyViolation        Code = "POLICY_VIOLATION"
	CodeInvalidOrdering        Code = "INVALID_ORDERING"
	CodeAlreadyCheckedIn       Code = "ALREADY_CHECKED_IN"
	CodeAlreadyCheckedOut      Code = "ALREADY_CHECKED_OUT"
	CodeNotCheckedIn           Code = "NOT_CHECKED_IN"
	CodeDuplicateSubmission    Code = "DUPLICATE_SUBMISSION"
	CodeInvalidStateTransition Code = "INVALID_STATE_TRANSITION"
	CodeInsufficientBalance    Code = "INSUFFICIENT_BALANCE"
	CodeDeletionNotAllowed     Code = "DELETION_NOT_ALLOWED"
	CodeBusy                   Code = "BUSY"
	CodeNotFound               Code = "NOT_FOUND"
	CodeOverlappingLeave       Code = "OVERLAPPING_LEAVE"
	CodeBalanceNotFound        Code = "BALANCE_NOT_FOUND"
	CodeForbidden              Code = "FORBIDDEN"
	CodeValidation             Code = "VALIDATION_ERROR"
)

// Error is a domain failure with a code that callers can switch on.
// Sentinels are compared by identity, so wrap them with %w to add detail.
type Error struct {
	Code    Code
	Message string
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (Code, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}
