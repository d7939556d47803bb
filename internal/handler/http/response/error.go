package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
)

var statusByCode = map[apperror.Code]int{
	apperror.CodeValidation:             http.StatusUnprocessableEntity,
	apperror.CodePolicyViolation:        http.StatusUnprocessableEntity,
	apperror.CodeInvalidOrdering:        http.StatusUnprocessableEntity,
	apperror.CodeAlreadyCheckedIn:       http.StatusConflict,
	apperror.CodeAlreadyCheckedOut:      http.StatusConflict,
	apperror.CodeNotCheckedIn:           http.StatusConflict,
	apperror.CodeDuplicateSubmission:    http.StatusConflict,
	apperror.CodeInvalidStateTransition: http.StatusConflict,
	apperror.CodeDeletionNotAllowed:     http.StatusConflict,
	apperror.CodeOverlappingLeave:       http.StatusConflict,
	apperror.CodeInsufficientBalance:    http.StatusConflict,
	apperror.CodeNotFound:               http.StatusNotFound,
	apperror.CodeBalanceNotFound:        http.StatusNotFound,
	apperror.CodeForbidden:              http.StatusForbidden,
	apperror.CodeBusy:                   http.StatusServiceUnavailable,
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		status, ok := statusByCode[appErr.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		if appErr.Code == apperror.CodeBusy {
			w.Header().Set("Retry-After", "1")
		}
		Error(w, status, string(appErr.Code), err.Error())
		return
	}

	slog.Error("unhandled error", "error", err)
	InternalServerError(w, "An unexpected error occurred")
}
