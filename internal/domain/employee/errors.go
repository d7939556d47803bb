package employee

import "github.com/cmlabs-hris/hris-timekeeping/internal/pkg/apperror"

var (
	ErrEmployeeNotFound = apperror.New(apperror.CodeNotFound, "employee not found")
	ErrForbidden        = apperror.New(apperror.CodeForbidden, "not allowed to act for this employee")
)
