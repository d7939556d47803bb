package employee

import (
	"time"
)

// Employee is the read-only projection of the HR employee master used by timekeeping.
type Employee struct {
	ID           string
	FullName     string
	JoiningDate  time.Time
	IsPrivileged bool
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID     string
	EmployeeID string
	Privileged bool
}

// CanActFor reports whether the actor may operate on employeeID's records.
func (a Actor) CanActFor(employeeID string) bool {
	return a.Privileged || (a.EmployeeID != "" && a.EmployeeID == employeeID)
}

// AuditID is the identity recorded in created_by / updated_by columns.
func (a Actor) AuditID() *string {
	switch {
	case a.UserID != "":
		id := a.UserID
		return &id
	case a.EmployeeID != "":
		id := a.EmployeeID
		return &id
	}
	return nil
}
