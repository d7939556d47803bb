package fixtures

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// ==========================================
// DEFAULT LEAVE QUOTAS
// ==========================================

// defaultQuota is the yearly allocation of one leave type, in days.
type defaultQuota struct {
	leaveType string
	days      int64
	rh        int
}

// Standard allocations based on Indonesian labor law. Restricted-holiday
// units ride on the CASUAL row.
var defaultQuotas = []defaultQuota{
	{leaveType: leave.TypeCasual, days: 12, rh: 2},
	{leaveType: leave.TypeSick, days: 12},
	{leaveType: leave.TypeEarned, days: 0},
	{leaveType: "MARRIAGE", days: 3},
	{leaveType: "MATERNITY", days: 90},
	{leaveType: "PATERNITY", days: 2},
	{leaveType: "BEREAVEMENT_IMMEDIATE", days: 2},
	{leaveType: "BEREAVEMENT_EXTENDED", days: 1},
}

// GetDefaultQuotas returns the company-wide allocations for year.
func GetDefaultQuotas(year int) []leave.QuotaAllocation {
	out := make([]leave.QuotaAllocation, 0, len(defaultQuotas))
	for _, q := range defaultQuotas {
		out = append(out, leave.QuotaAllocation{
			LeaveType:      q.leaveType,
			Year:           year,
			TotalAllocated: decimal.NewFromInt(q.days),
			CarriedForward: decimal.Zero,
			RHAllocated:    q.rh,
		})
	}
	return out
}

// ==========================================
// DEMO EMPLOYEES
// ==========================================

// GetDemoEmployees returns a small directory for local runs without a database.
func GetDemoEmployees(joiningDate time.Time) []employee.Employee {
	return []employee.Employee{
		{ID: "emp-owner", FullName: "Owner Demo", JoiningDate: joiningDate, IsPrivileged: true},
		{ID: "emp-manager", FullName: "Manager Demo", JoiningDate: joiningDate, IsPrivileged: true},
		{ID: "emp-staff", FullName: "Staff Demo", JoiningDate: joiningDate},
	}
}

// ==========================================
// SEEDING
// ==========================================

// Seeder is the write side of a store that accepts fixture data.
type Seeder interface {
	AddEmployee(e employee.Employee)
	SetQuota(employeeID string, q leave.QuotaAllocation)
}

// SeedDefaults loads the demo directory and default quotas for each of years.
func SeedDefaults(s Seeder, joiningDate time.Time, years ...int) {
	for _, e := range GetDemoEmployees(joiningDate) {
		s.AddEmployee(e)
	}
	for _, year := range years {
		for _, q := range GetDefaultQuotas(year) {
			s.SetQuota("", q)
		}
	}
}
