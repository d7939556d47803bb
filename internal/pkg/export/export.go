// Package export renders a monthly attendance summary as PDF or XLSX.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(v string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(v))); f {
	case FormatPDF, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", v)
	}
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

// FileName is the attachment name of a summary export.
func FileName(s attendance.MonthlySummary, f Format) string {
	return fmt.Sprintf("attendance-%s-%04d-%02d.%s", s.EmployeeID, s.Year, s.Month, f)
}

// Write renders s to w. Times are shown in loc.
func Write(w io.Writer, f Format, s attendance.MonthlySummary, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	switch f {
	case FormatPDF:
		return writePDF(w, s, loc)
	case FormatXLSX:
		return writeXLSX(w, s, loc)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

var dayColumns = []string{"Date", "Day", "Type", "In", "Out", "Worked", "Extra", "Timesheet", "Alert"}

// dayRow is one day as display strings, in dayColumns order.
func dayRow(d attendance.DaySummary, loc *time.Location) []string {
	row := []string{
		d.Date,
		d.Weekday,
		string(d.DayType),
		clockTime(d.In, loc),
		clockTime(d.Out, loc),
		hoursMinutes(d.TotalWorkedSeconds),
		signedHoursMinutes(d.ExtraSeconds),
		"",
		"",
	}
	if d.HolidayName != nil {
		row[2] += " (" + *d.HolidayName + ")"
	}
	if d.TimesheetStatus != nil {
		row[7] = string(*d.TimesheetStatus)
	}
	if d.AlertMessage != nil {
		row[8] = *d.AlertMessage
	}
	return row
}

type totalLine struct {
	label string
	value string
}

func totalLines(s attendance.MonthlySummary) []totalLine {
	t := s.Totals
	return []totalLine{
		{"Working days", fmt.Sprint(t.WorkingDays)},
		{"Half days", fmt.Sprint(t.HalfDays)},
		{"Leave days", fmt.Sprint(t.LeaveDays)},
		{"Holidays", fmt.Sprint(t.Holidays)},
		{"Weekend days", fmt.Sprint(t.WeekendDays)},
		{"Before joining", fmt.Sprint(t.BeforeJoiningDays)},
		{"Days with alerts", fmt.Sprint(t.AlertDays)},
		{"Pending timesheets", fmt.Sprint(t.PendingTimesheets)},
		{"Worked", hoursMinutes(t.WorkedSeconds)},
		{"Scheduled", hoursMinutes(t.ScheduledSeconds)},
		{"Overtime", hoursMinutes(t.OvertimeSeconds)},
		{"Undertime", hoursMinutes(t.UndertimeSeconds)},
		{"Net extra", signedHoursMinutes(t.NetExtraSeconds)},
		{"Compensation owed (hours)", fmt.Sprintf("%.2f", s.Compensation.OwedHours)},
	}
}

func clockTime(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format("15:04")
}

func hoursMinutes(seconds int) string {
	if seconds < 0 {
		seconds = -seconds
	}
	return fmt.Sprintf("%d:%02d", seconds/3600, seconds%3600/60)
}

func signedHoursMinutes(seconds int) string {
	switch {
	case seconds > 0:
		return "+" + hoursMinutes(seconds)
	case seconds < 0:
		return "-" + hoursMinutes(seconds)
	default:
		return "0:00"
	}
}

func title(s attendance.MonthlySummary) string {
	name := s.EmployeeName
	if name == "" {
		name = s.EmployeeID
	}
	return fmt.Sprintf("Attendance %s %d - %s", time.Month(s.Month), s.Year, name)
}
