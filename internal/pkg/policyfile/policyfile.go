// Package policyfile loads holidays and default leave quotas from a YAML or
// JSON-with-comments file, for deployments that keep them out of the database.
//
//	holidays:
//	  - date: "2025-01-13"
//	    name: Founders Day
//	  - date: "2025-01-20"
//	    name: Harvest Offering
//	    restricted: true
//	quotas:
//	  - leave_type: CASUAL
//	    year: 2025
//	    total_allocated: 12
//	    rh_allocated: 2
//	  - leave_type: CASUAL
//	    year: 2025
//	    employee_id: emp-7
//	    total_allocated: 15
package policyfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/shopspring/decimal"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSONC Format = "jsonc"
)

type holidayEntry struct {
	Date       string `yaml:"date" json:"date"`
	Name       string `yaml:"name" json:"name"`
	Restricted bool   `yaml:"restricted" json:"restricted"`
	// Active defaults to true.
	Active *bool `yaml:"active" json:"active"`
}

type quotaEntry struct {
	EmployeeID     string  `yaml:"employee_id" json:"employee_id"`
	LeaveType      string  `yaml:"leave_type" json:"leave_type"`
	Year           int     `yaml:"year" json:"year"`
	TotalAllocated float64 `yaml:"total_allocated" json:"total_allocated"`
	CarriedForward float64 `yaml:"carried_forward" json:"carried_forward"`
	RHAllocated    int     `yaml:"rh_allocated" json:"rh_allocated"`
}

type document struct {
	Holidays []holidayEntry `yaml:"holidays" json:"holidays"`
	Quotas   []quotaEntry   `yaml:"quotas" json:"quotas"`
}

// Policy serves a loaded file as a calendar.HolidayRepository and a
// leave.QuotaProvider. It is immutable after loading.
type Policy struct {
	holidays []calendar.Holiday
	quotas   map[string]leave.QuotaAllocation
}

// Load reads path, choosing the format from its extension: .json and .jsonc
// are JSON with comments, anything else is YAML.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	format := FormatYAML
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		format = FormatJSONC
	}

	p, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func Parse(data []byte, format Format) (*Policy, error) {
	var doc document
	switch format {
	case FormatJSONC:
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return nil, fmt.Errorf("parse policy json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse policy yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown policy format %q", format)
	}
	return build(doc)
}

func build(doc document) (*Policy, error) {
	p := &Policy{quotas: make(map[string]leave.QuotaAllocation)}

	seen := make(map[time.Time]bool)
	for i, h := range doc.Holidays {
		date, err := calendar.ParseDate(h.Date)
		if err != nil {
			return nil, fmt.Errorf("holidays[%d]: invalid date %q", i, h.Date)
		}
		if strings.TrimSpace(h.Name) == "" {
			return nil, fmt.Errorf("holidays[%d]: name is required", i)
		}
		if seen[date] {
			return nil, fmt.Errorf("holidays[%d]: duplicate date %s", i, h.Date)
		}
		seen[date] = true

		active := true
		if h.Active != nil {
			active = *h.Active
		}
		p.holidays = append(p.holidays, calendar.Holiday{
			ID:           "policy:" + h.Date,
			Date:         date,
			Name:         h.Name,
			IsRestricted: h.Restricted,
			IsActive:     active,
		})
	}
	sort.Slice(p.holidays, func(i, j int) bool { return p.holidays[i].Date.Before(p.holidays[j].Date) })

	for i, q := range doc.Quotas {
		if q.LeaveType == "" {
			return nil, fmt.Errorf("quotas[%d]: leave_type is required", i)
		}
		if q.Year <= 0 {
			return nil, fmt.Errorf("quotas[%d]: year is required", i)
		}
		if q.TotalAllocated < 0 || q.CarriedForward < 0 || q.RHAllocated < 0 {
			return nil, fmt.Errorf("quotas[%d]: allocations must not be negative", i)
		}

		key := quotaKey(q.EmployeeID, q.LeaveType, q.Year)
		if _, dup := p.quotas[key]; dup {
			return nil, fmt.Errorf("quotas[%d]: duplicate quota for %s/%d", i, q.LeaveType, q.Year)
		}
		p.quotas[key] = leave.QuotaAllocation{
			LeaveType:      q.LeaveType,
			Year:           q.Year,
			TotalAllocated: decimal.NewFromFloat(q.TotalAllocated).Round(1),
			CarriedForward: decimal.NewFromFloat(q.CarriedForward).Round(1),
			RHAllocated:    q.RHAllocated,
		}
	}

	return p, nil
}

func quotaKey(employeeID, leaveType string, year int) string {
	return fmt.Sprintf("%s|%s|%d", employeeID, leaveType, year)
}

// ListActive implements calendar.HolidayRepository.
func (p *Policy) ListActive(ctx context.Context, from, to time.Time) ([]calendar.Holiday, error) {
	var out []calendar.Holiday
	for _, h := range p.holidays {
		if h.IsActive && !h.Date.Before(from) && !h.Date.After(to) {
			out = append(out, h)
		}
	}
	return out, nil
}

// Allocation implements leave.QuotaProvider. An employee-specific entry wins
// over the default one.
func (p *Policy) Allocation(ctx context.Context, employeeID, leaveType string, year int) (*leave.QuotaAllocation, error) {
	for _, key := range []string{quotaKey(employeeID, leaveType, year), quotaKey("", leaveType, year)} {
		if q, ok := p.quotas[key]; ok {
			return &q, nil
		}
	}
	return nil, nil
}
