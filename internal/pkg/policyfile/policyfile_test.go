package policyfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlPolicy = `
holidays:
  - date: "2025-01-13"
    name: Founders Day
  - date: "2025-01-20"
    name: Harvest Offering
    restricted: true
  - date: "2025-01-27"
    name: Withdrawn
    active: false
quotas:
  - leave_type: CASUAL
    year: 2025
    total_allocated: 12
    rh_allocated: 2
  - leave_type: CASUAL
    year: 2025
    employee_id: emp-7
    total_allocated: 15.5
`

const jsoncPolicy = `{
  // national calendar
  "holidays": [
    {"date": "2025-01-13", "name": "Founders Day"},
  ],
  /* defaults */
  "quotas": [
    {"leave_type": "SICK", "year": 2025, "total_allocated": 6},
  ],
}`

func jan(day int) time.Time {
	return time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC)
}

func TestParseYAML(t *testing.T) {
	p, err := Parse([]byte(yamlPolicy), FormatYAML)
	require.NoError(t, err)

	holidays, err := p.ListActive(context.Background(), jan(1), jan(31))
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "Founders Day", holidays[0].Name)
	assert.True(t, holidays[0].Date.Equal(jan(13)))
	assert.True(t, holidays[1].IsRestricted)

	def, err := p.Allocation(context.Background(), "emp-1", leave.TypeCasual, 2025)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.True(t, def.TotalAllocated.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, 2, def.RHAllocated)

	own, err := p.Allocation(context.Background(), "emp-7", leave.TypeCasual, 2025)
	require.NoError(t, err)
	require.NotNil(t, own)
	assert.True(t, own.TotalAllocated.Equal(decimal.RequireFromString("15.5")))

	none, err := p.Allocation(context.Background(), "emp-1", leave.TypeSick, 2025)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestParseJSONC(t *testing.T) {
	p, err := Parse([]byte(jsoncPolicy), FormatJSONC)
	require.NoError(t, err)

	holidays, err := p.ListActive(context.Background(), jan(1), jan(31))
	require.NoError(t, err)
	assert.Len(t, holidays, 1)

	q, err := p.Allocation(context.Background(), "emp-1", leave.TypeSick, 2025)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.True(t, q.TotalAllocated.Equal(decimal.NewFromInt(6)))
}

func TestParseRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad date", "holidays:\n  - date: \"13/01/2025\"\n    name: x\n"},
		{"missing name", "holidays:\n  - date: \"2025-01-13\"\n"},
		{"duplicate date", "holidays:\n  - {date: \"2025-01-13\", name: a}\n  - {date: \"2025-01-13\", name: b}\n"},
		{"missing year", "quotas:\n  - {leave_type: CASUAL, total_allocated: 3}\n"},
		{"negative", "quotas:\n  - {leave_type: CASUAL, year: 2025, total_allocated: -1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), FormatYAML)
			assert.Error(t, err)
		})
	}
}

func TestLoadPicksFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(jsoncPolicy), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	q, err := p.Allocation(context.Background(), "", leave.TypeSick, 2025)
	require.NoError(t, err)
	assert.NotNil(t, q)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
