package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassificationKindPrecedence(t *testing.T) {
	tests := []struct {
		name string
		c    Classification
		want Kind
	}{
		{"regular", Classification{}, KindRegular},
		{"holiday", Classification{IsHoliday: true}, KindHoliday},
		{"weekend beats holiday", Classification{IsWeekend: true, IsHoliday: true}, KindWeekend},
		{"before joining beats all", Classification{BeforeJoining: true, IsWeekend: true, IsHoliday: true}, KindBeforeJoining},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Kind())
		})
	}
}

func TestDayIn(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	// 20:00 UTC on the 14th is already the 15th in UTC+7.
	ts := time.Date(2025, 1, 14, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), DayIn(ts, jakarta))
	assert.Equal(t, time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC), DayIn(ts, nil))
}

func TestDates(t *testing.T) {
	from := time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	dates := Dates(from, to)
	assert.Len(t, dates, 4)
	assert.Equal(t, to, dates[3])
	assert.Empty(t, Dates(to, from))
}
