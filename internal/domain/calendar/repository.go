package calendar

import (
	"context"
	"time"
)

type HolidayRepository interface {
	// ListActive returns active holidays, restricted ones included, dated within [from, to].
	ListActive(ctx context.Context, from, to time.Time) ([]Holiday, error)
}

// Classifier answers calendar questions for an employee.
type Classifier interface {
	Classify(ctx context.Context, employeeID string, date time.Time) (Classification, error)
	ClassifyRange(ctx context.Context, employeeID string, from, to time.Time) ([]Classification, error)
}
