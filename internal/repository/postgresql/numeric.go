package postgresql

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NUMERIC columns are read as ::text and written as strings cast with ::numeric
// so no precision passes through float64.
func parseNumeric(column, v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %s %q: %w", column, v, err)
	}
	return d, nil
}
