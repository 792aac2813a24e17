package utils

import (
	"fmt"
	"time"
)

// TimestampLayout is the layout used when telling the model today's date.
const TimestampLayout = "2006-01-02 15:04:05"

// EarliestFiscalYear is the first year the statements provider reports.
const EarliestFiscalYear = 1990

// FormatTimestamp renders t with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ValidateFiscalYear rejects years the provider cannot have data for:
// before EarliestFiscalYear or more than one year past now.
func ValidateFiscalYear(year int, now time.Time) error {
	if year < EarliestFiscalYear {
		return fmt.Errorf("fiscal year %d is before %d", year, EarliestFiscalYear)
	}
	if year > now.Year()+1 {
		return fmt.Errorf("fiscal year %d is in the future", year)
	}
	return nil
}
