package utils

import (
	"fmt"
	"time"
)

const (
	// StatementDateFormat matches the dates printed on E-Trade brokerage
	// statements, e.g. "03/01/21".
	StatementDateFormat = "01/02/06"
	// ISODateFormat is the form the rate source keys its tables by.
	ISODateFormat = "2006-01-02"
)

// ParseStatementDate parses the month/day/two-digit-year date used on
// brokerage statements.
func ParseStatementDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(StatementDateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing statement date %q: %w", dateStr, err)
	}
	return t, nil
}

// FormatISODate renders a date in the ISO form the rate source expects.
func FormatISODate(t time.Time) string {
	return t.Format(ISODateFormat)
}
