// Package calendar holds the date arithmetic shared by attendance and payroll:
// month names, period bounds and day normalisation.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the storage and input format for calendar dates.
const DateLayout = "2006-01-02"

var monthNames = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

// ErrUnknownMonth is returned by ParseMonth for input outside the 12-month set.
type ErrUnknownMonth struct {
	Input string
}

func (e ErrUnknownMonth) Error() string {
	return fmt.Sprintf("unknown month %q", e.Input)
}

// ParseMonth accepts an English month name, its three-letter abbreviation or
// a number from 1 to 12. Matching ignores case and surrounding spaces.
func ParseMonth(s string) (time.Month, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	if in == "" {
		return 0, ErrUnknownMonth{Input: s}
	}
	if n, err := strconv.Atoi(in); err == nil {
		if n < 1 || n > 12 {
			return 0, ErrUnknownMonth{Input: s}
		}
		return time.Month(n), nil
	}
	if m, ok := monthNames[in]; ok {
		return m, nil
	}
	if len(in) == 3 {
		for name, m := range monthNames {
			if strings.HasPrefix(name, in) {
				return m, nil
			}
		}
	}
	return 0, ErrUnknownMonth{Input: s}
}

// ShortName returns the three-letter English abbreviation of m.
func ShortName(m time.Month) string {
	return m.String()[:3]
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// MonthBounds returns the first and last calendar day of the month, both inclusive.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return from, to
}

// Dates are stored as four-digit YYYY-MM-DD text, which only covers these years.
const (
	MinYear = 1
	MaxYear = 9999
)

// ValidYear reports whether year fits the date layout.
func ValidYear(year int) bool {
	return year >= MinYear && year <= MaxYear
}
