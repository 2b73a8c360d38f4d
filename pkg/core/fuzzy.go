package core

import (
	"fmt"
	"time"
)

// FuzzyDate describes an approximate date: a year, optionally narrowed
// to a month, optionally narrowed to a day. Month == 0 means "sometime
// that year"; Day == 0 means "sometime that month".
type FuzzyDate struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month,omitempty"`
	Day   int        `json:"day,omitempty"`
}

// Resolve returns the midpoint of the described range, used to place the
// event on a timeline: noon of the day, the 15th of the month, or July 1
// of the year. All results are UTC.
func (f FuzzyDate) Resolve() time.Time {
	switch {
	case f.Month == 0:
		return time.Date(f.Year, time.July, 1, 0, 0, 0, 0, time.UTC)
	case f.Day == 0:
		return time.Date(f.Year, f.Month, 15, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(f.Year, f.Month, f.Day, 12, 0, 0, 0, time.UTC)
	}
}

// String renders the date at its known precision.
func (f FuzzyDate) String() string {
	switch {
	case f.Month == 0:
		return fmt.Sprintf("%d", f.Year)
	case f.Day == 0:
		return fmt.Sprintf("%d-%02d", f.Year, int(f.Month))
	default:
		return fmt.Sprintf("%d-%02d-%02d", f.Year, int(f.Month), f.Day)
	}
}
