package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Date is a calendar date with no time-of-day and no zone meaning. It is
// kept in UTC only so arithmetic never crosses a DST boundary.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a strict YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysBetween returns the absolute number of calendar days between two
// YYYY-MM-DD strings. ok is false when either side does not parse.
func DaysBetween(a, b string) (days int, ok bool) {
	da, err := ParseDate(a)
	if err != nil {
		return 0, false
	}
	db, err := ParseDate(b)
	if err != nil {
		return 0, false
	}
	diff := int(da.Sub(db.Time).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff, true
}

// ValidClock reports whether s is an HH:MM 24h clock value.
func ValidClock(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

// Window is an inclusive range of calendar dates.
type Window struct {
	From Date
	To   Date
}

// DefaultWindow returns anchor ± months.
func DefaultWindow(anchor Date, months int) Window {
	return Window{
		From: Date{Time: anchor.AddDate(0, -months, 0)},
		To:   Date{Time: anchor.AddDate(0, months, 0)},
	}
}

// Contains reports whether the YYYY-MM-DD string falls inside the window.
func (w Window) Contains(date string) bool {
	d, err := ParseDate(date)
	if err != nil {
		return false
	}
	return !d.Before(w.From.Time) && !d.After(w.To.Time)
}
