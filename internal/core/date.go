package core

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time component. The zero value means
// "no date".
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a stored date string in the external "dd/mm/yyyy" format.
// Parsing is strict: two-digit day and month, four-digit year, month 1-12,
// and the day must exist in that month (leap February included). Anything
// else returns ErrInvalidDate; it never panics.
func ParseDate(s string) (Date, error) {
	if len(s) != 10 || s[2] != '/' || s[5] != '/' {
		return Date{}, ErrInvalidDate
	}
	day, ok := atoi2(s[0:2])
	if !ok {
		return Date{}, ErrInvalidDate
	}
	month, ok := atoi2(s[3:5])
	if !ok {
		return Date{}, ErrInvalidDate
	}
	year, ok := atoi4(s[6:10])
	if !ok {
		return Date{}, ErrInvalidDate
	}
	if month < 1 || month > 12 {
		return Date{}, ErrInvalidDate
	}
	if day < 1 || day > daysInMonth(year, month) {
		return Date{}, ErrInvalidDate
	}
	return NewDate(year, month, day), nil
}

// String renders the date back in the stored "dd/mm/yyyy" format.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d/%02d/%04d", d.Time.Day(), int(d.Time.Month()), d.Time.Year())
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d falls strictly after other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func daysInMonth(year, month int) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, time.Month(month+1), 0, 0, 0, 0, 0, time.UTC).Day()
}

func atoi2(s string) (int, bool) {
	if len(s) != 2 || !isDigit(s[0]) || !isDigit(s[1]) {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

func atoi4(s string) (int, bool) {
	n := 0
	for i := 0; i < 4; i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
