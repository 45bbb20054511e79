// Package core holds the domain types shared by every layer: calendar
// dates, money amounts, transactions, recurring rules and cashflow
// snapshots.
//
// All dates in saldo are timezone-less calendar dates. Date deliberately
// carries year/month/day integers instead of a time.Time so that no
// timezone shift can ever move an entry to a neighbouring day.
package core

import (
	"errors"
	"fmt"
	"time"
)

// Date is a calendar date without time-of-day or timezone.
// The zero value is "no date" (used for open-ended rule end dates).
type Date struct {
	Year  int
	Month int // 1-12
	Day   int // 1-31
}

// NewDate creates a Date from year, month (1-12) and day.
func NewDate(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return Date{Year: now.Year(), Month: int(now.Month()), Day: now.Day()}
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	if d.Month < 1 || d.Month > 12 {
		return ErrInvalidMonth
	}
	if d.Day < 1 || d.Day > DaysInMonth(d.Year, d.Month) {
		return ErrInvalidDay
	}
	return nil
}

// ISO returns the date formatted as YYYY-MM-DD.
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) String() string { return d.ISO() }

// MarshalJSON encodes the date as an ISO-8601 string. The zero date
// encodes as the empty string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.ISO() + `"`), nil
}

// UnmarshalJSON decodes an ISO-8601 string. Empty strings and null
// yield the zero date.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date literal %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) toTime() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return other.Before(d) }

// Equal reports whether two dates are the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.Year == other.Year && d.Month == other.Month && d.Day == other.Day
}

// AddDays returns the date n days later (n may be negative).
func (d Date) AddDays(n int) Date {
	t := d.toTime().AddDate(0, 0, n)
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// DaysSince returns the number of whole days from other to d.
// Negative when d is before other.
func (d Date) DaysSince(other Date) int {
	return int(d.toTime().Sub(other.toTime()).Hours() / 24)
}

// Weekday returns the day of week, 0=Sunday through 6=Saturday.
func (d Date) Weekday() int {
	return int(d.toTime().Weekday())
}

// DaysInMonth returns the number of days in the given month,
// accounting for leap years.
func DaysInMonth(year, month int) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstOfMonth returns the first calendar day of the given month.
func FirstOfMonth(year, month int) Date {
	return Date{Year: year, Month: month, Day: 1}
}

// LastOfMonth returns the last calendar day of the given month.
func LastOfMonth(year, month int) Date {
	return Date{Year: year, Month: month, Day: DaysInMonth(year, month)}
}
