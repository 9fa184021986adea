// Package day defines the canonical calendar-day representation used for all
// standup date handling. A Day is a UTC-midnight instant; every equality and
// range query in the system is derived from Day intervals so that a user in
// any timezone sees a single stable bucket per calendar day.
package day

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate is returned when a date string cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// Day is a calendar day, represented as midnight UTC of that day.
type Day struct {
	t time.Time
}

// Of truncates an arbitrary instant to the UTC day containing it.
func Of(t time.Time) Day {
	u := t.UTC()
	return Day{t: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

// Today returns the current UTC day.
func Today() Day {
	return Of(time.Now())
}

// Parse accepts either a plain date ("2006-01-02") or an RFC 3339 timestamp,
// which is truncated to its UTC day.
func Parse(s string) (Day, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Of(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Of(t), nil
	}
	return Day{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Time returns the UTC-midnight instant for this day. This is the value
// persisted in the standups date column.
func (d Day) Time() time.Time {
	return d.t
}

// Next returns the following calendar day.
func (d Day) Next() Day {
	return Day{t: d.t.AddDate(0, 0, 1)}
}

// Interval returns the half-open UTC interval [start, end) covering this day.
func (d Day) Interval() (start, end time.Time) {
	return d.t, d.Next().t
}

// Before reports whether d falls before other.
func (d Day) Before(other Day) bool {
	return d.t.Before(other.t)
}

// Equal reports whether two Days are the same calendar day.
func (d Day) Equal(other Day) bool {
	return d.t.Equal(other.t)
}

// IsZero reports whether the Day is unset.
func (d Day) IsZero() bool {
	return d.t.IsZero()
}

func (d Day) String() string {
	return d.t.Format("2006-01-02")
}

// RangeInterval returns the half-open UTC interval covering the inclusive day
// range [start, end]: [start 00:00, end+1 00:00).
func RangeInterval(start, end Day) (time.Time, time.Time) {
	return start.t, end.Next().t
}
