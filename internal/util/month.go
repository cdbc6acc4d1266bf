package util

import (
	"fmt"
	"time"
)

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// NextMonth returns the year and month for the following month
func NextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}

// SameMonth reports whether t falls in the calendar month and year of ref,
// with t converted to ref's location first.
func SameMonth(t, ref time.Time) bool {
	t = t.In(ref.Location())
	return t.Year() == ref.Year() && t.Month() == ref.Month()
}

// MonthBounds returns the first and last instant of the given month in loc
func MonthBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// MonthReference returns a time inside the requested month, for use as a
// month reference in aggregation. Month must be 1..12.
func MonthReference(year, month int, loc *time.Location) (time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month %d out of range", month)
	}
	if year < 1 {
		return time.Time{}, fmt.Errorf("year %d out of range", year)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc), nil
}
