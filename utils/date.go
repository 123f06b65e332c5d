package utils

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

const YearMonthLayout = "2006-01"

// ParseDate parses a "YYYY-MM-DD" string into a UTC midnight time.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// DateOnly truncates t to a UTC midnight date. All aggregate keys and range
// comparisons go through this so the same calendar day always produces the
// same stored value.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns every calendar day from start to end inclusive.
func DaysBetween(start, end time.Time) []time.Time {
	start = DateOnly(start)
	end = DateOnly(end)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// YearMonth identifies one calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// FirstDay returns the UTC midnight of the month's first day.
func (ym YearMonth) FirstDay() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// NextMonth returns the UTC midnight of the following month's first day.
func (ym YearMonth) NextMonth() time.Time {
	return ym.FirstDay().AddDate(0, 1, 0)
}

// ParseYearMonth parses a "YYYY-MM" string.
func ParseYearMonth(value string) (YearMonth, error) {
	t, err := time.Parse(YearMonthLayout, value)
	if err != nil {
		return YearMonth{}, err
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// MonthsBetween returns every calendar month touched by [start, end],
// inclusive on both sides.
func MonthsBetween(start, end time.Time) []YearMonth {
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)

	var months []YearMonth
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		months = append(months, YearMonth{Year: m.Year(), Month: m.Month()})
	}
	return months
}

// Yesterday returns yesterday's date in the given IANA timezone, falling
// back to UTC when the zone is empty or unknown.
func Yesterday(timezone string) time.Time {
	loc := time.UTC
	if timezone != "" {
		if l, err := time.LoadLocation(timezone); err == nil {
			loc = l
		}
	}
	now := time.Now().In(loc).AddDate(0, 0, -1)
	return DateOnly(now)
}
