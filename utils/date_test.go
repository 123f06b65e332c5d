package utils

import (
	"testing"
	"time"
)

func TestParseDateNormalizesToUTCMidnight(t *testing.T) {
	got, err := ParseDate("2025-09-13")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	want := time.Date(2025, time.September, 13, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, err := ParseDate("13/09/2025"); err == nil {
		t.Fatal("expected error for wrong layout")
	}
}

func TestDateOnlyDropsClockAndZone(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	in := time.Date(2025, time.September, 13, 23, 45, 10, 0, loc)

	got := DateOnly(in)
	want := time.Date(2025, time.September, 13, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDaysBetweenIsInclusive(t *testing.T) {
	start := time.Date(2025, time.September, 28, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.October, 2, 0, 0, 0, 0, time.UTC)

	days := DaysBetween(start, end)
	if len(days) != 5 {
		t.Fatalf("len = %d, want 5", len(days))
	}
	if !days[0].Equal(start) || !days[4].Equal(end) {
		t.Fatalf("bounds wrong: first=%v last=%v", days[0], days[4])
	}

	single := DaysBetween(start, start)
	if len(single) != 1 {
		t.Fatalf("single day range len = %d, want 1", len(single))
	}
}

func TestMonthsBetweenSpansYearBoundary(t *testing.T) {
	start := time.Date(2024, time.November, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)

	months := MonthsBetween(start, end)
	want := []YearMonth{
		{Year: 2024, Month: time.November},
		{Year: 2024, Month: time.December},
		{Year: 2025, Month: time.January},
		{Year: 2025, Month: time.February},
	}
	if len(months) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(months), len(want), months)
	}
	for i := range want {
		if months[i] != want[i] {
			t.Fatalf("months[%d] = %v, want %v", i, months[i], want[i])
		}
	}
}

func TestYearMonthHelpers(t *testing.T) {
	ym := YearMonth{Year: 2025, Month: time.September}

	if ym.String() != "2025-09" {
		t.Fatalf("String = %q, want 2025-09", ym.String())
	}
	if got := ym.FirstDay(); !got.Equal(time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("FirstDay = %v", got)
	}
	if got := ym.NextMonth(); !got.Equal(time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("NextMonth = %v", got)
	}

	dec := YearMonth{Year: 2024, Month: time.December}
	if got := dec.NextMonth(); !got.Equal(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("NextMonth across year = %v", got)
	}
}

func TestParseYearMonth(t *testing.T) {
	ym, err := ParseYearMonth("2025-09")
	if err != nil {
		t.Fatalf("ParseYearMonth: %v", err)
	}
	if ym.Year != 2025 || ym.Month != time.September {
		t.Fatalf("got %v", ym)
	}

	if _, err := ParseYearMonth("2025/09"); err == nil {
		t.Fatal("expected error for wrong layout")
	}
}

func TestYesterdayFallsBackToUTC(t *testing.T) {
	got := Yesterday("Not/AZone")
	want := DateOnly(time.Now().UTC().AddDate(0, 0, -1))
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
