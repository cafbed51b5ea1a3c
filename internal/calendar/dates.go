package calendar

import (
	"fmt"
	"time"
)

// DayOf returns the first instant of t's calendar day in t's location.
// That is midnight, except on days where a DST change skips midnight.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return startOfDay(y, m, d, t.Location())
}

// startOfDay returns the first instant of the given date in loc. Out of
// range days are normalised the way time.Date does.
func startOfDay(y int, m time.Month, d int, loc *time.Location) time.Time {
	// Noon exists on every day, so it pins the calendar date.
	y, m, d = time.Date(y, m, d, 12, 0, 0, 0, loc).Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	// A skipped midnight resolves into the previous day.
	for t.Day() != d {
		t = t.Add(30 * time.Minute)
	}
	return t
}

// AddDays moves t by n calendar days, keeping the clock time where the
// target day has it and falling back to the start of that day otherwise.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	want := startOfDay(y, m, d+n, t.Location())
	moved := t.AddDate(0, 0, n)
	if !SameDay(moved, want) {
		return want
	}
	return moved
}

// SameDay reports whether a and b fall on the same calendar day, judged in
// the location of b.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SameMonth reports whether a and b fall in the same month, judged in the
// location of b.
func SameMonth(a, b time.Time) bool {
	ay, am, _ := a.In(b.Location()).Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}

// StartOfMonth returns the start of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return startOfDay(y, m, 1, t.Location())
}

// AddMonths returns the start of the first day of the month n months
// after t's month.
func AddMonths(t time.Time, n int) time.Time {
	y, m, _ := t.Date()
	return startOfDay(y, m+time.Month(n), 1, t.Location())
}

// EndOfMonth returns the start of the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return startOfDay(y, m+1, 0, t.Location())
}

// StartOfWeek returns the weekStart weekday on or before t's day.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	y, m, d := t.Date()
	back := (int(t.Weekday()) - int(weekStart) + 7) % 7
	return startOfDay(y, m, d-back, t.Location())
}

// EndOfWeek returns the last day of the week containing t.
func EndOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	y, m, d := StartOfWeek(t, weekStart).Date()
	return startOfDay(y, m, d+6, t.Location())
}

// LongDate formats t as "June 10th, 2024".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%s %d%s, %d", t.Month(), t.Day(), ordinalSuffix(t.Day()), t.Year())
}

func ordinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}
