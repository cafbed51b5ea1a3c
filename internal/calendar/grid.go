package calendar

import (
	"slices"
	"time"

	"wxcal/internal/model"
)

// Cell is one day of the month grid.
type Cell struct {
	Date       time.Time     `json:"date"`
	InMonth    bool          `json:"in_month"`
	IsToday    bool          `json:"is_today"`
	IsSelected bool          `json:"is_selected"`
	Events     []model.Event `json:"events"`
}

// Preview returns at most limit events and how many were left out.
func (c Cell) Preview(limit int) ([]model.Event, int) {
	if limit < 0 {
		limit = 0
	}
	if len(c.Events) <= limit {
		return c.Events, 0
	}
	return c.Events[:limit], len(c.Events) - limit
}

// Week is one row of the grid.
type Week [7]Cell

// Month is the derived grid for a reference month.
type Month struct {
	// Reference is the first day of the displayed month.
	Reference time.Time `json:"reference"`
	Title     string    `json:"title"`
	WeekStart string    `json:"week_start"`
	Weekdays  [7]string `json:"weekdays"`
	Weeks     []Week    `json:"weeks"`
}

// Cells flattens the grid row by row.
func (m Month) Cells() []Cell {
	out := make([]Cell, 0, len(m.Weeks)*7)
	for _, w := range m.Weeks {
		out = append(out, w[:]...)
	}
	return out
}

// BuildMonth derives the full-week grid covering snap.ReferenceMonth.
// The first cell is the weekStart day on or before the 1st, the last cell
// closes the week holding the month's last day.
func BuildMonth(snap Snapshot, weekStart time.Weekday) Month {
	ref := StartOfMonth(snap.ReferenceMonth)
	first := StartOfWeek(ref, weekStart)
	last := EndOfWeek(EndOfMonth(ref), weekStart)

	m := Month{
		Reference: ref,
		Title:     ref.Format("January 2006"),
		WeekStart: weekStart.String(),
		Weekdays:  WeekdayNames(weekStart),
	}

	// Each cell is derived from the first cell's date, never chained from
	// the previous cell, so a skipped midnight cannot shift the columns.
	fy, fm, fd := first.Date()
	loc := first.Location()
	var week Week
	i := 0
	for n := 0; ; n++ {
		day := startOfDay(fy, fm, fd+n, loc)
		if day.After(last) {
			break
		}
		week[i] = Cell{
			Date:       day,
			InMonth:    SameMonth(day, ref),
			IsToday:    SameDay(snap.Today, day),
			IsSelected: SameDay(snap.SelectedDate, day),
			Events:     slices.Collect(EventsOn(snap.Events, day)),
		}
		i++
		if i == 7 {
			m.Weeks = append(m.Weeks, week)
			week = Week{}
			i = 0
		}
	}
	return m
}

// WeekdayNames returns abbreviated weekday names starting at weekStart.
func WeekdayNames(weekStart time.Weekday) [7]string {
	var out [7]string
	for i := range out {
		out[i] = time.Weekday((int(weekStart) + i) % 7).String()[:3]
	}
	return out
}
