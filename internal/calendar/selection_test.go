package calendar

import (
	"errors"
	"testing"
	"time"

	"wxcal/internal/model"
)

func TestResetDraft(t *testing.T) {
	s := NewSelection(date(2024, time.June, 1))
	s.Draft = model.Draft{Title: "x", Description: "y", Type: model.Reminder, Date: date(2024, time.June, 2)}

	d := date(2024, time.June, 9)
	s.ResetDraft(d)
	if s.Draft.Title != "" || s.Draft.Description != "" || s.Draft.Type != model.Meeting || !s.Draft.Date.Equal(d) {
		t.Fatalf("draft not reset: %+v", s.Draft)
	}
}

func TestChangeDraftField(t *testing.T) {
	s := NewSelection(date(2024, time.June, 1))

	cases := []struct {
		field DraftField
		value string
		check func(model.Draft) bool
	}{
		{FieldTitle, "Radar calibration", func(d model.Draft) bool { return d.Title == "Radar calibration" }},
		{FieldDescription, "north site", func(d model.Draft) bool { return d.Description == "north site" }},
		{FieldType, "Reminder", func(d model.Draft) bool { return d.Type == model.Reminder }},
		{FieldDate, "2024-06-15", func(d model.Draft) bool { return d.Date.Equal(date(2024, time.June, 15)) }},
		{FieldDate, "2024-06-15T13:45", func(d model.Draft) bool {
			return d.Date.Equal(time.Date(2024, time.June, 15, 13, 45, 0, 0, time.UTC))
		}},
		{FieldDate, "2024-06-15T13:45:00+02:00", func(d model.Draft) bool {
			return d.Date.Equal(time.Date(2024, time.June, 15, 11, 45, 0, 0, time.UTC))
		}},
	}
	for _, tc := range cases {
		before := s.Draft
		if err := s.ChangeDraftField(tc.field, tc.value); err != nil {
			t.Fatalf("ChangeDraftField(%s, %q): %v", tc.field, tc.value, err)
		}
		if !tc.check(s.Draft) {
			t.Fatalf("ChangeDraftField(%s, %q) gave %+v", tc.field, tc.value, s.Draft)
		}
		// Exactly one field changes.
		changed := 0
		if before.Title != s.Draft.Title {
			changed++
		}
		if before.Description != s.Draft.Description {
			changed++
		}
		if before.Type != s.Draft.Type {
			changed++
		}
		if !before.Date.Equal(s.Draft.Date) {
			changed++
		}
		if changed > 1 {
			t.Fatalf("ChangeDraftField(%s) changed %d fields", tc.field, changed)
		}
	}
}

func TestChangeDraftFieldErrors(t *testing.T) {
	s := NewSelection(date(2024, time.June, 1))
	s.Draft.Title = "keep"
	before := s.Draft

	if err := s.ChangeDraftField("colour", "red"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := s.ChangeDraftField(FieldType, "party"); !errors.Is(err, model.ErrUnknownEventType) {
		t.Fatalf("expected ErrUnknownEventType, got %v", err)
	}
	if err := s.ChangeDraftField(FieldDate, "next tuesday"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if s.Draft != before {
		t.Fatalf("failed changes modified the draft: %+v", s.Draft)
	}
}

func TestSelectDayWithoutMidnight(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		t.Fatal(err)
	}
	v := Mount(Options{
		WeekStart: time.Sunday,
		Location:  loc,
		Now:       fixedClock(time.Date(2024, time.September, 5, 12, 0, 0, 0, loc)),
	})
	v.Import([]model.Event{{Title: "Saturday sounding", Date: time.Date(2024, time.September, 7, 20, 0, 0, 0, loc), Type: model.Task}})

	day, err := ParseDate("2024-09-08", loc)
	if err != nil {
		t.Fatal(err)
	}
	v.SelectDay(day)

	panel := v.DayPanel()
	if panel.Heading != "September 8th, 2024" {
		t.Fatalf("heading = %q", panel.Heading)
	}
	if !panel.Empty {
		t.Fatalf("gap day shows events of the previous day: %+v", panel.Items)
	}
	if got := v.Draft().Date.Format("2006-01-02"); got != "2024-09-08" {
		t.Fatalf("draft dated %s", got)
	}

	var found bool
	for _, c := range v.Month().Cells() {
		if c.IsSelected {
			if found {
				t.Fatal("more than one selected cell")
			}
			found = true
			if got := c.Date.Format("2006-01-02"); got != "2024-09-08" {
				t.Fatalf("selected cell is %s", got)
			}
		}
	}
	if !found {
		t.Fatal("no selected cell")
	}
}
