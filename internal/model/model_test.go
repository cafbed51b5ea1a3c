package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestEventTypePresentation(t *testing.T) {
	cases := []struct {
		typ   EventType
		name  string
		label string
		badge string
		tone  string
	}{
		{Meeting, "meeting", "Meeting", "default", "blue"},
		{Task, "task", "Task", "secondary", "green"},
		{Reminder, "reminder", "Reminder", "outline", "yellow"},
	}
	for _, tc := range cases {
		if tc.typ.String() != tc.name || tc.typ.Label() != tc.label || tc.typ.Badge() != tc.badge || tc.typ.Tone() != tc.tone {
			t.Fatalf("unexpected presentation for %v: %s %s %s %s", tc.name, tc.typ, tc.typ.Label(), tc.typ.Badge(), tc.typ.Tone())
		}
		got, err := ParseEventType(tc.name)
		if err != nil || got != tc.typ {
			t.Fatalf("ParseEventType(%q) = %v, %v", tc.name, got, err)
		}
	}
}

func TestParseEventTypeUnknown(t *testing.T) {
	if _, err := ParseEventType("party"); !errors.Is(err, ErrUnknownEventType) {
		t.Fatalf("expected ErrUnknownEventType, got %v", err)
	}
}

func TestEventTypeCycle(t *testing.T) {
	if Meeting.Next() != Task || Task.Next() != Reminder || Reminder.Next() != Meeting {
		t.Fatalf("Next does not cycle in display order")
	}
	for _, typ := range EventTypes {
		if typ.Next().Prev() != typ {
			t.Fatalf("Prev is not the inverse of Next for %v", typ)
		}
	}
}

func TestEventJSON(t *testing.T) {
	ev := Event{ID: "x", Title: "Standup", Date: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), Type: Reminder}
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"x","title":"Standup","date":"2024-06-10T09:00:00Z","type":"reminder"}`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}

	var back Event
	if err := json.Unmarshal([]byte(`{"title":"t","type":"bogus"}`), &back); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestDraftEventTrims(t *testing.T) {
	d := Draft{Title: "  Launch  ", Description: " ", Type: Task}
	ev := d.Event()
	if ev.Title != "Launch" || ev.Description != "" || ev.Type != Task || ev.ID != "" {
		t.Fatalf("unexpected event from draft: %+v", ev)
	}
}
