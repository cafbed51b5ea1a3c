package ics

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wxcal/internal/model"
)

const fixture = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:standup@test
DTSTAMP:20240601T000000Z
DTSTART:20240603T090000Z
DTEND:20240603T091500Z
SUMMARY:Standup
RRULE:FREQ=DAILY;COUNT=5
EXDATE:20240605T090000Z
END:VEVENT
BEGIN:VEVENT
UID:standup@test
DTSTAMP:20240601T000000Z
RECURRENCE-ID:20240606T090000Z
DTSTART:20240606T100000Z
DTEND:20240606T101500Z
SUMMARY:Standup (moved)
END:VEVENT
BEGIN:VEVENT
UID:report@test
DTSTAMP:20240601T000000Z
DTSTART;VALUE=DATE:20240628
DTEND;VALUE=DATE:20240629
SUMMARY:Climate report deadline
END:VEVENT
BEGIN:VEVENT
UID:probe@test
DTSTAMP:20240601T000000Z
DTSTART:20240610T120000Z
DTEND:20240610T130000Z
SUMMARY:Probe swap
DESCRIPTION:north mast
CATEGORIES:TASK
END:VEVENT
BEGIN:VEVENT
DTSTAMP:20240601T000000Z
DTSTART:20240611T120000Z
SUMMARY:No uid
END:VEVENT
END:VCALENDAR
`

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

func juneWindow() ExpandConfig {
	return ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:        time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestParseICS(t *testing.T) {
	events, err := ParseICS(Source{ID: "t"}, crlf(fixture))
	if err != nil {
		t.Fatalf("ParseICS: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events (uid-less one skipped), got %d", len(events))
	}

	byUID := map[string][]ParsedEvent{}
	for _, ev := range events {
		byUID[ev.UID] = append(byUID[ev.UID], ev)
	}
	if len(byUID["standup@test"]) != 2 {
		t.Fatalf("standup series = %+v", byUID["standup@test"])
	}
	report := byUID["report@test"][0]
	if !report.AllDay {
		t.Fatalf("VALUE=DATE event not detected as all-day")
	}
	probe := byUID["probe@test"][0]
	if len(probe.Categories) != 1 || probe.Categories[0] != "TASK" || probe.Description != "north mast" {
		t.Fatalf("probe = %+v", probe)
	}

	if _, err := ParseICS(Source{}, nil); err != ErrEmptyBody {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestExpandOccurrences(t *testing.T) {
	events, err := ParseICS(Source{ID: "t"}, crlf(fixture))
	if err != nil {
		t.Fatalf("ParseICS: %v", err)
	}
	res, err := ExpandOccurrences(events, juneWindow())
	if err != nil {
		t.Fatalf("ExpandOccurrences: %v", err)
	}

	var got []string
	for _, occ := range res.Occurrences {
		got = append(got, occ.Start.Format("01-02 15:04")+" "+occ.Summary)
	}
	want := []string{
		"06-03 09:00 Standup",
		"06-04 09:00 Standup",
		"06-06 10:00 Standup (moved)",
		"06-07 09:00 Standup",
		"06-10 12:00 Probe swap",
		"06-28 00:00 Climate report deadline",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("occurrences:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}

	last := res.Occurrences[len(res.Occurrences)-1]
	if !last.AllDay || !last.End.Equal(time.Date(2024, time.June, 29, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("all-day occurrence = %+v", last)
	}
}

func TestExpandCapAndRange(t *testing.T) {
	daily := ParsedEvent{
		UID:      "d",
		Summary:  "Balloon launch",
		Start:    time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, time.June, 1, 0, 30, 0, 0, time.UTC),
		RawRRule: "FREQ=DAILY",
	}
	cfg := juneWindow()
	cfg.MaxOccurrencesPerEvent = 10
	res, err := ExpandOccurrences([]ParsedEvent{daily}, cfg)
	if err != nil {
		t.Fatalf("ExpandOccurrences: %v", err)
	}
	if len(res.Occurrences) != 10 || len(res.TruncatedEvents) != 1 || res.TruncatedEvents[0] != "d" {
		t.Fatalf("cap not applied: %d occurrences, truncated %v", len(res.Occurrences), res.TruncatedEvents)
	}

	cfg.RangeEnd = cfg.RangeStart.Add(-time.Hour)
	if _, err := ExpandOccurrences(nil, cfg); err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestExpandDisplayLocationKeepsAllDayDate(t *testing.T) {
	la := time.FixedZone("PDT", -7*3600)
	ev := ParsedEvent{
		UID:     "x",
		Summary: "Field day",
		Start:   time.Date(2024, time.June, 28, 0, 0, 0, 0, time.UTC),
		End:     time.Date(2024, time.June, 29, 0, 0, 0, 0, time.UTC),
		AllDay:  true,
	}
	cfg := juneWindow()
	cfg.DisplayLocation = la
	res, _ := ExpandOccurrences([]ParsedEvent{ev}, cfg)
	if len(res.Occurrences) != 1 {
		t.Fatalf("expected one occurrence")
	}
	if d := res.Occurrences[0].Start; d.Day() != 28 || d.Location() != la {
		t.Fatalf("all-day event moved to %s", d)
	}
}

func TestClassifier(t *testing.T) {
	c := Classifier{Task: []string{"analysis"}, Reminder: []string{"deadline"}}
	cases := []struct {
		occ  model.Occurrence
		want model.EventType
	}{
		{model.Occurrence{Summary: "Weather team meeting"}, model.Meeting},
		{model.Occurrence{Summary: "Satellite data Analysis"}, model.Task},
		{model.Occurrence{Summary: "Monthly report deadline"}, model.Reminder},
		{model.Occurrence{Summary: "deadline analysis"}, model.Reminder},
		{model.Occurrence{Summary: "Monthly report deadline", Categories: []string{"Work", "meeting"}}, model.Meeting},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.occ); got != tc.want {
			t.Fatalf("Classify(%+v) = %v, want %v", tc.occ, got, tc.want)
		}
	}
}

func TestImportFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "team.ics")
	if err := os.WriteFile(path, crlf(fixture), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, errs := Import(context.Background(), NewFetcher(t.TempDir()), []Source{
		{ID: "team", URL: path},
		{ID: "missing", URL: filepath.Join(t.TempDir(), "nope.ics")},
	}, ImportConfig{
		Location:    time.UTC,
		Now:         time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
		HorizonDays: 30,
		Classifier:  Classifier{Reminder: []string{"deadline"}},
	})
	if len(errs) != 1 {
		t.Fatalf("expected one error for the missing file, got %v", errs)
	}
	events := got["team"]
	if len(events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(events))
	}
	types := map[string]model.EventType{}
	for _, ev := range events {
		if ev.Source != "team" || ev.ID != "" {
			t.Fatalf("unexpected event %+v", ev)
		}
		types[ev.Title] = ev.Type
	}
	if types["Probe swap"] != model.Task || types["Climate report deadline"] != model.Reminder || types["Standup"] != model.Meeting {
		t.Fatalf("types = %v", types)
	}
}

func TestExportRoundTrip(t *testing.T) {
	events := []model.Event{
		{ID: "1", Title: "Radar calibration", Date: time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC), Type: model.Task, Description: "north site"},
		{ID: "2", Title: "Report due", Date: time.Date(2024, time.June, 12, 17, 0, 0, 0, time.UTC), Type: model.Reminder},
	}
	var buf bytes.Buffer
	if err := Export(&buf, events, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(buf.String(), "BEGIN:VCALENDAR") || !strings.Contains(buf.String(), "UID:1@wxcal") {
		t.Fatalf("unexpected export:\n%s", buf.String())
	}

	parsed, err := ParseICS(Source{ID: "export"}, buf.Bytes())
	if err != nil {
		t.Fatalf("ParseICS: %v", err)
	}
	res, err := ExpandOccurrences(parsed, juneWindow())
	if err != nil {
		t.Fatalf("ExpandOccurrences: %v", err)
	}
	back := Classifier{}.ToEvents(res.Occurrences)
	if len(back) != 2 {
		t.Fatalf("expected 2 events back, got %d", len(back))
	}
	for i, ev := range back {
		if ev.Title != events[i].Title || ev.Type != events[i].Type || !ev.Date.Equal(events[i].Date) || ev.Description != events[i].Description {
			t.Fatalf("event %d: got %+v want %+v", i, ev, events[i])
		}
	}
}

func TestFetchOneCaching(t *testing.T) {
	hits := 0
	fail := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if fail {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write(crlf(fixture))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "remote", URL: srv.URL + "/team.ics?token=secret"}

	res, err := f.FetchOne(context.Background(), src)
	if err != nil || res.FromCache || len(res.Body) == 0 {
		t.Fatalf("first fetch: %+v, %v", res, err)
	}
	res, err = f.FetchOne(context.Background(), src)
	if err != nil || !res.FromCache {
		t.Fatalf("second fetch should hit 304 + cache: %+v, %v", res.FromCache, err)
	}
	fail = true
	res, err = f.FetchOne(context.Background(), src)
	if err != nil || !res.FromCache || len(res.Body) == 0 {
		t.Fatalf("failing remote should fall back to cache: %v", err)
	}
	if hits != 3 {
		t.Fatalf("expected 3 requests, got %d", hits)
	}

	other := Source{ID: "cold", URL: srv.URL + "/other.ics"}
	if _, err := f.FetchOne(context.Background(), other); err == nil {
		t.Fatalf("failing remote without cache must error")
	}
}

func TestRedactURL(t *testing.T) {
	if got := redactURL("https://cal.example.test/private/abc.ics?token=x"); got != "https://cal.example.test/...(redacted)" {
		t.Fatalf("redactURL = %q", got)
	}
	if got := redactURL("not a url"); got != "ics://...(redacted)" {
		t.Fatalf("redactURL = %q", got)
	}
}
