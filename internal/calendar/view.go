package calendar

import (
	"errors"
	"strings"
	"time"

	appLog "wxcal/internal/log"
	"wxcal/internal/model"
)

// ErrTitleRequired is returned by Submit when the draft has no title.
var ErrTitleRequired = errors.New("title is required")

// Options configures a mounted View.
type Options struct {
	// WeekStart is the first column of the month grid.
	WeekStart time.Weekday
	// Location is the display timezone used to group events by day.
	// Nil means time.Local.
	Location *time.Location
	// Now supplies the current time; nil means time.Now.
	Now func() time.Time
	// Seed is appended to the store on mount, in order.
	Seed []model.Event
}

// Snapshot is an immutable copy of a view's state. The grid and the day
// panel are pure functions of it.
type Snapshot struct {
	ReferenceMonth time.Time
	SelectedDate   time.Time
	Today          time.Time
	Draft          model.Draft
	Events         []model.Event
}

// View is the month calendar with its event list. A View is owned by a
// single host and is not safe for concurrent use.
type View struct {
	opts      Options
	store     *Store
	selection Selection
	reference time.Time
	today     time.Time
}

// Mount creates a view positioned on today, with the store seeded from
// opts.Seed.
func Mount(opts Options) *View {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	now := opts.Now().In(opts.Location)
	v := &View{
		opts:      opts,
		store:     NewStore(),
		selection: NewSelection(now),
		reference: StartOfMonth(now),
		today:     now,
	}
	for _, ev := range opts.Seed {
		ev.Date = ev.Date.In(opts.Location)
		v.store.Add(ev)
	}

	appLog.Info("calendar view mounted",
		"today", now.Format("2006-01-02"),
		"week_start", opts.WeekStart.String(),
		"timezone", opts.Location.String(),
		"seeded", len(opts.Seed),
	)
	return v
}

// Snapshot copies the current state.
func (v *View) Snapshot() Snapshot {
	return Snapshot{
		ReferenceMonth: v.reference,
		SelectedDate:   v.selection.Selected,
		Today:          v.today,
		Draft:          v.selection.Draft,
		Events:         v.store.All(),
	}
}

// Month derives the grid for the current reference month.
func (v *View) Month() Month {
	return BuildMonth(v.Snapshot(), v.opts.WeekStart)
}

// DayPanel derives the detail panel for the selected day.
func (v *View) DayPanel() DayPanel {
	return BuildDayPanel(v.Snapshot())
}

func (v *View) WeekStart() time.Weekday { return v.opts.WeekStart }

func (v *View) Location() *time.Location { return v.opts.Location }

func (v *View) ReferenceMonth() time.Time { return v.reference }

func (v *View) SelectedDate() time.Time { return v.selection.Selected }

func (v *View) Today() time.Time { return v.today }

func (v *View) Draft() model.Draft { return v.selection.Draft }

// Events returns a copy of the store in insertion order.
func (v *View) Events() []model.Event { return v.store.All() }

func (v *View) Event(id string) (model.Event, bool) { return v.store.Get(id) }

// NextMonth moves the grid to the first day of the following month.
func (v *View) NextMonth() {
	v.reference = AddMonths(v.reference, 1)
}

// PreviousMonth moves the grid to the first day of the preceding month.
func (v *View) PreviousMonth() {
	v.reference = AddMonths(v.reference, -1)
}

// SelectDay focuses day and re-dates the draft.
func (v *View) SelectDay(day time.Time) {
	v.selection.SelectDay(day.In(v.opts.Location))
}

// GoToToday selects today and shows its month.
func (v *View) GoToToday() {
	v.SelectDay(v.today)
	v.reference = StartOfMonth(v.today)
}

// ChangeDraftField edits one draft field.
func (v *View) ChangeDraftField(field DraftField, value string) error {
	return v.selection.ChangeDraftField(field, value)
}

// Submit stores the draft as a new event and resets the draft onto the
// selected day. An empty title creates nothing.
func (v *View) Submit() (model.Event, error) {
	if strings.TrimSpace(v.selection.Draft.Title) == "" {
		return model.Event{}, ErrTitleRequired
	}
	ev := v.store.Add(v.selection.Draft.Event())
	v.selection.ResetDraft(v.selection.Selected)

	appLog.Debug("event added", "id", ev.ID, "title", ev.Title, "type", ev.Type.String(), "date", ev.Date.Format(time.RFC3339))
	return ev, nil
}

// Delete removes an event; unknown IDs are a no-op.
func (v *View) Delete(id string) bool {
	removed := v.store.Remove(id)
	appLog.Debug("event delete", "id", id, "removed", removed)
	return removed
}

// Import adds externally sourced events (ICS feeds/files), skipping those
// without a title. It returns how many were added.
func (v *View) Import(events []model.Event) int {
	n := 0
	for _, ev := range events {
		if strings.TrimSpace(ev.Title) == "" {
			continue
		}
		ev.Date = ev.Date.In(v.opts.Location)
		v.store.Add(ev)
		n++
	}
	return n
}

// ReplaceSource drops every event previously imported from source and
// imports events in their place. Periodic ICS refreshes use it.
func (v *View) ReplaceSource(source string, events []model.Event) int {
	for _, ev := range v.store.All() {
		if ev.Source == source {
			v.store.Remove(ev.ID)
		}
	}
	tagged := make([]model.Event, len(events))
	for i, ev := range events {
		ev.Source = source
		tagged[i] = ev
	}
	return v.Import(tagged)
}

// Refresh re-reads the clock so "today" follows midnight rollovers.
func (v *View) Refresh() {
	v.today = v.opts.Now().In(v.opts.Location)
}
