package model

import (
	"errors"
	"strings"
	"time"
)

// ErrUnknownEventType is returned when parsing a name outside the closed
// set of event types.
var ErrUnknownEventType = errors.New("unknown event type")

// EventType is the closed category set of an Event.
type EventType int

const (
	Meeting EventType = iota
	Task
	Reminder
)

// EventTypes lists every type in display order.
var EventTypes = []EventType{Meeting, Task, Reminder}

// ParseEventType parses the lowercase name of an event type.
func ParseEventType(s string) (EventType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "meeting":
		return Meeting, nil
	case "task":
		return Task, nil
	case "reminder":
		return Reminder, nil
	}
	return Meeting, ErrUnknownEventType
}

func (t EventType) String() string {
	switch t {
	case Meeting:
		return "meeting"
	case Task:
		return "task"
	case Reminder:
		return "reminder"
	}
	return "unknown"
}

// Label is the capitalized name shown on badges.
func (t EventType) Label() string {
	switch t {
	case Meeting:
		return "Meeting"
	case Task:
		return "Task"
	case Reminder:
		return "Reminder"
	}
	return "Unknown"
}

// Badge returns the badge variant used for this type.
func (t EventType) Badge() string {
	switch t {
	case Task:
		return "secondary"
	case Reminder:
		return "outline"
	default:
		return "default"
	}
}

// Tone returns the colour category of this type.
func (t EventType) Tone() string {
	switch t {
	case Task:
		return "green"
	case Reminder:
		return "yellow"
	default:
		return "blue"
	}
}

// Next cycles through EventTypes; used by form selectors.
func (t EventType) Next() EventType {
	return EventTypes[(int(t)+1)%len(EventTypes)]
}

// Prev is the inverse of Next.
func (t EventType) Prev() EventType {
	n := len(EventTypes)
	return EventTypes[(int(t)+n-1)%n]
}

func (t EventType) MarshalText() ([]byte, error) {
	if t < Meeting || t > Reminder {
		return nil, ErrUnknownEventType
	}
	return []byte(t.String()), nil
}

func (t *EventType) UnmarshalText(b []byte) error {
	v, err := ParseEventType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Event is a user-created calendar entry. Only the calendar day of Date
// is used for grouping, but the full timestamp is kept.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Type        EventType `json:"type"`
	Description string    `json:"description,omitempty"`
	// Source is the ICS source ID for imported events, empty for events
	// created in the view.
	Source string `json:"source,omitempty"`
}

// Draft is the uncommitted state behind the new-event form.
type Draft struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        EventType `json:"type"`
	Date        time.Time `json:"date"`
}

// Event converts the draft into an Event without an ID.
func (d Draft) Event() Event {
	return Event{
		Title:       strings.TrimSpace(d.Title),
		Date:        d.Date,
		Type:        d.Type,
		Description: strings.TrimSpace(d.Description),
	}
}

// Occurrence represents a single concrete instance of an imported ICS
// event (after recurrence expansion and timezone normalization).
type Occurrence struct {
	SourceID string // calendar source ID
	UID      string // iCalendar UID

	// InstanceKey uniquely identifies a single occurrence of a recurring
	// event, typically derived from the local start time.
	InstanceKey string

	Summary     string
	Description string
	Categories  []string

	AllDay bool

	// Start / End are in the configured display timezone.
	Start time.Time
	End   time.Time
}
