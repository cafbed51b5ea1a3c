package calendar

import (
	"errors"
	"strings"
	"time"

	"wxcal/internal/model"
)

var (
	ErrUnknownField = errors.New("unknown draft field")
	ErrInvalidDate  = errors.New("invalid draft date")
)

// DraftField names one editable field of the new-event form.
type DraftField string

const (
	FieldTitle       DraftField = "title"
	FieldDescription DraftField = "description"
	FieldType        DraftField = "type"
	FieldDate        DraftField = "date"
)

// Selection holds the focused day and the new-event draft.
type Selection struct {
	Selected time.Time
	Draft    model.Draft
}

// NewSelection selects day and starts an empty meeting draft on it.
func NewSelection(day time.Time) Selection {
	var s Selection
	s.Selected = day
	s.ResetDraft(day)
	return s
}

// SelectDay moves the selection and keeps the draft date in step with it.
// Text fields of the draft are left alone.
func (s *Selection) SelectDay(day time.Time) {
	s.Selected = day
	s.Draft.Date = day
}

// ChangeDraftField sets exactly one draft field. Dates are accepted as
// 2006-01-02, 2006-01-02T15:04 or RFC 3339, interpreted in the location of
// the current selection.
func (s *Selection) ChangeDraftField(field DraftField, value string) error {
	switch field {
	case FieldTitle:
		s.Draft.Title = value
	case FieldDescription:
		s.Draft.Description = value
	case FieldType:
		t, err := model.ParseEventType(value)
		if err != nil {
			return err
		}
		s.Draft.Type = t
	case FieldDate:
		d, err := ParseDate(value, s.Selected.Location())
		if err != nil {
			return err
		}
		s.Draft.Date = d
	default:
		return ErrUnknownField
	}
	return nil
}

// ResetDraft clears the text fields, restores the default type and dates
// the draft on day.
func (s *Selection) ResetDraft(day time.Time) {
	s.Draft = model.Draft{
		Type: model.Meeting,
		Date: day,
	}
}

// ParseDate reads the date forms accepted from forms and the HTTP API:
// 2006-01-02, 2006-01-02T15:04 and RFC 3339. Values without an offset are
// interpreted in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", value, loc); err == nil {
		return t, nil
	}
	// A bare date means the start of that day in loc, which is not always
	// midnight.
	if t, err := time.Parse("2006-01-02", value); err == nil {
		y, m, d := t.Date()
		return startOfDay(y, m, d, loc), nil
	}
	return time.Time{}, ErrInvalidDate
}
