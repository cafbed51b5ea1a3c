package ics

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"wxcal/internal/model"
)

const productID = "-//wxcal//Weather Team Calendar//EN"

// Export writes events as a VCALENDAR. Each event becomes a VEVENT with a
// one hour duration; the type is written to CATEGORIES so a later import
// restores it.
func Export(w io.Writer, events []model.Event, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, ev := range events {
		ve := cal.AddEvent(ev.ID + "@wxcal")
		ve.SetDtStampTime(stamp.UTC())
		ve.SetStartAt(ev.Date.UTC())
		ve.SetEndAt(ev.Date.Add(time.Hour).UTC())
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		ve.SetProperty(ical.ComponentPropertyCategories, ev.Type.String())
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}
