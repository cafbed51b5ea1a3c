package calendar

import (
	"time"

	"wxcal/internal/model"
)

// PanelItem is one event as listed in the day detail panel.
type PanelItem struct {
	Event       model.Event `json:"event"`
	Label       string      `json:"label"`
	Badge       string      `json:"badge"`
	Tone        string      `json:"tone"`
	Description string      `json:"description,omitempty"`
	Time        string      `json:"time"`
}

// DayPanel is the derived content of the detail panel for the selected day.
type DayPanel struct {
	Date    time.Time   `json:"date"`
	Heading string      `json:"heading"`
	Items   []PanelItem `json:"items"`
	// Empty is set when the day has no events; hosts show an empty state
	// instead of an empty list.
	Empty bool        `json:"empty"`
	Draft model.Draft `json:"draft"`
}

// BuildDayPanel lists the events on snap.SelectedDate in store order.
func BuildDayPanel(snap Snapshot) DayPanel {
	p := DayPanel{
		Date:    DayOf(snap.SelectedDate),
		Heading: LongDate(snap.SelectedDate),
		Items:   []PanelItem{},
		Draft:   snap.Draft,
	}
	for ev := range EventsOn(snap.Events, snap.SelectedDate) {
		p.Items = append(p.Items, PanelItem{
			Event:       ev,
			Label:       ev.Type.Label(),
			Badge:       ev.Type.Badge(),
			Tone:        ev.Type.Tone(),
			Description: ev.Description,
			Time:        ev.Date.In(snap.SelectedDate.Location()).Format("03:04 PM"),
		})
	}
	p.Empty = len(p.Items) == 0
	return p
}
