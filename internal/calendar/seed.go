package calendar

import (
	"time"

	"wxcal/internal/model"
)

// SampleEvents returns the illustrative events a fresh view starts with,
// dated relative to now.
func SampleEvents(now time.Time) []model.Event {
	return []model.Event{
		{
			Title:       "Weather team meeting",
			Date:        now.AddDate(0, 0, 2),
			Type:        model.Meeting,
			Description: "Quarterly weather pattern review",
		},
		{
			Title:       "Satellite data analysis",
			Date:        now.AddDate(0, 0, 5),
			Type:        model.Task,
			Description: "Analyze new satellite imagery",
		},
		{
			Title:       "Monthly report deadline",
			Date:        now.AddDate(0, 0, 7),
			Type:        model.Reminder,
			Description: "Submit monthly climate report",
		},
	}
}
