package ics

import (
	"context"
	"strings"
	"time"

	appLog "wxcal/internal/log"
	"wxcal/internal/model"
)

// Classifier picks an event type for imported occurrences. CATEGORIES
// naming a type win; otherwise the first keyword found in the summary
// decides; otherwise the event is a meeting.
type Classifier struct {
	Task     []string
	Reminder []string
}

// Classify returns the event type for occ.
func (c Classifier) Classify(occ model.Occurrence) model.EventType {
	for _, cat := range occ.Categories {
		if t, err := model.ParseEventType(cat); err == nil {
			return t
		}
	}
	summary := strings.ToLower(occ.Summary)
	for _, kw := range c.Reminder {
		if kw != "" && strings.Contains(summary, strings.ToLower(kw)) {
			return model.Reminder
		}
	}
	for _, kw := range c.Task {
		if kw != "" && strings.Contains(summary, strings.ToLower(kw)) {
			return model.Task
		}
	}
	return model.Meeting
}

// ToEvents converts occurrences into calendar events (without IDs; the
// store assigns them).
func (c Classifier) ToEvents(occs []model.Occurrence) []model.Event {
	out := make([]model.Event, 0, len(occs))
	for _, occ := range occs {
		out = append(out, model.Event{
			Title:       strings.TrimSpace(occ.Summary),
			Date:        occ.Start,
			Type:        c.Classify(occ),
			Description: strings.TrimSpace(occ.Description),
			Source:      occ.SourceID,
		})
	}
	return out
}

// ImportConfig bounds an import run.
type ImportConfig struct {
	Location *time.Location
	Now      time.Time
	// HorizonDays is applied before and after Now.
	HorizonDays int
	Classifier  Classifier
}

// Import fetches, parses and expands every source and returns the
// resulting events grouped by source ID. Per-source failures are logged
// and returned without aborting the other sources.
func Import(ctx context.Context, f *Fetcher, sources []Source, cfg ImportConfig) (map[string][]model.Event, []error) {
	results, errs := f.FetchAll(ctx, sources)

	expandCfg := ExpandConfig{
		DisplayLocation: cfg.Location,
		RangeStart:      cfg.Now.AddDate(0, 0, -cfg.HorizonDays),
		RangeEnd:        cfg.Now.AddDate(0, 0, cfg.HorizonDays),
	}

	out := make(map[string][]model.Event, len(results))
	for _, res := range results {
		parsed, err := ParseICS(res.Source, res.Body)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		expanded, err := ExpandOccurrences(parsed, expandCfg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events := cfg.Classifier.ToEvents(expanded.Occurrences)
		out[res.Source.ID] = events
		appLog.Info("ics import completed",
			"id", res.Source.ID,
			"occurrences", len(events),
			"truncated", len(expanded.TruncatedEvents),
			"from_cache", res.FromCache,
		)
	}
	return out, errs
}
