package calendar

import (
	"iter"
	"slices"
	"time"

	"github.com/google/uuid"

	"wxcal/internal/model"
)

// Store is the in-memory, insertion-ordered event collection of a view.
// It is not safe for concurrent use; hosts serialise access around the
// owning View.
type Store struct {
	events []model.Event
	newID  func() string
}

// NewStore returns an empty store that assigns random UUIDs.
func NewStore() *Store {
	return &Store{newID: uuid.NewString}
}

// Add stores ev under a freshly generated ID and returns the stored copy.
// Any ID already set on ev is ignored.
func (s *Store) Add(ev model.Event) model.Event {
	id := s.newID()
	for s.index(id) >= 0 {
		id = s.newID()
	}
	ev.ID = id
	s.events = append(s.events, ev)
	return ev
}

// Remove deletes the event with the given ID. Unknown IDs are ignored and
// reported as false.
func (s *Store) Remove(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.events = slices.Delete(s.events, i, i+1)
	return true
}

// Get looks up a single event.
func (s *Store) Get(id string) (model.Event, bool) {
	i := s.index(id)
	if i < 0 {
		return model.Event{}, false
	}
	return s.events[i], true
}

// All returns a copy of the events in insertion order.
func (s *Store) All() []model.Event {
	return slices.Clone(s.events)
}

func (s *Store) Len() int {
	return len(s.events)
}

// EventsOnDay yields the events whose date falls on day. The sequence reads
// the store at iteration time, so ranging it again reflects later changes.
func (s *Store) EventsOnDay(day time.Time) iter.Seq[model.Event] {
	return func(yield func(model.Event) bool) {
		EventsOn(s.events, day)(yield)
	}
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.events, func(ev model.Event) bool { return ev.ID == id })
}

// EventsOn is the snapshot counterpart of Store.EventsOnDay.
func EventsOn(events []model.Event, day time.Time) iter.Seq[model.Event] {
	return func(yield func(model.Event) bool) {
		for _, ev := range events {
			if SameDay(ev.Date, day) && !yield(ev) {
				return
			}
		}
	}
}
