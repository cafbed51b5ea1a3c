package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"wxcal/internal/calendar"
	"wxcal/internal/ics"
	appLog "wxcal/internal/log"
	"wxcal/internal/model"
)

// monthResponse is the JSON shape of GET /api/month.
type monthResponse struct {
	calendar.Month
	Today    time.Time `json:"today"`
	Selected time.Time `json:"selected"`
	Timezone string    `json:"timezone"`
}

func (s *Server) month() monthResponse {
	return monthResponse{
		Month:    s.view.Month(),
		Today:    s.view.Today(),
		Selected: s.view.SelectedDate(),
		Timezone: s.view.Location().String(),
	}
}

func (s *Server) handleMonth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	resp := s.month()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNextMonth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.view.NextMonth()
	resp := s.month()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePrevMonth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.view.PreviousMonth()
	resp := s.month()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

type selectRequest struct {
	Date string `json:"date"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	day, err := calendar.ParseDate(req.Date, s.view.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.view.SelectDay(day)
	writeJSON(w, http.StatusOK, s.view.DayPanel())
}

func (s *Server) handleDay(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	panel := s.view.DayPanel()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, panel)
}

type draftRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.view.ChangeDraftField(calendar.DraftField(req.Field), req.Value); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.view.Draft())
}

func (s *Server) handleListEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	events := s.view.Events()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, events)
}

// createRequest optionally overrides draft fields before submitting.
type createRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
	Date        *string `json:"date"`
}

// handleCreateEvent submits the draft, after applying any fields present
// in the body. The draft is left untouched when a field is invalid.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate everything first so a bad field leaves the draft untouched.
	if req.Type != nil {
		if _, err := model.ParseEventType(*req.Type); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Date != nil {
		if _, err := calendar.ParseDate(*req.Date, s.view.Location()); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	for _, f := range []struct {
		field calendar.DraftField
		value *string
	}{
		{calendar.FieldTitle, req.Title},
		{calendar.FieldDescription, req.Description},
		{calendar.FieldType, req.Type},
		{calendar.FieldDate, req.Date},
	} {
		if f.value != nil {
			_ = s.view.ChangeDraftField(f.field, *f.value)
		}
	}

	ev, err := s.view.Submit()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	appLog.Info("event created", "id", ev.ID, "title", ev.Title, "type", ev.Type.String())
	writeJSON(w, http.StatusCreated, ev)
}

// handleDeleteEvent always answers 204; deleting an unknown id is a no-op.
func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	removed := s.view.Delete(id)
	s.mu.Unlock()
	if removed {
		appLog.Info("event deleted", "id", id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	events := s.view.Events()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="wxcal.ics"`)
	if err := ics.Export(w, events, time.Now()); err != nil {
		appLog.Error("ics export failed", err)
	}
}

// decodeJSON decodes an optional JSON body; an empty body leaves dst as is.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
