package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"wxcal/internal/calendar"
	appLog "wxcal/internal/log"
	"wxcal/internal/model"
)

// cellPreviewLimit is how many event titles a grid cell lists before
// collapsing the rest into "+N more".
const cellPreviewLimit = 2

//go:embed templates/calendar.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/calendar.html.tmpl"))

type pageCell struct {
	Date       string
	Day        int
	InMonth    bool
	IsToday    bool
	IsSelected bool
	Shown      []model.Event
	More       int
}

type typeOption struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Title    string
	Weekdays [7]string
	Weeks    [][7]pageCell
	Panel    calendar.DayPanel
	Types    []typeOption
	Error    string
}

func (s *Server) pageData(errMsg string) pageData {
	month := s.view.Month()
	panel := s.view.DayPanel()

	data := pageData{
		Title:    month.Title,
		Weekdays: month.Weekdays,
		Panel:    panel,
		Error:    errMsg,
	}
	for _, week := range month.Weeks {
		var row [7]pageCell
		for i, c := range week {
			shown, more := c.Preview(cellPreviewLimit)
			row[i] = pageCell{
				Date:       c.Date.Format("2006-01-02"),
				Day:        c.Date.Day(),
				InMonth:    c.InMonth,
				IsToday:    c.IsToday,
				IsSelected: c.IsSelected,
				Shown:      shown,
				More:       more,
			}
		}
		data.Weeks = append(data.Weeks, row)
	}
	for _, t := range model.EventTypes {
		data.Types = append(data.Types, typeOption{
			Value:    t.String(),
			Label:    t.Label(),
			Selected: t == panel.Draft.Type,
		})
	}
	return data
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	data := s.pageData("")
	s.mu.Unlock()
	renderPage(w, http.StatusOK, data)
}

// pageAction wraps a form post from the HTML page: fn mutates the view,
// then the browser is redirected back to /calendar. A failing fn
// re-renders the page with the error and a 400.
func (s *Server) pageAction(fn func(v *calendar.View, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		s.mu.Lock()
		err := fn(s.view, r)
		var data pageData
		if err != nil {
			data = s.pageData(err.Error())
		}
		s.mu.Unlock()

		if err != nil {
			renderPage(w, http.StatusBadRequest, data)
			return
		}
		http.Redirect(w, r, "/calendar", http.StatusSeeOther)
	}
}

func pageSelect(v *calendar.View, r *http.Request) error {
	day, err := calendar.ParseDate(r.FormValue("date"), v.Location())
	if err != nil {
		return err
	}
	v.SelectDay(day)
	return nil
}

func pageSubmit(v *calendar.View, r *http.Request) error {
	if _, err := model.ParseEventType(r.FormValue("type")); err != nil {
		return err
	}
	_ = v.ChangeDraftField(calendar.FieldTitle, r.FormValue("title"))
	_ = v.ChangeDraftField(calendar.FieldDescription, r.FormValue("description"))
	_ = v.ChangeDraftField(calendar.FieldType, r.FormValue("type"))
	_, err := v.Submit()
	return err
}

func renderPage(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		appLog.Error("failed to render calendar page", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
