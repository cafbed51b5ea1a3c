package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"wxcal/internal/calendar"
	appLog "wxcal/internal/log"
	"wxcal/internal/model"
)

type mode int

const (
	modeBrowse mode = iota
	modeForm
)

// form fields, in tab order
const (
	fieldTitle = iota
	fieldDescription
	fieldType
	fieldCount
)

// RolloverMsg asks the model to re-read the clock so "today" follows
// midnight. The scheduler sends it through tea.Program.Send.
type RolloverMsg struct{}

// ImportMsg replaces the events of one ICS source.
type ImportMsg struct {
	Source string
	Events []model.Event
}

// Model is the terminal host of a calendar view. All view access happens
// on the bubbletea update goroutine.
type Model struct {
	view *calendar.View

	mode      mode
	focus     int // focused item in the day panel
	formField int
	title     textinput.Model
	desc      textinput.Model

	err    error
	status string
	width  int
	height int
}

// New wraps a mounted view.
func New(view *calendar.View) *Model {
	title := textinput.New()
	title.Placeholder = "Event title"
	title.CharLimit = 120
	title.Width = 30

	desc := textinput.New()
	desc.Placeholder = "Description (optional)"
	desc.CharLimit = 500
	desc.Width = 30

	return &Model{
		view:  view,
		title: title,
		desc:  desc,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case RolloverMsg:
		m.view.Refresh()
		appLog.Debug("tui: today rolled over", "today", m.view.Today().Format("2006-01-02"))
		return m, nil

	case ImportMsg:
		n := m.view.ReplaceSource(msg.Source, msg.Events)
		m.status = fmt.Sprintf("%s: %d events", msg.Source, n)
		m.clampFocus()
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeForm {
			return m.handleFormKeys(msg)
		}
		return m.handleBrowseKeys(msg)
	}
	return m, nil
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		m.moveSelection(-1)
	case "right", "l":
		m.moveSelection(1)
	case "up", "k":
		m.moveSelection(-7)
	case "down", "j":
		m.moveSelection(7)
	case "]", "n":
		m.view.NextMonth()
	case "[", "p":
		m.view.PreviousMonth()
	case "t":
		m.view.GoToToday()
		m.focus = 0
	case "tab":
		if n := len(m.view.DayPanel().Items); n > 0 {
			m.focus = (m.focus + 1) % n
		}
	case "shift+tab":
		if n := len(m.view.DayPanel().Items); n > 0 {
			m.focus = (m.focus + n - 1) % n
		}
	case "d", "x":
		items := m.view.DayPanel().Items
		if m.focus < len(items) {
			ev := items[m.focus].Event
			m.view.Delete(ev.ID)
			m.status = "Deleted " + ev.Title
			m.clampFocus()
		}
	case "a":
		return m, m.openForm()
	}
	return m, nil
}

func (m *Model) moveSelection(days int) {
	m.view.SelectDay(calendar.AddDays(m.view.SelectedDate(), days))
	m.focus = 0
}

func (m *Model) clampFocus() {
	n := len(m.view.DayPanel().Items)
	if m.focus >= n {
		m.focus = max(n-1, 0)
	}
}

// openForm shows the add form filled from the current draft.
func (m *Model) openForm() tea.Cmd {
	d := m.view.Draft()
	m.mode = modeForm
	m.err = nil
	m.title.SetValue(d.Title)
	m.desc.SetValue(d.Description)
	m.formField = fieldTitle
	m.desc.Blur()
	return m.title.Focus()
}

func (m *Model) closeForm() {
	m.mode = modeBrowse
	m.title.Blur()
	m.desc.Blur()
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		ev, err := m.view.Submit()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.status = "Added " + ev.Title
		m.title.Reset()
		m.desc.Reset()
		m.closeForm()
		return m, nil
	case "tab", "down":
		return m, m.focusField((m.formField + 1) % fieldCount)
	case "shift+tab", "up":
		return m, m.focusField((m.formField + fieldCount - 1) % fieldCount)
	}

	if m.formField == fieldType {
		cur := m.view.Draft().Type
		switch msg.String() {
		case "left", "h":
			_ = m.view.ChangeDraftField(calendar.FieldType, cur.Prev().String())
		case "right", "l", " ":
			_ = m.view.ChangeDraftField(calendar.FieldType, cur.Next().String())
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.formField {
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
		_ = m.view.ChangeDraftField(calendar.FieldTitle, m.title.Value())
	case fieldDescription:
		m.desc, cmd = m.desc.Update(msg)
		_ = m.view.ChangeDraftField(calendar.FieldDescription, m.desc.Value())
	}
	return m, cmd
}

func (m *Model) focusField(f int) tea.Cmd {
	m.formField = f
	m.title.Blur()
	m.desc.Blur()
	switch f {
	case fieldTitle:
		return m.title.Focus()
	case fieldDescription:
		return m.desc.Focus()
	}
	return nil
}

var (
	toneColors = map[string]lipgloss.Color{
		"blue":   lipgloss.Color("#3B82F6"),
		"green":  lipgloss.Color("#22C55E"),
		"yellow": lipgloss.Color("#EAB308"),
	}
	primary = lipgloss.Color("#1D4ED8")
	muted   = lipgloss.Color("#6B7280")
	danger  = lipgloss.Color("#DC2626")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primary)
	mutedStyle = lipgloss.NewStyle().Foreground(muted)
	errStyle   = lipgloss.NewStyle().Foreground(danger)
)

func (m *Model) View() string {
	grid := m.renderMonth()
	panel := m.renderPanel()
	body := lipgloss.JoinHorizontal(lipgloss.Top, grid, "  ", panel)
	return lipgloss.NewStyle().Padding(1, 2).Render(body + "\n\n" + m.renderHelp())
}

func (m *Model) renderMonth() string {
	month := m.view.Month()

	var b strings.Builder
	b.WriteString(titleStyle.Render(month.Title))
	b.WriteString("\n\n")

	headStyle := lipgloss.NewStyle().Width(cellWidth + 2).Align(lipgloss.Center).Foreground(muted)
	heads := make([]string, 0, 7)
	for _, name := range month.Weekdays {
		heads = append(heads, headStyle.Render(name))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, heads...))
	b.WriteString("\n")

	for _, week := range month.Weeks {
		cells := make([]string, 0, 7)
		for _, c := range week {
			cells = append(cells, renderCell(c))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}
	return b.String()
}

const (
	cellWidth   = 12
	cellPreview = 2
)

func renderCell(c calendar.Cell) string {
	dayStyle := lipgloss.NewStyle()
	switch {
	case c.IsToday:
		dayStyle = dayStyle.Bold(true).Foreground(primary)
	case !c.InMonth:
		dayStyle = dayStyle.Foreground(muted)
	}

	lines := []string{dayStyle.Render(fmt.Sprintf("%2d", c.Date.Day()))}
	shown, more := c.Preview(cellPreview)
	for _, ev := range shown {
		style := lipgloss.NewStyle().Foreground(toneColors[ev.Type.Tone()])
		lines = append(lines, style.Render(truncate(ev.Title, cellWidth)))
	}
	if more > 0 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("+%d more", more)))
	}
	for len(lines) < cellPreview+2 {
		lines = append(lines, "")
	}

	border := lipgloss.HiddenBorder()
	if c.IsSelected {
		border = lipgloss.RoundedBorder()
	}
	return lipgloss.NewStyle().
		Width(cellWidth).
		Border(border).
		BorderForeground(primary).
		Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPanel() string {
	panel := m.view.DayPanel()

	var b strings.Builder
	b.WriteString(titleStyle.Render(panel.Heading))
	b.WriteString("\n\n")

	if panel.Empty {
		b.WriteString(mutedStyle.Render("No events scheduled"))
		b.WriteString("\n")
	}
	for i, item := range panel.Items {
		prefix := "  "
		if i == m.focus && m.mode == modeBrowse {
			prefix = titleStyle.Render("▸ ")
		}
		badge := lipgloss.NewStyle().Foreground(toneColors[item.Tone]).Render("[" + item.Label + "]")
		fmt.Fprintf(&b, "%s%s %s %s\n", prefix, mutedStyle.Render(item.Time), badge, item.Event.Title)
		if item.Description != "" {
			b.WriteString("    " + mutedStyle.Render(item.Description) + "\n")
		}
	}

	if m.mode == modeForm {
		b.WriteString("\n")
		b.WriteString(m.renderForm(panel.Draft))
	}
	if m.err != nil {
		b.WriteString("\n" + errStyle.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString("\n" + mutedStyle.Render(m.status) + "\n")
	}

	return lipgloss.NewStyle().
		Width(44).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(muted).
		Padding(0, 1).
		Render(b.String())
}

func (m *Model) renderForm(d model.Draft) string {
	label := func(f int, s string) string {
		st := lipgloss.NewStyle().Width(12).Foreground(muted)
		if f == m.formField {
			st = st.Foreground(primary).Bold(true)
		}
		return st.Render(s)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Add event") + "\n")
	b.WriteString(label(fieldTitle, "Title") + m.title.View() + "\n")
	b.WriteString(label(fieldDescription, "Description") + m.desc.View() + "\n")
	types := make([]string, 0, len(model.EventTypes))
	for _, t := range model.EventTypes {
		s := t.Label()
		if t == d.Type {
			s = lipgloss.NewStyle().Bold(true).Foreground(toneColors[t.Tone()]).Render("‹" + s + "›")
		} else {
			s = mutedStyle.Render(s)
		}
		types = append(types, s)
	}
	b.WriteString(label(fieldType, "Type") + strings.Join(types, " ") + "\n")
	b.WriteString(mutedStyle.Render("on "+d.Date.Format("Mon Jan 2 2006, 03:04 PM")) + "\n")
	return b.String()
}

func (m *Model) renderHelp() string {
	if m.mode == modeForm {
		return mutedStyle.Render("tab next field · ←/→ type · enter save · esc cancel")
	}
	return mutedStyle.Render("←↓↑→/hjkl move · [/] month · t today · a add · tab focus · d delete · q quit")
}

// truncate shortens s to at most n terminal cells, marking the cut with
// an ellipsis. Wide runes (CJK, emoji) count as two cells.
func truncate(s string, n int) string {
	return runewidth.Truncate(s, n, "…")
}

// Run starts the program on the alternate screen. Scheduled jobs send
// RolloverMsg and ImportMsg through the returned program; done yields the
// exit error once the user quits.
func Run(view *calendar.View) (p *tea.Program, done <-chan error) {
	p = tea.NewProgram(New(view), tea.WithAltScreen())
	errCh := make(chan error, 1)
	go func() {
		start := time.Now()
		_, err := p.Run()
		appLog.Info("tui exited", "uptime", time.Since(start).Round(time.Second).String())
		errCh <- err
	}()
	return p, errCh
}
