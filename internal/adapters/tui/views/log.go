package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"geolog/internal/adapters/tui/styles"
	"geolog/internal/application"
	"geolog/internal/application/commands"
	"geolog/internal/domain"
	"geolog/internal/ports"
)

// chrome is the number of lines the log view uses around the record list
const chrome = 14

// LogKeyMap defines key bindings for the log view
type LogKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Mark     key.Binding
	New      key.Binding
	Delete   key.Binding
	Clear    key.Binding
	CSV      key.Binding
	GeoJSON  key.Binding
	SQLite   key.Binding
	Edit     key.Binding
	Retry    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// NewLogKeys returns the log key bindings. SQLite and Edit start disabled.
func NewLogKeys() LogKeyMap {
	keys := LogKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		Mark: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "select"),
		),
		New: key.NewBinding(
			key.WithKeys("n", "a"),
			key.WithHelp("n", "new"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Clear: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear"),
		),
		CSV: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "csv"),
		),
		GeoJSON: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "geojson"),
		),
		SQLite: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sqlite"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "open export"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry location"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
	keys.SQLite.SetEnabled(false)
	keys.Edit.SetEnabled(false)
	return keys
}

// RetryLocationMsg asks the app to request location access again
type RetryLocationMsg struct{}

// LogModel shows the location status and the session's records, newest
// first. It only reads the session; changes go back to the app as messages.
type LogModel struct {
	ViewState
	session    *application.Session
	source     string
	keys       LogKeyMap
	paginator  *Paginator
	spinner    spinner.Model
	spinning   bool
	rows       []domain.Record
	marked     map[uuid.UUID]bool
	lastExport string
}

// NewLogModel creates the log view for session; source names the
// configured location source in the status line
func NewLogModel(session *application.Session, source string) *LogModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.StatusWarn

	m := &LogModel{
		session:   session,
		source:    source,
		keys:      NewLogKeys(),
		paginator: NewPaginator(10),
		spinner:   s,
		marked:    make(map[uuid.UUID]bool),
	}
	m.Refresh()
	return m
}

// EnableSQLite shows the sqlite export key
func (m *LogModel) EnableSQLite(enabled bool) {
	m.keys.SQLite.SetEnabled(enabled)
}

// SetLastExport remembers the newest export so it can be opened
func (m *LogModel) SetLastExport(path string, canEdit bool) {
	m.lastExport = path
	m.keys.Edit.SetEnabled(canEdit && path != "")
}

// LastExport returns the path of the newest export, if any
func (m *LogModel) LastExport() string {
	return m.lastExport
}

// Init starts the spinner shown while no fix is known
func (m *LogModel) Init() tea.Cmd {
	if _, ok := m.session.Provider.CurrentFix(); ok {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// Refresh reloads the rows from the session log. Marks of records that no
// longer exist are dropped.
func (m *LogModel) Refresh() {
	result, _ := commands.NewListCommand(m.session.Log, true).Execute(context.Background())
	m.rows = result.Records

	present := make(map[uuid.UUID]bool, len(m.rows))
	for _, r := range m.rows {
		present[r.ID] = true
	}
	for id := range m.marked {
		if !present[id] {
			delete(m.marked, id)
		}
	}
	m.paginator.SetTotal(len(m.rows))
}

// SetSize updates the dimensions and the page size
func (m *LogModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.paginator.SetPageSize(height - chrome)
}

// Selection returns the marked records, or the record under the cursor when
// nothing is marked
func (m *LogModel) Selection() []domain.Record {
	var selected []domain.Record
	for _, r := range m.rows {
		if m.marked[r.ID] {
			selected = append(selected, r)
		}
	}
	if len(selected) == 0 && len(m.rows) > 0 {
		selected = append(selected, m.rows[m.paginator.Cursor()])
	}
	return selected
}

// Update handles messages for the log view
func (m *LogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if _, ok := m.session.Provider.CurrentFix(); ok {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *LogModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.paginator.Move(-1)
	case key.Matches(msg, m.keys.Down):
		m.paginator.Move(1)
	case key.Matches(msg, m.keys.PageUp):
		m.paginator.Page(-1)
	case key.Matches(msg, m.keys.PageDown):
		m.paginator.Page(1)

	case key.Matches(msg, m.keys.Mark):
		if len(m.rows) > 0 {
			id := m.rows[m.paginator.Cursor()].ID
			if m.marked[id] {
				delete(m.marked, id)
			} else {
				m.marked[id] = true
			}
			m.paginator.Move(1)
		}

	case key.Matches(msg, m.keys.New):
		return func() tea.Msg { return SwitchToCaptureMsg{} }

	case key.Matches(msg, m.keys.Delete):
		selected := m.Selection()
		if len(selected) == 0 {
			m.SetMessage("Nothing to delete", true)
			return nil
		}
		return func() tea.Msg { return SwitchToDeleteMsg{Records: selected} }

	case key.Matches(msg, m.keys.Clear):
		n := len(m.rows)
		if n == 0 {
			m.SetMessage("Session is already empty", true)
			return nil
		}
		return func() tea.Msg { return SwitchToClearMsg{Count: n} }

	case key.Matches(msg, m.keys.CSV):
		return exportRequest(ports.FormatCSV)
	case key.Matches(msg, m.keys.GeoJSON):
		return exportRequest(ports.FormatGeoJSON)
	case key.Matches(msg, m.keys.SQLite):
		return exportRequest(ports.FormatSQLite)

	case key.Matches(msg, m.keys.Edit):
		return func() tea.Msg { return OpenEditorMsg{} }

	case key.Matches(msg, m.keys.Retry):
		m.ClearMessage()
		if !m.spinning {
			m.spinning = true
			return tea.Batch(m.spinner.Tick, func() tea.Msg { return RetryLocationMsg{} })
		}
		return func() tea.Msg { return RetryLocationMsg{} }

	case key.Matches(msg, m.keys.Help):
		return func() tea.Msg { return SwitchToHelpMsg{} }
	}
	return nil
}

func exportRequest(format ports.ExportFormat) tea.Cmd {
	return func() tea.Msg { return ExportRequestMsg{Format: format} }
}

// View renders the log view
func (m *LogModel) View() string {
	vb := NewViewBuilder()
	vb.Title("GeoLog", "Field observations tagged with GPS position")

	vb.Line(m.renderLocation())
	vb.Line(m.renderSession())
	if e := m.session.Provider.LastError(); e != "" {
		vb.Line(RenderLabelValue("Last error", styles.StatusWarn.Render(truncate(e, 80))))
	}
	vb.BlankLine()

	if len(m.rows) == 0 {
		vb.Muted("No observations yet. Press n to log one.")
	} else {
		start, end := m.paginator.VisibleRange()
		for i := start; i < end; i++ {
			vb.Line(m.renderRow(m.rows[i], i == m.paginator.Cursor()))
		}
		if m.paginator.TotalPages() > 1 {
			vb.Muted(fmt.Sprintf("page %d/%d", m.paginator.CurrentPage(), m.paginator.TotalPages()))
		}
	}

	vb.Message(m.Message, m.MessageErr)
	vb.Help(m.keys.New, m.keys.Mark, m.keys.Delete, m.keys.Clear,
		m.keys.CSV, m.keys.GeoJSON, m.keys.SQLite, m.keys.Edit, m.keys.Help, m.keys.Quit)
	return vb.String()
}

func (m *LogModel) renderLocation() string {
	p := m.session.Provider
	auth := p.Authorization()

	var state string
	switch auth {
	case domain.AuthDenied, domain.AuthRestricted:
		state = styles.StatusBad.Render(auth.String())
	case domain.AuthNotDetermined:
		state = styles.StatusWarn.Render(auth.String())
	default:
		state = styles.StatusGood.Render(auth.String())
	}

	fix, ok := p.CurrentFix()
	var position string
	switch {
	case ok:
		position = formatCoordinates(fix.Latitude, fix.Longitude) + " " +
			styles.MutedText.Render(formatAccuracy(fix.HorizontalAccuracy))
	case auth == domain.AuthDenied || auth == domain.AuthRestricted:
		position = styles.MutedText.Render("unavailable")
	default:
		position = m.spinner.View() + styles.MutedText.Render(" waiting for a fix")
	}

	line := RenderLabelValue("Location", state+"  "+position)
	if m.source != "" {
		line += styles.MutedText.Render("  via " + m.source)
	}
	return line
}

func (m *LogModel) renderSession() string {
	category, locked := m.session.Log.LockedCategory()
	if !locked {
		return RenderLabelValue("Session", styles.MutedText.Render("empty, any category"))
	}
	n := m.session.Log.Len()
	text := fmt.Sprintf("%s  %d %s", styles.CategoryBadge(category), n, pluralize(n, "record", "records"))
	if len(m.marked) > 0 {
		text += styles.RecordMarked.Render(fmt.Sprintf("  %d selected", len(m.marked)))
	}
	return RenderLabelValue("Session", text)
}

func (m *LogModel) renderRow(r domain.Record, selected bool) string {
	mark := "  "
	if m.marked[r.ID] {
		mark = styles.RecordMarked.Render("● ")
	}

	text := fmt.Sprintf("#%-3d %s  %s  %-10s %s",
		r.SequenceIndex,
		r.Timestamp.Local().Format("15:04:05"),
		formatCoordinates(r.Latitude, r.Longitude),
		formatValue(r),
		truncate(strings.ReplaceAll(r.NoteText(), "\n", " "), 40),
	)
	if selected {
		return mark + styles.RecordSelected.Render(text)
	}
	return mark + text
}
