package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"geolog/internal/adapters/tui/styles"
	"geolog/internal/application/commands"
	"geolog/internal/domain"
)

const (
	focusCategory = iota
	focusValue
	focusNote
	focusCount
)

// CaptureKeyMap defines the keys of the category picker
type CaptureKeyMap struct {
	PrevCategory key.Binding
	NextCategory key.Binding
}

var CaptureKeys = CaptureKeyMap{
	PrevCategory: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/→", "category"),
	),
	NextCategory: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("←/→", "category"),
	),
}

// CaptureModel is the form for a new observation. It reads the session log
// to lock the category picker and to decide whether submitting is allowed.
type CaptureModel struct {
	ViewState
	log     *domain.SessionLog
	form    *InputForm
	options []commands.CategoryOption
	choice  int
	focus   int
}

// NewCaptureModel creates the capture view for log
func NewCaptureModel(log *domain.SessionLog) *CaptureModel {
	m := &CaptureModel{
		log: log,
		form: NewInputForm(
			NewInputField("Value", "measurement, e.g. 12.5", 32),
			NewInputField("Note", "free text", 256),
		),
	}
	m.Open()
	return m
}

// Open resets the form and preselects the locked category, if any
func (m *CaptureModel) Open() tea.Cmd {
	m.ClearMessage()
	m.form.Reset()
	m.form.Blur()
	m.options, _ = commands.NewListCategoriesCommand(m.log).Execute(context.Background())

	m.choice = 0
	for i, opt := range m.options {
		if opt.Selectable {
			m.choice = i
			break
		}
	}
	if m.log.IsLocked() {
		return m.setFocus(focusValue)
	}
	return m.setFocus(focusCategory)
}

// Category returns the selected category
func (m *CaptureModel) Category() domain.Category {
	if len(m.options) == 0 {
		return domain.CategoryLight
	}
	return m.options[m.choice].Category
}

// CanSubmit is the log's validity predicate applied to the form
func (m *CaptureModel) CanSubmit() bool {
	return m.log.CanAppend(m.form.Value(0), m.form.Value(1))
}

func (m *CaptureModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the capture view
func (m *CaptureModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.form.Keys.Cancel):
			return m, func() tea.Msg { return SwitchToLogMsg{} }

		case key.Matches(msg, m.form.Keys.Submit):
			if !m.CanSubmit() {
				m.SetMessage(m.blockedReason(), true)
				return m, nil
			}
			submit := CaptureSubmitMsg{
				Category: m.Category(),
				Value:    m.form.Value(0),
				Note:     m.form.Value(1),
			}
			return m, func() tea.Msg { return submit }

		case key.Matches(msg, m.form.Keys.Next):
			return m, m.setFocus((m.focus + 1) % focusCount)

		case key.Matches(msg, m.form.Keys.Prev):
			return m, m.setFocus((m.focus - 1 + focusCount) % focusCount)
		}

		if m.focus == focusCategory {
			switch {
			case key.Matches(msg, CaptureKeys.PrevCategory):
				m.cycle(-1)
			case key.Matches(msg, CaptureKeys.NextCategory):
				m.cycle(1)
			}
			return m, nil
		}
	}

	if m.focus == focusCategory {
		return m, nil
	}
	_, cmd := m.form.Update(msg)
	return m, cmd
}

// cycle moves the picker to the next selectable category in direction dir
func (m *CaptureModel) cycle(dir int) {
	n := len(m.options)
	for step := 1; step < n; step++ {
		i := ((m.choice+dir*step)%n + n) % n
		if m.options[i].Selectable {
			m.choice = i
			return
		}
	}
}

func (m *CaptureModel) setFocus(focus int) tea.Cmd {
	m.focus = focus
	if focus == focusCategory {
		m.form.Blur()
		return nil
	}
	return m.form.SetFocus(focus - focusValue)
}

func (m *CaptureModel) blockedReason() string {
	if strings.TrimSpace(m.form.Value(0)) == "" && strings.TrimSpace(m.form.Value(1)) == "" {
		return "enter a value or a note"
	}
	return "waiting for a location fix"
}

// View renders the capture form
func (m *CaptureModel) View() string {
	vb := NewViewBuilder()
	vb.Title("New Observation", "Recorded at the current location")

	vb.Line(m.renderPicker())
	vb.BlankLine()
	vb.Line(m.form.RenderField(0))
	if unit := m.Category().Unit(); unit != "" {
		vb.Muted("unit: " + unit)
	}
	vb.Line(m.form.RenderField(1))

	vb.Message(m.Message, m.MessageErr)

	submit := m.form.Keys.Submit
	submit.SetHelp("enter", "save")
	submit.SetEnabled(m.CanSubmit())
	vb.Help(submit, m.form.Keys.Next, CaptureKeys.NextCategory, m.form.Keys.Cancel)
	if !m.CanSubmit() {
		vb.BlankLine()
		vb.Muted(m.blockedReason())
	}
	return vb.String()
}

func (m *CaptureModel) renderPicker() string {
	label := styles.InputLabel.Render("Category")
	if m.log.IsLocked() {
		label += styles.MutedText.Render(" (locked for this session)")
	}

	var chips []string
	for i, opt := range m.options {
		text := opt.Category.Label()
		style := lipgloss.NewStyle().Padding(0, 1)
		switch {
		case i == m.choice && m.focus == focusCategory:
			style = style.Background(styles.CategoryColor(opt.Category)).Foreground(lipgloss.Color("#000000")).Bold(true)
		case i == m.choice:
			style = style.Foreground(styles.CategoryColor(opt.Category)).Bold(true).Underline(true)
		case !opt.Selectable:
			style = style.Foreground(styles.Muted).Strikethrough(true)
		}
		chips = append(chips, style.Render(text))
	}
	return fmt.Sprintf("%s\n%s", label, strings.Join(chips, " "))
}
