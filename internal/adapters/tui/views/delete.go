package views

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"geolog/internal/adapters/tui/styles"
	"geolog/internal/domain"
)

const maxListedTargets = 8

// DeleteModel confirms deleting selected records or clearing the session
type DeleteModel struct {
	ConfirmationModel
	targets []domain.Record
	clear   bool
	count   int
}

func NewDeleteModel() *DeleteModel {
	return &DeleteModel{
		ConfirmationModel: NewConfirmationModel(),
	}
}

// SetTargets prepares a confirmation for deleting records
func (m *DeleteModel) SetTargets(records []domain.Record) {
	m.targets = records
	m.clear = false
	m.count = len(records)
}

// SetClear prepares a confirmation for clearing count records
func (m *DeleteModel) SetClear(count int) {
	m.targets = nil
	m.clear = true
	m.count = count
}

func (m *DeleteModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the delete view
func (m *DeleteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m, m.Answer(msg, m.confirmed)
	}
	return m, nil
}

func (m *DeleteModel) confirmed() tea.Msg {
	if m.clear {
		return ClearConfirmedMsg{}
	}
	// Rows are shown newest first, so only IDs identify the selection.
	ids := make([]uuid.UUID, len(m.targets))
	for i, r := range m.targets {
		ids[i] = r.ID
	}
	return DeleteConfirmedMsg{IDs: ids}
}

// View renders the delete confirmation view
func (m *DeleteModel) View() string {
	vb := NewViewBuilder()
	if m.clear {
		vb.Title("Clear Session", "")
		vb.Line(styles.ErrorMsg.Render("This action cannot be undone!"))
		vb.BlankLine()
		vb.Line(fmt.Sprintf("All %d %s will be removed and the category lock lifted.",
			m.count, pluralize(m.count, "record", "records")))
	} else {
		vb.Title("Delete Confirmation", "")
		vb.Line(styles.ErrorMsg.Render("This action cannot be undone!"))
		vb.BlankLine()
		vb.Line(styles.InputLabel.Render(fmt.Sprintf("Delete %d %s:",
			m.count, pluralize(m.count, "record", "records"))))
		for i, r := range m.targets {
			if i == maxListedTargets {
				vb.Muted(fmt.Sprintf("  … and %d more", len(m.targets)-i))
				break
			}
			vb.Line(fmt.Sprintf("  #%d %s %s %s", r.SequenceIndex,
				styles.CategoryBadge(r.Category), formatValue(r),
				styles.MutedText.Render(truncate(r.NoteText(), 30))))
		}
	}
	vb.BlankLine()
	vb.Line(m.Prompt("Are you sure?"))
	return vb.String()
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
