package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"geolog/internal/adapters/tui/styles"
)

var helpClose = key.NewBinding(
	key.WithKeys("esc", "q", "?"),
	key.WithHelp("esc/q/?", "close"),
)

// HelpModel is the model for the help view
type HelpModel struct {
	ViewState
}

func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, helpClose) {
			return m, func() tea.Msg { return SwitchToLogMsg{} }
		}
	}
	return m, nil
}

// View renders the help view
func (m *HelpModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("GeoLog Help"))
	b.WriteString("\n\n")

	b.WriteString(styles.InputLabel.Render("Log"))
	b.WriteString("\n")
	b.WriteString(helpLine("j / k / ↑ / ↓", "Move up/down"))
	b.WriteString(helpLine("pgup / pgdn", "Previous/next page"))
	b.WriteString(helpLine("space / x", "Select record"))
	b.WriteString(helpLine("n", "New observation"))
	b.WriteString(helpLine("d", "Delete selected (or current) records"))
	b.WriteString(helpLine("C", "Clear session"))
	b.WriteString(helpLine("r", "Request location access again"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Export"))
	b.WriteString("\n")
	b.WriteString(helpLine("c / g / s", "CSV / GeoJSON / SQLite"))
	b.WriteString(helpLine("e", "Open the last export in $EDITOR"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("New observation"))
	b.WriteString("\n")
	b.WriteString(helpLine("tab / shift+tab", "Next/previous field"))
	b.WriteString(helpLine("← / →", "Change category"))
	b.WriteString(helpLine("enter", "Save"))
	b.WriteString(helpLine("esc", "Back to log"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Sessions"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("  The first record locks the session to its category."))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("  Clearing or deleting every record lifts the lock."))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("  A record needs a location fix and a value or a note."))
	b.WriteString("\n\n")

	b.WriteString(styles.HelpDesc.Render("Press "))
	b.WriteString(styles.HelpKey.Render("esc"))
	b.WriteString(styles.HelpDesc.Render(" or "))
	b.WriteString(styles.HelpKey.Render("?"))
	b.WriteString(styles.HelpDesc.Render(" to close"))

	return styles.App.Render(b.String())
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 20)) + styles.HelpDesc.Render(desc) + "\n"
}

func padRight(s string, length int) string {
	n := len([]rune(s))
	if n >= length {
		return s
	}
	return s + strings.Repeat(" ", length-n)
}
