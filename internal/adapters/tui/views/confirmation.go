package views

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"geolog/internal/adapters/tui/styles"
)

type ConfirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

func NewConfirmKeys() ConfirmKeyMap {
	return ConfirmKeyMap{
		Confirm: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
	}
}

// ConfirmationModel answers a yes/no question before a destructive change
type ConfirmationModel struct {
	ViewState
	Keys ConfirmKeyMap
}

func NewConfirmationModel() ConfirmationModel {
	return ConfirmationModel{Keys: NewConfirmKeys()}
}

// Answer returns onConfirm for yes, a return to the log for no, and nil
// for any other key.
func (m *ConfirmationModel) Answer(msg tea.KeyMsg, onConfirm func() tea.Msg) tea.Cmd {
	switch {
	case key.Matches(msg, m.Keys.Confirm):
		return onConfirm
	case key.Matches(msg, m.Keys.Cancel):
		return func() tea.Msg { return SwitchToLogMsg{} }
	}
	return nil
}

// Prompt renders question followed by the answer keys
func (m *ConfirmationModel) Prompt(question string) string {
	yes, no := m.Keys.Confirm.Help(), m.Keys.Cancel.Help()
	return question + " " +
		styles.HelpKey.Render(yes.Key) + styles.HelpDesc.Render(" to "+yes.Desc+", ") +
		styles.HelpKey.Render(no.Key) + styles.HelpDesc.Render(" to "+no.Desc)
}
