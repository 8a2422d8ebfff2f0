package views

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geolog/internal/domain"
)

type stubFixes struct {
	fix domain.Fix
	ok  bool
}

func (s *stubFixes) CurrentFix() (domain.Fix, bool) {
	return s.fix, s.ok
}

func newLog(hasFix bool) (*domain.SessionLog, *stubFixes) {
	fixes := &stubFixes{
		fix: domain.Fix{Latitude: 25.03, Longitude: 121.56, HorizontalAccuracy: 5},
		ok:  hasFix,
	}
	return domain.NewSessionLog(fixes, func() time.Time {
		return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	}), fixes
}

func typeText(m *CaptureModel, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func submit(m *CaptureModel) tea.Msg {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestCaptureModel_PickerCyclesWhenUnlocked(t *testing.T) {
	log, _ := newLog(true)
	m := NewCaptureModel(log)

	assert.Equal(t, domain.CategoryLight, m.Category())
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, domain.CategoryTree, m.Category())
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, domain.CategoryCustom, m.Category(), "wraps around")
}

func TestCaptureModel_PickerLockedToSessionCategory(t *testing.T) {
	log, _ := newLog(true)
	tree := 31.0
	require.True(t, log.Append(domain.CategoryTree, &tree, nil))

	m := NewCaptureModel(log)
	assert.Equal(t, domain.CategoryTree, m.Category())
	assert.Equal(t, focusValue, m.focus, "locked sessions start on the value field")

	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, focusCategory, m.focus)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, domain.CategoryTree, m.Category())
	assert.Contains(t, m.View(), "locked for this session")
}

func TestCaptureModel_SubmitDisabledUntilValid(t *testing.T) {
	log, fixes := newLog(false)
	m := NewCaptureModel(log)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusValue, m.focus)

	assert.Nil(t, submit(m))
	assert.Equal(t, "enter a value or a note", m.Message)

	typeText(m, "12.5")
	assert.Nil(t, submit(m))
	assert.Equal(t, "waiting for a location fix", m.Message)

	fixes.ok = true
	assert.Equal(t, CaptureSubmitMsg{Category: domain.CategoryLight, Value: "12.5"}, submit(m))
}

func TestCaptureModel_NoteOnly(t *testing.T) {
	log, _ := newLog(true)
	m := NewCaptureModel(log)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusNote, m.focus)

	typeText(m, "dead branch")
	assert.Equal(t, CaptureSubmitMsg{Category: domain.CategoryLight, Note: "dead branch"}, submit(m))
}

func TestCaptureModel_EscapeReturnsToLog(t *testing.T) {
	log, _ := newLog(true)
	m := NewCaptureModel(log)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, SwitchToLogMsg{}, cmd())
}

func TestCaptureModel_OpenResetsForm(t *testing.T) {
	log, _ := newLog(true)
	m := NewCaptureModel(log)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "7")
	m.SetMessage("boom", true)

	m.Open()
	assert.Empty(t, m.form.Value(0))
	assert.Empty(t, m.Message)
	assert.Equal(t, focusCategory, m.focus)
}
