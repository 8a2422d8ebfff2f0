package views

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"geolog/internal/domain"
	"geolog/internal/ports"
)

// ViewState holds the size and status message every view shows.
// Embed it in view models.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// Messages views send to the app. The app owns the session and executes
// the command each one asks for.
type (
	SwitchToLogMsg     struct{}
	SwitchToCaptureMsg struct{}
	SwitchToHelpMsg    struct{}

	// SwitchToDeleteMsg asks for confirmation before deleting records
	SwitchToDeleteMsg struct {
		Records []domain.Record
	}

	// SwitchToClearMsg asks for confirmation before clearing the session
	SwitchToClearMsg struct {
		Count int
	}

	// CaptureSubmitMsg appends an observation
	CaptureSubmitMsg struct {
		Category domain.Category
		Value    string
		Note     string
	}

	// DeleteConfirmedMsg deletes records by ID
	DeleteConfirmedMsg struct {
		IDs []uuid.UUID
	}

	ClearConfirmedMsg struct{}

	// ExportRequestMsg exports the session
	ExportRequestMsg struct {
		Format ports.ExportFormat
	}

	// OpenEditorMsg opens the most recent export in $EDITOR
	OpenEditorMsg struct{}
)

// formatValue renders an optional measurement with its unit
func formatValue(r domain.Record) string {
	if r.Value == nil {
		return "-"
	}
	v := strconv.FormatFloat(*r.Value, 'f', -1, 64)
	if unit := r.Category.Unit(); unit != "" {
		return v + " " + unit
	}
	return v
}

func formatCoordinates(lat, lon float64) string {
	return fmt.Sprintf("%.5f, %.5f", lat, lon)
}

func formatAccuracy(meters float64) string {
	return fmt.Sprintf("±%.0fm", meters)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
