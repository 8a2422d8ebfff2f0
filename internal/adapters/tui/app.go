// Package tui is the interactive terminal front end. The bubbletea Update
// loop owns the session: location events arrive as messages and every
// change to the log happens inside Update.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"geolog/internal/adapters/tui/views"
	"geolog/internal/application"
	"geolog/internal/application/commands"
	"geolog/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewLog ViewState = iota
	ViewCapture
	ViewDelete
	ViewHelp
)

// Options wires the export side of the app
type Options struct {
	Writer   ports.ExportWriter
	Sink     ports.ExportSink
	Database ports.RecordEncoder // nil disables sqlite export
	Editor   ports.EditorOpener  // nil disables opening exports
	Source   string              // shown in the status line

	// EditAfterExport opens every new export in Editor. The editor needs the
	// terminal, so it runs through tea.ExecProcess instead of as a Sink.
	EditAfterExport bool
}

// App is the main TUI application model
type App struct {
	session *application.Session
	opts    Options

	state   ViewState
	log     *views.LogModel
	capture *views.CaptureModel
	confirm *views.DeleteModel
	help    *views.HelpModel
}

// NewApp creates the app for session
func NewApp(session *application.Session, opts Options) *App {
	a := &App{
		session: session,
		opts:    opts,
		state:   ViewLog,
		log:     views.NewLogModel(session, opts.Source),
		capture: views.NewCaptureModel(session.Log),
		confirm: views.NewDeleteModel(),
		help:    views.NewHelpModel(),
	}
	a.log.EnableSQLite(opts.Database != nil)
	return a
}

// locationEventMsg carries one capability event into Update
type locationEventMsg struct {
	event ports.LocationEvent
}

// eventsClosedMsg is sent once the capability's channel closes
type eventsClosedMsg struct{}

type editorFinishedMsg struct{ err error }

// waitForEvent blocks on the next capability event. Update re-arms it after
// each event so there is exactly one reader at a time.
func waitForEvent(events <-chan ports.LocationEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return locationEventMsg{event: ev}
	}
}

// Init asks for location access and starts listening for events
func (a *App) Init() tea.Cmd {
	a.session.Provider.RequestStart()
	return tea.Batch(
		waitForEvent(a.session.Provider.Events()),
		a.log.Init(),
	)
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.log.SetSize(msg.Width, msg.Height)
		a.capture.SetSize(msg.Width, msg.Height)
		a.confirm.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	case locationEventMsg:
		a.session.Provider.Handle(msg.event)
		return a, waitForEvent(a.session.Provider.Events())

	case eventsClosedMsg:
		return a, nil

	case views.RetryLocationMsg:
		a.session.Provider.RequestStart()
		return a, nil

	// View switching messages
	case views.SwitchToLogMsg:
		a.state = ViewLog
		a.log.Refresh()
		return a, nil

	case views.SwitchToCaptureMsg:
		a.state = ViewCapture
		return a, tea.Batch(a.capture.Open(), a.capture.Init())

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToDeleteMsg:
		a.confirm.SetTargets(msg.Records)
		a.state = ViewDelete
		return a, nil

	case views.SwitchToClearMsg:
		a.confirm.SetClear(msg.Count)
		a.state = ViewDelete
		return a, nil

	// Session changes
	case views.CaptureSubmitMsg:
		a.appendObservation(msg)
		return a, nil

	case views.DeleteConfirmedMsg:
		a.deleteRecords(msg)
		return a, nil

	case views.ClearConfirmedMsg:
		a.clearSession()
		return a, nil

	case views.ExportRequestMsg:
		return a, a.export(msg.Format)

	case views.OpenEditorMsg:
		return a, a.openEditor(a.log.LastExport())

	case editorFinishedMsg:
		if msg.err != nil {
			a.log.SetMessage(fmt.Sprintf("Editor: %v", msg.err), true)
		}
		return a, nil
	}

	// The spinner keeps ticking whatever view is active
	if _, ok := msg.(tea.KeyMsg); !ok {
		if a.state != ViewLog {
			_, cmd := a.log.Update(msg)
			if a.state == ViewCapture {
				_, formCmd := a.capture.Update(msg)
				return a, tea.Batch(cmd, formCmd)
			}
			return a, cmd
		}
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewLog:
		_, cmd = a.log.Update(msg)
	case ViewCapture:
		_, cmd = a.capture.Update(msg)
	case ViewDelete:
		_, cmd = a.confirm.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}
	return a, cmd
}

func (a *App) appendObservation(msg views.CaptureSubmitMsg) {
	cmd := commands.NewAppendCommand(a.session.Log, a.session.Provider, msg.Category, msg.Value, msg.Note)
	result, err := cmd.Execute(context.Background())
	if err != nil {
		// Stay on the form so nothing typed is lost
		a.capture.SetMessage(err.Error(), true)
		return
	}
	a.state = ViewLog
	a.log.Refresh()
	a.log.SetMessage(result.Message, false)
}

func (a *App) deleteRecords(msg views.DeleteConfirmedMsg) {
	ids := make([]string, len(msg.IDs))
	for i, id := range msg.IDs {
		ids[i] = id.String()
	}
	a.state = ViewLog
	result, err := commands.NewDeleteCommand(a.session.Log, ids...).Execute(context.Background())
	if err != nil {
		a.log.SetMessage(err.Error(), true)
		return
	}
	a.log.Refresh()
	a.log.SetMessage(result.Message, false)
}

func (a *App) clearSession() {
	a.state = ViewLog
	result, err := commands.NewClearCommand(a.session.Log).Execute(context.Background())
	if err != nil {
		a.log.SetMessage(err.Error(), true)
		return
	}
	a.log.Refresh()
	a.log.SetMessage(result.Message, false)
}

func (a *App) export(format ports.ExportFormat) tea.Cmd {
	var opts []commands.ExportOption
	if a.opts.Sink != nil {
		opts = append(opts, commands.WithSink(a.opts.Sink))
	}
	if a.opts.Database != nil {
		opts = append(opts, commands.WithDatabase(a.opts.Database))
	}

	result, err := commands.NewExportCommand(a.session.Log, a.opts.Writer, format, opts...).Execute(context.Background())
	if err != nil {
		var exportErr *application.ExportError
		if errors.As(err, &exportErr) {
			a.log.SetMessage("Export failed, no file produced: "+exportErr.Err.Error(), true)
		} else {
			a.log.SetMessage(err.Error(), true)
		}
		return nil
	}
	a.log.SetLastExport(result.Path, a.opts.Editor != nil)
	a.log.SetMessage(result.Message, result.ShareErr != nil)
	if a.opts.EditAfterExport {
		return a.openEditor(result.Path)
	}
	return nil
}

func (a *App) openEditor(path string) tea.Cmd {
	if a.opts.Editor == nil || path == "" {
		return nil
	}

	cmd, err := a.opts.Editor.Command(path)
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewCapture:
		return a.capture.View()
	case ViewDelete:
		return a.confirm.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.log.View()
	}
}
