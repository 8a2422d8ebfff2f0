package tui

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geolog/internal/adapters/filesystem"
	"geolog/internal/adapters/share"
	"geolog/internal/adapters/sqlite"
	"geolog/internal/adapters/static"
	"geolog/internal/adapters/tui/views"
	"geolog/internal/application"
	"geolog/internal/domain"
	"geolog/internal/ports"
)

var taipei = domain.Fix{
	Latitude:           25.03,
	Longitude:          121.56,
	HorizontalAccuracy: 5,
	Timestamp:          time.Date(2024, 5, 1, 8, 31, 0, 0, time.UTC),
}

func newTestApp(t *testing.T) (*App, *static.Scripted, string) {
	t.Helper()
	capability := static.NewScripted(domain.AuthWhenInUse, domain.AuthWhenInUse)
	t.Cleanup(func() { capability.Close() })

	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return start.Add(time.Duration(tick) * time.Minute)
	}

	dir := t.TempDir()
	app := NewApp(application.NewSession(capability, clock), Options{
		Writer:   filesystem.NewExporter(dir),
		Sink:     share.None{},
		Database: sqlite.Encoder{},
		Source:   "scripted",
	})
	return app, capability, dir
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run feeds msg to the app and then every view message its commands
// produce. Timers (cursor blink, spinner) and event reads are not followed.
func run(a *App, msg tea.Msg) {
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		_, cmd := a.Update(next)
		if cmd == nil || !triggersView(next) {
			continue
		}
		if out := cmd(); follow(out) {
			queue = append(queue, out)
		}
	}
}

func triggersView(msg tea.Msg) bool {
	_, isKey := msg.(tea.KeyMsg)
	return isKey || follow(msg)
}

func follow(msg tea.Msg) bool {
	switch msg.(type) {
	case views.SwitchToLogMsg, views.SwitchToCaptureMsg, views.SwitchToHelpMsg,
		views.SwitchToDeleteMsg, views.SwitchToClearMsg,
		views.CaptureSubmitMsg, views.DeleteConfirmedMsg, views.ClearConfirmedMsg,
		views.ExportRequestMsg, views.RetryLocationMsg:
		return true
	}
	return false
}

func deliver(a *App, fix domain.Fix) {
	a.Update(locationEventMsg{event: ports.FixesDelivered{Fixes: []domain.Fix{fix}}})
}

func logObservation(t *testing.T, a *App, category domain.Category, value string) {
	t.Helper()
	before := a.session.Log.Len()
	run(a, views.CaptureSubmitMsg{Category: category, Value: value})
	require.Equal(t, before+1, a.session.Log.Len())
}

func TestApp_InitStartsUpdatesWhenAuthorized(t *testing.T) {
	a, capability, _ := newTestApp(t)

	cmd := a.Init()
	require.NotNil(t, cmd)
	assert.Equal(t, 1, capability.StartCalls())
	assert.Equal(t, 0, capability.PermissionRequests())
}

func TestApp_LocationEventsReachProvider(t *testing.T) {
	a, capability, _ := newTestApp(t)
	a.Init()

	require.True(t, capability.Emit(ports.FixesDelivered{Fixes: []domain.Fix{taipei}}))
	msg := waitForEvent(capability.Events())()
	_, cmd := a.Update(msg)
	assert.NotNil(t, cmd, "the event reader is re-armed")

	fix, ok := a.session.Provider.CurrentFix()
	require.True(t, ok)
	assert.Equal(t, taipei, fix)
	assert.Contains(t, a.View(), "25.03000, 121.56000")
}

func TestApp_EventsClosed(t *testing.T) {
	a, capability, _ := newTestApp(t)
	require.NoError(t, capability.Close())

	msg := waitForEvent(capability.Events())()
	assert.Equal(t, eventsClosedMsg{}, msg)
	_, cmd := a.Update(msg)
	assert.Nil(t, cmd)
}

func TestApp_AppendWithoutFixStaysOnForm(t *testing.T) {
	a, _, _ := newTestApp(t)

	run(a, keyPress("n"))
	require.Equal(t, ViewCapture, a.state)

	run(a, views.CaptureSubmitMsg{Category: domain.CategoryLight, Value: "120"})
	assert.Equal(t, ViewCapture, a.state)
	assert.Equal(t, 0, a.session.Log.Len())
	assert.Contains(t, a.View(), "no fix yet")
}

func TestApp_AppendReturnsToLog(t *testing.T) {
	a, _, _ := newTestApp(t)
	deliver(a, taipei)

	run(a, keyPress("n"))
	logObservation(t, a, domain.CategoryLight, "120")

	assert.Equal(t, ViewLog, a.state)
	view := a.View()
	assert.Contains(t, view, "Logged Light #1")
	assert.Contains(t, view, "120 lux")
}

func TestApp_CategoryMismatchIsReported(t *testing.T) {
	a, _, _ := newTestApp(t)
	deliver(a, taipei)
	logObservation(t, a, domain.CategoryTree, "31")

	run(a, keyPress("n"))
	run(a, views.CaptureSubmitMsg{Category: domain.CategoryLight, Value: "120"})

	assert.Equal(t, ViewCapture, a.state)
	assert.Equal(t, 1, a.session.Log.Len())
	assert.Contains(t, a.View(), "session is logging Tree")
}

func TestApp_DeleteMapsDisplayRowsToIDs(t *testing.T) {
	a, _, _ := newTestApp(t)
	deliver(a, taipei)
	logObservation(t, a, domain.CategoryLight, "1")
	logObservation(t, a, domain.CategoryLight, "2")
	logObservation(t, a, domain.CategoryLight, "3")
	before := a.session.Log.Records()

	// Rows are newest first: the cursor starts on #3, j moves to #2
	run(a, keyPress("j"))
	run(a, keyPress("d"))
	require.Equal(t, ViewDelete, a.state)
	assert.Contains(t, a.View(), "Delete 1 record")

	run(a, keyPress("y"))
	require.Equal(t, ViewLog, a.state)

	after := a.session.Log.Records()
	require.Len(t, after, 2)
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Equal(t, before[2].ID, after[1].ID)
	assert.Equal(t, 2, after[1].SequenceIndex)
}

func TestApp_DeleteMarkedRecords(t *testing.T) {
	a, _, _ := newTestApp(t)
	deliver(a, taipei)
	logObservation(t, a, domain.CategoryLight, "1")
	logObservation(t, a, domain.CategoryLight, "2")
	logObservation(t, a, domain.CategoryLight, "3")
	before := a.session.Log.Records()

	// Mark #3 and #2 (space advances the cursor)
	run(a, keyPress(" "))
	run(a, keyPress(" "))
	run(a, keyPress("d"))
	assert.Contains(t, a.View(), "Delete 2 records")
	run(a, keyPress("y"))

	after := a.session.Log.Records()
	require.Len(t, after, 1)
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Contains(t, a.View(), "Deleted 2 records")
}

func TestApp_CancelDeleteKeepsRecords(t *testing.T) {
	a, _, _ := newTestApp(t)
	deliver(a, taipei)
	logObservation(t, a, domain.CategoryLight, "1")

	run(a, keyPress("d"))
	run(a, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, ViewLog, a.state)
	assert.Equal(t, 1, a.session.Log.Len())
}

func TestApp_ClearLiftsLock(t *testing.T) {
	a, _, _ := newTestApp(t)
	deliver(a, taipei)
	logObservation(t, a, domain.CategoryTree, "31")

	run(a, keyPress("C"))
	require.Equal(t, ViewDelete, a.state)
	run(a, keyPress("y"))

	assert.Equal(t, 0, a.session.Log.Len())
	assert.False(t, a.session.Log.IsLocked())
	logObservation(t, a, domain.CategoryLight, "120")
}

func TestApp_Export(t *testing.T) {
	tests := []struct {
		key  string
		ext  string
		want string
	}{
		{key: "c", ext: ".csv", want: "Light,120"},
		{key: "g", ext: ".geojson", want: `"FeatureCollection"`},
		{key: "s", ext: ".sqlite", want: "SQLite format 3"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			a, _, dir := newTestApp(t)
			deliver(a, taipei)
			logObservation(t, a, domain.CategoryLight, "120")

			run(a, keyPress(tt.key))

			path := a.log.LastExport()
			require.NotEmpty(t, path)
			assert.Equal(t, dir, filepath.Dir(path))
			assert.True(t, strings.HasPrefix(filepath.Base(path), ports.ExportFilePrefix))
			assert.Equal(t, tt.ext, filepath.Ext(path))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(data), tt.want)
			assert.Contains(t, a.View(), "Exported 1 record")
		})
	}
}

// recordingEditor hands out a no-op command and remembers the path
type recordingEditor struct {
	opened []string
}

func (e *recordingEditor) OpenFile(path string) error {
	e.opened = append(e.opened, path)
	return nil
}

func (e *recordingEditor) Command(path string) (*exec.Cmd, error) {
	e.opened = append(e.opened, path)
	return exec.Command("true", path), nil
}

func TestApp_EditAfterExport(t *testing.T) {
	a, _, _ := newTestApp(t)
	ed := &recordingEditor{}
	a.opts.Editor = ed
	deliver(a, taipei)
	logObservation(t, a, domain.CategoryLight, "120")

	_, cmd := a.Update(views.ExportRequestMsg{Format: ports.FormatCSV})
	assert.Nil(t, cmd)
	assert.Empty(t, ed.opened)

	a.opts.EditAfterExport = true
	_, cmd = a.Update(views.ExportRequestMsg{Format: ports.FormatGeoJSON})
	require.NotNil(t, cmd)
	require.Len(t, ed.opened, 1)
	assert.Equal(t, a.log.LastExport(), ed.opened[0])
	assert.Equal(t, ".geojson", filepath.Ext(ed.opened[0]))
}

func TestApp_SQLiteKeyDisabledWithoutDatabase(t *testing.T) {
	capability := static.NewScripted(domain.AuthWhenInUse, domain.AuthWhenInUse)
	defer capability.Close()
	dir := t.TempDir()
	a := NewApp(application.NewSession(capability, nil), Options{Writer: filesystem.NewExporter(dir)})

	run(a, keyPress("s"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotContains(t, a.View(), "sqlite")
}

func TestApp_CtrlCQuits(t *testing.T) {
	a, _, _ := newTestApp(t)
	run(a, keyPress("n"))

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_HelpRoundTrip(t *testing.T) {
	a, _, _ := newTestApp(t)

	run(a, keyPress("?"))
	require.Equal(t, ViewHelp, a.state)
	assert.Contains(t, a.View(), "GeoLog Help")

	run(a, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewLog, a.state)
}
