// Package share hands finished export files to the user: copy the path to
// the clipboard, open the file with the desktop handler or a text editor, or
// do nothing.
package share

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"

	"geolog/internal/adapters/editor"
	"geolog/internal/ports"
)

// Sink names accepted by New and the export.share setting
const (
	SinkClipboard = "clipboard"
	SinkOpen      = "open"
	SinkNone      = "none"
	SinkEditor    = "editor"
)

// New returns the sink registered under name
func New(name string) (ports.ExportSink, error) {
	switch name {
	case SinkClipboard:
		return NewClipboard(), nil
	case SinkOpen:
		return NewOpener(), nil
	case SinkEditor:
		return editor.NewOpener(), nil
	case SinkNone, "":
		return None{}, nil
	default:
		return nil, fmt.Errorf("unknown export sink %q (expected clipboard, open, editor or none)", name)
	}
}

// Clipboard copies the export path to the system clipboard
type Clipboard struct {
	write func(string) error
}

// Ensure Clipboard implements ExportSink
var _ ports.ExportSink = (*Clipboard)(nil)

// NewClipboard creates a clipboard sink
func NewClipboard() *Clipboard {
	return &Clipboard{write: clipboard.WriteAll}
}

func (c *Clipboard) Share(path string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not available on this system")
	}
	if err := c.write(path); err != nil {
		return fmt.Errorf("failed to copy path to clipboard: %w", err)
	}
	return nil
}

func (c *Clipboard) Name() string {
	return "copied path to clipboard"
}

// Opener hands the export to the platform's default application
type Opener struct {
	goos string
	run  func(*exec.Cmd) error
}

// Ensure Opener implements ExportSink
var _ ports.ExportSink = (*Opener)(nil)

// NewOpener creates an opener for the running platform
func NewOpener() *Opener {
	return &Opener{
		goos: runtime.GOOS,
		run:  (*exec.Cmd).Run,
	}
}

func (o *Opener) Share(path string) error {
	cmd, err := openCommand(o.goos, path)
	if err != nil {
		return err
	}
	if err := o.run(cmd); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	slog.Debug("opened export", "path", path, "command", cmd.Path)
	return nil
}

func (o *Opener) Name() string {
	return "opened with default application"
}

func openCommand(goos, path string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", path), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", path), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path), nil
	default:
		return nil, fmt.Errorf("unsupported operating system: %s", goos)
	}
}

// None leaves the export where it was written
type None struct{}

func (None) Share(string) error { return nil }

func (None) Name() string { return "" }
