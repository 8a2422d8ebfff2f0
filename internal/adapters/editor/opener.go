// Package editor opens export files in the user's text editor.
package editor

import (
	"fmt"
	"os"
	"os/exec"

	"geolog/internal/ports"
)

// fallbacks are tried in order when neither $VISUAL nor $EDITOR is set
var fallbacks = []string{"nvim", "vim", "vi", "nano"}

// Opener implements ports.EditorOpener and ports.ExportSink
type Opener struct {
	getenv   func(string) string
	lookPath func(string) (string, error)
}

var (
	_ ports.EditorOpener = (*Opener)(nil)
	_ ports.ExportSink   = (*Opener)(nil)
)

// NewOpener creates a new editor opener
func NewOpener() *Opener {
	return &Opener{
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
	}
}

// OpenFile opens path in the editor and waits for it to exit
func (o *Opener) OpenFile(path string) error {
	cmd, err := o.Command(path)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// Share opens the export for review; it is the "editor" share sink
func (o *Opener) Share(path string) error {
	return o.OpenFile(path)
}

func (o *Opener) Name() string {
	return "opened in editor"
}

// Command returns an exec.Cmd attached to the terminal, for tea.ExecProcess
func (o *Opener) Command(path string) (*exec.Cmd, error) {
	editor := o.findEditor()
	if editor == "" {
		return nil, fmt.Errorf("no editor found: set $EDITOR environment variable")
	}

	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

func (o *Opener) findEditor() string {
	if visual := o.getenv("VISUAL"); visual != "" {
		return visual
	}
	if editor := o.getenv("EDITOR"); editor != "" {
		return editor
	}

	for _, name := range fallbacks {
		if path, err := o.lookPath(name); err == nil {
			return path
		}
	}
	return ""
}
