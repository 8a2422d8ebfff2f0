package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"geolog/internal/ports"
)

// Exporter implements ports.ExportWriter by writing files into a directory
type Exporter struct {
	dir string
}

// Ensure Exporter implements ExportWriter
var _ ports.ExportWriter = (*Exporter)(nil)

// NewExporter creates an exporter for dir; an empty dir means os.TempDir()
func NewExporter(dir string) *Exporter {
	if dir == "" {
		dir = os.TempDir()
	}
	// Expand ~ to home directory
	if strings.HasPrefix(dir, "~") {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, dir[1:])
	}
	return &Exporter{dir: dir}
}

// Dir returns the target directory
func (e *Exporter) Dir() string {
	return e.dir
}

// Write stores data as dir/name. The data goes to a temporary file first and
// is renamed into place, so a failed write leaves nothing under name.
func (e *Exporter) Write(name string, data []byte) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid export file name %q", name)
	}
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(e.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to set export permissions: %w", err)
	}

	path := filepath.Join(e.dir, name)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}

	return path, nil
}
