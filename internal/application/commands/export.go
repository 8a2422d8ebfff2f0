package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"geolog/internal/application"
	"geolog/internal/domain"
	"geolog/internal/ports"
)

// ExportResult describes a written export
type ExportResult struct {
	Path     string
	Format   ports.ExportFormat
	Records  int
	ShareErr error
	Message  string
}

// ExportCommand renders the session, writes it and hands it to a sink
type ExportCommand struct {
	log      *domain.SessionLog
	writer   ports.ExportWriter
	sink     ports.ExportSink
	database ports.RecordEncoder
	now      func() time.Time
	Format   ports.ExportFormat
}

// ExportOption configures an ExportCommand
type ExportOption func(*ExportCommand)

// WithSink shares the file after writing it
func WithSink(sink ports.ExportSink) ExportOption {
	return func(c *ExportCommand) { c.sink = sink }
}

// WithDatabase enables the sqlite format
func WithDatabase(encoder ports.RecordEncoder) ExportOption {
	return func(c *ExportCommand) { c.database = encoder }
}

// WithClock sets the clock used for the file name
func WithClock(now func() time.Time) ExportOption {
	return func(c *ExportCommand) { c.now = now }
}

// NewExportCommand creates a new ExportCommand
func NewExportCommand(log *domain.SessionLog, writer ports.ExportWriter, format ports.ExportFormat, opts ...ExportOption) *ExportCommand {
	c := &ExportCommand{
		log:    log,
		writer: writer,
		now:    time.Now,
		Format: format,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate checks that the format can be produced
func (c *ExportCommand) Validate() error {
	switch c.Format {
	case ports.FormatCSV, ports.FormatGeoJSON:
		return nil
	case ports.FormatSQLite:
		if c.database == nil {
			return &application.ValidationError{
				Field:   "format",
				Message: "sqlite export is not available",
			}
		}
		return nil
	case "":
		return application.ValidateRequired("format", string(c.Format))
	default:
		return &application.ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("unknown export format %q (expected csv, geojson or sqlite)", c.Format),
		}
	}
}

// Execute exports the session. Any failure before the file exists is an
// *application.ExportError; a failed share is reported in the result.
func (c *ExportCommand) Execute(ctx context.Context) (*ExportResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	data, err := c.render()
	if err != nil {
		return nil, &application.ExportError{Format: string(c.Format), Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &application.ExportError{Format: string(c.Format), Err: err}
	}

	path, err := c.writer.Write(c.Format.FileName(c.now()), data)
	if err != nil {
		return nil, &application.ExportError{Format: string(c.Format), Err: err}
	}
	slog.Info("session exported", "format", string(c.Format), "path", path, "records", c.log.Len())

	result := &ExportResult{
		Path:    path,
		Format:  c.Format,
		Records: c.log.Len(),
		Message: fmt.Sprintf("Exported %d %s to %s", c.log.Len(), plural(c.log.Len(), "record", "records"), path),
	}
	if c.sink != nil {
		if err := c.sink.Share(path); err != nil {
			slog.Warn("sharing export failed", "path", path, "error", err)
			result.ShareErr = err
			result.Message += fmt.Sprintf(" (share failed: %v)", err)
		} else if name := c.sink.Name(); name != "" {
			result.Message += ", " + name
		}
	}
	return result, nil
}

func (c *ExportCommand) render() ([]byte, error) {
	switch c.Format {
	case ports.FormatCSV:
		return []byte(c.log.ToCSV()), nil
	case ports.FormatGeoJSON:
		return c.log.ToGeoJSON()
	case ports.FormatSQLite:
		return c.database.Encode(c.log.Records())
	}
	return nil, fmt.Errorf("unknown export format %q", c.Format)
}
