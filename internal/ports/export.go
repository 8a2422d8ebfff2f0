package ports

import (
	"fmt"
	"time"

	"geolog/internal/domain"
)

// ExportFormat identifies an export file type
type ExportFormat string

const (
	FormatCSV     ExportFormat = "csv"
	FormatGeoJSON ExportFormat = "geojson"
	FormatSQLite  ExportFormat = "sqlite"
)

// ExportFilePrefix starts every export file name
const ExportFilePrefix = "GeoLog_"

// Extension returns the file extension without the dot
func (f ExportFormat) Extension() string {
	return string(f)
}

// FileName builds the export file name for a moment, e.g. GeoLog_1714552260.csv
func (f ExportFormat) FileName(at time.Time) string {
	return fmt.Sprintf("%s%d.%s", ExportFilePrefix, at.Unix(), f.Extension())
}

// ExportWriter stores a rendered export and returns the path of the new file.
// On error no file is left behind.
type ExportWriter interface {
	Write(name string, data []byte) (string, error)
}

// ExportSink receives a completed export file, e.g. to share it
type ExportSink interface {
	// Share hands the file to the sink
	Share(path string) error

	// Name describes the sink in status messages
	Name() string
}

// RecordEncoder renders records into a binary export, e.g. a database file
type RecordEncoder interface {
	Encode(records []domain.Record) ([]byte, error)
}
