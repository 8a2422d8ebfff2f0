package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// CSVHeader is the fixed column order of the CSV export
const CSVHeader = "index,timestamp,lat,lon,h_acc,type,value,note"

// NoteCommaSubstitute replaces literal commas in notes so free text never
// splits a row
const NoteCommaSubstitute = "，"

// TimestampLayout is the date-time format used by every export
const TimestampLayout = time.RFC3339

// FormatTimestamp renders t in UTC with the export layout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// FormatValue renders a measurement with two decimals, empty when absent
func FormatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// SanitizeNote applies the comma substitution, empty when absent
func SanitizeNote(note *string) string {
	if note == nil {
		return ""
	}
	return strings.ReplaceAll(*note, ",", NoteCommaSubstitute)
}

// EncodeCSV renders records as a header line plus one line per record.
// Fields are joined with commas and not quoted.
func EncodeCSV(records []Record) string {
	var b strings.Builder
	b.WriteString(CSVHeader)
	for _, r := range records {
		b.WriteByte('\n')
		b.WriteString(strings.Join([]string{
			strconv.Itoa(r.SequenceIndex),
			FormatTimestamp(r.Timestamp),
			formatCoordinate(r.Latitude),
			formatCoordinate(r.Longitude),
			formatCoordinate(r.HorizontalAccuracy),
			r.Category.Label(),
			FormatValue(r.Value),
			SanitizeNote(r.Note),
		}, ","))
	}
	return b.String()
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// EncodeGeoJSON renders records as an RFC 7946 FeatureCollection with
// longitude-first Point geometries
func EncodeGeoJSON(records []Record) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, r := range records {
		f := geojson.NewFeature(orb.Point{r.Longitude, r.Latitude})
		f.Properties["index"] = r.SequenceIndex
		f.Properties["type"] = r.Category.Label()
		value := 0.0
		if r.Value != nil {
			value = *r.Value
		}
		f.Properties["value"] = value
		f.Properties["note"] = r.NoteText()
		f.Properties["timestamp"] = FormatTimestamp(r.Timestamp)
		fc.Append(f)
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding feature collection: %w", err)
	}
	return data, nil
}
