// Package nmea turns NMEA 0183 sentences from a GPS receiver into location
// fixes.
package nmea

import (
	"fmt"
	"strings"
	"time"

	gonmea "github.com/adrianmo/go-nmea"

	"geolog/internal/domain"
)

// UERE is the user equivalent range error in metres used to turn HDOP into a
// horizontal accuracy estimate.
const UERE = 5.0

// Decoder keeps the state needed to build fixes across sentences.
// RMC carries the position; GGA and GSA carry the dilution of precision.
type Decoder struct {
	hdop  float64
	clock func() time.Time
}

// NewDecoder creates a decoder. clock stamps fixes whose RMC carries no date.
func NewDecoder(clock func() time.Time) *Decoder {
	if clock == nil {
		clock = time.Now
	}
	return &Decoder{hdop: 1, clock: clock}
}

// Feed parses one line. It returns a fix when the line is a valid RMC
// sentence. Lines of other sentence types are ignored without error.
func (d *Decoder) Feed(line string) (domain.Fix, bool, error) {
	line = strings.TrimSpace(line)
	if !wanted(line) {
		return domain.Fix{}, false, nil
	}

	s, err := gonmea.Parse(line)
	if err != nil {
		return domain.Fix{}, false, fmt.Errorf("parsing sentence: %w", err)
	}

	switch m := s.(type) {
	case gonmea.GGA:
		if m.FixQuality != gonmea.Invalid && m.HDOP > 0 {
			d.hdop = m.HDOP
		}
	case gonmea.GSA:
		if m.FixType != gonmea.FixNone && m.HDOP > 0 {
			d.hdop = m.HDOP
		}
	case gonmea.RMC:
		if m.Validity != gonmea.ValidRMC {
			return domain.Fix{}, false, nil
		}
		fix := domain.Fix{
			Latitude:           m.Latitude,
			Longitude:          m.Longitude,
			HorizontalAccuracy: d.hdop * UERE,
			Timestamp:          d.timestamp(m.Date, m.Time),
		}
		if !fix.Valid() {
			return domain.Fix{}, false, fmt.Errorf("out of range position %s", fix)
		}
		return fix, true, nil
	}
	return domain.Fix{}, false, nil
}

func (d *Decoder) timestamp(date gonmea.Date, t gonmea.Time) time.Time {
	if !date.Valid || !t.Valid {
		return d.clock().UTC()
	}
	return time.Date(2000+date.YY, time.Month(date.MM), date.DD,
		t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC)
}

// wanted reports whether line is an RMC, GGA or GSA sentence from any talker
func wanted(line string) bool {
	if len(line) < 6 || line[0] != '$' {
		return false
	}
	switch line[3:6] {
	case gonmea.TypeRMC, gonmea.TypeGGA, gonmea.TypeGSA:
		return true
	}
	return false
}
