package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is one GPS-tagged observation
type Record struct {
	ID                 uuid.UUID
	SequenceIndex      int // 1-based, renumbered after deletions
	Timestamp          time.Time
	Latitude           float64
	Longitude          float64
	HorizontalAccuracy float64
	Category           Category
	Value              *float64
	Note               *string
}

// newRecord snapshots fix into a record with a fresh ID
func newRecord(index int, at time.Time, fix Fix, category Category, value *float64, note *string) *Record {
	return &Record{
		ID:                 uuid.New(),
		SequenceIndex:      index,
		Timestamp:          at,
		Latitude:           fix.Latitude,
		Longitude:          fix.Longitude,
		HorizontalAccuracy: fix.HorizontalAccuracy,
		Category:           category,
		Value:              cloneFloat(value),
		Note:               cloneString(note),
	}
}

// HasValue reports whether a measurement was recorded
func (r Record) HasValue() bool {
	return r.Value != nil
}

// HasNote reports whether a non-blank note was recorded
func (r Record) HasNote() bool {
	return r.Note != nil && strings.TrimSpace(*r.Note) != ""
}

// NoteText returns the note or an empty string
func (r Record) NoteText() string {
	if r.Note == nil {
		return ""
	}
	return *r.Note
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
