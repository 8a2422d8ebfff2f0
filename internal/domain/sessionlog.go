package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FixSource provides the most recent known position
type FixSource interface {
	CurrentFix() (Fix, bool)
}

// SessionLog is the ordered, category-locked list of records for one session.
// It is not safe for concurrent use; a single owner drives it.
type SessionLog struct {
	records []*Record
	fixes   FixSource
	now     func() time.Time
}

// NewSessionLog creates an empty log reading positions from fixes.
// A nil clock defaults to time.Now.
func NewSessionLog(fixes FixSource, clock func() time.Time) *SessionLog {
	if clock == nil {
		clock = time.Now
	}
	return &SessionLog{
		fixes: fixes,
		now:   clock,
	}
}

// Append records an observation at the current fix.
// It returns false without changing the log when no fix is known or when
// category differs from the locked category.
func (l *SessionLog) Append(category Category, value *float64, note *string) bool {
	fix, ok := l.currentFix()
	if !ok {
		return false
	}
	if locked, isLocked := l.LockedCategory(); isLocked && locked != category {
		return false
	}

	l.records = append(l.records, newRecord(len(l.records)+1, l.now(), fix, category, value, note))
	return true
}

// CanAppend is the validity predicate callers check before offering append:
// a fix is known and at least one of value or note is non-blank.
func (l *SessionLog) CanAppend(value, note string) bool {
	if _, ok := l.currentFix(); !ok {
		return false
	}
	return strings.TrimSpace(value) != "" || strings.TrimSpace(note) != ""
}

// Delete removes the records at the given 0-based positions in creation
// order as one batch. Out-of-range and repeated positions are ignored.
func (l *SessionLog) Delete(positions []int) {
	if len(positions) == 0 || len(l.records) == 0 {
		return
	}
	drop := make(map[int]struct{}, len(positions))
	for _, p := range positions {
		if p >= 0 && p < len(l.records) {
			drop[p] = struct{}{}
		}
	}
	l.retain(func(i int, _ *Record) bool {
		_, gone := drop[i]
		return !gone
	})
}

// DeleteIDs removes the records with the given IDs as one batch.
func (l *SessionLog) DeleteIDs(ids []uuid.UUID) {
	if len(ids) == 0 || len(l.records) == 0 {
		return
	}
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	l.retain(func(_ int, r *Record) bool {
		_, gone := drop[r.ID]
		return !gone
	})
}

func (l *SessionLog) retain(keep func(int, *Record) bool) {
	kept := l.records[:0]
	for i, r := range l.records {
		if keep(i, r) {
			kept = append(kept, r)
		}
	}
	clear(l.records[len(kept):])
	l.records = kept
	l.renumber()
}

func (l *SessionLog) renumber() {
	for i, r := range l.records {
		r.SequenceIndex = i + 1
	}
}

// Clear removes every record and lifts the category lock
func (l *SessionLog) Clear() {
	l.records = nil
}

// Len returns the number of records
func (l *SessionLog) Len() int {
	return len(l.records)
}

// IsLocked is true iff the log holds at least one record
func (l *SessionLog) IsLocked() bool {
	return len(l.records) > 0
}

// LockedCategory returns the category of the first record
func (l *SessionLog) LockedCategory() (Category, bool) {
	if len(l.records) == 0 {
		return 0, false
	}
	return l.records[0].Category, true
}

// Records returns copies of the records in sequence order
func (l *SessionLog) Records() []Record {
	out := make([]Record, len(l.records))
	for i, r := range l.records {
		out[i] = *r
		out[i].Value = cloneFloat(r.Value)
		out[i].Note = cloneString(r.Note)
	}
	return out
}

// ToCSV renders the log in the comma-delimited export format
func (l *SessionLog) ToCSV() string {
	return EncodeCSV(l.Records())
}

// ToGeoJSON renders the log as a pretty-printed FeatureCollection
func (l *SessionLog) ToGeoJSON() ([]byte, error) {
	return EncodeGeoJSON(l.Records())
}

func (l *SessionLog) currentFix() (Fix, bool) {
	if l.fixes == nil {
		return Fix{}, false
	}
	fix, ok := l.fixes.CurrentFix()
	if !ok || !fix.Valid() {
		return Fix{}, false
	}
	return fix, true
}
