package sqlite

import (
	"database/sql"

	"geolog/internal/domain"
)

// exportTx groups observation writes into one transaction
type exportTx struct {
	tx *sql.Tx
}

// InsertRecord stores one observation. The note is kept verbatim.
func (t *exportTx) InsertRecord(r *domain.Record) error {
	_, err := t.tx.Exec(`
		INSERT INTO observations (id, "index", timestamp, lat, lon, h_acc, type, value, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID.String(), r.SequenceIndex, domain.FormatTimestamp(r.Timestamp),
		r.Latitude, r.Longitude, r.HorizontalAccuracy, r.Category.Label(),
		nullFloat(r.Value), nullString(r.Note))
	return err
}

// DeleteAll removes every observation
func (t *exportTx) DeleteAll() error {
	_, err := t.tx.Exec(`DELETE FROM observations`)
	return err
}

// Commit commits the transaction
func (t *exportTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *exportTx) Rollback() error {
	return t.tx.Rollback()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
