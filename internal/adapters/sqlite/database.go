package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"geolog/internal/domain"
	"geolog/internal/ports"

	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = "1"

// Database is an export database holding one session's observations
type Database struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database file at path and applies the schema
func Open(path string) (*Database, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Schema and metadata in a single batch
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS observations (
			id TEXT PRIMARY KEY,
			"index" INTEGER NOT NULL,
			timestamp TEXT NOT NULL,
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			h_acc REAL NOT NULL,
			type TEXT NOT NULL,
			value REAL,
			note TEXT
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_observations_index ON observations("index");
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to update metadata: %w", err)
	}

	return &Database{db: db, path: path}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Path returns the database file path
func (d *Database) Path() string {
	return d.path
}

// Begin starts a transaction for inserting observations
func (d *Database) Begin() (*exportTx, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &exportTx{tx: tx}, nil
}

// WriteRecords replaces the stored observations with records in one transaction
func (d *Database) WriteRecords(records []domain.Record) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}

	if err := tx.DeleteAll(); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear observations: %w", err)
	}
	for i := range records {
		if err := tx.InsertRecord(&records[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert observation %d: %w", records[i].SequenceIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit observations: %w", err)
	}
	return nil
}

// Count returns the number of stored observations
func (d *Database) Count() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM observations`).Scan(&n)
	return n, err
}

// Encode renders records as the bytes of a standalone SQLite database file
func Encode(records []domain.Record) ([]byte, error) {
	dir, err := os.MkdirTemp("", "geolog-sqlite-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	db, err := Open(filepath.Join(dir, "export.sqlite"))
	if err != nil {
		return nil, err
	}
	if err := db.WriteRecords(records); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Close(); err != nil {
		return nil, fmt.Errorf("failed to close database: %w", err)
	}

	data, err := os.ReadFile(db.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to read database: %w", err)
	}
	return data, nil
}

// Encoder implements ports.RecordEncoder with Encode
type Encoder struct{}

// Ensure Encoder implements RecordEncoder
var _ ports.RecordEncoder = Encoder{}

func (Encoder) Encode(records []domain.Record) ([]byte, error) {
	return Encode(records)
}
