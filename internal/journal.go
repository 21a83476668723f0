package internal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Journal records finalization events observed while watching results, so
// the transient 8-second alerts leave a durable trace.
type Journal struct {
	db *sql.DB
}

// JournalEntry is one recorded finalization observation.
type JournalEntry struct {
	Wholesaler string
	TotalCost  float64
	ObservedAt time.Time
}

// DefaultJournalPath returns the journal database inside the user config
// directory.
func DefaultJournalPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, "negokart", "journal.db"), nil
}

// OpenJournal opens (creating if needed) the journal database at path.
func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal ping failed: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS finalized_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		wholesaler TEXT NOT NULL,
		total_cost REAL NOT NULL,
		observed_at TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// RecordFinalized appends one finalization observation.
func (j *Journal) RecordFinalized(wholesaler string, totalCost float64, observedAt time.Time) error {
	_, err := j.db.Exec(
		"INSERT INTO finalized_events (wholesaler, total_cost, observed_at) VALUES (?, ?, ?)",
		wholesaler, totalCost, observedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record finalization: %w", err)
	}
	return nil
}

// Entries returns all recorded events, newest first.
func (j *Journal) Entries() ([]JournalEntry, error) {
	rows, err := j.db.Query(
		"SELECT wholesaler, total_cost, observed_at FROM finalized_events ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("journal query failed: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var observed string
		if err := rows.Scan(&e.Wholesaler, &e.TotalCost, &observed); err != nil {
			return nil, fmt.Errorf("journal scan failed: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, observed); err == nil {
			e.ObservedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal iteration failed: %w", err)
	}
	return entries, nil
}

// Close releases the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
