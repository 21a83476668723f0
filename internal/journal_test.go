package internal

import (
	"path/filepath"
	"testing"
	"time"
)

func TestJournal_RecordAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "journal.db")
	j, err := OpenJournal(path)
	if err != nil {
		t.Fatalf("OpenJournal() error: %v", err)
	}
	defer j.Close()

	first := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Minute)
	if err := j.RecordFinalized("W1", 120.5, first); err != nil {
		t.Fatalf("RecordFinalized() error: %v", err)
	}
	if err := j.RecordFinalized("W2", 99, second); err != nil {
		t.Fatalf("RecordFinalized() error: %v", err)
	}

	entries, err := j.Entries()
	if err != nil {
		t.Fatalf("Entries() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Entries() returned %d entries, want 2", len(entries))
	}

	// Newest first.
	if entries[0].Wholesaler != "W2" || entries[1].Wholesaler != "W1" {
		t.Errorf("entry order = %q, %q; want W2 then W1", entries[0].Wholesaler, entries[1].Wholesaler)
	}
	if entries[0].TotalCost != 99 {
		t.Errorf("TotalCost = %v, want 99", entries[0].TotalCost)
	}
	if !entries[1].ObservedAt.Equal(first) {
		t.Errorf("ObservedAt = %v, want %v", entries[1].ObservedAt, first)
	}
}

func TestJournal_ReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := OpenJournal(path)
	if err != nil {
		t.Fatalf("OpenJournal() error: %v", err)
	}
	if err := j.RecordFinalized("W1", 10, time.Now()); err != nil {
		t.Fatalf("RecordFinalized() error: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	j, err = OpenJournal(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer j.Close()

	entries, err := j.Entries()
	if err != nil {
		t.Fatalf("Entries() error: %v", err)
	}
	if len(entries) != 1 || entries[0].Wholesaler != "W1" {
		t.Errorf("entries after reopen = %+v, want the recorded W1 event", entries)
	}
}

func TestJournal_EmptyDatabase(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("OpenJournal() error: %v", err)
	}
	defer j.Close()

	entries, err := j.Entries()
	if err != nil {
		t.Fatalf("Entries() error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Entries() = %v for a fresh journal, want none", entries)
	}
}
