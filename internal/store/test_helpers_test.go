package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/journal/internal/config"
)

// testConfig returns a SQLite config backed by a temp file.
func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DSN = filepath.Join(t.TempDir(), "test.db")
	return cfg
}

// createTestStore creates a new store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRow creates a journal row with minimal required fields.
func createTestRow(persistenceID string, seq int64, tags ...string) JournalRow {
	return JournalRow{
		PersistenceID: persistenceID,
		SequenceNr:    seq,
		Tags:          tags,
		Message:       []byte(`{"n":1}`),
		Manifest:      "json",
		WriterUUID:    "writer-1",
		Timestamp:     1700000000000 + seq,
	}
}

func insertRows(t *testing.T, s *Store, rows ...JournalRow) {
	t.Helper()
	for _, r := range rows {
		if err := s.InsertRow(context.Background(), s.DB(), r); err != nil {
			t.Fatalf("InsertRow() failed: %v", err)
		}
	}
}
