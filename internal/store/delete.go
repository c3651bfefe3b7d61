package store

import (
	"context"
	"database/sql"
	"fmt"
)

// MarkDeleted flags every row of persistenceID with
// sequence_number <= maxSeqNr as deleted.
func (s *Store) MarkDeleted(ctx context.Context, q DBTX, persistenceID string, maxSeqNr int64) error {
	_, err := q.ExecContext(ctx, s.q(fmt.Sprintf(`
		UPDATE %s SET deleted = ?
		WHERE persistence_id = ? AND sequence_number <= ?
	`, s.journalTable)), true, persistenceID, maxSeqNr)
	if err != nil {
		return fmt.Errorf("mark deleted %s<=%d: %w", persistenceID, maxSeqNr, err)
	}
	return nil
}

// MaxMarkedDeleted returns the highest sequence number flagged deleted for
// persistenceID, or 0 when no row is flagged.
func (s *Store) MaxMarkedDeleted(ctx context.Context, q DBTX, persistenceID string) (int64, error) {
	var marked sql.NullInt64
	err := q.QueryRowContext(ctx, s.q(fmt.Sprintf(`
		SELECT MAX(sequence_number) FROM %s
		WHERE persistence_id = ? AND deleted = ?
	`, s.journalTable)), persistenceID, true).Scan(&marked)
	if err != nil {
		return 0, fmt.Errorf("max marked deleted %s: %w", persistenceID, err)
	}
	return marked.Int64, nil
}

// InsertMetadata records (persistenceID, seqNr) in the metadata table.
// An existing identical row is left as is.
func (s *Store) InsertMetadata(ctx context.Context, q DBTX, row MetadataRow) error {
	query := s.dialect.InsertIgnore(s.metadataTable, []string{"persistence_id", "sequence_number"})
	if _, err := q.ExecContext(ctx, query, row.PersistenceID, row.SequenceNr); err != nil {
		return fmt.Errorf("insert metadata %s@%d: %w", row.PersistenceID, row.SequenceNr, err)
	}
	return nil
}

// PurgeRows physically deletes rows with sequence_number <= maxSeqNr and
// sequence_number < keepFrom. Returns the number of rows removed.
func (s *Store) PurgeRows(ctx context.Context, q DBTX, persistenceID string, maxSeqNr, keepFrom int64) (int64, error) {
	res, err := q.ExecContext(ctx, s.q(fmt.Sprintf(`
		DELETE FROM %s
		WHERE persistence_id = ? AND sequence_number <= ? AND sequence_number < ?
	`, s.journalTable)), persistenceID, maxSeqNr, keepFrom)
	if err != nil {
		return 0, fmt.Errorf("purge rows %s<=%d: %w", persistenceID, maxSeqNr, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge rows %s: rows affected: %w", persistenceID, err)
	}
	return n, nil
}

// PurgeMetadata removes metadata rows below keepFrom for persistenceID.
func (s *Store) PurgeMetadata(ctx context.Context, q DBTX, persistenceID string, keepFrom int64) error {
	_, err := q.ExecContext(ctx, s.q(fmt.Sprintf(`
		DELETE FROM %s
		WHERE persistence_id = ? AND sequence_number < ?
	`, s.metadataTable)), persistenceID, keepFrom)
	if err != nil {
		return fmt.Errorf("purge metadata %s<%d: %w", persistenceID, keepFrom, err)
	}
	return nil
}
