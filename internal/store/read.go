package store

import (
	"context"
	"fmt"
)

// HighestSequenceNr returns the largest sequence number above fromSeqNr
// among the journal rows of persistenceID and, when withMetadata is set,
// its metadata rows. Returns 0 if neither has a match.
func (s *Store) HighestSequenceNr(ctx context.Context, q DBTX, persistenceID string, fromSeqNr int64, withMetadata bool) (int64, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(sequence_number), 0) FROM %s
		WHERE persistence_id = ? AND sequence_number > ?
	`, s.journalTable)
	args := []any{persistenceID, fromSeqNr}

	if withMetadata {
		query = fmt.Sprintf(`
			SELECT COALESCE(MAX(sequence_number), 0) FROM (
				SELECT sequence_number FROM %s
				WHERE persistence_id = ? AND sequence_number > ?
				UNION ALL
				SELECT sequence_number FROM %s
				WHERE persistence_id = ? AND sequence_number > ?
			) AS seqs
		`, s.journalTable, s.metadataTable)
		args = append(args, persistenceID, fromSeqNr)
	}

	var highest int64
	if err := q.QueryRowContext(ctx, s.q(query), args...).Scan(&highest); err != nil {
		return 0, fmt.Errorf("highest sequence nr %s: %w", persistenceID, err)
	}
	return highest, nil
}

// ReadRange returns the non-deleted rows of persistenceID with
// fromSeqNr <= sequence_number <= toSeqNr, ascending by sequence number.
// A negative limit means no cap.
//
// Returns an empty slice (not nil) if no rows match.
func (s *Store) ReadRange(ctx context.Context, q DBTX, persistenceID string, fromSeqNr, toSeqNr, limit int64) ([]JournalRow, error) {
	query := fmt.Sprintf(`
		SELECT ordering, persistence_id, sequence_number, deleted, tags, message, manifest, writer_uuid, written_at
		FROM %s
		WHERE persistence_id = ? AND sequence_number >= ? AND sequence_number <= ? AND deleted = ?
		ORDER BY sequence_number ASC
	`, s.journalTable)
	args := []any{persistenceID, fromSeqNr, toSeqNr, false}
	if limit >= 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return s.queryRows(ctx, q, query, args...)
}

// ReadAll returns every row of persistenceID, deleted or not, ascending by
// sequence number. Used for inspection.
func (s *Store) ReadAll(ctx context.Context, q DBTX, persistenceID string) ([]JournalRow, error) {
	query := fmt.Sprintf(`
		SELECT ordering, persistence_id, sequence_number, deleted, tags, message, manifest, writer_uuid, written_at
		FROM %s
		WHERE persistence_id = ?
		ORDER BY sequence_number ASC
	`, s.journalTable)
	return s.queryRows(ctx, q, query, persistenceID)
}

// ReadMetadata returns the metadata rows of persistenceID, ascending.
func (s *Store) ReadMetadata(ctx context.Context, q DBTX, persistenceID string) ([]MetadataRow, error) {
	rows, err := q.QueryContext(ctx, s.q(fmt.Sprintf(`
		SELECT persistence_id, sequence_number FROM %s
		WHERE persistence_id = ?
		ORDER BY sequence_number ASC
	`, s.metadataTable)), persistenceID)
	if err != nil {
		return nil, fmt.Errorf("query metadata: %w", err)
	}
	defer rows.Close()

	result := []MetadataRow{}
	for rows.Next() {
		var m MetadataRow
		if err := rows.Scan(&m.PersistenceID, &m.SequenceNr); err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metadata: %w", err)
	}
	return result, nil
}

func (s *Store) queryRows(ctx context.Context, q DBTX, query string, args ...any) ([]JournalRow, error) {
	rows, err := q.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	result := []JournalRow{}
	for rows.Next() {
		var (
			r    JournalRow
			tags string
		)
		if err := rows.Scan(
			&r.Ordering,
			&r.PersistenceID,
			&r.SequenceNr,
			&r.Deleted,
			&tags,
			&r.Message,
			&r.Manifest,
			&r.WriterUUID,
			&r.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		r.Tags = decodeTags(tags)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return result, nil
}
