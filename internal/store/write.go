package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// InsertRow inserts a single journal row.
// A duplicate (persistence_id, sequence_number) is an error.
func (s *Store) InsertRow(ctx context.Context, q DBTX, row JournalRow) error {
	_, err := q.ExecContext(ctx, s.q(insertSQL(s.journalTable, journalColumns)), row.values()...)
	if err != nil {
		return fmt.Errorf("insert row %s@%d: %w", row.PersistenceID, row.SequenceNr, err)
	}
	return nil
}

// InsertMultiRow writes rows with multi-row INSERT statements of at most
// chunk rows each. With params the values are bound as parameters,
// otherwise they are rendered as escaped literals.
func (s *Store) InsertMultiRow(ctx context.Context, q DBTX, rows []JournalRow, chunk int, params bool) error {
	if chunk <= 0 {
		chunk = len(rows)
	}

	for start := 0; start < len(rows); start += chunk {
		end := min(start+chunk, len(rows))

		query, args, err := s.multiRowInsert(rows[start:end], params)
		if err != nil {
			return fmt.Errorf("build multi-row insert: %w", err)
		}
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("multi-row insert rows %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

func (s *Store) multiRowInsert(rows []JournalRow, params bool) (string, []any, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", s.journalTable, strings.Join(journalColumns, ", "))

	var args []any
	if params {
		args = make([]any, 0, len(rows)*len(journalColumns))
	}

	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		if params {
			b.WriteString(placeholders(len(journalColumns)))
			args = append(args, row.values()...)
		} else {
			for j, v := range row.values() {
				if j > 0 {
					b.WriteString(", ")
				}
				lit, err := s.dialect.Literal(v)
				if err != nil {
					return "", nil, err
				}
				b.WriteString(lit)
			}
		}
		b.WriteByte(')')
	}

	if !params {
		// Literal values may contain '?', so the query is not rebound.
		return b.String(), nil, nil
	}
	return s.q(b.String()), args, nil
}

// BulkInsert loads rows through the dialect's bulk path.
// Must run inside a transaction.
func (s *Store) BulkInsert(ctx context.Context, tx *sql.Tx, rows []JournalRow) error {
	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = row.values()
	}
	if err := s.dialect.BulkInsert(ctx, tx, s.journalTable, journalColumns, values); err != nil {
		return fmt.Errorf("bulk insert %d rows: %w", len(rows), err)
	}
	return nil
}

// UpdateMessage replaces the payload and manifest of an existing row.
// Returns the number of rows changed (0 when the row does not exist).
func (s *Store) UpdateMessage(ctx context.Context, q DBTX, persistenceID string, seqNr int64, message []byte, manifest string) (int64, error) {
	if message == nil {
		message = []byte{}
	}
	res, err := q.ExecContext(ctx, s.q(fmt.Sprintf(`
		UPDATE %s SET message = ?, manifest = ?
		WHERE persistence_id = ? AND sequence_number = ?
	`, s.journalTable)), message, manifest, persistenceID, seqNr)
	if err != nil {
		return 0, fmt.Errorf("update message %s@%d: %w", persistenceID, seqNr, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update message %s@%d: rows affected: %w", persistenceID, seqNr, err)
	}
	return n, nil
}
