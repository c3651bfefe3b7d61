package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

// Rebind numbers placeholders as $1, $2, ...
func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (postgresDialect) Schema(journalTable, metadataTable string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			ordering        BIGSERIAL    PRIMARY KEY,
			persistence_id  VARCHAR(255) NOT NULL,
			sequence_number BIGINT       NOT NULL,
			deleted         BOOLEAN      NOT NULL DEFAULT FALSE,
			tags            TEXT         NOT NULL DEFAULT '',
			message         BYTEA,
			manifest        VARCHAR(500) NOT NULL DEFAULT '',
			writer_uuid     VARCHAR(128) NOT NULL DEFAULT '',
			written_at      BIGINT       NOT NULL DEFAULT 0,
			UNIQUE (persistence_id, sequence_number)
		)`, journalTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			persistence_id  VARCHAR(255) NOT NULL,
			sequence_number BIGINT       NOT NULL,
			PRIMARY KEY (persistence_id, sequence_number)
		)`, metadataTable),
	}
}

func (d postgresDialect) InsertIgnore(table string, columns []string) string {
	return d.Rebind(insertSQL(table, columns) + " ON CONFLICT DO NOTHING")
}

func (postgresDialect) Isolation() sql.IsolationLevel { return sql.LevelReadCommitted }

func (postgresDialect) Literal(v any) (string, error) {
	return literal(v, quoteString,
		func(b []byte) string { return `'\x` + hex.EncodeToString(b) + `'::bytea` },
		func(b bool) string {
			if b {
				return "TRUE"
			}
			return "FALSE"
		})
}

// BulkInsert streams rows through COPY FROM STDIN.
func (postgresDialect) BulkInsert(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, columns...))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			stmt.Close()
			return fmt.Errorf("copy row %d: %w", i, err)
		}
	}

	// An argument-less Exec flushes the buffered COPY data.
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("close copy: %w", err)
	}
	return nil
}
