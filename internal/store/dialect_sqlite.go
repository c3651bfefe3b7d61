package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Rebind(query string) string { return questionRebind(query) }

func (sqliteDialect) Schema(journalTable, metadataTable string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			ordering        INTEGER PRIMARY KEY AUTOINCREMENT,
			persistence_id  TEXT    NOT NULL,
			sequence_number INTEGER NOT NULL,
			deleted         BOOLEAN NOT NULL DEFAULT 0,
			tags            TEXT    NOT NULL DEFAULT '',
			message         BLOB,
			manifest        TEXT    NOT NULL DEFAULT '',
			writer_uuid     TEXT    NOT NULL DEFAULT '',
			written_at      INTEGER NOT NULL DEFAULT 0,
			UNIQUE (persistence_id, sequence_number)
		)`, journalTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			persistence_id  TEXT    NOT NULL,
			sequence_number INTEGER NOT NULL,
			PRIMARY KEY (persistence_id, sequence_number)
		)`, metadataTable),
	}
}

func (sqliteDialect) InsertIgnore(table string, columns []string) string {
	return insertSQL(table, columns) + " ON CONFLICT DO NOTHING"
}

// Isolation returns the default level: SQLite transactions are always
// serializable and the drivers reject other levels.
func (sqliteDialect) Isolation() sql.IsolationLevel { return sql.LevelDefault }

func (sqliteDialect) Literal(v any) (string, error) {
	return literal(v, quoteString, hexBlob, func(b bool) string {
		if b {
			return "1"
		}
		return "0"
	})
}

func (sqliteDialect) BulkInsert(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) error {
	return preparedInsert(ctx, tx, insertSQL(table, columns), rows)
}

// pragmas are applied to every SQLite database on open.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}
