package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) Rebind(query string) string { return questionRebind(query) }

func (mysqlDialect) Schema(journalTable, metadataTable string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			ordering        BIGINT        NOT NULL AUTO_INCREMENT PRIMARY KEY,
			persistence_id  VARCHAR(255)  NOT NULL,
			sequence_number BIGINT        NOT NULL,
			deleted         BOOLEAN       NOT NULL DEFAULT FALSE,
			tags            VARCHAR(2000) NOT NULL DEFAULT '',
			message         LONGBLOB,
			manifest        VARCHAR(500)  NOT NULL DEFAULT '',
			writer_uuid     VARCHAR(128)  NOT NULL DEFAULT '',
			written_at      BIGINT        NOT NULL DEFAULT 0,
			UNIQUE KEY %s_pid_seq (persistence_id, sequence_number)
		)`, journalTable, journalTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			persistence_id  VARCHAR(255) NOT NULL,
			sequence_number BIGINT       NOT NULL,
			PRIMARY KEY (persistence_id, sequence_number)
		)`, metadataTable),
	}
}

func (mysqlDialect) InsertIgnore(table string, columns []string) string {
	return strings.Replace(insertSQL(table, columns), "INSERT INTO", "INSERT IGNORE INTO", 1)
}

func (mysqlDialect) Isolation() sql.IsolationLevel { return sql.LevelReadCommitted }

// Literal escapes backslashes as well, since MySQL treats them as escape
// characters inside string literals by default.
func (mysqlDialect) Literal(v any) (string, error) {
	return literal(v,
		func(s string) string {
			s = strings.ReplaceAll(s, `\`, `\\`)
			return "'" + strings.ReplaceAll(s, "'", "''") + "'"
		},
		hexBlob,
		func(b bool) string {
			if b {
				return "TRUE"
			}
			return "FALSE"
		})
}

func (mysqlDialect) BulkInsert(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) error {
	return preparedInsert(ctx, tx, insertSQL(table, columns), rows)
}
