package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/journal/internal/config"
)

// Dialect captures the SQL differences between the supported databases.
type Dialect interface {
	// Name returns the config name of the dialect.
	Name() string

	// Rebind rewrites '?' placeholders into the dialect's placeholder syntax.
	Rebind(query string) string

	// Schema returns the DDL statements creating both tables.
	Schema(journalTable, metadataTable string) []string

	// InsertIgnore returns an insert statement that silently skips rows
	// conflicting with a unique key.
	InsertIgnore(table string, columns []string) string

	// Isolation is the level used for multi-statement write transactions.
	Isolation() sql.IsolationLevel

	// Literal renders v as an escaped SQL literal.
	Literal(v any) (string, error)

	// BulkInsert loads rows into table inside tx using the dialect's
	// fastest bulk path.
	BulkInsert(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) error
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case config.DialectSQLite:
		return sqliteDialect{}, nil
	case config.DialectPostgres:
		return postgresDialect{}, nil
	case config.DialectMySQL:
		return mysqlDialect{}, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", name)
	}
}

// questionRebind is shared by dialects using '?' placeholders.
func questionRebind(query string) string { return query }

// insertSQL builds a parameterized single-row insert.
func insertSQL(table string, columns []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), placeholders(len(columns)))
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// preparedInsert reuses one prepared statement for every row.
func preparedInsert(ctx context.Context, tx *sql.Tx, query string, rows [][]any) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return nil
}

// quoteString doubles single quotes, which is valid in SQLite and in
// PostgreSQL with standard_conforming_strings on.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// literal renders the column types journal rows carry.
func literal(v any, str func(string) string, bytes func([]byte) string, boolean func(bool) string) (string, error) {
	switch val := v.(type) {
	case string:
		return str(val), nil
	case []byte:
		return bytes(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case int:
		return strconv.Itoa(val), nil
	case bool:
		return boolean(val), nil
	case nil:
		return "NULL", nil
	default:
		return "", fmt.Errorf("unsupported literal type %T", v)
	}
}

func hexBlob(b []byte) string {
	return "X'" + hex.EncodeToString(b) + "'"
}
