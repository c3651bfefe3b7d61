package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/journal/internal/config"
)

// Store provides durable storage for journal rows.
type Store struct {
	db            *sql.DB
	dialect       Dialect
	journalTable  string
	metadataTable string
}

// Open connects to the database described by cfg.
// Applies SQLite pragmas and, when cfg.AutoInitialize is set, creates the
// journal and metadata tables.
//
// This function is idempotent - safe to call multiple times.
func Open(cfg config.Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dialect, err := DialectFor(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.DriverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.PoolSize())
	db.SetMaxIdleConns(cfg.PoolSize())

	if dialect.Name() == config.DialectSQLite {
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	s := newStore(db, dialect, cfg)

	if cfg.AutoInitialize {
		if err := s.Initialize(context.Background()); err != nil {
			db.Close()
			return nil, err
		}
	}

	return s, nil
}

// NewWithDB wraps an already open pool. No pragmas are applied and no
// tables are created; the caller keeps ownership of db configuration.
func NewWithDB(db *sql.DB, cfg config.Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	dialect, err := DialectFor(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	return newStore(db, dialect, cfg), nil
}

func newStore(db *sql.DB, dialect Dialect, cfg config.Config) *Store {
	return &Store{
		db:            db,
		dialect:       dialect,
		journalTable:  cfg.JournalTable,
		metadataTable: cfg.MetadataTable,
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying pool for statements outside a transaction.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the store's SQL dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// BeginTx opens a write transaction at the dialect's isolation level.
func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, &sql.TxOptions{Isolation: s.dialect.Isolation()})
}

// Initialize creates the journal and metadata tables if they don't exist.
func (s *Store) Initialize(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema(s.journalTable, s.metadataTable) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

func applyPragmas(db *sql.DB) error {
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// q rebinds a '?' query for the store's dialect.
func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}
