// Package config holds the journal configuration and its loaders.
//
// Configuration can come from a YAML, CUE or JSON file (chosen by extension)
// and is then overlaid with JOURNAL_* environment variables. All values are
// fixed once a journal is constructed.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Supported dialects.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
)

// Supported SQLite drivers.
const (
	DriverMattn   = "sqlite3" // github.com/mattn/go-sqlite3 (cgo)
	DriverModernc = "sqlite"  // modernc.org/sqlite (pure Go)
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Config is the complete journal configuration.
type Config struct {
	// Dialect selects the SQL flavour: sqlite, postgres or mysql.
	Dialect string `json:"dialect" yaml:"dialect"`

	// Driver overrides the database/sql driver name. Only meaningful for
	// sqlite, where both sqlite3 (mattn) and sqlite (modernc) are available.
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`

	// DSN is the connection string (a file path for SQLite).
	DSN string `json:"dsn" yaml:"dsn"`

	JournalTable  string `json:"journalTable" yaml:"journalTable"`
	MetadataTable string `json:"metadataTable" yaml:"metadataTable"`

	// AutoInitialize creates missing tables when the store is opened.
	AutoInitialize bool `json:"autoInitialize" yaml:"autoInitialize"`

	// MaxOpenConns bounds the connection pool. Zero picks a dialect default.
	MaxOpenConns int `json:"maxOpenConns" yaml:"maxOpenConns"`

	// BufferSize is the number of entries the write queue holds before
	// rejecting new ones with QueueOverflow.
	BufferSize int `json:"bufferSize" yaml:"bufferSize"`

	// BatchSize is the row-count budget of one dispatched batch.
	BatchSize int `json:"batchSize" yaml:"batchSize"`

	// Parallelism bounds concurrent in-flight persist operations.
	Parallelism int `json:"parallelism" yaml:"parallelism"`

	// MaxRowByRowSize is the largest batch written with multi-row INSERT
	// statements; larger batches use the dialect's bulk-load path.
	MaxRowByRowSize int `json:"maxRowByRowSize" yaml:"maxRowByRowSize"`

	// PreferParametersOnMultiRowInsert binds values as parameters in
	// multi-row inserts instead of rendering escaped literals.
	PreferParametersOnMultiRowInsert bool `json:"preferParametersOnMultiRowInsert" yaml:"preferParametersOnMultiRowInsert"`

	// DBRoundTripBatchSize is the number of rows sent per statement.
	DBRoundTripBatchSize int `json:"dbRoundTripBatchSize" yaml:"dbRoundTripBatchSize"`

	// LogicalDelete keeps deleted rows in place (flagged) instead of purging.
	LogicalDelete bool `json:"logicalDelete" yaml:"logicalDelete"`

	// CompatibilityMode tracks the deletion high-water mark in the metadata
	// table so it survives physical purges.
	CompatibilityMode bool `json:"compatibilityMode" yaml:"compatibilityMode"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Dialect:              DialectSQLite,
		DSN:                  "journal.db",
		JournalTable:         "journal",
		MetadataTable:        "journal_metadata",
		AutoInitialize:       true,
		BufferSize:           5000,
		BatchSize:            100,
		Parallelism:          3,
		MaxRowByRowSize:      100,
		DBRoundTripBatchSize: 1000,
	}
}

// Load reads configuration from a YAML, CUE or JSON file (by extension).
// If path is empty, returns defaults. Fields absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	case ".cue":
		if err := decodeCUE(path, b, &cfg); err != nil {
			return Config{}, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse json config %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
	}

	return cfg, nil
}

// DriverName returns the database/sql driver to open for this config.
func (c Config) DriverName() string {
	if c.Driver != "" {
		return c.Driver
	}
	switch c.Dialect {
	case DialectPostgres:
		return "postgres"
	case DialectMySQL:
		return "mysql"
	default:
		return DriverMattn
	}
}

// PoolSize returns MaxOpenConns, or the dialect default when unset.
// SQLite allows a single writer, so its pool holds one connection.
func (c Config) PoolSize() int {
	if c.MaxOpenConns > 0 {
		return c.MaxOpenConns
	}
	if c.Dialect == DialectSQLite {
		return 1
	}
	return 8
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	switch c.Dialect {
	case DialectSQLite:
		if c.Driver != "" && c.Driver != DriverMattn && c.Driver != DriverModernc {
			return fmt.Errorf("invalid sqlite driver %q: must be %q or %q", c.Driver, DriverMattn, DriverModernc)
		}
	case DialectPostgres, DialectMySQL:
	default:
		return fmt.Errorf("invalid dialect %q", c.Dialect)
	}
	if c.DSN == "" {
		return fmt.Errorf("dsn is required")
	}
	if !identRe.MatchString(c.JournalTable) {
		return fmt.Errorf("invalid journal table name %q", c.JournalTable)
	}
	if !identRe.MatchString(c.MetadataTable) {
		return fmt.Errorf("invalid metadata table name %q", c.MetadataTable)
	}
	if c.JournalTable == c.MetadataTable {
		return fmt.Errorf("journal and metadata tables must differ")
	}

	positive := []struct {
		name string
		v    int
	}{
		{"bufferSize", c.BufferSize},
		{"batchSize", c.BatchSize},
		{"parallelism", c.Parallelism},
		{"dbRoundTripBatchSize", c.DBRoundTripBatchSize},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.name, p.v)
		}
	}
	if c.MaxRowByRowSize < 0 {
		return fmt.Errorf("maxRowByRowSize must not be negative, got %d", c.MaxRowByRowSize)
	}
	if c.MaxOpenConns < 0 {
		return fmt.Errorf("maxOpenConns must not be negative, got %d", c.MaxOpenConns)
	}
	return nil
}
