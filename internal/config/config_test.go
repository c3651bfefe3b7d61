package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5000, cfg.BufferSize)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 3, cfg.Parallelism)
	assert.False(t, cfg.LogicalDelete)
	assert.False(t, cfg.CompatibilityMode)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "journal.yaml", `
dialect: sqlite
dsn: /tmp/events.db
batchSize: 50
parallelism: 1
compatibilityMode: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/events.db", cfg.DSN)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 1, cfg.Parallelism)
	assert.True(t, cfg.CompatibilityMode)
	// untouched fields keep defaults
	assert.Equal(t, 5000, cfg.BufferSize)
	assert.Equal(t, "journal", cfg.JournalTable)
}

func TestLoad_CUE(t *testing.T) {
	path := writeFile(t, "journal.cue", `
dialect: "postgres"
dsn: "host=localhost dbname=journal sslmode=disable"
bufferSize: 10
logicalDelete: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DialectPostgres, cfg.Dialect)
	assert.Equal(t, 10, cfg.BufferSize)
	assert.True(t, cfg.LogicalDelete)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, "postgres", cfg.DriverName())
}

func TestLoad_CUERejectsSchemaViolation(t *testing.T) {
	path := writeFile(t, "journal.cue", `
bufferSize: 0
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate cue config")
}

func TestLoad_CUERejectsUnknownField(t *testing.T) {
	path := writeFile(t, "journal.cue", `
bufferSzie: 10
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "journal.json", `{"dialect":"mysql","dsn":"root@/journal","maxRowByRowSize":5}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DialectMySQL, cfg.Dialect)
	assert.Equal(t, 5, cfg.MaxRowByRowSize)
	assert.Equal(t, 8, cfg.PoolSize())
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, "journal.toml", `dialect = "sqlite"`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestFromEnv_Overlay(t *testing.T) {
	t.Setenv("JOURNAL_BATCH_SIZE", "7")
	t.Setenv("JOURNAL_COMPATIBILITY_MODE", "true")
	t.Setenv("JOURNAL_DRIVER", DriverModernc)

	cfg := Default()
	require.NoError(t, FromEnv(&cfg))

	assert.Equal(t, 7, cfg.BatchSize)
	assert.True(t, cfg.CompatibilityMode)
	assert.Equal(t, DriverModernc, cfg.DriverName())
	assert.Equal(t, 3, cfg.Parallelism)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	t.Setenv("JOURNAL_BATCH_SIZE", "abc")
	t.Setenv("JOURNAL_LOGICAL_DELETE", "sometimes")
	t.Setenv("JOURNAL_PARALLELISM", "5")

	cfg := Default()
	err := FromEnv(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `JOURNAL_BATCH_SIZE: invalid integer "abc"`)
	assert.Contains(t, err.Error(), `JOURNAL_LOGICAL_DELETE: invalid boolean "sometimes"`)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 5, cfg.Parallelism)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown dialect", func(c *Config) { c.Dialect = "oracle" }},
		{"bad sqlite driver", func(c *Config) { c.Driver = "postgres" }},
		{"empty dsn", func(c *Config) { c.DSN = "" }},
		{"bad table name", func(c *Config) { c.JournalTable = "journal; DROP TABLE x" }},
		{"same tables", func(c *Config) { c.MetadataTable = c.JournalTable }},
		{"zero buffer", func(c *Config) { c.BufferSize = 0 }},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }},
		{"zero parallelism", func(c *Config) { c.Parallelism = 0 }},
		{"negative row-by-row", func(c *Config) { c.MaxRowByRowSize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
