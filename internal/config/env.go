package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// FromEnv overlays JOURNAL_* environment variables onto cfg.
// Every unparseable value is reported; the fields they name are left as is.
func FromEnv(cfg *Config) error {
	var errs []error
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid integer %q", name, v))
				return
			}
			*dst = n
		}
	}
	flag := func(name string, dst *bool) {
		if v := os.Getenv(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid boolean %q", name, v))
				return
			}
			*dst = b
		}
	}

	str("JOURNAL_DIALECT", &cfg.Dialect)
	str("JOURNAL_DRIVER", &cfg.Driver)
	str("JOURNAL_DSN", &cfg.DSN)
	str("JOURNAL_TABLE", &cfg.JournalTable)
	str("JOURNAL_METADATA_TABLE", &cfg.MetadataTable)
	flag("JOURNAL_AUTO_INITIALIZE", &cfg.AutoInitialize)
	num("JOURNAL_MAX_OPEN_CONNS", &cfg.MaxOpenConns)
	num("JOURNAL_BUFFER_SIZE", &cfg.BufferSize)
	num("JOURNAL_BATCH_SIZE", &cfg.BatchSize)
	num("JOURNAL_PARALLELISM", &cfg.Parallelism)
	num("JOURNAL_MAX_ROW_BY_ROW_SIZE", &cfg.MaxRowByRowSize)
	flag("JOURNAL_PREFER_PARAMETERS", &cfg.PreferParametersOnMultiRowInsert)
	num("JOURNAL_DB_ROUND_TRIP_BATCH_SIZE", &cfg.DBRoundTripBatchSize)
	flag("JOURNAL_LOGICAL_DELETE", &cfg.LogicalDelete)
	flag("JOURNAL_COMPATIBILITY_MODE", &cfg.CompatibilityMode)

	return errors.Join(errs...)
}
