package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/journal/internal/config"
	"github.com/roach88/journal/internal/journal"
	"github.com/roach88/journal/internal/serializer"
	"github.com/roach88/journal/internal/store"
)

// session is an open store plus the journal over it, for one command.
type session struct {
	cfg     config.Config
	store   *store.Store
	journal *journal.Journal
	logger  *slog.Logger
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.FromEnv(&cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, cfg.Validate()
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openSession loads the config and opens the store and journal.
// Failures are command errors (exit code 2).
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	logger.Debug("opening journal store",
		"dialect", cfg.Dialect,
		"journal_table", cfg.JournalTable,
	)

	st, err := store.Open(cfg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal store", err)
	}

	j, err := journal.New(st, serializer.JSON{}, cfg, journal.WithLogger(logger))
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to create journal", err)
	}

	return &session{cfg: cfg, store: st, journal: j, logger: logger}, nil
}

func (s *session) Close() {
	if err := s.journal.Close(); err != nil {
		s.logger.Error("error closing journal", "error", err)
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}
