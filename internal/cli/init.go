package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/journal/internal/store"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the journal and metadata tables",
		Long: `Connect to the configured database and create the journal and
compaction metadata tables if they do not exist. Safe to run repeatedly.

Example:
  journal init --config journal.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
	return cmd
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	cfg.AutoInitialize = false

	st, err := store.Open(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal store", err)
	}
	defer st.Close()

	formatter.VerboseLog("Applying %s schema", st.Dialect().Name())
	if err := st.Initialize(cmd.Context()); err != nil {
		return formatter.Fail("failed to create tables", err)
	}

	return formatter.Success(map[string]string{
		"dialect":        cfg.Dialect,
		"journal_table":  cfg.JournalTable,
		"metadata_table": cfg.MetadataTable,
	}, fmt.Sprintf("Initialized %s journal (tables %s, %s)", cfg.Dialect, cfg.JournalTable, cfg.MetadataTable))
}
