package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <persistence-id> <max-sequence-nr>",
		Short: "Delete events up to a sequence number",
		Long: `Delete the events of a stream up to and including max-sequence-nr.

The highest deleted event is kept, flagged, so the stream's highest
sequence number never goes backwards. With logicalDelete set in the config
nothing is purged. Repeating a delete is harmless.

Example:
  journal delete order-1 10`,
		Args:          exactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runDelete(opts *RootOptions, args []string, cmd *cobra.Command) error {
	pid := args[0]
	maxSeq, err := parseSeq("max-sequence-nr", args[1])
	if err != nil {
		return err
	}

	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	formatter := newFormatter(opts, cmd)

	if err := s.journal.Delete(cmd.Context(), pid, maxSeq); err != nil {
		return formatter.Fail(fmt.Sprintf("failed to delete %s up to %d", pid, maxSeq), err)
	}

	return formatter.Success(map[string]any{
		"persistence_id":  pid,
		"max_sequence_nr": maxSeq,
		"logical":         s.cfg.LogicalDelete,
	}, fmt.Sprintf("Deleted %s up to %d", pid, maxSeq))
}
