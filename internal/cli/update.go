package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <persistence-id> <sequence-nr> <json-payload>",
		Short: "Replace the payload of an existing event",
		Long: `Replace the payload of an existing event in place.

Updating an event that does not exist succeeds without changing anything.

Example:
  journal update order-1 1 '{"item":"magazine"}'`,
		Args:          exactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runUpdate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	pid := args[0]
	seq, err := parseSeq("sequence-nr", args[1])
	if err != nil {
		return err
	}
	payload, err := parsePayload(args[2])
	if err != nil {
		return err
	}

	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	formatter := newFormatter(opts, cmd)

	if err := s.journal.Update(cmd.Context(), pid, seq, payload); err != nil {
		return formatter.Fail(fmt.Sprintf("failed to update %s@%d", pid, seq), err)
	}

	return formatter.Success(map[string]any{
		"persistence_id": pid,
		"sequence_nr":    seq,
	}, fmt.Sprintf("Updated %s@%d", pid, seq))
}
