package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// HighestOptions holds flags for the highest command.
type HighestOptions struct {
	*RootOptions
	From int64
}

// NewHighestCommand creates the highest command.
func NewHighestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HighestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "highest <persistence-id>",
		Short: "Print the highest sequence number of a stream",
		Long: `Print the highest sequence number of a stream above --from, or 0.

Deleted events still count. In compatibility mode the recorded deletion
mark counts too, even after every row has been purged.

Example:
  journal highest order-1`,
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHighest(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.From, "from", 0, "only consider sequence numbers above this")

	return cmd
}

func runHighest(opts *HighestOptions, pid string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	formatter := newFormatter(opts.RootOptions, cmd)

	highest, err := s.journal.HighestSequenceNr(cmd.Context(), pid, opts.From)
	if err != nil {
		return formatter.Fail(fmt.Sprintf("failed to read highest sequence nr of %s", pid), err)
	}

	return formatter.Success(map[string]any{
		"persistence_id": pid,
		"highest":        highest,
	}, fmt.Sprint(highest))
}
