package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/journal/internal/journal"
	"github.com/roach88/journal/internal/serializer"
)

// AppendOptions holds flags for the append command.
type AppendOptions struct {
	*RootOptions
	Tags     []string
	Manifest string
}

// NewAppendCommand creates the append command.
func NewAppendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AppendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "append <persistence-id> <sequence-nr> <json-payload>",
		Short: "Append one event",
		Long: `Append one event to a stream through the write queue.

The payload is JSON limited to strings, integers, booleans, arrays and
objects. A duplicate sequence number fails with PERSIST_FAILED.

Example:
  journal append order-1 1 '{"item":"book"}' --tags orders`,
		Args:          exactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAppend(opts, args, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Tags, "tags", nil, "comma-separated event tags")
	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "payload manifest (default \"json\")")

	return cmd
}

func runAppend(opts *AppendOptions, args []string, cmd *cobra.Command) error {
	pid := args[0]
	seq, err := parseSeq("sequence-nr", args[1])
	if err != nil {
		return err
	}
	payload, err := parsePayload(args[2])
	if err != nil {
		return err
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	formatter := newFormatter(opts.RootOptions, cmd)

	errs := s.journal.WriteMessages(cmd.Context(), []journal.AtomicWrite{{
		PersistenceID: pid,
		Events: []serializer.Event{{
			SequenceNr: seq,
			Payload:    payload,
			Manifest:   opts.Manifest,
			Tags:       opts.Tags,
		}},
	}})
	if errs[0] != nil {
		return formatter.Fail(fmt.Sprintf("failed to append %s@%d", pid, seq), errs[0])
	}

	return formatter.Success(map[string]any{
		"persistence_id": pid,
		"sequence_nr":    seq,
		"writer_uuid":    s.journal.WriterUUID(),
	}, fmt.Sprintf("Appended %s@%d", pid, seq))
}
