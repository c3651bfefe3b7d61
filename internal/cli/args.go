package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/journal/internal/serializer"
)

func parseSeq(name, s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid %s %q: must be an integer", name, s))
	}
	return n, nil
}

// parsePayload decodes a JSON argument with the same rules the journal
// serializer applies (no floats, no null).
func parsePayload(s string) (any, error) {
	v, err := serializer.Unmarshal([]byte(s))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid payload", err)
	}
	return v, nil
}

// exactArgs is cobra.ExactArgs reporting a command error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return WrapExitError(ExitCommandError, "invalid arguments", err)
		}
		return nil
	}
}
