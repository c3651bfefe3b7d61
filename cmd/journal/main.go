// Command journal operates an append-only event journal.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/journal/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
