// Command shiftctl runs the shift table parser and key builders offline.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shiftctl",
		Short:         "Inspect shift tables and reconciliation keys without the API",
		SilenceUsage: true,
	}
	root.AddCommand(newParseCmd(), newKeysCmd(), newTokenCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
