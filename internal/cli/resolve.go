package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DaniXM02/tunneltap/internal/resolve"
)

func init() {
	resolveCmd.RunE = runResolve
}

// runResolve probes the fixed candidate ports and prints exactly one line:
// the first tunnel's public URL, or a sentinel. Every failure mode collapses
// into a sentinel, so this never returns an error and the process exits 0
// for all three outcomes. The port list and timeout are constants; flags,
// env and config are not consulted here.
func runResolve(cmd *cobra.Command, args []string) error {
	logger := createLogger(cfg.LogLevel)

	resolver := resolve.Default()
	resolver.SetLogger(logger)

	result := resolver.Resolve(cmd.Context())
	fmt.Fprintln(cmd.OutOrStdout(), result.String())
	return nil
}
