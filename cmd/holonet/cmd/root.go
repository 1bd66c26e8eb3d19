package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd mirrors original_source/holo.net.py's argparse subparsers
// (tx/rx) as cobra subcommands.
var rootCmd = &cobra.Command{
	Use:   "holonet",
	Short: "holonet is the HNET datagram transport for holographic chunks",
	Long: `holonet transmits or receives the chunk set produced by holo over a
single UDP socket, shuffling and fragmenting every chunk so that partial
or lossy delivery still yields a usable reconstruction on the other end.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
