package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// rootCmd represents the base command when called without any subcommands.
// A bare positional invocation (holo <path> [<chunk_kb>]) dispatches to
// encode or decode per spec.md S6's conformance-test contract, without
// requiring a subcommand name.
var rootCmd = &cobra.Command{
	Use:   "holo",
	Short: "holo is a holographic media codec",
	Long: `holo encodes an image, WAV file, or arbitrary binary blob into a set
of self-similar chunks, any non-empty subset of which reconstructs a
degraded but coherent approximation of the original; the full set
reconstructs it exactly (modulo coarse-model loss and integer clipping).`,
	Args: cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Help()
			return
		}
		path := args[0]
		chunkKB := 0
		if len(args) == 2 {
			kb, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "chunk_kb must be an integer:", err)
				os.Exit(1)
			}
			chunkKB = kb
		}

		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			os.Exit(1)
		}
		if info.IsDir() && strings.HasSuffix(path, ".holo") {
			runDecode(cmd, path, "")
		} else {
			runEncode(cmd, path, chunkKB)
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(); it only needs to run once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GenDocs writes the command reference markdown tree, adapted from
// parc.GenDocs.
func GenDocs(dir string) error {
	if err := os.MkdirAll(dir, 0o775); err != nil {
		return err
	}
	return doc.GenMarkdownTree(rootCmd, dir)
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "accepted and ignored; no command reads it")
}
