package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holocodec/holo/internal/codec"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <path>.holo",
	Short: "Decode a directory of holographic chunks back into a file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runDecode(cmd, args[0], "")
	},
}

func runDecode(cmd *cobra.Command, dir string, destOverride string) {
	dest := destOverride
	if dest == "" {
		if strings.HasSuffix(dir, ".holo") {
			dest = strings.TrimSuffix(dir, ".holo")
		} else {
			dest = dir + "_dec"
		}
	}
	fmt.Printf("[holo] decoding %s -> %s\n", dir, dest)

	mode, err := codec.Decode(dir, dest)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "decode failed:", err)
		os.Exit(1)
	}
	fmt.Printf("[holo] wrote %s (%s)\n", dest, mode)
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}
