package cmd

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/holocodec/holo/internal/chunk"
	"github.com/holocodec/holo/internal/manifest"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>.holo",
	Short: "Show the chunk headers and manifest of a holographic directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := args[0]

		if m, err := manifest.Read(dir); err == nil {
			fmt.Println("====== Manifest ======")
			spew.Dump(m)
		} else {
			fmt.Println("no manifest.cbor:", err)
		}

		paths, err := chunk.ListChunkFiles(dir)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			os.Exit(1)
		}
		for _, p := range paths {
			c, err := chunk.ReadFile(p)
			if err != nil {
				fmt.Printf("%s: failed to parse: %v\n", p, err)
				continue
			}
			explainContainer(p, c)
		}
	},
}

func explainContainer(path string, c *chunk.Container) {
	fmt.Printf("====== %s ======\n", path)
	fmt.Printf("Mode: %s\n", c.Mode)
	fmt.Printf("Version: %d\n", c.Version)
	fmt.Printf("Block: %d of %d\n", c.BlockIndex, c.BlockCount)
	fmt.Printf("N (total residual length): %d\n", c.NTotal)
	fmt.Printf("Coarse length: %d bytes\n", len(c.Coarse))
	fmt.Printf("Slice length: %d bytes (deflated)\n", len(c.Slice))
	fmt.Printf("Mode header: %d bytes\n", len(c.ModeHeader))
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
