package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/holocodec/holo/internal/chunk"
	"github.com/holocodec/holo/internal/codec"
	"github.com/holocodec/holo/internal/manifest"
)

var encodeCmd = &cobra.Command{
	Use:   "encode <path> [chunk_kb]",
	Short: "Encode a file into a directory of holographic chunks",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		chunkKB := 0
		if len(args) == 2 {
			kb, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "chunk_kb must be an integer:", err)
				os.Exit(1)
			}
			chunkKB = kb
		}
		runEncode(cmd, args[0], chunkKB)
	},
}

func runEncode(cmd *cobra.Command, path string, chunkKB int) {
	outDir := path + ".holo"
	fmt.Printf("[holo] encoding %s -> %s\n", path, outDir)

	mode, err := codec.Encode(codec.EncodeParams{SourcePath: path, OutDir: outDir, TargetKB: chunkKB})
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "encode failed:", err)
		os.Exit(1)
	}

	paths, err := chunk.ListChunkFiles(outDir)
	chunkCount := uint32(len(paths))
	if err == nil {
		m := manifest.Manifest{
			Mode:       mode.String(),
			SourceName: path,
			ChunkCount: chunkCount,
			TargetKB:   chunkKB,
			EncodedAt:  time.Now(),
		}
		if err := manifest.Write(outDir, m); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning: failed to write manifest:", err)
		}
	}

	fmt.Printf("[holo] wrote %d chunks to %s (%s)\n", chunkCount, outDir, mode)
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}
