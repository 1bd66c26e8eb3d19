package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/holocodec/holo/internal/transport"
)

var (
	txPort        int
	txChunkKB     int
	txLoops       int
	txPayload     int
	txDelayMillis int
)

var txCmd = &cobra.Command{
	Use:   "tx <path> <host>",
	Short: "Encode and transmit a file as a shuffled, fragmented HNET stream",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		path, host := args[0], args[1]
		addr := net.JoinHostPort(host, fmt.Sprint(txPort))

		cfg := transport.SenderConfig{
			SourcePath:  path,
			Addr:        addr,
			ChunkKB:     txChunkKB,
			Loops:       txLoops,
			PayloadSize: txPayload,
			InterPacket: time.Duration(txDelayMillis) * time.Millisecond,
			TransferID:  rand.New(rand.NewSource(time.Now().UnixNano())).Uint32(),
			Log:         func(s string) { fmt.Println("[holonet tx]", s) },
		}

		if err := transport.Send(context.Background(), cfg); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "tx failed:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.Flags().IntVar(&txPort, "port", 9999, "destination UDP port")
	txCmd.Flags().IntVar(&txChunkKB, "chunk-kb", 0, "target chunk size in KiB (0 = codec default)")
	txCmd.Flags().IntVar(&txLoops, "loops", 3, "number of shuffled transmit passes over every chunk")
	txCmd.Flags().IntVar(&txPayload, "payload", 1024, "UDP payload size in bytes, bounded by 65507")
	txCmd.Flags().IntVar(&txDelayMillis, "delay", 2, "delay between packets in milliseconds")
}
