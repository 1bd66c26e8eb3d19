package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/holocodec/holo/internal/transport"
)

var (
	rxPort        int
	rxBaseDir     string
	rxIdleSeconds int
	rxPayload     int
	rxDecodeMode  string
)

var rxCmd = &cobra.Command{
	Use:   "rx",
	Short: "Listen for HNET transfers and decode each as it goes idle",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		mode, err := parseDecodeMode(rxDecodeMode)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			os.Exit(1)
		}

		cfg := transport.ReceiverConfig{
			Port:        rxPort,
			BaseDir:     rxBaseDir,
			IdleTimeout: time.Duration(rxIdleSeconds) * time.Second,
			PayloadSize: rxPayload,
			DecodeMode:  mode,
			Log:         func(s string) { fmt.Println("[holonet rx]", s) },
		}

		if err := transport.Receive(context.Background(), cfg); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "rx failed:", err)
			os.Exit(1)
		}
	},
}

func parseDecodeMode(s string) (transport.DecodeMode, error) {
	switch s {
	case "", "best":
		return transport.DecodeBest, nil
	case "strict":
		return transport.DecodeStrict, nil
	default:
		return 0, errors.Errorf("unknown decode mode %q, expected best or strict", s)
	}
}

func init() {
	rootCmd.AddCommand(rxCmd)
	rxCmd.Flags().IntVar(&rxPort, "port", 9999, "UDP port to listen on")
	rxCmd.Flags().StringVar(&rxBaseDir, "base-dir", ".", "directory to reconstruct transfers into")
	rxCmd.Flags().IntVar(&rxIdleSeconds, "idle-timeout", 3, "seconds of silence before a transfer is considered done")
	rxCmd.Flags().IntVar(&rxPayload, "payload", 1024, "expected UDP payload size in bytes, sizes the read buffer")
	rxCmd.Flags().StringVar(&rxDecodeMode, "decode-mode", "best", "best or strict")
}
