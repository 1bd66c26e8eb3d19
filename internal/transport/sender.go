package transport

import (
	"bytes"
	"context"
	"math/rand"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/holocodec/holo/internal/chunk"
	"github.com/holocodec/holo/internal/codec"
)

// SenderConfig configures one transmit state machine run, matching
// original_source/holo.net.py's tx defaults.
type SenderConfig struct {
	SourcePath   string
	Addr         string // host:port
	ChunkKB      int
	Loops        int           // default 3
	PayloadSize  int           // default 1024, bounded by MaxPayload
	InterPacket  time.Duration // default 2ms
	TransferID   uint32
	Log          func(string)
}

// Send implements spec.md S4.7's transmit state machine: encode to a
// temp directory, announce with META, then shuffle-and-fragment every
// chunk across `Loops` passes.
func Send(ctx context.Context, cfg SenderConfig) error {
	logf := cfg.Log
	if logf == nil {
		logf = func(string) {}
	}

	tmpDir, err := os.MkdirTemp("", "holonet-tx-*")
	if err != nil {
		return errors.Wrap(err, "transport: create temp directory")
	}
	defer os.RemoveAll(tmpDir)

	mode, err := codec.Encode(codec.EncodeParams{SourcePath: cfg.SourcePath, OutDir: tmpDir, TargetKB: cfg.ChunkKB})
	if err != nil {
		return errors.Wrap(err, "transport: encode for transmission")
	}

	paths, err := chunk.ListChunkFiles(tmpDir)
	if err != nil {
		return err
	}
	chunkTotal := uint32(len(paths))
	if chunkTotal == 0 {
		return chunk.ErrNoChunks
	}

	conn, err := net.Dial("udp", cfg.Addr)
	if err != nil {
		return errors.Wrap(err, "transport: dial")
	}
	defer conn.Close()

	payloadSize := cfg.PayloadSize
	if payloadSize <= 0 || payloadSize > MaxPayload {
		payloadSize = 1024
	}
	delay := cfg.InterPacket
	if delay <= 0 {
		delay = 2 * time.Millisecond
	}
	loops := cfg.Loops
	if loops <= 0 {
		loops = 3
	}

	name := filepath.Base(cfg.SourcePath)
	metaPkt := Packet{Type: TypeMeta, TransferID: cfg.TransferID, ChunkTotal: chunkTotal, Payload: []byte(name)}
	if err := sendPacket(conn, &metaPkt); err != nil {
		return err
	}
	logf("[tx] " + name + ": announcing " + mode.String() + " transfer, " + strconv.Itoa(int(chunkTotal)) + " chunks")

	rng := rand.New(rand.NewSource(int64(cfg.TransferID)))

	for loop := 0; loop < loops; loop++ {
		if err := ctx.Err(); err != nil {
			return nil
		}
		order := rng.Perm(int(chunkTotal))
		for _, b := range order {
			if err := ctx.Err(); err != nil {
				return nil
			}
			data, err := os.ReadFile(paths[b])
			if err != nil {
				return errors.Wrap(err, "transport: read chunk file")
			}
			segs := fragment(data, payloadSize)
			for segIndex, seg := range segs {
				pkt := Packet{
					Type:       TypeData,
					TransferID: cfg.TransferID,
					ChunkTotal: chunkTotal,
					ChunkIndex: uint32(b),
					SegIndex:   uint16(segIndex),
					SegCount:   uint16(len(segs)),
					Payload:    seg,
				}
				if err := sendPacket(conn, &pkt); err != nil {
					return err
				}
				time.Sleep(delay)
			}
		}
		logf("[tx] loop " + strconv.Itoa(loop+1) + "/" + strconv.Itoa(loops) + " complete")
	}

	return nil
}

func fragment(data []byte, payloadSize int) [][]byte {
	if len(data) == 0 {
		return [][]byte{{}}
	}
	var segs [][]byte
	for off := 0; off < len(data); off += payloadSize {
		end := off + payloadSize
		if end > len(data) {
			end = len(data)
		}
		segs = append(segs, data[off:end])
	}
	return segs
}

func sendPacket(conn net.Conn, p *Packet) error {
	buf := new(bytes.Buffer)
	if _, err := p.WriteTo(buf); err != nil {
		return err
	}
	_, err := conn.Write(buf.Bytes())
	return errors.Wrap(err, "transport: send datagram")
}
