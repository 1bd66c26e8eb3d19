package transport

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/holocodec/holo/internal/chunk"
	"github.com/holocodec/holo/internal/codec"
)

// DecodeMode selects the receiver's Decoding-state policy (spec.md S4.7).
type DecodeMode int

const (
	// DecodeBest decodes unconditionally once idle, even if chunks are
	// missing.
	DecodeBest DecodeMode = iota
	// DecodeStrict requires every chunk_total chunk to be present,
	// failing with Incomplete otherwise.
	DecodeStrict
)

// ErrIncomplete is the strict-mode decode failure of spec.md S7.
var ErrIncomplete = errors.New("transport: strict decode missing chunks")

// ReceiverConfig configures one receive state machine run.
type ReceiverConfig struct {
	Port        int
	BaseDir     string
	IdleTimeout time.Duration // default 3s, matching holo.net.py's DEFAULT_IDLE_TIMEOUT
	PayloadSize int           // default 1024, bounded by MaxPayload; sizes the read buffer
	DecodeMode  DecodeMode
	Log         func(string)
}

type transferState struct {
	transferID uint32
	chunkTotal uint32
	name       string
	dirPath    string
	named      bool
	chunks     map[uint32]*chunkAssembly
	lastSeen   time.Time
}

// Receive runs the receive state machine until ctx is canceled. Each
// completed transfer is decoded in place and the reconstructed file is
// left in cfg.BaseDir; the working chunk directory is removed.
func Receive(ctx context.Context, cfg ReceiverConfig) error {
	logf := cfg.Log
	if logf == nil {
		logf = func(string) {}
	}

	idleTimeout := cfg.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = 3 * time.Second
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: cfg.Port})
	if err != nil {
		return errors.Wrap(err, "transport: listen")
	}
	defer conn.Close()

	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return errors.Wrap(err, "transport: create base directory")
	}

	payloadSize := cfg.PayloadSize
	if payloadSize <= 0 || payloadSize > MaxPayload {
		payloadSize = 1024
	}

	sess := newSession(cfg, logf)
	buf := make([]byte, payloadSize+64)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				sess.tick(idleTimeout)
				continue
			}
			return errors.Wrap(err, "transport: read datagram")
		}

		var pkt Packet
		if m, err := (&pkt).ReadFrom(bytes.NewReader(buf[:n])); err != nil || m != int64(n) {
			continue // malformed datagram, or bytes past payload_len: drop silently
		}

		sess.handlePacket(&pkt)
		sess.tick(idleTimeout)
	}
}

// session is the network-free core of the receive state machine: it
// consumes Packets and drives idle-triggered decode, with no socket
// dependency, so SPEC_FULL.md S8's transport property tests can feed it
// packets directly instead of opening real UDP sockets.
type session struct {
	cfg       ReceiverConfig
	logf      func(string)
	transfers map[uint32]*transferState
}

func newSession(cfg ReceiverConfig, logf func(string)) *session {
	if logf == nil {
		logf = func(string) {}
	}
	return &session{cfg: cfg, logf: logf, transfers: make(map[uint32]*transferState)}
}

func (s *session) handlePacket(pkt *Packet) {
	handlePacket(s.transfers, pkt, s.cfg, s.logf)
}

func (s *session) tick(idleTimeout time.Duration) {
	finishIdleTransfers(s.transfers, idleTimeout, s.cfg, s.logf)
}

func handlePacket(transfers map[uint32]*transferState, pkt *Packet, cfg ReceiverConfig, logf func(string)) {
	ts, ok := transfers[pkt.TransferID]
	if !ok {
		dirPath := filepath.Join(cfg.BaseDir, "transfer_"+strconv.FormatUint(uint64(pkt.TransferID), 10)+".holo")
		if err := os.MkdirAll(dirPath, 0o755); err != nil {
			return
		}
		ts = &transferState{
			transferID: pkt.TransferID,
			chunkTotal: pkt.ChunkTotal,
			dirPath:    dirPath,
			chunks:     make(map[uint32]*chunkAssembly),
		}
		transfers[pkt.TransferID] = ts
		logf("[rx] new transfer " + strconv.FormatUint(uint64(pkt.TransferID), 10))
	}
	ts.lastSeen = time.Now()

	switch pkt.Type {
	case TypeMeta:
		name := string(pkt.Payload)
		if name != "" && !ts.named {
			newDir := filepath.Join(cfg.BaseDir, name+".holo")
			if err := os.Rename(ts.dirPath, newDir); err == nil {
				ts.dirPath = newDir
			}
			ts.name = name
			ts.named = true
		}
		if pkt.ChunkTotal > 0 {
			ts.chunkTotal = pkt.ChunkTotal
		}
	case TypeData:
		if ts.chunkTotal != 0 && pkt.ChunkTotal != ts.chunkTotal {
			return // disagreement with established transfer: drop
		}
		asm, ok := ts.chunks[pkt.ChunkIndex]
		if !ok {
			asm = newChunkAssembly(pkt.SegCount)
			ts.chunks[pkt.ChunkIndex] = asm
		} else if asm.segCount != pkt.SegCount {
			return // disagreement on seg_count: drop
		}
		if asm.Complete() {
			return // chunk already finished: discard silently
		}
		if asm.Put(pkt.SegIndex, pkt.Payload) {
			logf("[rx] transfer " + strconv.FormatUint(uint64(pkt.TransferID), 10) + ": conflicting duplicate of chunk " +
				strconv.FormatUint(uint64(pkt.ChunkIndex), 10) + " segment " + strconv.Itoa(int(pkt.SegIndex)) + ", keeping the first copy")
		}
		if asm.Complete() {
			flushChunk(ts, pkt.ChunkIndex, asm)
		}
	}
}

func flushChunk(ts *transferState, idx uint32, asm *chunkAssembly) {
	name := chunk.FileName(idx, ts.chunkTotal)
	path := filepath.Join(ts.dirPath, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, asm.Bytes(), 0o644); err != nil {
		return
	}
	os.Rename(tmp, path)
}

func finishIdleTransfers(transfers map[uint32]*transferState, idleTimeout time.Duration, cfg ReceiverConfig, logf func(string)) {
	now := time.Now()
	for id, ts := range transfers {
		if ts.lastSeen.IsZero() || now.Sub(ts.lastSeen) < idleTimeout {
			continue
		}
		decodeTransfer(ts, cfg, logf)
		delete(transfers, id)
	}
}

func decodeTransfer(ts *transferState, cfg ReceiverConfig, logf func(string)) {
	paths, err := chunk.ListChunkFiles(ts.dirPath)
	if err != nil || len(paths) == 0 {
		logf("[rx] transfer " + strconv.FormatUint(uint64(ts.transferID), 10) + ": no chunks, failing")
		return
	}
	if cfg.DecodeMode == DecodeStrict && uint32(len(paths)) != ts.chunkTotal {
		logf("[rx] transfer " + strconv.FormatUint(uint64(ts.transferID), 10) + ": " + ErrIncomplete.Error())
		return
	}

	destName := ts.name
	if destName == "" {
		destName = "transfer_" + strconv.FormatUint(uint64(ts.transferID), 10)
	}
	destPath := filepath.Join(cfg.BaseDir, destName)

	if _, err := codec.Decode(ts.dirPath, destPath); err != nil {
		logf("[rx] transfer " + strconv.FormatUint(uint64(ts.transferID), 10) + ": decode failed: " + err.Error())
		return
	}
	os.RemoveAll(ts.dirPath)
	logf("[rx] transfer " + strconv.FormatUint(uint64(ts.transferID), 10) + ": decoded to " + destPath)
}
