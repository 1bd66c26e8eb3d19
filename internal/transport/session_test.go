package transport

import (
	"math/rand"
	"os"
	"testing"
	"time"
)

// fragmentChunkFiles fragments every chunk file in dir into payloadSize-byte
// segments and returns one Packet per segment, in encode order — the same
// shape Send would push onto the wire, without any socket.
func fragmentChunkFiles(t *testing.T, dir string, transferID uint32, payloadSize int) []Packet {
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var pkts []Packet
	chunkTotal := uint32(len(entries))
	for b, e := range entries {
		data, err := os.ReadFile(dir + "/" + e.Name())
		if err != nil {
			t.Fatal(err)
		}
		segs := fragment(data, payloadSize)
		for segIdx, seg := range segs {
			pkts = append(pkts, Packet{
				Type: TypeData, TransferID: transferID, ChunkTotal: chunkTotal,
				ChunkIndex: uint32(b), SegIndex: uint16(segIdx), SegCount: uint16(len(segs)), Payload: seg,
			})
		}
	}
	return pkts
}

func TestSession_ReassemblesChunksRegardlessOfOrderAndDuplication(t *testing.T) {
	srcDir := t.TempDir()
	os.WriteFile(srcDir+"/in.bin", []byte("the quick brown fox jumps over the lazy dog, repeated many times for bulk "), 0o644)

	encodedDir := t.TempDir() + "/in.bin.holo"
	os.MkdirAll(encodedDir, 0o755)

	// Use a handful of tiny fake chunk files directly rather than invoking
	// the binary codec, to keep this test focused on the session state
	// machine rather than the codec pipeline.
	for i := 0; i < 4; i++ {
		os.WriteFile(encodedDir+"/chunk_000"+string(rune('0'+i))+".holo", []byte{byte(i), byte(i + 1), byte(i + 2)}, 0o644)
	}

	pkts := fragmentChunkFiles(t, encodedDir, 7, 2)

	baseDir := t.TempDir()
	cfg := ReceiverConfig{BaseDir: baseDir, DecodeMode: DecodeBest}
	sess := newSession(cfg, nil)

	meta := Packet{Type: TypeMeta, TransferID: 7, ChunkTotal: pkts[0].ChunkTotal, Payload: []byte("in.bin")}
	sess.handlePacket(&meta)

	// Shuffle, duplicate every packet, and feed twice: reassembly must be
	// insensitive to order and to exact duplicates.
	rng := rand.New(rand.NewSource(1))
	order := rng.Perm(len(pkts))
	for _, i := range order {
		sess.handlePacket(&pkts[i])
		sess.handlePacket(&pkts[i]) // duplicate
	}

	ts := sess.transfers[7]
	if ts == nil {
		t.Fatal("expected transfer state to exist")
	}
	for b := 0; b < 4; b++ {
		asm := ts.chunks[uint32(b)]
		if asm == nil || !asm.Complete() {
			t.Fatalf("chunk %d not fully reassembled", b)
		}
	}

	// Ticking past the idle timeout attempts decode; these fake chunk
	// files aren't valid HBIN containers, so decode fails and the
	// transfer is dropped from the live map without a panic.
	sess.tick(1 * time.Nanosecond)
	if _, stillTracked := sess.transfers[7]; stillTracked {
		t.Error("expected transfer to be removed from the live map after the idle tick")
	}
}
