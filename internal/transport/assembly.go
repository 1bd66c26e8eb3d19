package transport

import (
	"golang.org/x/crypto/blake2b"
)

// chunkAssembly accumulates the segments of one chunk file, generalizing
// ponzu/ioutil.BlockWriter's "accumulate until full, then flush" shape to
// an out-of-order slot map: segments may arrive in any order and the
// buffer is complete once every slot is filled (spec.md S4.7/S5).
type chunkAssembly struct {
	segCount uint16
	slots    [][]byte
	hashes   [][16]byte
	filled   int
}

func newChunkAssembly(segCount uint16) *chunkAssembly {
	return &chunkAssembly{
		segCount: segCount,
		slots:    make([][]byte, segCount),
		hashes:   make([][16]byte, segCount),
	}
}

// Put stores payload at segIndex. A duplicate segment with identical
// bytes is a no-op; a duplicate with differing bytes keeps the existing
// slot and reports the mismatch, per spec.md S4.7's duplicate-handling
// rule.
func (a *chunkAssembly) Put(segIndex uint16, payload []byte) (mismatch bool) {
	if int(segIndex) >= len(a.slots) {
		return false
	}
	sum := blake2b.Sum256(payload)
	short := [16]byte{}
	copy(short[:], sum[:16])

	if a.slots[segIndex] != nil {
		if a.hashes[segIndex] != short {
			return true
		}
		return false
	}

	a.slots[segIndex] = payload
	a.hashes[segIndex] = short
	a.filled++
	return false
}

// Complete reports whether every segment slot has been filled.
func (a *chunkAssembly) Complete() bool {
	return a.filled == len(a.slots)
}

// Bytes concatenates all segments in order. Only valid once Complete
// returns true.
func (a *chunkAssembly) Bytes() []byte {
	total := 0
	for _, s := range a.slots {
		total += len(s)
	}
	out := make([]byte, 0, total)
	for _, s := range a.slots {
		out = append(out, s...)
	}
	return out
}
