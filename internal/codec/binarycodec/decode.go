package binarycodec

import (
	"github.com/pkg/errors"

	"github.com/holocodec/holo/internal/chunk"
	"github.com/holocodec/holo/internal/golden"
	"github.com/holocodec/holo/internal/residual"
)

// Decode reconstructs a byte sequence from the HBIN chunk files in dir.
// Unlike the image and audio pipelines, a missing chunk leaves its
// positions as zero bytes rather than a perceptually-degraded
// approximation (spec.md S4.5's Non-goal: no perceptual model for
// arbitrary binary data).
func Decode(dir string) ([]byte, error) {
	paths, err := chunk.ListChunkFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, chunk.ErrNoChunks
	}

	type accepted struct {
		blockIndex uint32
		slice      []byte
	}
	type groupKey struct {
		header     Header
		blockCount uint32
		n          uint64
	}
	groups := map[groupKey][]accepted{}
	coarseByKey := map[groupKey][]byte{}
	var order []groupKey

	for _, p := range paths {
		c, err := chunk.ReadFile(p)
		if err != nil {
			continue
		}
		if c.Mode != chunk.ModeBinary {
			continue
		}
		h, err := Unmarshal(c.ModeHeader)
		if err != nil {
			continue
		}

		key := groupKey{header: h, blockCount: c.BlockCount, n: c.NTotal}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
			coarseByKey[key] = c.Coarse
		}
		groups[key] = append(groups[key], accepted{blockIndex: c.BlockIndex, slice: c.Slice})
	}

	if len(order) == 0 {
		return nil, chunk.ErrNoChunks
	}

	// spec.md S4.3's Failure semantics: drop chunks that disagree with
	// the group, keep the majority-consistent set, not just whichever
	// chunk happened to scan first.
	best := order[0]
	for _, key := range order[1:] {
		if len(groups[key]) > len(groups[best]) {
			best = key
		}
	}
	header, blockCount, n := best.header, best.blockCount, best.n
	coarsePl := coarseByKey[best]
	chunks := groups[best]

	coarse, err := chunk.Inflate(coarsePl)
	if err != nil {
		return nil, errors.Wrap(err, "binarycodec: inflate coarse")
	}

	out := make([]byte, header.TotalLen)
	copy(out, coarse)

	if n == 0 {
		return out, nil
	}

	rest := out[header.CoarseLen:]

	if n == 1 {
		// golden.New rejects N<2; the lone chunk holds the single
		// residual byte directly, no permutation involved.
		for _, c := range chunks {
			plain, err := chunk.Inflate(c.slice)
			if err != nil || len(plain) == 0 {
				continue
			}
			rest[0] = plain[0]
		}
		return out, nil
	}

	perm, err := golden.New(int64(n))
	if err != nil {
		return nil, errors.Wrap(err, "binarycodec: build permutation")
	}

	for _, c := range chunks {
		plain, err := chunk.Inflate(c.slice)
		if err != nil {
			continue
		}
		idx := perm.Block(int64(c.blockIndex), int64(blockCount))
		residual.ScatterBytes(rest, idx, plain)
	}

	return out, nil
}
