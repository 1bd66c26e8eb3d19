package audiocodec

import (
	"github.com/pkg/errors"

	"github.com/holocodec/holo/internal/chunk"
	"github.com/holocodec/holo/internal/golden"
	"github.com/holocodec/holo/internal/residual"
)

// Decode reconstructs a PCM track from the HAUD chunk files in dir.
func Decode(dir string) (PCM, error) {
	paths, err := chunk.ListChunkFiles(dir)
	if err != nil {
		return PCM{}, err
	}
	if len(paths) == 0 {
		return PCM{}, chunk.ErrNoChunks
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
		if c.Mode != chunk.ModeAudio {
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
		return PCM{}, chunk.ErrNoChunks
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

	coarsePlain, err := chunk.Inflate(coarsePl)
	if err != nil {
		return PCM{}, errors.Wrap(err, "audiocodec: inflate coarse")
	}
	coarse := residual.Int16FromLE(coarsePlain)

	channels := int(header.Channels)
	nFrames := int(header.Frames)
	coarseUp := upsample(coarse, channels, int(header.CoarseFrames), nFrames)

	rFlat := make([]int16, n)

	if n == 1 {
		// golden.New rejects N<2; the lone chunk holds the single
		// residual sample directly, no permutation involved.
		for _, c := range chunks {
			plain, err := chunk.Inflate(c.slice)
			if err != nil {
				continue
			}
			vals := residual.Int16FromLE(plain)
			if len(vals) > 0 {
				rFlat[0] = vals[0]
			}
		}
	} else {
		perm, err := golden.New(int64(n))
		if err != nil {
			return PCM{}, errors.Wrap(err, "audiocodec: build permutation")
		}
		for _, c := range chunks {
			plain, err := chunk.Inflate(c.slice)
			if err != nil {
				continue
			}
			vals := residual.Int16FromLE(plain)
			idx := perm.Block(int64(c.blockIndex), int64(blockCount))
			residual.ScatterInt16(rFlat, idx, vals)
		}
	}

	out := make([]int16, n)
	for i := range out {
		out[i] = residual.ClipInt32ToInt16(int32(coarseUp[i]) + int32(rFlat[i]))
	}

	return PCM{Samples: out, SampleRate: header.SampleRate, Channels: header.Channels}, nil
}
