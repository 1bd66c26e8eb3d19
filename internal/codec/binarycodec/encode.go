package binarycodec

import (
	"github.com/pkg/errors"

	"github.com/holocodec/holo/internal/chunk"
	"github.com/holocodec/holo/internal/golden"
	"github.com/holocodec/holo/internal/residual"
)

// DefaultCoarseBudget is the default coarse prefix length (spec.md S4.5),
// matching original_source/holo.py's coarse_len=1024.
const DefaultCoarseBudget = 1024

// EncodeParams configures one binary encode pass.
type EncodeParams struct {
	Data         []byte
	OutDir       string
	CoarseBudget int // 0 = DefaultCoarseBudget
	TargetKB     int // 0 = residual.DefaultTargetKB
	BlockCount   int // 0 = derive from TargetKB
}

// Encode writes p.Data into p.OutDir as a set of HBIN chunk files.
func Encode(p EncodeParams) error {
	l := len(p.Data)
	if l == 0 {
		return errors.Wrap(chunk.ErrUnsupportedInput, "binarycodec: empty input")
	}

	coarseBudget := p.CoarseBudget
	if coarseBudget <= 0 {
		coarseBudget = DefaultCoarseBudget
	}
	if coarseBudget > l {
		coarseBudget = l
	}

	coarse := p.Data[:coarseBudget]
	rest := p.Data[coarseBudget:]
	n := int64(len(rest))

	coarsePayload, err := chunk.Deflate(coarse)
	if err != nil {
		return err
	}

	header := Header{TotalLen: uint64(l), CoarseLen: uint32(coarseBudget)}.Marshal()

	if n == 0 {
		// Whole file fits in the coarse prefix: a single chunk with an
		// empty residual slice still round-trips.
		c := &chunk.Container{
			Mode:       chunk.ModeBinary,
			Version:    chunk.CurrentVersion,
			ModeHeader: header,
			Coarse:     coarsePayload,
			Slice:      nil,
			BlockIndex: 0,
			BlockCount: 1,
			NTotal:     0,
		}
		path := p.OutDir + "/" + chunk.FileName(0, 1)
		return chunk.WriteFile(path, c)
	}

	if n == 1 {
		// golden.New rejects N<2; a single residual byte needs no
		// permutation to begin with.
		sliceBytes, err := chunk.Deflate(rest)
		if err != nil {
			return err
		}
		c := &chunk.Container{
			Mode:       chunk.ModeBinary,
			Version:    chunk.CurrentVersion,
			ModeHeader: header,
			Coarse:     coarsePayload,
			Slice:      sliceBytes,
			BlockIndex: 0,
			BlockCount: 1,
			NTotal:     1,
		}
		path := p.OutDir + "/" + chunk.FileName(0, 1)
		return chunk.WriteFile(path, c)
	}

	blockCount := int64(p.BlockCount)
	if blockCount <= 0 {
		blockCount = residual.ChooseBlockCount(n, int64(p.TargetKB), n)
	}
	if blockCount > n {
		blockCount = n
	}

	perm, err := golden.New(n)
	if err != nil {
		return errors.Wrap(err, "binarycodec: build permutation")
	}

	for b := int64(0); b < blockCount; b++ {
		idx := perm.Block(b, blockCount)
		vals := residual.GatherBytes(rest, idx)
		sliceBytes, err := chunk.Deflate(vals)
		if err != nil {
			return err
		}
		c := &chunk.Container{
			Mode:       chunk.ModeBinary,
			Version:    chunk.CurrentVersion,
			ModeHeader: header,
			Coarse:     coarsePayload,
			Slice:      sliceBytes,
			BlockIndex: uint32(b),
			BlockCount: uint32(blockCount),
			NTotal:     uint64(n),
		}
		path := p.OutDir + "/" + chunk.FileName(uint32(b), uint32(blockCount))
		if err := chunk.WriteFile(path, c); err != nil {
			return err
		}
	}
	return nil
}
