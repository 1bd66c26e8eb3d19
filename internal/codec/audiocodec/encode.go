package audiocodec

import (
	"github.com/pkg/errors"

	"github.com/holocodec/holo/internal/chunk"
	"github.com/holocodec/holo/internal/golden"
	"github.com/holocodec/holo/internal/residual"
)

// DefaultCoarseFrames is the default coarse track length (spec.md S4.4),
// matching original_source/holo.py's coarse_max_frames=2048.
const DefaultCoarseFrames = 2048

// EncodeParams configures one audio encode pass.
type EncodeParams struct {
	PCM          PCM
	OutDir       string
	CoarseFrames int // 0 = DefaultCoarseFrames
	TargetKB     int // 0 = residual.DefaultTargetKB
	BlockCount   int // 0 = derive from TargetKB
}

// Encode writes p.PCM into p.OutDir as a set of HAUD chunk files.
func Encode(p EncodeParams) error {
	channels := int(p.PCM.Channels)
	if channels == 0 {
		return errors.Wrap(chunk.ErrUnsupportedInput, "audiocodec: zero channels")
	}
	nFrames := p.PCM.Frames()
	if nFrames == 0 {
		return errors.Wrap(chunk.ErrUnsupportedInput, "audiocodec: empty track")
	}

	coarseFrames := p.CoarseFrames
	if coarseFrames <= 0 {
		coarseFrames = DefaultCoarseFrames
	}
	if coarseFrames > nFrames {
		coarseFrames = nFrames
	}
	if coarseFrames < 2 {
		coarseFrames = 2
		if coarseFrames > nFrames {
			coarseFrames = nFrames
		}
	}

	coarse := downsample(p.PCM.Samples, channels, coarseFrames)
	coarseUp := upsample(coarse, channels, coarseFrames, nFrames)

	n := int64(nFrames) * int64(channels)
	r := make([]int16, n)
	for i := range r {
		r[i] = residual.ClipInt32ToInt16(int32(p.PCM.Samples[i]) - int32(coarseUp[i]))
	}

	coarsePayload, err := chunk.Deflate(residual.Int16ToLE(coarse))
	if err != nil {
		return err
	}

	header := Header{
		Frames:       uint32(nFrames),
		Channels:     uint16(channels),
		SampleRate:   p.PCM.SampleRate,
		CoarseFrames: uint32(coarseFrames),
	}.Marshal()

	if n == 1 {
		// golden.New rejects N<2; a single residual sample (a mono,
		// single-frame track) needs no permutation to begin with.
		sliceBytes, err := chunk.Deflate(residual.Int16ToLE(r))
		if err != nil {
			return err
		}
		c := &chunk.Container{
			Mode:       chunk.ModeAudio,
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
		blockCount = residual.ChooseBlockCount(n*2, int64(p.TargetKB), n)
	}
	if blockCount > n {
		blockCount = n
	}

	perm, err := golden.New(n)
	if err != nil {
		return errors.Wrap(err, "audiocodec: build permutation")
	}

	for b := int64(0); b < blockCount; b++ {
		idx := perm.Block(b, blockCount)
		vals := residual.GatherInt16(r, idx)
		sliceBytes, err := chunk.Deflate(residual.Int16ToLE(vals))
		if err != nil {
			return err
		}
		c := &chunk.Container{
			Mode:       chunk.ModeAudio,
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
