package imagecodec

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/pkg/errors"

	"github.com/holocodec/holo/internal/chunk"
	"github.com/holocodec/holo/internal/golden"
	"github.com/holocodec/holo/internal/residual"
	"github.com/holocodec/holo/internal/resize"
)

// Decode reconstructs an image from the HIMG chunk files in dir, tolerating
// a minority of inconsistent or unparseable chunks per spec.md S7.
func Decode(dir string) (*image.RGBA, error) {
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
		if c.Mode != chunk.ModeImage {
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
	coarse := coarseByKey[best]
	chunks := groups[best]

	thumb, err := png.Decode(bytes.NewReader(coarse))
	if err != nil {
		return nil, errors.Wrap(err, "imagecodec: decode thumbnail PNG")
	}
	thumbRGBA := ToRGBDroppingAlpha(thumb)

	w, h := int(header.Width), int(header.Height)
	coarseUp := resize.RGBA(thumbRGBA, w, h)

	rFlat := make([]int16, n)
	perm, err := golden.New(int64(n))
	if err != nil {
		return nil, errors.Wrap(err, "imagecodec: build permutation")
	}

	for _, c := range chunks {
		plain, err := chunk.Inflate(c.slice)
		if err != nil {
			continue // ErrDeflateError: this chunk's contribution is dropped
		}
		vals := residual.Int16FromLE(plain)
		idx := perm.Block(int64(c.blockIndex), int64(blockCount))
		residual.ScatterInt16(rFlat, idx, vals)
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			up := coarseUp.RGBAAt(x, y)
			base := int64(y)*int64(w)*3 + int64(x)*3
			out.SetRGBA(x, y, color.RGBA{
				R: residual.ClipInt32ToUint8(int32(up.R) + int32(rFlat[base+0])),
				G: residual.ClipInt32ToUint8(int32(up.G) + int32(rFlat[base+1])),
				B: residual.ClipInt32ToUint8(int32(up.B) + int32(rFlat[base+2])),
				A: 255,
			})
		}
	}
	return out, nil
}
