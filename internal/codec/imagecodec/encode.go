// Package imagecodec implements the image pipeline (spec.md S4.3, C3):
// coarse is a bicubic thumbnail upscaled back to full size; residual is
// 16-bit signed; the coarse payload stored in every chunk is the thumbnail
// itself, PNG-encoded.
package imagecodec

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"github.com/holocodec/holo/internal/chunk"
	"github.com/holocodec/holo/internal/golden"
	"github.com/holocodec/holo/internal/residual"
	"github.com/holocodec/holo/internal/resize"
)

// DefaultThumbSide is T_img, the default thumbnail side from spec.md S3.
const DefaultThumbSide = 64

// EncodeParams configures one image encode pass.
type EncodeParams struct {
	Img        *image.RGBA // H x W x 3; alpha, if present, is expected already dropped
	OutDir     string
	ThumbSide  int // 0 = DefaultThumbSide
	TargetKB   int // 0 = residual.DefaultTargetKB
	BlockCount int // 0 = derive from TargetKB
}

// ToRGBDroppingAlpha converts any image.Image to *image.RGBA with the alpha
// channel straight-dropped, per spec.md S4.3 point 1 and the default policy
// recorded in S9 ("Alpha handling... default is straight drop").
func ToRGBDroppingAlpha(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			out.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, color.RGBA{
				R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255,
			})
		}
	}
	return out
}

// Encode writes p.Img into p.OutDir as a set of HIMG chunk files.
func Encode(p EncodeParams) error {
	if p.Img == nil {
		return errors.Wrap(chunk.ErrUnsupportedInput, "imagecodec: nil image")
	}
	w, h := p.Img.Bounds().Dx(), p.Img.Bounds().Dy()
	if w == 0 || h == 0 {
		return errors.Wrap(chunk.ErrUnsupportedInput, "imagecodec: empty image")
	}

	thumbSide := p.ThumbSide
	if thumbSide <= 0 {
		thumbSide = DefaultThumbSide
	}
	side := minInt(thumbSide, minInt(h, w))
	if side < 1 {
		side = 1
	}

	thumb := resize.RGBA(p.Img, side, side)
	coarseUp := resize.RGBA(thumb, w, h)

	thumbPNG := new(bytes.Buffer)
	if err := png.Encode(thumbPNG, thumb); err != nil {
		return errors.Wrap(err, "imagecodec: encode thumbnail PNG")
	}

	n := int64(h) * int64(w) * 3
	r := make([]int16, n)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			orig := p.Img.RGBAAt(x, y)
			up := coarseUp.RGBAAt(x, y)
			base := int64(y)*int64(w)*3 + int64(x)*3
			r[base+0] = int16(orig.R) - int16(up.R)
			r[base+1] = int16(orig.G) - int16(up.G)
			r[base+2] = int16(orig.B) - int16(up.B)
		}
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
		return errors.Wrap(err, "imagecodec: build permutation")
	}

	header := Header{Width: uint32(w), Height: uint32(h), Channels: 3, ThumbSide: uint16(side)}.Marshal()

	return writeChunksParallel(p.OutDir, blockCount, n, func(b int64) (*chunk.Container, error) {
		idx := perm.Block(b, blockCount)
		vals := residual.GatherInt16(r, idx)
		sliceBytes, err := chunk.Deflate(residual.Int16ToLE(vals))
		if err != nil {
			return nil, err
		}
		return &chunk.Container{
			Mode:       chunk.ModeImage,
			Version:    chunk.CurrentVersion,
			ModeHeader: header,
			Coarse:     thumbPNG.Bytes(),
			Slice:      sliceBytes,
			BlockIndex: uint32(b),
			BlockCount: uint32(blockCount),
			NTotal:     uint64(n),
		}, nil
	})
}

// writeChunksParallel runs fn for every block concurrently (spec.md S5
// explicitly permits this: each chunk touches a disjoint residual slice)
// and writes each chunk file as its container is produced.
func writeChunksParallel(outDir string, blockCount, n int64, fn func(b int64) (*chunk.Container, error)) error {
	workers := runtime.GOMAXPROCS(0)
	if int64(workers) > blockCount {
		workers = int(blockCount)
	}
	if workers < 1 {
		workers = 1
	}

	blocks := make(chan int64)
	errs := make(chan error, blockCount)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range blocks {
				c, err := fn(b)
				if err != nil {
					errs <- err
					continue
				}
				path := outDir + "/" + chunk.FileName(uint32(b), uint32(blockCount))
				if err := chunk.WriteFile(path, c); err != nil {
					errs <- err
				}
			}
		}()
	}

	for b := int64(0); b < blockCount; b++ {
		blocks <- b
	}
	close(blocks)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
