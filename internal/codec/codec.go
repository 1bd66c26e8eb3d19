// Package codec implements the mode dispatcher (spec.md S4.6, C6):
// detect a chunk mode from a file extension or from a directory's chunk
// magics, and route encode/decode calls to the matching pipeline package.
package codec

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/holocodec/holo/internal/chunk"
	"github.com/holocodec/holo/internal/codec/audiocodec"
	"github.com/holocodec/holo/internal/codec/binarycodec"
	"github.com/holocodec/holo/internal/codec/imagecodec"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".gif": true, ".tif": true, ".tiff": true,
}

// DetectFromExtension infers a mode from path's extension, per spec.md
// S4.6: the known raster extensions select image mode, ".wav" selects
// audio mode, everything else falls through to binary.
func DetectFromExtension(path string) chunk.Mode {
	ext := strings.ToLower(filepath.Ext(path))
	if imageExts[ext] {
		return chunk.ModeImage
	}
	if ext == ".wav" {
		return chunk.ModeAudio
	}
	return chunk.ModeBinary
}

// DetectFromDir inspects the magic of the first parseable chunk in dir,
// per spec.md S4.6's decode path (MixedModes is surfaced by
// chunk.DetectDirMode, which this wraps).
func DetectFromDir(dir string) (chunk.Mode, error) {
	return chunk.DetectDirMode(dir)
}

// EncodeParams carries the tunables common to all three pipelines; zero
// values fall back to each pipeline's own defaults.
type EncodeParams struct {
	SourcePath string
	OutDir     string
	TargetKB   int
	BlockCount int
}

// Encode reads p.SourcePath, detects its mode from the extension, and
// writes the resulting chunk directory to p.OutDir.
func Encode(p EncodeParams) (chunk.Mode, error) {
	mode := DetectFromExtension(p.SourcePath)

	if err := os.MkdirAll(p.OutDir, 0o755); err != nil {
		return mode, errors.Wrap(err, "codec: create output directory")
	}

	switch mode {
	case chunk.ModeImage:
		f, err := os.Open(p.SourcePath)
		if err != nil {
			return mode, errors.Wrap(err, "codec: open image")
		}
		defer f.Close()
		img, err := decodeAnyImage(f, p.SourcePath)
		if err != nil {
			return mode, errors.Wrap(chunk.ErrUnsupportedInput, err.Error())
		}
		rgb := imagecodec.ToRGBDroppingAlpha(img)
		return mode, imagecodec.Encode(imagecodec.EncodeParams{
			Img: rgb, OutDir: p.OutDir, TargetKB: p.TargetKB, BlockCount: p.BlockCount,
		})
	case chunk.ModeAudio:
		pcm, err := audiocodec.ReadWAV(p.SourcePath)
		if err != nil {
			return mode, err
		}
		return mode, audiocodec.Encode(audiocodec.EncodeParams{
			PCM: pcm, OutDir: p.OutDir, TargetKB: p.TargetKB, BlockCount: p.BlockCount,
		})
	default:
		data, err := os.ReadFile(p.SourcePath)
		if err != nil {
			return mode, errors.Wrap(err, "codec: read input")
		}
		return mode, binarycodec.Encode(binarycodec.EncodeParams{
			Data: data, OutDir: p.OutDir, TargetKB: p.TargetKB, BlockCount: p.BlockCount,
		})
	}
}

// Decode detects dir's mode from its chunks and reconstructs the object,
// writing it to destPath.
func Decode(dir, destPath string) (chunk.Mode, error) {
	mode, err := DetectFromDir(dir)
	if err != nil {
		return 0, err
	}

	switch mode {
	case chunk.ModeImage:
		img, err := imagecodec.Decode(dir)
		if err != nil {
			return mode, err
		}
		f, err := os.Create(destPath)
		if err != nil {
			return mode, errors.Wrap(err, "codec: create output image")
		}
		defer f.Close()
		return mode, errors.Wrap(encodeAnyImage(f, img, destPath), "codec: encode output image")
	case chunk.ModeAudio:
		pcm, err := audiocodec.Decode(dir)
		if err != nil {
			return mode, err
		}
		return mode, audiocodec.WriteWAV(destPath, pcm)
	default:
		data, err := binarycodec.Decode(dir)
		if err != nil {
			return mode, err
		}
		return mode, errors.Wrap(os.WriteFile(destPath, data, 0o644), "codec: write output file")
	}
}

func decodeAnyImage(r *os.File, path string) (image.Image, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	case ".gif":
		return gif.Decode(r)
	case ".bmp":
		return bmp.Decode(r)
	case ".tif", ".tiff":
		return tiff.Decode(r)
	default:
		return png.Decode(r)
	}
}

// encodeAnyImage writes img to w in the format destPath's extension
// names, so a "<name>.jpg.holo" directory decodes back to actual JPEG
// bytes rather than a PNG wearing a .jpg name (spec.md S6's "decoding
// <name>.holo/ restores <name>"). golang.org/x/image/tiff is decode-only
// in this module, so .tif/.tiff (and anything unrecognized) fall back
// to PNG, same as the zero-extension case always did.
func encodeAnyImage(w io.Writer, img image.Image, destPath string) error {
	ext := strings.ToLower(filepath.Ext(destPath))
	switch ext {
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, nil)
	case ".gif":
		return gif.Encode(w, img, nil)
	case ".bmp":
		return bmp.Encode(w, img)
	default:
		return png.Encode(w, img)
	}
}
