package resize_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/holocodec/holo/internal/resize"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestRGBA_SolidColorPreserved(t *testing.T) {
	c := color.RGBA{R: 10, G: 200, B: 50, A: 255}
	src := solidImage(32, 32, c)

	for _, size := range []struct{ w, h int }{{64, 64}, {8, 8}, {17, 40}} {
		out := resize.RGBA(src, size.w, size.h)
		if out.Bounds().Dx() != size.w || out.Bounds().Dy() != size.h {
			t.Fatalf("size %v: got bounds %v", size, out.Bounds())
		}
		mid := out.RGBAAt(size.w/2, size.h/2)
		if absDiff(mid.R, c.R) > 1 || absDiff(mid.G, c.G) > 1 || absDiff(mid.B, c.B) > 1 {
			t.Errorf("size %v: center pixel drifted from solid color: got %v want %v", size, mid, c)
		}
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestRGBA_DegenerateSizeClampedToOne(t *testing.T) {
	src := solidImage(4, 4, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	out := resize.RGBA(src, 0, 0)
	if out.Bounds().Dx() != 1 || out.Bounds().Dy() != 1 {
		t.Fatalf("expected 1x1, got %v", out.Bounds())
	}
}
