// Package resize implements the Mitchell-Netravali (Catmull-Rom) resampling
// kernel spec.md S9 recommends for the coarse downscale/upscale passes. No
// third-party resize library appears anywhere in the retrieval pack, so
// this is a direct, from-scratch implementation against image.RGBA; see
// DESIGN.md for why no dependency could serve this piece.
package resize

import (
	"image"
	"image/color"
)

// catmullRomB, catmullRomC fix B=0, C=0.5 per spec.md S9.
const (
	catmullRomB = 0.0
	catmullRomC = 0.5
)

// kernel is the Mitchell-Netravali weighting function, piecewise-cubic over
// |x| in [0,1) and [1,2), zero beyond.
func kernel(x float64) float64 {
	if x < 0 {
		x = -x
	}
	b, c := catmullRomB, catmullRomC
	switch {
	case x < 1:
		return ((12-9*b-6*c)*x*x*x + (-18+12*b+6*c)*x*x + (6 - 2*b)) / 6
	case x < 2:
		return ((-b-6*c)*x*x*x + (6*b+30*c)*x*x + (-12*b-48*c)*x + (8*b + 24*c)) / 6
	default:
		return 0
	}
}

// RGBA resamples src to exactly width x height using separable
// Mitchell-Netravali filtering with edge-clamped sampling, and returns a
// fresh *image.RGBA. Both the thumbnail downscale and the coarse-to-full
// upscale in the image pipeline (spec.md S4.3) call this.
func RGBA(src *image.RGBA, width, height int) *image.RGBA {
	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}

	// Horizontal pass: sw x sh -> width x sh.
	horiz := resampleAxis(src, sw, sh, width, true)
	// Vertical pass: width x sh -> width x height.
	return resampleAxis(horiz, width, sh, height, false)
}

// resampleAxis filters the source image along one axis into a fresh image
// of the same stride layout (always width x srcHeight output buffers keyed
// by whether this is the horizontal or vertical pass).
func resampleAxis(src *image.RGBA, sw, sh, dstLen int, horizontal bool) *image.RGBA {
	var dst *image.RGBA
	if horizontal {
		dst = image.NewRGBA(image.Rect(0, 0, dstLen, sh))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, sw, dstLen))
	}
	return resampleInto(src, dst, sw, sh, dstLen, horizontal)
}

func resampleInto(src *image.RGBA, dst *image.RGBA, sw, sh, dstLen int, horizontal bool) *image.RGBA {
	srcLen := sw
	if !horizontal {
		srcLen = sh
	}
	scale := float64(srcLen) / float64(dstLen)

	weights, bases := buildWeights(srcLen, dstLen, scale)

	if horizontal {
		for y := 0; y < sh; y++ {
			for dx := 0; dx < dstLen; dx++ {
				r, g, b, a := convolveRow(src, y, bases[dx], weights[dx], sw)
				setRGBA(dst, dx, y, r, g, b, a)
			}
		}
	} else {
		for x := 0; x < sw; x++ {
			for dy := 0; dy < dstLen; dy++ {
				r, g, b, a := convolveCol(src, x, bases[dy], weights[dy], sh)
				setRGBA(dst, x, dy, r, g, b, a)
			}
		}
	}
	return dst
}

// buildWeights precomputes, for every destination sample, the four
// source-axis taps and their normalized Mitchell-Netravali weights.
func buildWeights(srcLen, dstLen int, scale float64) (weights [][4]float64, bases [][4]int) {
	weights = make([][4]float64, dstLen)
	bases = make([][4]int, dstLen)

	for d := 0; d < dstLen; d++ {
		center := (float64(d) + 0.5) * scale
		base := int(center) - 1
		var w [4]float64
		var sum float64
		for t := 0; t < 4; t++ {
			pos := float64(base+t) + 0.5
			w[t] = kernel((center - pos) / maxF(scale, 1.0))
			sum += w[t]
		}
		if sum != 0 {
			for t := range w {
				w[t] /= sum
			}
		}
		weights[d] = w
		var idx [4]int
		for t := 0; t < 4; t++ {
			idx[t] = clamp(base+t, 0, srcLen-1)
		}
		bases[d] = idx
	}
	return
}

func convolveRow(src *image.RGBA, y int, idx [4]int, w [4]float64, _ int) (r, g, b, a float64) {
	for t := 0; t < 4; t++ {
		pr, pg, pb, pa := pixelAt(src, idx[t], y)
		r += pr * w[t]
		g += pg * w[t]
		b += pb * w[t]
		a += pa * w[t]
	}
	return
}

func convolveCol(src *image.RGBA, x int, idx [4]int, w [4]float64, _ int) (r, g, b, a float64) {
	for t := 0; t < 4; t++ {
		pr, pg, pb, pa := pixelAt(src, x, idx[t])
		r += pr * w[t]
		g += pg * w[t]
		b += pb * w[t]
		a += pa * w[t]
	}
	return
}

func pixelAt(src *image.RGBA, x, y int) (r, g, b, a float64) {
	bounds := src.Bounds()
	x = clamp(x, 0, bounds.Dx()-1)
	y = clamp(y, 0, bounds.Dy()-1)
	c := src.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
	return float64(c.R), float64(c.G), float64(c.B), float64(c.A)
}

func setRGBA(dst *image.RGBA, x, y int, r, g, b, a float64) {
	dst.SetRGBA(x, y, color.RGBA{R: clampByte(r), G: clampByte(g), B: clampByte(b), A: clampByte(a)})
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
