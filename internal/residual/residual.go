// Package residual holds the pieces shared by all three codec pipelines:
// choosing a block count from a target chunk size, and scattering/gathering
// values across the golden-permutation index sets I_b. Kept below the
// per-mode codec packages and the dispatcher so none of them import each
// other in a cycle.
package residual

import "math"

// DefaultTargetKB is the target chunk size used when a caller does not
// specify one, matching original_source/holo.net.py's DEFAULT_CHUNK_KB.
const DefaultTargetKB = 32

// ChooseBlockCount implements spec.md S4.3 point 5's policy, generalized to
// all three pipelines: B = max(4, round(residualBytes / (targetKB*1024))),
// never exceeding n (the residual length) and never below 1.
func ChooseBlockCount(residualBytes, targetKB, n int64) int64 {
	if targetKB <= 0 {
		targetKB = DefaultTargetKB
	}
	target := targetKB * 1024
	if target <= 0 {
		target = 1
	}
	if n <= 0 {
		return 1
	}

	b := int64(math.Round(float64(residualBytes) / float64(target)))
	if b < 4 {
		b = 4
	}
	if b > n {
		b = n
	}
	if b < 1 {
		b = 1
	}
	return b
}

// GatherInt16 returns the values of src at the given indices, in order —
// the generation order that spec.md S4.1 requires to be preserved.
func GatherInt16(src []int16, idx []int64) []int16 {
	out := make([]int16, len(idx))
	for k, i := range idx {
		out[k] = src[i]
	}
	return out
}

// ScatterInt16 writes vals into dst at the given indices, in order.
// Extra indices beyond len(vals) (a short slice from a partially-decoded
// chunk) are left untouched.
func ScatterInt16(dst []int16, idx []int64, vals []int16) {
	n := len(vals)
	if len(idx) < n {
		n = len(idx)
	}
	for k := 0; k < n; k++ {
		dst[idx[k]] = vals[k]
	}
}

// GatherBytes is GatherInt16's byte-vector counterpart, used by the binary
// pipeline.
func GatherBytes(src []byte, idx []int64) []byte {
	out := make([]byte, len(idx))
	for k, i := range idx {
		out[k] = src[i]
	}
	return out
}

// ScatterBytes is ScatterInt16's byte-vector counterpart.
func ScatterBytes(dst []byte, idx []int64, vals []byte) {
	n := len(vals)
	if len(idx) < n {
		n = len(idx)
	}
	for k := 0; k < n; k++ {
		dst[idx[k]] = vals[k]
	}
}

// Int16ToLE encodes a slice of int16 as little-endian bytes, per spec.md
// S4.2's residual slice encoding ("int16 little-endian, then deflated").
func Int16ToLE(vals []int16) []byte {
	out := make([]byte, 2*len(vals))
	for i, v := range vals {
		out[2*i] = byte(uint16(v))
		out[2*i+1] = byte(uint16(v) >> 8)
	}
	return out
}

// Int16FromLE decodes little-endian int16 bytes back into a slice.
func Int16FromLE(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(uint16(b[2*i]) | uint16(b[2*i+1])<<8)
	}
	return out
}

// ClipInt32ToUint8 clips v to [0,255] and narrows to uint8, per the image
// pipeline's output clamp (spec.md S4.3).
func ClipInt32ToUint8(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// ClipInt32ToInt16 clips v to [-32768,32767], per the audio pipeline's
// output clamp (spec.md S4.4).
func ClipInt32ToInt16(v int32) int16 {
	if v < -32768 {
		return -32768
	}
	if v > 32767 {
		return 32767
	}
	return int16(v)
}
