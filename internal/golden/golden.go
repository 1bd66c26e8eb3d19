// Package golden implements the single-cycle golden-ratio permutation that
// interleaves a residual vector across chunks.
package golden

import (
	"github.com/pkg/errors"
)

// goldenRatio is (1+sqrt(5))/2, hardcoded to the precision spec.md fixes.
const goldenRatio = 1.6180339887498949

// ErrTooSmall is returned when N < 2, the minimum size a permutation can be
// built over.
var ErrTooSmall = errors.New("golden: N must be at least 2")

// Permutation is the bijection pi(i) = (i * s) mod N described in spec.md
// S4.1, with s the integer nearest (phi-1)*N that is coprime to N.
type Permutation struct {
	n    int64
	step int64
}

// New builds the permutation for a residual vector of length n.
func New(n int64) (*Permutation, error) {
	if n < 2 {
		return nil, ErrTooSmall
	}
	return &Permutation{n: n, step: chooseStep(n)}, nil
}

// N returns the size the permutation was built over.
func (p *Permutation) N() int64 { return p.n }

// Step returns s, the multiplier used by At.
func (p *Permutation) Step() int64 { return p.step }

// At returns pi(i) using 64-bit arithmetic, safe for N up to ~2^31 per
// spec.md S4.1.
func (p *Permutation) At(i int64) int64 {
	return (i * p.step) % p.n
}

// BlockLen returns |I_b|, the number of residual positions chunk b owns out
// of blockCount total chunks: ceil((N-b)/blockCount).
func (p *Permutation) BlockLen(b, blockCount int64) int64 {
	remaining := p.n - b
	if remaining <= 0 {
		return 0
	}
	return (remaining + blockCount - 1) / blockCount
}

// Block returns I_b in generation order: pi(b), pi(b+B), pi(b+2B), ...
// This order is part of the wire format (spec.md S4.1) and must be
// reproduced identically by encoder and decoder.
func (p *Permutation) Block(b, blockCount int64) []int64 {
	n := p.BlockLen(b, blockCount)
	out := make([]int64, n)
	for k, idx := int64(0), b; k < n; k, idx = k+1, idx+blockCount {
		out[k] = p.At(idx)
	}
	return out
}

// chooseStep finds s per spec.md S4.1: start at round((phi-1)*N), then
// search outward trying +1, -1, +2, -2, ... until a value coprime to n in
// [1, n-1] is found. The +direction is always tried before - at the same
// distance, so the search is deterministic.
func chooseStep(n int64) int64 {
	s0 := int64(roundHalfAwayFromZero((goldenRatio - 1) * float64(n)))

	if s0 >= 1 && s0 <= n-1 && gcd(s0, n) == 1 {
		return s0
	}

	for dist := int64(1); dist < n; dist++ {
		if cand := s0 + dist; cand >= 1 && cand <= n-1 && gcd(cand, n) == 1 {
			return cand
		}
		if cand := s0 - dist; cand >= 1 && cand <= n-1 && gcd(cand, n) == 1 {
			return cand
		}
	}

	// n >= 2 always has s=1 coprime to it; unreachable in practice.
	return 1
}

func roundHalfAwayFromZero(x float64) float64 {
	if x >= 0 {
		return float64(int64(x + 0.5))
	}
	return float64(int64(x - 0.5))
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}
