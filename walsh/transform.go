// SPDX-License-Identifier: MIT

package walsh

import (
	"fmt"
	"math"

	"github.com/katalvlaran/unisynth/matrix"
)

// Spectrum holds Walsh coefficients c with θ = H·c, where H is the
// unnormalized ±1 Hadamard matrix H[k][x] = (−1)^{|k∧x|}.
type Spectrum []float64

// Transform returns the spectrum of theta: c = H·θ / 2^m.
//
// Implementation:
//   - Stage 1: validate len(theta) is a power of two (≥ 1) and entries finite.
//   - Stage 2: in-place butterfly on a copy, then scale by 1/len.
//
// Errors:
//   - matrix.ErrDimensionMismatch, matrix.ErrNaNInf.
//
// Complexity:
//   - Time O(m·2^m), Space O(2^m).
func Transform(theta []float64) (Spectrum, error) {
	if err := checkLen(len(theta)); err != nil {
		return nil, fmt.Errorf("walsh: Transform: %w", err)
	}
	out := make([]float64, len(theta))
	for i, v := range theta {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("walsh: Transform: entry %d: %w", i, matrix.ErrNaNInf)
		}
		out[i] = v
	}
	butterfly(out)
	inv := 1 / float64(len(out))
	for i := range out {
		out[i] *= inv
	}

	return out, nil
}

// Inverse returns θ = H·c. Exact up to floating-point rounding.
func (s Spectrum) Inverse() []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	butterfly(out)

	return out
}

// Support returns the masks k with |c_k| > threshold, ascending.
func (s Spectrum) Support(threshold float64) []int {
	var ks []int
	for k, c := range s {
		if math.Abs(c) > threshold {
			ks = append(ks, k)
		}
	}

	return ks
}

// butterfly applies the unnormalized Walsh-Hadamard transform in place.
// len(x) must be a power of two.
func butterfly(x []float64) {
	n := len(x)
	var h, i, j int
	var a, b float64
	for h = 1; h < n; h <<= 1 {
		for i = 0; i < n; i += h << 1 {
			for j = i; j < i+h; j++ {
				a, b = x[j], x[j+h]
				x[j], x[j+h] = a+b, a-b
			}
		}
	}
}

func checkLen(n int) error {
	if n < 1 || n&(n-1) != 0 {
		return fmt.Errorf("length %d: %w", n, matrix.ErrDimensionMismatch)
	}

	return nil
}
