// SPDX-License-Identifier: MIT

// Package matrix - norms and reconstruction distances.
//
// The spectral norm of a complex matrix A = X + iY equals the spectral norm
// of its real embedding [[X, −Y], [Y, X]] (same singular values, each
// repeated twice), which lets gonum's real SVD do the heavy lifting.
// Note that mat.Norm(·, 2) is the Frobenius norm, not the spectral one.

package matrix

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

const (
	opOperatorNorm = "OperatorNorm"
	opDistance     = "Distance"
)

// RealEmbedding returns the 2r×2c real matrix [[Re M, −Im M], [Im M, Re M]].
// For a Hermitian M the embedding is symmetric and each eigenvalue of M
// appears twice in its spectrum, with eigenvector [x; y] for M(x+iy) = λ(x+iy).
// Complexity: O(r*c).
func RealEmbedding(m *Dense) *mat.Dense {
	r, c := m.r, m.c
	e := mat.NewDense(2*r, 2*c, nil)
	var i, j int
	var v complex128
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			v = m.data[i*c+j]
			e.Set(i, j, real(v))
			e.Set(i, c+j, -imag(v))
			e.Set(r+i, j, imag(v))
			e.Set(r+i, c+j, real(v))
		}
	}

	return e
}

// OperatorNorm returns the spectral norm ‖M‖₂ (largest singular value).
// Errors: ErrNilMatrix, ErrNoConvergence.
// Complexity: O(n³) via gonum SVD on the 2n×2n embedding.
func OperatorNorm(m *Dense) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, matrixErrorf(opOperatorNorm, err)
	}
	var svd mat.SVD
	if ok := svd.Factorize(RealEmbedding(m), mat.SVDNone); !ok {
		return 0, matrixErrorf(opOperatorNorm, ErrNoConvergence)
	}

	return svd.Values(nil)[0], nil // descending order
}

// FrobeniusNorm returns sqrt(Σ|M[i,j]|²).
func FrobeniusNorm(m *Dense) float64 {
	var s float64
	for _, v := range m.data {
		s += real(v)*real(v) + imag(v)*imag(v)
	}

	return math.Sqrt(s)
}

// OperatorDistance returns ‖A − B‖₂.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
func OperatorDistance(a, b *Dense) (float64, error) {
	diff, err := Sub(a, b)
	if err != nil {
		return 0, matrixErrorf(opDistance, err)
	}

	return OperatorNorm(diff)
}

// MaxAbsDistance returns max |A[i,j] − B[i,j]|.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(r*c).
func MaxAbsDistance(a, b *Dense) (float64, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return 0, matrixErrorf(opDistance, err)
	}
	var dev float64
	for idx := range a.data {
		dev = math.Max(dev, cmplx.Abs(a.data[idx]-b.data[idx]))
	}

	return dev, nil
}

// MaxAbs returns max |M[i,j]|.
func MaxAbs(m *Dense) float64 {
	var v float64
	for _, x := range m.data {
		v = math.Max(v, cmplx.Abs(x))
	}

	return v
}

// AlignPhase returns e^{iφ}·B where φ = arg tr(B†A) is the global phase that
// best aligns B with A in Frobenius norm. When tr(B†A) vanishes B is
// returned unchanged.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
func AlignPhase(a, b *Dense) (*Dense, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return nil, matrixErrorf(opDistance, err)
	}
	var overlap complex128
	for idx := range a.data {
		overlap += cmplx.Conj(b.data[idx]) * a.data[idx]
	}
	if cmplx.Abs(overlap) == 0 {
		return b, nil
	}

	return Scale(b, overlap/complex(cmplx.Abs(overlap), 0))
}
