// SPDX-License-Identifier: MIT

// Package matrix - complex vector helpers and orthonormalization.
//
// Gram-Schmidt here is the modified variant run twice ("twice is enough"),
// which keeps columns orthonormal to machine precision even when the input
// vectors are nearly dependent. Eigen and cosine-sine routines rely on it to
// repair bases recovered from degenerate subspaces.

package matrix

import (
	"math"
	"math/cmplx"
	"math/rand"
)

// Inner returns ⟨x, y⟩ = Σ conj(x_i)·y_i. Assumes len(x) == len(y).
func Inner(x, y []complex128) complex128 {
	var s complex128
	for i := range x {
		s += cmplx.Conj(x[i]) * y[i]
	}

	return s
}

// Norm returns the Euclidean norm ‖x‖₂.
func Norm(x []complex128) float64 {
	var s float64
	for _, v := range x {
		s += real(v)*real(v) + imag(v)*imag(v)
	}

	return math.Sqrt(s)
}

// Normalize returns x/‖x‖ and ‖x‖. A zero vector is returned unchanged.
func Normalize(x []complex128) ([]complex128, float64) {
	nrm := Norm(x)
	out := make([]complex128, len(x))
	if nrm == 0 {
		copy(out, x)
		return out, 0
	}
	inv := complex(1/nrm, 0)
	for i, v := range x {
		out[i] = v * inv
	}

	return out, nrm
}

// Orthogonalize removes from v its components along every vector of the
// orthonormal set basis (two MGS passes) and returns the normalized residual
// together with the residual norm before normalization. Callers treat a
// residual norm below their threshold as "v lies in span(basis)".
//
// Complexity: O(len(basis)·len(v)).
func Orthogonalize(basis [][]complex128, v []complex128) ([]complex128, float64) {
	r := make([]complex128, len(v))
	copy(r, v)
	var pass int
	var p complex128
	for pass = 0; pass < 2; pass++ {
		for _, b := range basis {
			p = Inner(b, r)
			for i := range r {
				r[i] -= p * b[i]
			}
		}
	}

	return Normalize(r)
}

// OrthonormalizeColumns runs Gram-Schmidt over vs in order and returns the
// accepted orthonormal vectors. A vector whose residual norm falls below tol
// is skipped, so the result may be shorter than the input.
func OrthonormalizeColumns(vs [][]complex128, tol float64) [][]complex128 {
	out := make([][]complex128, 0, len(vs))
	for _, v := range vs {
		u, nrm := Orthogonalize(out, v)
		if nrm < tol {
			continue
		}
		out = append(out, u)
	}

	return out
}

// CompleteBasis extends the orthonormal set basis to dim vectors by
// orthogonalizing standard basis vectors e_0, e_1, … against it, in order.
// The input vectors are kept unchanged at the front of the result.
func CompleteBasis(basis [][]complex128, dim int) [][]complex128 {
	out := make([][]complex128, len(basis), dim)
	copy(out, basis)
	var e []complex128
	for k := 0; k < dim && len(out) < dim; k++ {
		e = make([]complex128, dim)
		e[k] = 1
		u, nrm := Orthogonalize(out, e)
		if nrm < 1e-8 {
			continue
		}
		out = append(out, u)
	}

	return out
}

// RandomUnitary draws a dim×dim unitary from the Haar measure: Gram-Schmidt
// of a complex Gaussian matrix with the phase of each R diagonal absorbed,
// which Orthogonalize does implicitly by keeping the residual direction.
// Errors: ErrBadShape if dim <= 0.
func RandomUnitary(dim int, rng *rand.Rand) (*Dense, error) {
	if dim <= 0 {
		return nil, denseErrorf(ctxNew, dim, dim, ErrBadShape)
	}
	cols := make([][]complex128, 0, dim)
	for len(cols) < dim {
		g := make([]complex128, dim)
		for i := range g {
			g[i] = complex(rng.NormFloat64(), rng.NormFloat64())
		}
		u, nrm := Orthogonalize(cols, g)
		if nrm < 1e-8 {
			continue // measure-zero event; redraw
		}
		cols = append(cols, u)
	}

	return FromColumns(cols)
}
