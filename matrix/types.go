// SPDX-License-Identifier: MIT

// Package matrix: domain types shared by the algebra kernels.
// This file intentionally contains ONLY type declarations; constructors and
// accessors live in impl_dense.go, tagged types in unitary.go, errors in
// errors.go.
package matrix

// Dense is an immutable row-major matrix of complex128 values.
//   - r,c hold dimensions (rows, cols), both > 0.
//   - data is a flat buffer of length r*c (offset = i*c + j).
//
// There is no exported setter: constructors copy caller data and every
// kernel returns a fresh *Dense, so a *Dense can be shared freely between
// goroutines.
type Dense struct {
	r, c int          // row and column counts
	data []complex128 // contiguous row-major storage (len == r*c)
}

// Unitary is a square Dense tagged as satisfying ‖M·M† − I‖ ≤ eps.
// The tag is established once by AsUnitary (or by an operation that provably
// preserves unitarity, such as Adjoint) and never re-derived implicitly.
type Unitary struct {
	m   *Dense
	eps float64 // tolerance the tag was established with
}

// DiagonalUnitary is a diagonal unitary stored compactly as 2ⁿ phases θ,
// with entry i equal to e^{iθ_i}. Index i is the integer encoding of the
// computational basis state (qubit q ↔ bit q).
type DiagonalUnitary struct {
	phases []float64
	qubits int
}
