// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   - Provide small, deterministic fixtures (Pauli matrices, Haar-random unitaries).
//   - Keep all data finite and well-formed to avoid numeric-policy interference.

package matrix_test

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unisynth/matrix"
)

// testEps is the default comparison tolerance for reconstructed products.
const testEps = 1e-9

// MustDense builds an r×c matrix from row-major data or fails the test.
func MustDense(t testing.TB, r, c int, data ...complex128) *matrix.Dense {
	t.Helper()
	if len(data) == 0 {
		data = nil
	}
	m, err := matrix.NewDense(r, c, data)
	require.NoError(t, err)

	return m
}

// MustAt reads (i,j) or fails the test.
func MustAt(t testing.TB, m *matrix.Dense, i, j int) complex128 {
	t.Helper()
	v, err := m.At(i, j)
	require.NoError(t, err)

	return v
}

// MustMul returns A·B or fails the test.
func MustMul(t testing.TB, a, b *matrix.Dense) *matrix.Dense {
	t.Helper()
	out, err := matrix.Mul(a, b)
	require.NoError(t, err)

	return out
}

// MustIdentity returns I(dim) or fails the test.
func MustIdentity(t testing.TB, dim int) *matrix.Dense {
	t.Helper()
	id, err := matrix.Identity(dim)
	require.NoError(t, err)

	return id
}

// MustRandomUnitary draws a seeded Haar-random unitary.
func MustRandomUnitary(t testing.TB, dim int, seed int64) *matrix.Dense {
	t.Helper()
	u, err := matrix.RandomUnitary(dim, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)

	return u
}

// RequireClose asserts max|A−B| ≤ eps.
func RequireClose(t testing.TB, want, got *matrix.Dense, eps float64) {
	t.Helper()
	d, err := matrix.MaxAbsDistance(want, got)
	require.NoError(t, err)
	require.LessOrEqualf(t, d, eps, "max-abs distance\nwant:\n%vgot:\n%v", want, got)
}

// Pauli matrices and a Hadamard, used across tests.
var (
	pauliX = [][]complex128{{0, 1}, {1, 0}}
	pauliY = [][]complex128{{0, -1i}, {1i, 0}}
	pauliZ = [][]complex128{{1, 0}, {0, -1}}
	hadam  = [][]complex128{
		{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)},
		{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)},
	}
)

// MustRows builds a matrix from rows or fails the test.
func MustRows(t testing.TB, rows [][]complex128) *matrix.Dense {
	t.Helper()
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)

	return m
}

// phaseGate returns diag(1, e^{iφ}).
func phaseGate(t testing.TB, phi float64) *matrix.Dense {
	t.Helper()
	d, err := matrix.Diagonal([]complex128{1, cmplx.Exp(complex(0, phi))})
	require.NoError(t, err)

	return d
}
