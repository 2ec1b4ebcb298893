// SPDX-License-Identifier: MIT

package eigen

import (
	"fmt"
	"math/cmplx"

	"github.com/katalvlaran/unisynth/config"
	"github.com/katalvlaran/unisynth/matrix"
)

const opUnitary = "eigen.DecomposeUnitary"

// DecomposeUnitary factors a unitary u as V·D·V†.
//
// Implementation:
//   - Stage 1: H₁ = (U+U†)/2 and H₂ = (U−U†)/2i, both Hermitian and commuting.
//   - Stage 2: diagonalize H₁; group consecutive eigenvalues within
//     cfg.DegeneracyTolerance.
//   - Stage 3: inside each group of size > 1, rotate the basis by the
//     eigenvectors of Q†H₂Q, then inside each remaining tie by those of
//     Q†H₁Q.
//   - Stage 4: modified Gram-Schmidt over all columns; dᵢ = vᵢ†·U·vᵢ
//     normalized to unit modulus; stable sort by phase.
//   - Stage 5: check ‖U − V·D·V†‖₂ ≤ ε and ‖V·V† − I‖ ≤ ε.
//
// Errors:
//   - matrix.ErrDimensionMismatch, matrix.ErrNotUnitary (input check at
//     cfg.Tolerance), ErrNumericalInstability.
func DecomposeUnitary(u *matrix.Dense, cfg config.Config) (Decomposition, error) {
	if _, err := matrix.ValidateRegister(u); err != nil {
		return Decomposition{}, fmt.Errorf("%s: %w", opUnitary, err)
	}
	if err := matrix.ValidateUnitary(u, cfg.Tolerance); err != nil {
		return Decomposition{}, fmt.Errorf("%s: %w", opUnitary, err)
	}
	cols, err := unitaryEigenvectors(u, cfg)
	if err != nil {
		return Decomposition{}, fmt.Errorf("%s: %w", opUnitary, err)
	}

	d := make([]complex128, len(cols))
	var uv []complex128
	for j, v := range cols {
		uv, _ = matrix.MulVec(u, v)
		z := matrix.Inner(v, uv)
		if a := cmplx.Abs(z); a > 0 {
			z /= complex(a, 0)
		} else {
			z = 1
		}
		d[j] = z
	}
	phases := make([]float64, len(d))
	for j, z := range d {
		phases[j] = principalPhase(z)
	}
	order := phaseOrder(phases)
	cols, phases = permuteColumns(cols, order), permuteFloats(phases, order)

	return finish(u, cols, phases, nil, SourceUnitary, cfg, opUnitary)
}

// unitaryEigenvectors returns an orthonormal eigenbasis of u (unsorted).
func unitaryEigenvectors(u *matrix.Dense, cfg config.Config) ([][]complex128, error) {
	if matrix.IsDiagonal(u, cfg.SparsifyThreshold) {
		return standardBasis(u.Rows()), nil
	}
	h1, h2, err := hermitianParts(u)
	if err != nil {
		return nil, err
	}
	vals, q, err := Hermitian(h1, cfg)
	if err != nil {
		return nil, err
	}
	basis := q.Columns()

	out := make([][]complex128, 0, len(basis))
	for _, g := range groups(vals, cfg.DegeneracyTolerance) {
		sub := basis[g[0]:g[1]]
		if len(sub) > 1 {
			if sub, err = refine(sub, []*matrix.Dense{h2, h1}, cfg); err != nil {
				return nil, err
			}
		}
		out = append(out, sub...)
	}

	return matrix.OrthonormalizeColumns(out, pivotFloor), nil
}

// refine rotates the orthonormal set q by the eigenvectors of q†·ops[0]·q and
// recurses into tied eigenvalues with the remaining operators.
func refine(q [][]complex128, ops []*matrix.Dense, cfg config.Config) ([][]complex128, error) {
	if len(ops) == 0 || len(q) < 2 {
		return q, nil
	}
	qm, err := matrix.FromColumns(q)
	if err != nil {
		return nil, err
	}
	small, err := project(qm, ops[0])
	if err != nil {
		return nil, err
	}
	small, err = hermitize(small)
	if err != nil {
		return nil, err
	}
	vals, w, err := Hermitian(small, cfg)
	if err != nil {
		return nil, err
	}
	rotated, err := matrix.Mul(qm, w)
	if err != nil {
		return nil, err
	}
	cols := rotated.Columns()

	out := make([][]complex128, 0, len(cols))
	for _, g := range groups(vals, cfg.DegeneracyTolerance) {
		sub := cols[g[0]:g[1]]
		if len(sub) > 1 {
			if sub, err = refine(sub, ops[1:], cfg); err != nil {
				return nil, err
			}
		}
		out = append(out, sub...)
	}

	return out, nil
}

// hermitianParts returns (U+U†)/2 and (U−U†)/2i.
func hermitianParts(u *matrix.Dense) (*matrix.Dense, *matrix.Dense, error) {
	adj, err := matrix.Adjoint(u)
	if err != nil {
		return nil, nil, err
	}
	sum, err := matrix.Add(u, adj)
	if err != nil {
		return nil, nil, err
	}
	diff, err := matrix.Sub(u, adj)
	if err != nil {
		return nil, nil, err
	}
	h1, err := matrix.Scale(sum, 0.5)
	if err != nil {
		return nil, nil, err
	}
	h2, err := matrix.Scale(diff, complex(0, -0.5)) // 1/(2i) = −i/2
	if err != nil {
		return nil, nil, err
	}
	if h1, err = hermitize(h1); err != nil {
		return nil, nil, err
	}
	if h2, err = hermitize(h2); err != nil {
		return nil, nil, err
	}

	return h1, h2, nil
}

// hermitize returns (M + M†)/2, removing rounding asymmetry.
func hermitize(m *matrix.Dense) (*matrix.Dense, error) {
	adj, err := matrix.Adjoint(m)
	if err != nil {
		return nil, err
	}
	sum, err := matrix.Add(m, adj)
	if err != nil {
		return nil, err
	}

	return matrix.Scale(sum, 0.5)
}

// groups splits ascending values into half-open index ranges whose
// consecutive gaps are ≤ tol.
func groups(vals []float64, tol float64) [][2]int {
	var out [][2]int
	start := 0
	for i := 1; i <= len(vals); i++ {
		if i == len(vals) || vals[i]-vals[i-1] > tol {
			out = append(out, [2]int{start, i})
			start = i
		}
	}

	return out
}

// standardBasis returns e_0..e_{n−1}.
func standardBasis(n int) [][]complex128 {
	out := make([][]complex128, n)
	for i := range out {
		out[i] = make([]complex128, n)
		out[i][i] = 1
	}

	return out
}
