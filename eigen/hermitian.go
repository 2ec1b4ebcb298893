// SPDX-License-Identifier: MIT

package eigen

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/unisynth/config"
	"github.com/katalvlaran/unisynth/matrix"
)

// ErrNumericalInstability reports a decomposition whose checked
// postcondition failed, or a solver that did not converge.
var ErrNumericalInstability = errors.New("eigen: numerical instability")

const (
	opHermitian = "eigen.Hermitian"
	stageEigen  = "eigen"

	// clusterRel groups embedded eigenvalues that differ by at most
	// clusterRel·max(1, ‖H‖max). The two copies of each eigenvalue agree to
	// rounding, so this only has to beat solver noise.
	clusterRel = 1e-9

	// pivotFloor is the smallest Gram-Schmidt residual accepted as a new
	// direction when recovering complex vectors from a cluster.
	pivotFloor = 1e-6
)

// Hermitian returns the eigenvalues of h in ascending order and a unitary
// matrix whose columns are the matching eigenvectors.
//
// Implementation:
//   - Stage 1: validate h square and Hermitian within cfg.Tolerance (scaled
//     by max(1, ‖h‖max)).
//   - Stage 2: factorize the symmetric real embedding with mat.EigenSym.
//   - Stage 3: cluster consecutive eigenvalues; per cluster map each real
//     eigenvector [x; y] to x + iy and keep (size+1)/2 of them by pivoted
//     modified Gram-Schmidt against every vector accepted so far.
//   - Stage 4: eigenvalue = Re(v†·h·v); check ‖h − V·Λ·V†‖₂ and V's
//     unitarity against the same scaled tolerance.
//
// h need not have power-of-two size; cosine-sine and unitary splitting call
// it on arbitrary sub-blocks.
//
// Errors:
//   - matrix.ErrNilMatrix, matrix.ErrDimensionMismatch, matrix.ErrNotHermitian.
//   - ErrNumericalInstability (also matching matrix.ErrNoConvergence when the
//     solver failed), inside a *matrix.ToleranceError for postcondition misses.
//
// Complexity:
//   - Time O(N³) for the 2N×2N solve plus O(N³) for Gram-Schmidt.
func Hermitian(h *matrix.Dense, cfg config.Config) ([]float64, *matrix.Dense, error) {
	if err := matrix.ValidateSquareNonNil(h); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", opHermitian, err)
	}
	scale := math.Max(1, matrix.MaxAbs(h))
	tol := cfg.Tolerance * scale
	if err := matrix.ValidateHermitian(h, tol); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", opHermitian, err)
	}
	n := h.Rows()
	if matrix.IsDiagonal(h, cfg.SparsifyThreshold) {
		return diagonalEigen(h, tol)
	}

	emb := matrix.RealEmbedding(h)
	sym := mat.NewSymDense(2*n, nil)
	var i, j int
	for i = 0; i < 2*n; i++ {
		for j = i; j < 2*n; j++ {
			sym.SetSym(i, j, (emb.At(i, j)+emb.At(j, i))/2)
		}
	}
	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return nil, nil, fmt.Errorf("%s: %w: %w", opHermitian, ErrNumericalInstability, matrix.ErrNoConvergence)
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	gap := clusterRel * scale
	accepted := make([][]complex128, 0, n)
	for start := 0; start < 2*n && len(accepted) < n; {
		end := start + 1
		for end < 2*n && vals[end]-vals[end-1] <= gap {
			end++
		}
		cands := make([][]complex128, 0, end-start)
		for j = start; j < end; j++ {
			z := make([]complex128, n)
			for i = 0; i < n; i++ {
				z[i] = complex(vecs.At(i, j), vecs.At(n+i, j))
			}
			cands = append(cands, z)
		}
		want := min((end-start+1)/2, n-len(accepted))
		accepted = pivotedGramSchmidt(accepted, cands, want)
		start = end
	}
	if len(accepted) != n {
		return nil, nil, fmt.Errorf("%s: recovered %d of %d eigenvectors: %w",
			opHermitian, len(accepted), n, ErrNumericalInstability)
	}

	values := make([]float64, n)
	for j, v := range accepted {
		values[j] = rayleigh(h, v)
	}
	v, err := matrix.FromColumns(accepted)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", opHermitian, err)
	}
	if err = checkHermitianResidual(h, v, values, tol, opHermitian); err != nil {
		return nil, nil, err
	}

	return values, v, nil
}

// diagonalEigen handles an already diagonal h: eigenvalues are the real
// diagonal, ascending (stable), and V is the matching permutation.
func diagonalEigen(h *matrix.Dense, tol float64) ([]float64, *matrix.Dense, error) {
	diag := h.Diag()
	raw := make([]float64, len(diag))
	for i, z := range diag {
		raw[i] = real(z)
	}
	order := make([]int, len(raw))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return raw[order[a]] < raw[order[b]] })
	basis := standardBasis(len(raw))
	v, err := matrix.FromColumns(permuteColumns(basis, order))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", opHermitian, err)
	}
	values := permuteFloats(raw, order)
	if err = checkHermitianResidual(h, v, values, tol, opHermitian); err != nil {
		return nil, nil, err
	}

	return values, v, nil
}

// pivotedGramSchmidt appends up to want vectors from cands to basis,
// choosing at each step the candidate with the largest residual against the
// current basis. Stops early when every residual is below pivotFloor.
func pivotedGramSchmidt(basis, cands [][]complex128, want int) [][]complex128 {
	used := make([]bool, len(cands))
	for taken := 0; taken < want; taken++ {
		best, bestNorm := -1, pivotFloor
		var bestVec []complex128
		for k, c := range cands {
			if used[k] {
				continue
			}
			u, nrm := matrix.Orthogonalize(basis, c)
			if nrm > bestNorm {
				best, bestNorm, bestVec = k, nrm, u
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		basis = append(basis, bestVec)
	}

	return basis
}

// rayleigh returns Re(v†·h·v) for a unit vector v.
func rayleigh(h *matrix.Dense, v []complex128) float64 {
	hv, _ := matrix.MulVec(h, v) // shapes agree by construction

	return real(matrix.Inner(v, hv))
}

// checkHermitianResidual verifies ‖h − V·diag(λ)·V†‖₂ ≤ tol and V unitary.
func checkHermitianResidual(h, v *matrix.Dense, values []float64, tol float64, stage string) error {
	lam := make([]complex128, len(values))
	for i, x := range values {
		lam[i] = complex(x, 0)
	}
	rebuilt, err := sandwich(v, lam)
	if err != nil {
		return fmt.Errorf("%s: %w", stage, err)
	}
	res, err := matrix.OperatorDistance(h, rebuilt)
	if err != nil {
		return fmt.Errorf("%s: %w", stage, err)
	}
	if res > tol {
		return matrix.NewToleranceError(stageEigen, matrix.MetricOperatorNorm, res, tol, ErrNumericalInstability)
	}
	if dev := matrix.UnitarityError(v); dev > tol {
		return matrix.NewToleranceError(stageEigen, matrix.MetricUnitarity, dev, tol, ErrNumericalInstability)
	}

	return nil
}

// sandwich returns V·diag(d)·V†.
func sandwich(v *matrix.Dense, d []complex128) (*matrix.Dense, error) {
	dm, err := matrix.Diagonal(d)
	if err != nil {
		return nil, err
	}
	vAdj, err := matrix.Adjoint(v)
	if err != nil {
		return nil, err
	}

	return matrix.MulAll(v, dm, vAdj)
}

// project returns Q†·M·Q.
func project(q, m *matrix.Dense) (*matrix.Dense, error) {
	qAdj, err := matrix.Adjoint(q)
	if err != nil {
		return nil, err
	}

	return matrix.MulAll(qAdj, m, q)
}
