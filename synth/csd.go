// SPDX-License-Identifier: MIT

package synth

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/katalvlaran/unisynth/config"
	"github.com/katalvlaran/unisynth/eigen"
	"github.com/katalvlaran/unisynth/matrix"
)

// basisFloor is the residual below which a cosine-sine column is treated as
// undetermined and replaced by a completion vector.
const basisFloor = 1e-10

// CSD is the cosine-sine factorization
//
//	U = (L1 ⊕ L2) · [[C, −S], [S, C]] · (R1 ⊕ R2)
//
// with C = diag(cos θⱼ), S = diag(sin θⱼ) and θⱼ ∈ [0, π/2].
type CSD struct {
	L1, L2, R1, R2 *matrix.Dense
	Theta          []float64
}

// CosineSine factors a 2h×2h unitary u split by its most significant qubit.
//
// Implementation:
//   - Stage 1: U₀₀†U₀₀ = W·diag(cⱼ²)·W† by eigen.Hermitian; R1 = W†.
//   - Stage 2: xⱼ = U₀₀wⱼ and yⱼ = U₁₀wⱼ give cⱼ = |xⱼ|, sⱼ = |yⱼ| and the
//     columns of L1 and L2 after normalization. Columns are accepted in
//     descending cⱼ (resp. sⱼ) against those already taken; a vanishing
//     residual is filled from the standard basis.
//   - Stage 3: row j of R2 is −(L1†U₀₁)ⱼ/sⱼ when sⱼ ≥ cⱼ, else (L2†U₁₁)ⱼ/cⱼ.
//
// Errors:
//   - matrix.ErrDimensionMismatch for odd or non-square u.
//   - eigen errors from the Hermitian stage.
func CosineSine(u *matrix.Dense, cfg config.Config) (CSD, error) {
	u00, u01, u10, u11, err := matrix.Quadrants(u)
	if err != nil {
		return CSD{}, fmt.Errorf("synth: CosineSine: %w", err)
	}
	h := u00.Rows()

	g, err := gram(u00)
	if err != nil {
		return CSD{}, fmt.Errorf("synth: CosineSine: %w", err)
	}
	_, w, err := eigen.Hermitian(g, cfg)
	if err != nil {
		return CSD{}, fmt.Errorf("synth: CosineSine: %w", err)
	}
	ws := w.Columns()

	xs, ys := make([][]complex128, h), make([][]complex128, h)
	cs, ss := make([]float64, h), make([]float64, h)
	theta := make([]float64, h)
	for j, wj := range ws {
		xs[j], _ = matrix.MulVec(u00, wj)
		ys[j], _ = matrix.MulVec(u10, wj)
		c, sn := matrix.Norm(xs[j]), matrix.Norm(ys[j])
		if r := math.Hypot(c, sn); r > 0 {
			c, sn = c/r, sn/r
		}
		cs[j], ss[j], theta[j] = c, sn, math.Atan2(sn, c)
	}

	l1, err := columnsByWeight(xs, cs)
	if err != nil {
		return CSD{}, fmt.Errorf("synth: CosineSine: L1: %w", err)
	}
	l2, err := columnsByWeight(ys, ss)
	if err != nil {
		return CSD{}, fmt.Errorf("synth: CosineSine: L2: %w", err)
	}
	r1, err := matrix.Adjoint(w)
	if err != nil {
		return CSD{}, fmt.Errorf("synth: CosineSine: %w", err)
	}

	x, err := adjointTimes(l1, u01)
	if err != nil {
		return CSD{}, fmt.Errorf("synth: CosineSine: %w", err)
	}
	y, err := adjointTimes(l2, u11)
	if err != nil {
		return CSD{}, fmt.Errorf("synth: CosineSine: %w", err)
	}
	rows := make([][]complex128, h)
	for j := range rows {
		if ss[j] >= cs[j] {
			rows[j], _ = x.Row(j)
			scaleVec(rows[j], complex(-1/ss[j], 0))
		} else {
			rows[j], _ = y.Row(j)
			scaleVec(rows[j], complex(1/cs[j], 0))
		}
	}
	r2, err := matrix.FromRows(rows)
	if err != nil {
		return CSD{}, fmt.Errorf("synth: CosineSine: %w", err)
	}

	return CSD{L1: l1, L2: l2, R1: r1, R2: r2, Theta: theta}, nil
}

// adjointTimes returns A†·B.
func adjointTimes(a, b *matrix.Dense) (*matrix.Dense, error) {
	adj, err := matrix.Adjoint(a)
	if err != nil {
		return nil, err
	}

	return matrix.Mul(adj, b)
}

func scaleVec(v []complex128, alpha complex128) {
	for i := range v {
		v[i] *= alpha
	}
}

// gram returns the Hermitian part of A†A.
func gram(a *matrix.Dense) (*matrix.Dense, error) {
	adj, err := matrix.Adjoint(a)
	if err != nil {
		return nil, err
	}
	g, err := matrix.Mul(adj, a)
	if err != nil {
		return nil, err
	}
	gAdj, err := matrix.Adjoint(g)
	if err != nil {
		return nil, err
	}
	sum, err := matrix.Add(g, gAdj)
	if err != nil {
		return nil, err
	}

	return matrix.Scale(sum, 0.5)
}

// columnsByWeight builds a unitary whose column j is the direction of vs[j].
// Columns are taken in descending weight; one whose residual against those
// already taken falls below basisFloor is completed from the standard basis
// afterwards, in ascending index order.
func columnsByWeight(vs [][]complex128, weight []float64) (*matrix.Dense, error) {
	order := make([]int, len(vs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return weight[order[a]] > weight[order[b]] })

	cols := make([][]complex128, len(vs))
	taken := make([][]complex128, 0, len(vs))
	var pending []int
	for _, j := range order {
		if weight[j] <= basisFloor {
			pending = append(pending, j)
			continue
		}
		u, nrm := matrix.Orthogonalize(taken, vs[j])
		if nrm <= basisFloor*matrix.Norm(vs[j]) {
			pending = append(pending, j)
			continue
		}
		cols[j] = u
		taken = append(taken, u)
	}
	if len(pending) > 0 {
		sort.Ints(pending)
		full := matrix.CompleteBasis(taken, len(vs))
		if len(full) != len(vs) {
			return nil, fmt.Errorf("completed %d of %d columns: %w", len(full), len(vs), eigen.ErrNumericalInstability)
		}
		for k, j := range pending {
			cols[j] = full[len(taken)+k]
		}
	}

	return matrix.FromColumns(cols)
}

// Demux splits the block-diagonal a1 ⊕ a2 as (I⊗V)·(Δ⊕Δ†)·(I⊗W) with
// a1·a2† = V·Δ²·V†. It returns V, W and the phases ψ of Δ² in V's column
// order.
//
// Errors:
//   - eigen errors from decomposing a1·a2†.
func Demux(a1, a2 *matrix.Dense, cfg config.Config) (v, w *matrix.Dense, psi []float64, err error) {
	a2Adj, err := matrix.Adjoint(a2)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("synth: Demux: %w", err)
	}
	prod, err := matrix.Mul(a1, a2Adj)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("synth: Demux: %w", err)
	}
	dec, err := eigen.DecomposeUnitary(prod, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("synth: Demux: %w", err)
	}
	v = dec.V.Dense()
	psi = dec.D.Phases()

	half := make([]complex128, len(psi))
	for j, p := range psi {
		half[j] = cmplx.Exp(complex(0, p/2))
	}
	delta, err := matrix.Diagonal(half)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("synth: Demux: %w", err)
	}
	vAdj, err := matrix.Adjoint(v)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("synth: Demux: %w", err)
	}
	if w, err = matrix.MulAll(delta, vAdj, a2); err != nil {
		return nil, nil, nil, fmt.Errorf("synth: Demux: %w", err)
	}

	return v, w, psi, nil
}
