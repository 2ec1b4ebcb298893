// SPDX-License-Identifier: MIT

package eigen

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/katalvlaran/unisynth/config"
	"github.com/katalvlaran/unisynth/matrix"
)

// Source records which path produced a Decomposition.
type Source uint8

const (
	// SourceUnitary: the input was unitary and D holds its eigenvalues.
	SourceUnitary Source = iota + 1
	// SourceHermitian: the input was a Hermitian generator H and
	// D = exp(i·t·Λ) for t = Config.EvolutionTime.
	SourceHermitian
)

// String implements fmt.Stringer.
func (s Source) String() string {
	switch s {
	case SourceUnitary:
		return "unitary"
	case SourceHermitian:
		return "hermitian"
	default:
		return fmt.Sprintf("Source(%d)", uint8(s))
	}
}

// Decomposition is U ≈ V·D·V† with eigenpairs sorted by phase.
type Decomposition struct {
	D matrix.DiagonalUnitary
	V matrix.Unitary
	// Eigenvalues holds the real spectrum of a Hermitian input, in the same
	// order as D. Nil for unitary inputs.
	Eigenvalues []float64
	Source      Source
	// Residual is the checked reconstruction distance in operator norm:
	// ‖U − V·D·V†‖₂ for unitary inputs, ‖H − V·Λ·V†‖₂ for Hermitian ones.
	Residual float64
}

// Unitary returns the operator the decomposition describes, V·D·V†.
func (d Decomposition) Unitary() (*matrix.Dense, error) {
	return sandwich(d.V.Dense(), d.D.Entries())
}

const (
	opHermitianDecomp = "eigen.DecomposeHermitian"
	opDecompose       = "eigen.Decompose"
)

// DecomposeHermitian diagonalizes a Hermitian generator h and returns the
// decomposition of U = exp(i·t·h), t = cfg.EvolutionTime. The postcondition
// is checked on h itself, scaled by max(1, ‖h‖max).
//
// Errors:
//   - matrix.ErrDimensionMismatch, matrix.ErrNotHermitian,
//     ErrNumericalInstability.
func DecomposeHermitian(h *matrix.Dense, cfg config.Config) (Decomposition, error) {
	if _, err := matrix.ValidateRegister(h); err != nil {
		return Decomposition{}, fmt.Errorf("%s: %w", opHermitianDecomp, err)
	}
	vals, v, err := Hermitian(h, cfg)
	if err != nil {
		return Decomposition{}, fmt.Errorf("%s: %w", opHermitianDecomp, err)
	}
	cols := v.Columns()
	phases := make([]float64, len(vals))
	for j, lam := range vals {
		phases[j] = principalPhase(cmplx.Exp(complex(0, cfg.EvolutionTime*lam)))
	}
	order := phaseOrder(phases)
	cols, phases, vals = permuteColumns(cols, order), permuteFloats(phases, order), permuteFloats(vals, order)

	vu, du, err := assemble(cols, phases, cfg)
	if err != nil {
		return Decomposition{}, fmt.Errorf("%s: %w", opHermitianDecomp, err)
	}
	lam := make([]complex128, len(vals))
	for i, x := range vals {
		lam[i] = complex(x, 0)
	}
	rebuilt, err := sandwich(vu.Dense(), lam)
	if err != nil {
		return Decomposition{}, fmt.Errorf("%s: %w", opHermitianDecomp, err)
	}
	res, err := matrix.OperatorDistance(h, rebuilt)
	if err != nil {
		return Decomposition{}, fmt.Errorf("%s: %w", opHermitianDecomp, err)
	}
	if tol := cfg.Tolerance * math.Max(1, matrix.MaxAbs(h)); res > tol {
		return Decomposition{}, matrix.NewToleranceError(stageEigen, matrix.MetricOperatorNorm, res, tol, ErrNumericalInstability)
	}

	return Decomposition{D: du, V: vu, Eigenvalues: vals, Source: SourceHermitian, Residual: res}, nil
}

// Decompose dispatches on the input property: unitary inputs (checked
// first) take DecomposeUnitary, Hermitian inputs DecomposeHermitian, and
// anything else fails with matrix.ErrNotUnitary. The qubit ceiling is
// enforced before any factorization.
func Decompose(m *matrix.Dense, cfg config.Config) (Decomposition, error) {
	n, err := matrix.ValidateRegister(m)
	if err != nil {
		return Decomposition{}, fmt.Errorf("%s: %w", opDecompose, err)
	}
	if err = cfg.CheckQubits(n); err != nil {
		return Decomposition{}, fmt.Errorf("%s: %w", opDecompose, err)
	}
	switch {
	case matrix.IsUnitary(m, cfg.Tolerance):
		return DecomposeUnitary(m, cfg)
	case matrix.IsHermitian(m, cfg.Tolerance*math.Max(1, matrix.MaxAbs(m))):
		return DecomposeHermitian(m, cfg)
	default:
		dev := matrix.UnitarityError(m)
		return Decomposition{}, fmt.Errorf("%s: neither unitary nor hermitian: %w", opDecompose,
			matrix.NewToleranceError(opDecompose, matrix.MetricUnitarity, dev, cfg.Tolerance, matrix.ErrNotUnitary))
	}
}

// finish assembles V and D for a unitary target and checks ‖U − V·D·V†‖₂.
func finish(u *matrix.Dense, cols [][]complex128, phases, eigenvalues []float64,
	src Source, cfg config.Config, op string) (Decomposition, error) {
	vu, du, err := assemble(cols, phases, cfg)
	if err != nil {
		return Decomposition{}, fmt.Errorf("%s: %w", op, err)
	}
	rebuilt, err := sandwich(vu.Dense(), du.Entries())
	if err != nil {
		return Decomposition{}, fmt.Errorf("%s: %w", op, err)
	}
	res, err := matrix.OperatorDistance(u, rebuilt)
	if err != nil {
		return Decomposition{}, fmt.Errorf("%s: %w", op, err)
	}
	if res > cfg.Tolerance {
		return Decomposition{}, matrix.NewToleranceError(stageEigen, matrix.MetricOperatorNorm, res, cfg.Tolerance, ErrNumericalInstability)
	}

	return Decomposition{D: du, V: vu, Eigenvalues: eigenvalues, Source: src, Residual: res}, nil
}

// assemble builds the tagged V and D, reporting a non-unitary V as
// ErrNumericalInstability rather than as an input error.
func assemble(cols [][]complex128, phases []float64, cfg config.Config) (matrix.Unitary, matrix.DiagonalUnitary, error) {
	if len(cols) == 0 || len(cols) != len(cols[0]) {
		return matrix.Unitary{}, matrix.DiagonalUnitary{}, fmt.Errorf("eigenbasis has %d vectors: %w", len(cols), ErrNumericalInstability)
	}
	v, err := matrix.FromColumns(cols)
	if err != nil {
		return matrix.Unitary{}, matrix.DiagonalUnitary{}, err
	}
	if dev := matrix.UnitarityError(v); dev > cfg.Tolerance {
		return matrix.Unitary{}, matrix.DiagonalUnitary{},
			matrix.NewToleranceError(stageEigen, matrix.MetricUnitarity, dev, cfg.Tolerance, ErrNumericalInstability)
	}
	vu, err := matrix.AsUnitary(v, cfg.Tolerance)
	if err != nil {
		return matrix.Unitary{}, matrix.DiagonalUnitary{}, err
	}
	du, err := matrix.FromPhases(phases)
	if err != nil {
		return matrix.Unitary{}, matrix.DiagonalUnitary{}, err
	}

	return vu, du, nil
}

// principalPhase returns arg z in (−π, π].
func principalPhase(z complex128) float64 {
	p := cmplx.Phase(z)
	if p <= -math.Pi {
		p = math.Pi
	}

	return p
}

// phaseOrder returns the stable ascending order of phases.
func phaseOrder(phases []float64) []int {
	order := make([]int, len(phases))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return phases[order[a]] < phases[order[b]] })

	return order
}

func permuteColumns(cols [][]complex128, order []int) [][]complex128 {
	out := make([][]complex128, len(order))
	for i, k := range order {
		out[i] = cols[k]
	}

	return out
}

func permuteFloats(xs []float64, order []int) []float64 {
	out := make([]float64, len(order))
	for i, k := range order {
		out[i] = xs[k]
	}

	return out
}
