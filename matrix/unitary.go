// SPDX-License-Identifier: MIT

// Package matrix - tagged unitary types.
//
// Unitary and DiagonalUnitary carry a property that was checked once at
// construction. Downstream stages accept the tagged type instead of a bare
// *Dense, so the check is never silently skipped nor repeated implicitly.

package matrix

import (
	"fmt"
	"math"
	"math/cmplx"
)

const (
	opAsUnitary  = "AsUnitary"
	opAsDiagonal = "AsDiagonal"
	opFromPhases = "FromPhases"
)

// AsUnitary validates m as a 2ⁿ×2ⁿ unitary within eps and tags it.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (non-square or not a power of two),
//     ErrNaNInf (bad eps), *ToleranceError wrapping ErrNotUnitary.
//
// Complexity:
//   - Time O(n³) for the M·M† check.
func AsUnitary(m *Dense, eps float64) (Unitary, error) {
	if _, err := ValidateRegister(m); err != nil {
		return Unitary{}, matrixErrorf(opAsUnitary, err)
	}
	if err := ValidateUnitary(m, eps); err != nil {
		return Unitary{}, matrixErrorf(opAsUnitary, err)
	}

	return Unitary{m: m, eps: eps}, nil
}

// Dense returns the underlying immutable matrix.
func (u Unitary) Dense() *Dense { return u.m }

// Dim returns the matrix dimension 2ⁿ.
func (u Unitary) Dim() int {
	if u.m == nil {
		return 0
	}

	return u.m.r
}

// Qubits returns n.
func (u Unitary) Qubits() int {
	n, _ := QubitsForDim(u.Dim()) // validated at construction

	return n
}

// Tolerance returns the eps the tag was established with.
func (u Unitary) Tolerance() float64 { return u.eps }

// IsZero reports whether u is the zero value (never validated).
func (u Unitary) IsZero() bool { return u.m == nil }

// Adjoint returns U†, which is unitary whenever U is.
func (u Unitary) Adjoint() Unitary {
	if u.m == nil {
		return u
	}
	adj, _ := Adjoint(u.m) // non-nil by construction

	return Unitary{m: adj, eps: u.eps}
}

// FromPhases builds a DiagonalUnitary with entries e^{iθ_i}.
// Errors: ErrDimensionMismatch unless len(phases) is a power of two ≥ 2,
// ErrNaNInf for non-finite phases.
func FromPhases(phases []float64) (DiagonalUnitary, error) {
	n, err := QubitsForDim(len(phases))
	if err != nil {
		return DiagonalUnitary{}, matrixErrorf(opFromPhases, err)
	}
	out := make([]float64, len(phases))
	for i, p := range phases {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return DiagonalUnitary{}, matrixErrorf(opFromPhases, fmt.Errorf("phase %d: %w", i, ErrNaNInf))
		}
		out[i] = p
	}

	return DiagonalUnitary{phases: out, qubits: n}, nil
}

// AsDiagonal validates m as a diagonal unitary within eps and extracts its
// phase vector.
//
// Implementation:
//   - Stage 1: ValidateRegister → ValidateDiagonal (off-diagonal mass ≤ eps).
//   - Stage 2: require ||d_i| − 1| ≤ eps; phase θ_i = arg d_i.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, *ToleranceError wrapping
//     ErrNotDiagonal or ErrNotUnitary.
func AsDiagonal(m *Dense, eps float64) (DiagonalUnitary, error) {
	n, err := ValidateRegister(m)
	if err != nil {
		return DiagonalUnitary{}, matrixErrorf(opAsDiagonal, err)
	}
	if err = ValidateDiagonal(m, eps); err != nil {
		return DiagonalUnitary{}, matrixErrorf(opAsDiagonal, err)
	}
	d := m.Diag()
	phases := make([]float64, len(d))
	var worst float64
	for i, v := range d {
		worst = math.Max(worst, math.Abs(cmplx.Abs(v)-1))
		phases[i] = cmplx.Phase(v)
	}
	if worst > eps {
		return DiagonalUnitary{}, matrixErrorf(opAsDiagonal,
			NewToleranceError(opAsDiagonal, MetricUnitarity, worst, eps, ErrNotUnitary))
	}

	return DiagonalUnitary{phases: phases, qubits: n}, nil
}

// Phases returns a copy of the phase vector θ.
func (d DiagonalUnitary) Phases() []float64 {
	out := make([]float64, len(d.phases))
	copy(out, d.phases)

	return out
}

// Qubits returns n.
func (d DiagonalUnitary) Qubits() int { return d.qubits }

// Dim returns 2ⁿ.
func (d DiagonalUnitary) Dim() int { return len(d.phases) }

// Entries returns the diagonal values e^{iθ_i}.
func (d DiagonalUnitary) Entries() []complex128 {
	out := make([]complex128, len(d.phases))
	for i, p := range d.phases {
		out[i] = cmplx.Exp(complex(0, p))
	}

	return out
}

// Dense materializes the 2ⁿ×2ⁿ diagonal matrix.
func (d DiagonalUnitary) Dense() *Dense {
	dense, _ := Diagonal(d.Entries()) // unit-modulus entries are finite

	return dense
}

// Conj returns the inverse diagonal unitary (phases negated).
func (d DiagonalUnitary) Conj() DiagonalUnitary {
	out := make([]float64, len(d.phases))
	for i, p := range d.phases {
		out[i] = -p
	}

	return DiagonalUnitary{phases: out, qubits: d.qubits}
}

// IsIdentity reports whether every entry is within eps of 1.
func (d DiagonalUnitary) IsIdentity(eps float64) bool {
	for _, p := range d.phases {
		if cmplx.Abs(cmplx.Exp(complex(0, p))-1) > eps {
			return false
		}
	}

	return true
}
