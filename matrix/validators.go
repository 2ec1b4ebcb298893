// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for common validation checks.
//  - Keep kernels/facades minimal by delegating shape/nil/structure checks here.
//  - Return sentinel errors wrapped with the validator tag so call sites can
//    wrap uniformly and tests can match with errors.Is.
//
// Determinism & Performance:
//  - All checks are pure and deterministic.
//  - Structural property checks (unitary, Hermitian, diagonal) run O(n²) or
//    O(n³) once and report the measured deviation.
//
// Note:
//  - Each composite validator follows a fixed sequence (NotNil → Shape → Property).

package matrix

import (
	"fmt"
	"math"
	"math/cmplx"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil ensures the matrix reference is non-nil.
// Returns ErrNilMatrix if m == nil.
func ValidateNotNil(m *Dense) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSameShape ensures a and b have equal dimensions.
// Assumes a and b are not nil (caller must ensure).
func ValidateSameShape(a, b *Dense) error {
	if a.r != b.r {
		return validatorErrorf("ValidateSameShape: Rows", ErrDimensionMismatch)
	}
	if a.c != b.c {
		return validatorErrorf("ValidateSameShape: Columns", ErrDimensionMismatch)
	}

	return nil
}

// ValidateSquare checks that m is square. Assumes m is not nil.
func ValidateSquare(m *Dense) error {
	if m.r != m.c {
		return validatorErrorf("ValidateSquare", ErrDimensionMismatch)
	}

	return nil
}

// ValidateBinarySameShape – Composite: NotNil(a) → NotNil(b) → SameShape.
func ValidateBinarySameShape(a, b *Dense) error {
	if err := ValidateNotNil(a); err != nil {
		return validatorErrorf("ValidateBinarySameShape", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return validatorErrorf("ValidateBinarySameShape", err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return validatorErrorf("ValidateBinarySameShape", err)
	}

	return nil
}

// ValidateSquareNonNil – Composite: NotNil → Square.
func ValidateSquareNonNil(m *Dense) error {
	if err := ValidateNotNil(m); err != nil {
		return validatorErrorf("ValidateSquareNonNil", err)
	}
	if err := ValidateSquare(m); err != nil {
		return validatorErrorf("ValidateSquareNonNil", err)
	}

	return nil
}

// ValidateMulCompatible – Composite: NotNil(a) → NotNil(b) → a.Cols == b.Rows.
func ValidateMulCompatible(a, b *Dense) error {
	if err := ValidateNotNil(a); err != nil {
		return validatorErrorf("ValidateMulCompatible", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return validatorErrorf("ValidateMulCompatible", err)
	}
	if a.c != b.r {
		return validatorErrorf("ValidateMulCompatible", ErrDimensionMismatch)
	}

	return nil
}

// ValidateRegister – Composite: NotNil → Square → power-of-two dimension.
// Returns the qubit count on success.
func ValidateRegister(m *Dense) (int, error) {
	if err := ValidateSquareNonNil(m); err != nil {
		return 0, validatorErrorf("ValidateRegister", err)
	}
	n, err := QubitsForDim(m.r)
	if err != nil {
		return 0, validatorErrorf("ValidateRegister", err)
	}

	return n, nil
}

// ValidateTolerance rejects NaN, ±Inf and negative tolerances.
func ValidateTolerance(eps float64) error {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
		return validatorErrorf("ValidateTolerance", ErrNaNInf)
	}

	return nil
}

// UnitarityError returns max |(M·M† − I)[i,j]|. Assumes m is square and non-nil.
// Complexity: O(n³).
func UnitarityError(m *Dense) float64 {
	n := m.r
	var (
		i, j, k int
		sum     complex128
		dev     float64
	)
	for i = 0; i < n; i++ {
		for j = i; j < n; j++ {
			sum = 0
			for k = 0; k < n; k++ {
				sum += m.data[i*n+k] * cmplx.Conj(m.data[j*n+k])
			}
			if i == j {
				sum--
			}
			dev = math.Max(dev, cmplx.Abs(sum))
		}
	}

	return dev
}

// HermiticityError returns max |M[i,j] − conj(M[j,i])|. Assumes m is square and non-nil.
func HermiticityError(m *Dense) float64 {
	n := m.r
	var i, j int
	var dev float64
	for i = 0; i < n; i++ {
		for j = i; j < n; j++ {
			dev = math.Max(dev, cmplx.Abs(m.data[i*n+j]-cmplx.Conj(m.data[j*n+i])))
		}
	}

	return dev
}

// OffDiagonalMass returns max |M[i,j]| over i != j. Assumes m is non-nil.
func OffDiagonalMass(m *Dense) float64 {
	var dev float64
	m.Do(func(i, j int, v complex128) bool {
		if i != j {
			dev = math.Max(dev, cmplx.Abs(v))
		}
		return true
	})

	return dev
}

// IsUnitary reports whether ‖M·M† − I‖∞ ≤ eps. Nil or non-square ⇒ false.
func IsUnitary(m *Dense, eps float64) bool {
	return m != nil && m.r == m.c && UnitarityError(m) <= eps
}

// IsHermitian reports whether ‖M − M†‖∞ ≤ eps. Nil or non-square ⇒ false.
func IsHermitian(m *Dense, eps float64) bool {
	return m != nil && m.r == m.c && HermiticityError(m) <= eps
}

// IsDiagonal reports whether every off-diagonal entry is within eps of zero.
func IsDiagonal(m *Dense, eps float64) bool {
	return m != nil && m.r == m.c && OffDiagonalMass(m) <= eps
}

// ValidateUnitary – Composite: NotNil → Square → finite eps → unitarity.
// Errors: ErrNilMatrix, ErrDimensionMismatch, ErrNaNInf, or a
// *ToleranceError wrapping ErrNotUnitary.
func ValidateUnitary(m *Dense, eps float64) error {
	if err := ValidateSquareNonNil(m); err != nil {
		return validatorErrorf("ValidateUnitary", err)
	}
	if err := ValidateTolerance(eps); err != nil {
		return validatorErrorf("ValidateUnitary", err)
	}
	if dev := UnitarityError(m); dev > eps {
		return NewToleranceError("ValidateUnitary", MetricUnitarity, dev, eps, ErrNotUnitary)
	}

	return nil
}

// ValidateHermitian – Composite: NotNil → Square → finite eps → hermiticity.
// Errors: ErrNilMatrix, ErrDimensionMismatch, ErrNaNInf, or a
// *ToleranceError wrapping ErrNotHermitian.
func ValidateHermitian(m *Dense, eps float64) error {
	if err := ValidateSquareNonNil(m); err != nil {
		return validatorErrorf("ValidateHermitian", err)
	}
	if err := ValidateTolerance(eps); err != nil {
		return validatorErrorf("ValidateHermitian", err)
	}
	if dev := HermiticityError(m); dev > eps {
		return NewToleranceError("ValidateHermitian", MetricHermiticity, dev, eps, ErrNotHermitian)
	}

	return nil
}

// ValidateDiagonal – Composite: NotNil → Square → finite eps → off-diagonal mass.
// Errors: ErrNilMatrix, ErrDimensionMismatch, ErrNaNInf, or a
// *ToleranceError wrapping ErrNotDiagonal.
func ValidateDiagonal(m *Dense, eps float64) error {
	if err := ValidateSquareNonNil(m); err != nil {
		return validatorErrorf("ValidateDiagonal", err)
	}
	if err := ValidateTolerance(eps); err != nil {
		return validatorErrorf("ValidateDiagonal", err)
	}
	if dev := OffDiagonalMass(m); dev > eps {
		return NewToleranceError("ValidateDiagonal", MetricOffDiagonal, dev, eps, ErrNotDiagonal)
	}

	return nil
}
