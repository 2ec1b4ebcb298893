// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set (unified, consistent).
// This file defines package-level sentinel errors used across the matrix
// package and by the synthesis packages built on top of it. All kernels MUST
// return these sentinels (optionally wrapped with an op tag) and tests MUST
// check them via errors.Is. No kernel panics on user-triggered conditions.

package matrix

import (
	"errors"
	"fmt"
)

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "matrix: ..." for consistency and to allow
// easy grepping across logs. Kernels wrap with an op tag via matrixErrorf,
// callers still match with errors.Is.
//
// ERROR PRIORITY (enforced in tests):
// nil -> shape/power-of-two -> NaN/Inf -> structural property (unitary,
// Hermitian, diagonal).

var (
	// ErrNilMatrix indicates that a nil *Dense (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil matrix")

	// ErrBadShape is returned when a requested shape is invalid (r<=0, c<=0)
	// or the supplied data does not match it.
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrOutOfRange indicates that a row, column or qubit index is outside valid bounds.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// a non-square input where a square one is required, or a dimension that
	// is not a power of two where a qubit register is implied.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNaNInf signals a NaN or ±Inf entry where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNotUnitary signals that ‖M·M† − I‖ exceeded the tolerance.
	ErrNotUnitary = errors.New("matrix: matrix is not unitary within eps")

	// ErrNotHermitian signals that ‖M − M†‖ exceeded the tolerance.
	ErrNotHermitian = errors.New("matrix: matrix is not hermitian within eps")

	// ErrNotDiagonal signals off-diagonal mass above the tolerance where a
	// diagonal matrix was required.
	ErrNotDiagonal = errors.New("matrix: matrix is not diagonal within eps")

	// ErrNoConvergence is returned when an underlying gonum factorization
	// (SVD, symmetric eigen) reports failure.
	ErrNoConvergence = errors.New("matrix: factorization did not converge")
)

// Metric names reported inside ToleranceError.
const (
	MetricOperatorNorm = "operator-norm"
	MetricMaxAbs       = "max-abs"
	MetricUnitarity    = "unitarity"
	MetricHermiticity  = "hermiticity"
	MetricOffDiagonal  = "off-diagonal"
)

// ToleranceError reports which stage violated which numeric postcondition and
// by how much. It unwraps to the sentinel stored in Err, so callers keep
// matching with errors.Is (e.g. ErrNotUnitary, or a synthesis package's
// ErrReconstructionTolerance).
type ToleranceError struct {
	Stage     string  // pipeline stage or kernel that detected the violation
	Metric    string  // one of the Metric* constants
	Value     float64 // measured distance
	Tolerance float64 // configured bound that Value exceeded
	Err       error   // underlying sentinel
}

// Error implements error.
func (e *ToleranceError) Error() string {
	return fmt.Sprintf("%s: %s %.3e exceeds tolerance %.3e: %v",
		e.Stage, e.Metric, e.Value, e.Tolerance, e.Err)
}

// Unwrap exposes the sentinel for errors.Is / errors.As.
func (e *ToleranceError) Unwrap() error { return e.Err }

// NewToleranceError is a small constructor used by stage validators.
func NewToleranceError(stage, metric string, value, tol float64, sentinel error) *ToleranceError {
	return &ToleranceError{Stage: stage, Metric: metric, Value: value, Tolerance: tol, Err: sentinel}
}
