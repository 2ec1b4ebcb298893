// SPDX-License-Identifier: MIT

package fidelity

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/katalvlaran/unisynth/circuit"
	"github.com/katalvlaran/unisynth/config"
	"github.com/katalvlaran/unisynth/matrix"
)

// ErrReconstructionTolerance reports a circuit whose realized operator is
// farther from its target than the configured tolerance.
var ErrReconstructionTolerance = errors.New("fidelity: reconstruction exceeds tolerance")

// StageFinal names the mandatory end-of-pipeline check.
const StageFinal = "fidelity"

// Report is the outcome of one validation. It is never modified after
// Validate returns.
type Report struct {
	Achieved            *matrix.Dense
	OperatorNormError   float64
	MaxAbsError         float64
	PhaseInvariantError float64
	Tolerance           float64
	Passed              bool
	GateCount           int
}

// String summarizes the report on one line.
func (r Report) String() string {
	verdict := "FAIL"
	if r.Passed {
		verdict = "ok"
	}

	return fmt.Sprintf("%s: gates=%d op=%.3e max=%.3e phase-free=%.3e tol=%.1e",
		verdict, r.GateCount, r.OperatorNormError, r.MaxAbsError, r.PhaseInvariantError, r.Tolerance)
}

// Validate is ValidateStage under StageFinal.
func Validate(target *matrix.Dense, c circuit.Circuit, cfg config.Config) (Report, error) {
	return ValidateStage(StageFinal, target, c, cfg)
}

// ValidateStage reconstructs c and compares it with target at cfg.Tolerance.
// stage is recorded in the ToleranceError of a failed check, so callers can
// tell an intermediate check from the final one.
//
// Errors:
//   - matrix.ErrNilMatrix, matrix.ErrDimensionMismatch when target does not
//     match the 2ⁿ×2ⁿ register of c.
//   - circuit.ErrInvalidGate for a malformed circuit.
//   - *matrix.ToleranceError wrapping ErrReconstructionTolerance, with the
//     Report still populated.
func ValidateStage(stage string, target *matrix.Dense, c circuit.Circuit, cfg config.Config) (Report, error) {
	if err := matrix.ValidateSquareNonNil(target); err != nil {
		return Report{}, fmt.Errorf("fidelity: %s: %w", stage, err)
	}
	if target.Rows() != 1<<c.Qubits {
		return Report{}, fmt.Errorf("fidelity: %s: target %dx%d for %d qubits: %w",
			stage, target.Rows(), target.Cols(), c.Qubits, matrix.ErrDimensionMismatch)
	}
	achieved, err := c.Unitary()
	if err != nil {
		return Report{}, fmt.Errorf("fidelity: %s: %w", stage, err)
	}

	r := Report{Achieved: achieved, Tolerance: cfg.Tolerance, GateCount: c.Len()}
	if r.OperatorNormError, err = matrix.OperatorDistance(target, achieved); err != nil {
		return Report{}, fmt.Errorf("fidelity: %s: %w", stage, err)
	}
	if r.MaxAbsError, err = matrix.MaxAbsDistance(target, achieved); err != nil {
		return Report{}, fmt.Errorf("fidelity: %s: %w", stage, err)
	}
	aligned, err := matrix.AlignPhase(target, achieved)
	if err != nil {
		return Report{}, fmt.Errorf("fidelity: %s: %w", stage, err)
	}
	if r.PhaseInvariantError, err = matrix.OperatorDistance(target, aligned); err != nil {
		return Report{}, fmt.Errorf("fidelity: %s: %w", stage, err)
	}

	r.Passed = r.OperatorNormError <= cfg.Tolerance
	if !r.Passed {
		return r, matrix.NewToleranceError(stage, matrix.MetricOperatorNorm,
			r.OperatorNormError, cfg.Tolerance, ErrReconstructionTolerance)
	}

	return r, nil
}

// Reconstruct multiplies the Kronecker-embedded gates of c in sequence order,
// G_k···G_1, and applies the global phase. It is the O(k·8ⁿ) reference for
// circuit.Circuit.Unitary.
func Reconstruct(c circuit.Circuit) (*matrix.Dense, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("fidelity: Reconstruct: %w", err)
	}
	acc, err := matrix.Identity(1 << c.Qubits)
	if err != nil {
		return nil, fmt.Errorf("fidelity: Reconstruct: %w", err)
	}
	var e *matrix.Dense
	for _, g := range c.Gates {
		if e, err = g.Embed(c.Qubits); err != nil {
			return nil, fmt.Errorf("fidelity: Reconstruct: %w", err)
		}
		if acc, err = matrix.Mul(e, acc); err != nil {
			return nil, fmt.Errorf("fidelity: Reconstruct: %w", err)
		}
	}
	if c.GlobalPhase == 0 {
		return acc, nil
	}

	return matrix.Scale(acc, cmplx.Exp(complex(0, c.GlobalPhase)))
}
