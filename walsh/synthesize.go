// SPDX-License-Identifier: MIT

package walsh

import (
	"fmt"

	"github.com/katalvlaran/unisynth/circuit"
	"github.com/katalvlaran/unisynth/config"
	"github.com/katalvlaran/unisynth/matrix"
)

// Synthesize returns the circuit realizing d exactly, global phase included.
//
// Implementation:
//   - Stage 1: enforce cfg.CheckQubits before any work.
//   - Stage 2: c = Transform(θ); emit with a PrimitivePhase ladder at
//     cfg.SparsifyThreshold.
//
// Errors:
//   - config.ErrQubitCountExceeded, matrix.ErrDimensionMismatch (zero value d).
func Synthesize(d matrix.DiagonalUnitary, cfg config.Config) (circuit.Circuit, error) {
	n := d.Qubits()
	if n < 1 {
		return circuit.Circuit{}, fmt.Errorf("walsh: Synthesize: %w", matrix.ErrDimensionMismatch)
	}
	if err := cfg.CheckQubits(n); err != nil {
		return circuit.Circuit{}, fmt.Errorf("walsh: Synthesize: %w", err)
	}
	coeffs, err := Transform(d.Phases())
	if err != nil {
		return circuit.Circuit{}, fmt.Errorf("walsh: Synthesize: %w", err)
	}

	return Ladder{Register: n, Primitive: PrimitivePhase, Threshold: cfg.SparsifyThreshold}.Emit(coeffs)
}

// Multiplex returns the multiplexed rotation ⊕_x R(angles[x]) on target of an
// n-qubit register, where x enumerates the other qubits in ascending order
// (bit b of x is the b-th non-target qubit). prim must be PrimitiveRY or
// PrimitiveRZ.
//
// Errors:
//   - matrix.ErrDimensionMismatch when len(angles) != 2^(n−1).
//   - circuit.ErrInvalidGate for a bad target or primitive.
func Multiplex(n, target int, prim Primitive, angles []float64, threshold float64) (circuit.Circuit, error) {
	if prim != PrimitiveRY && prim != PrimitiveRZ {
		return circuit.Circuit{}, fmt.Errorf("walsh: Multiplex: %v: %w", prim, circuit.ErrInvalidGate)
	}
	coeffs, err := Transform(angles)
	if err != nil {
		return circuit.Circuit{}, fmt.Errorf("walsh: Multiplex: %w", err)
	}

	return Ladder{Register: n, Target: target, Primitive: prim, Threshold: threshold}.Emit(coeffs)
}
