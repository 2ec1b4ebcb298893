// SPDX-License-Identifier: MIT

// Package fidelity checks that a gate sequence reproduces its target.
//
// Validate rebuilds the realized operator of a circuit and measures it against
// the target in three ways:
//
//	OperatorNormError    ‖T − A‖₂          (the pass/fail metric)
//	MaxAbsError          max |Tᵢⱼ − Aᵢⱼ|   (entrywise)
//	PhaseInvariantError  min_φ ‖T − e^{iφ}A‖ with φ from tr(A†T), informational
//
// A failed check still returns the full Report, together with a
// *matrix.ToleranceError that unwraps to ErrReconstructionTolerance.
package fidelity
