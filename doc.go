// SPDX-License-Identifier: MIT

// Package unisynth compiles unitary transformations into exact sequences of
// elementary quantum gates: CNOT plus single-qubit RZ/RY rotations.
//
// 🚀 What does it do?
//
//	Given a 2ⁿ×2ⁿ unitary U, or a Hermitian generator H standing for
//	U = exp(i·t·H), unisynth
//		• diagonalizes it as U = V·D·V†            (eigen)
//		• synthesizes D with a Walsh phase ladder  (walsh)
//		• synthesizes V by cosine-sine recursion   (synth)
//		• derives circuit(V†) by inversion and concatenates the three
//		  factors in time order                    (circuit)
//		• rebuilds the realized operator and rejects anything farther than
//		  the configured tolerance from U          (fidelity)
//
// ✨ Guarantees:
//
//   - Exact up to floating-point rounding: no approximation, no truncation.
//   - Global phase is tracked, not dropped.
//   - Every stage checks its own postcondition, and the final reconstruction
//     check always runs.
//   - Pure Go on top of gonum; one Config value per call, no package state.
//
// Subpackages:
//
//	matrix/   dense complex matrices, norms, unitary/diagonal tags
//	eigen/    Hermitian and unitary eigendecomposition
//	walsh/    Walsh-Hadamard transform and rotation ladders
//	synth/    cosine-sine decomposition tree for general unitaries
//	circuit/  gates, circuits, inversion, composition, peephole pass
//	fidelity/ reconstruction and distance report
//	config/   options, YAML loading, qubit ceiling
//
// ⚙️ Usage:
//
//	cfg := config.New(config.WithTolerance(1e-8))
//	res, err := unisynth.Compile(ctx, m, cfg)
//	if err != nil {
//		// errors.Is(err, fidelity.ErrReconstructionTolerance), …
//	}
//	fmt.Println(res.Circuit.Stats(), res.Report)
//
// Qubit q is bit q of a basis-state index (little-endian). See
// example_test.go for runnable walkthroughs.
package unisynth
