// SPDX-License-Identifier: MIT

// Package synth compiles an arbitrary n-qubit unitary into CNOT and
// single-qubit rotation gates by recursive cosine-sine decomposition.
//
// Recursion peels the most significant qubit. With U split into 2ⁿ⁻¹ blocks
// selected by qubit n−1,
//
//	U = (L₁ ⊕ L₂) · C · (R₁ ⊕ R₂),   C = ⊕ⱼ RY(2θⱼ) on qubit n−1,
//
// and each block-diagonal factor is demultiplexed as
//
//	A₁ ⊕ A₂ = (I ⊗ V) · (Δ ⊕ Δ†) · (I ⊗ W),   A₁A₂† = V·Δ²·V†,
//
// where Δ ⊕ Δ† is a multiplexed RZ on qubit n−1. V and W recurse on the
// lower n−1 qubits; single-qubit blocks end in a ZYZ leaf, and blocks that
// are already diagonal end in a Walsh phase ladder.
//
// The decomposition is held in a Tree: an arena of Nodes linked by integer
// indices, built and consumed inside one Synthesize call. Independent
// siblings are built concurrently (errgroup, bounded by a shared weighted
// semaphore of Config.Parallelism); emission walks the tree in fixed
// structural order, so the gate sequence never depends on scheduling.
package synth
