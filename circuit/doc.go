// SPDX-License-Identifier: MIT

// Package circuit defines the gate-sequence model produced by every
// synthesis stage and the operations that combine and check sequences.
//
// Conventions:
//   - Qubit q corresponds to bit q of a basis-state index (little-endian).
//   - Gates are stored in time order: Gates[0] acts first. The realized
//     operator of a Circuit is e^{i·GlobalPhase}·G_k···G_2·G_1.
//   - RZ(θ) = diag(e^{−iθ/2}, e^{iθ/2}) and RY(θ) = [[cos θ/2, −sin θ/2],
//     [sin θ/2, cos θ/2]].
//
// What is here:
//   - Gate variants: CNOT, RZ, RY and a fused single-qubit Unitary.
//   - Circuit.Inverse (reverse + invert each gate + negate the phase).
//   - Circuit.Unitary, an in-place row-update kernel that reconstructs the
//     realized 2ⁿ×2ⁿ matrix in O(gates·4ⁿ) without forming embedded gates.
//   - Compose, which concatenates circuit(V†), circuit(D), circuit(V) for a
//     product V·D·V† and records segment boundaries.
//   - Simplify, a peephole pass that cancels and merges adjacent gates.
package circuit
