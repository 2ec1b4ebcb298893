// SPDX-License-Identifier: MIT

// Package walsh synthesizes diagonal unitaries and multiplexed rotations
// from their Walsh-Hadamard spectrum.
//
// A phase vector θ over 2ⁿ basis states expands as θ_x = Σ_k c_k·(−1)^{|k∧x|}
// where |k∧x| is the parity of the qubits selected by mask k. Each term is a
// parity-controlled rotation: a CNOT ladder collects the parity of k's qubits
// onto one pivot qubit, a single rotation acts there, and the mirrored ladder
// restores the other qubits. The same ladder serves two emission modes:
//
//   - PrimitivePhase: diagonal unitaries. Pivot is k's lowest set bit, the
//     rotation is RZ(−2·c_k), and c_0 becomes the circuit's global phase.
//   - PrimitiveRY / PrimitiveRZ: multiplexed rotations on a fixed target
//     controlled by every other qubit. The rotation is R(c_k) on the target
//     and c_0 is a plain R(c_0).
//
// Blocks are emitted in ascending k, so output is deterministic. Coefficients
// with |c_k| ≤ Threshold are skipped; the identity yields no gates.
//
// Complexity: Transform is the O(n·2ⁿ) in-place butterfly; Emit is
// O(2ⁿ·n) gates in the worst case.
package walsh
