// SPDX-License-Identifier: MIT

// Package eigen factors Hermitian and unitary matrices as V·D·V† with a
// unitary V and a deterministic eigenpair order.
//
// The numeric work is delegated to gonum's real symmetric solver
// (mat.EigenSym) through the real embedding [[A, −B], [B, A]] of H = A + iB.
// What this package owns is the part a dense solver does not promise:
//
//   - Degenerate eigenspaces. Every eigenvalue of H appears twice in the
//     embedding, and repeated eigenvalues of H appear 2m times. The solver
//     returns an arbitrary real basis of that space; Hermitian recovers an
//     orthonormal complex basis with explicit pivoted Gram-Schmidt.
//   - Unitary inputs. U = H₁ + iH₂ with commuting Hermitian parts. Groups of
//     (nearly) equal H₁ eigenvalues are split by H₂ restricted to the group,
//     then by H₁ again inside any remaining H₂ tie, and the final basis is
//     re-orthonormalized.
//   - Checked postconditions. Every decomposition measures ‖U − V·D·V†‖₂ and
//     ‖V·V† − I‖ and fails with ErrNumericalInstability (inside a
//     *matrix.ToleranceError) rather than returning a silently bad basis.
//
// Eigenpairs are sorted by phase arg(dᵢ) ∈ (−π, π] with a stable sort, so
// repeated runs on the same input give the same V and therefore the same
// gate sequence downstream.
package eigen
