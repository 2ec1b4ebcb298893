// Package matrix offers immutable dense complex matrices and the linear-algebra
// kernels that gate synthesis is built on.
//
// The matrix package provides:
//
//   - Dense: a row-major complex128 matrix that is never mutated after
//     construction. Every kernel allocates a fresh result.
//   - Products and compositions: Mul, Add, Sub, Scale, Adjoint, Kron, Block.
//   - Structural checks: IsUnitary, IsHermitian, IsDiagonal and their
//     Validate* counterparts returning sentinel errors.
//   - Distances: OperatorNorm (spectral norm), OperatorDistance and
//     MaxAbsDistance, the two reconstruction metrics used by the validator.
//   - Tagged types: Unitary (validated once) and DiagonalUnitary (a compact
//     vector of phases indexed by basis state).
//
// Basis states are little-endian: qubit q corresponds to bit q of the row or
// column index, so a 2ⁿ×2ⁿ matrix acts on qubits 0..n-1.
//
// See example_test.go for usage patterns.
package matrix
