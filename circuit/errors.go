// SPDX-License-Identifier: MIT

package circuit

import "errors"

// ErrInvalidGate reports a gate whose qubit indices fall outside the
// register, a CNOT whose control equals its target, or an unknown Kind.
// Register-width disagreements between circuits use
// matrix.ErrDimensionMismatch instead.
var ErrInvalidGate = errors.New("circuit: invalid gate")
