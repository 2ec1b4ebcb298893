// SPDX-License-Identifier: MIT

package circuit

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/katalvlaran/unisynth/matrix"
)

// Kind tags the Gate variant.
type Kind uint8

const (
	// KindCNOT flips Target when Control is |1⟩.
	KindCNOT Kind = iota + 1
	// KindRZ is the phase rotation RZ(Angle) on Target.
	KindRZ
	// KindRY is the rotation RY(Angle) on Target.
	KindRY
	// KindUnitary is an arbitrary 2×2 unitary Matrix on Target.
	KindUnitary
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindCNOT:
		return "CNOT"
	case KindRZ:
		return "RZ"
	case KindRY:
		return "RY"
	case KindUnitary:
		return "U"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Gate is one elementary operation. Only the fields meaningful for Kind are
// set; Control is used by KindCNOT, Angle by KindRZ/KindRY and Matrix by
// KindUnitary.
type Gate struct {
	Kind    Kind
	Target  int
	Control int
	Angle   float64
	Matrix  [2][2]complex128
}

// CNOT returns a controlled-NOT gate.
func CNOT(control, target int) Gate {
	return Gate{Kind: KindCNOT, Control: control, Target: target}
}

// RZ returns RZ(theta) on target.
func RZ(target int, theta float64) Gate {
	return Gate{Kind: KindRZ, Target: target, Angle: theta}
}

// RY returns RY(theta) on target.
func RY(target int, theta float64) Gate {
	return Gate{Kind: KindRY, Target: target, Angle: theta}
}

// U returns a fused single-qubit gate. The caller guarantees m is unitary.
func U(target int, m [2][2]complex128) Gate {
	return Gate{Kind: KindUnitary, Target: target, Matrix: m}
}

// IsRotation reports whether g is an RZ or RY gate.
func (g Gate) IsRotation() bool { return g.Kind == KindRZ || g.Kind == KindRY }

// Qubits returns the qubits g acts on: target only, or (control, target).
func (g Gate) Qubits() []int {
	if g.Kind == KindCNOT {
		return []int{g.Control, g.Target}
	}

	return []int{g.Target}
}

// Op returns the 2×2 operator of a single-qubit gate. The second result is
// false for CNOT.
func (g Gate) Op() ([2][2]complex128, bool) {
	switch g.Kind {
	case KindRZ:
		return RZMatrix(g.Angle), true
	case KindRY:
		return RYMatrix(g.Angle), true
	case KindUnitary:
		return g.Matrix, true
	default:
		return [2][2]complex128{}, false
	}
}

// RZMatrix returns diag(e^{−iθ/2}, e^{iθ/2}).
func RZMatrix(theta float64) [2][2]complex128 {
	return [2][2]complex128{
		{cmplx.Exp(complex(0, -theta/2)), 0},
		{0, cmplx.Exp(complex(0, theta/2))},
	}
}

// RYMatrix returns [[cos θ/2, −sin θ/2], [sin θ/2, cos θ/2]].
func RYMatrix(theta float64) [2][2]complex128 {
	c, s := complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)

	return [2][2]complex128{{c, -s}, {s, c}}
}

// Inverse returns g⁻¹: CNOT is self-inverse, rotations negate their angle,
// fused unitaries are adjointed.
func (g Gate) Inverse() Gate {
	switch g.Kind {
	case KindRZ, KindRY:
		g.Angle = -g.Angle
	case KindUnitary:
		m := g.Matrix
		g.Matrix = [2][2]complex128{
			{cmplx.Conj(m[0][0]), cmplx.Conj(m[1][0])},
			{cmplx.Conj(m[0][1]), cmplx.Conj(m[1][1])},
		}
	}

	return g
}

// Validate checks g against an n-qubit register.
func (g Gate) Validate(n int) error {
	if g.Target < 0 || g.Target >= n {
		return fmt.Errorf("circuit: %v target %d of %d: %w", g.Kind, g.Target, n, ErrInvalidGate)
	}
	switch g.Kind {
	case KindCNOT:
		if g.Control < 0 || g.Control >= n || g.Control == g.Target {
			return fmt.Errorf("circuit: CNOT control %d target %d: %w", g.Control, g.Target, ErrInvalidGate)
		}
	case KindRZ, KindRY:
		if math.IsNaN(g.Angle) || math.IsInf(g.Angle, 0) {
			return fmt.Errorf("circuit: %v angle: %w", g.Kind, ErrInvalidGate)
		}
	case KindUnitary:
	default:
		return fmt.Errorf("circuit: %v: %w", g.Kind, ErrInvalidGate)
	}

	return nil
}

// String implements fmt.Stringer, e.g. "CNOT(0→2)" or "RZ[1](0.785398)".
func (g Gate) String() string {
	switch g.Kind {
	case KindCNOT:
		return fmt.Sprintf("CNOT(%d→%d)", g.Control, g.Target)
	case KindRZ, KindRY:
		return fmt.Sprintf("%v[%d](%g)", g.Kind, g.Target, g.Angle)
	default:
		return fmt.Sprintf("%v[%d]%v", g.Kind, g.Target, g.Matrix)
	}
}

// Embed returns the 2ⁿ×2ⁿ operator of g on an n-qubit register.
// Single-qubit gates are I(2^(n−q−1)) ⊗ g ⊗ I(2^q); CNOT is the basis
// permutation flipping bit Target on indices with bit Control set.
//
// Errors: ErrInvalidGate.
// Complexity: O(4ⁿ).
func (g Gate) Embed(n int) (*matrix.Dense, error) {
	if err := g.Validate(n); err != nil {
		return nil, err
	}
	dim := 1 << n
	if g.Kind == KindCNOT {
		cb, tb := 1<<g.Control, 1<<g.Target
		return matrix.Build(dim, dim, func(i, j int) complex128 {
			img := j
			if j&cb != 0 {
				img = j ^ tb
			}
			if i == img {
				return 1
			}
			return 0
		})
	}
	op, _ := g.Op()
	m, err := matrix.FromRows([][]complex128{op[0][:], op[1][:]})
	if err != nil {
		return nil, err
	}
	if hi := n - g.Target - 1; hi > 0 {
		id, _ := matrix.Identity(1 << hi)
		if m, err = matrix.Kron(id, m); err != nil {
			return nil, err
		}
	}
	if g.Target > 0 {
		id, _ := matrix.Identity(1 << g.Target)
		if m, err = matrix.Kron(m, id); err != nil {
			return nil, err
		}
	}

	return m, nil
}
