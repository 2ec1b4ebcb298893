// SPDX-License-Identifier: MIT

package synth

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/katalvlaran/unisynth/circuit"
	"github.com/katalvlaran/unisynth/matrix"
)

// Euler holds U = e^{iα}·RZ(β)·RY(γ)·RZ(δ).
type Euler struct {
	Alpha, Beta, Gamma, Delta float64
}

// ZYZ returns the Euler angles of a 2×2 unitary in closed form.
//
// Implementation:
//   - α = arg(det U)/2 and V = e^{−iα}·U, so det V = 1.
//   - With a = V₀₀ and b = V₁₀: γ = 2·atan2(|b|, |a|), β = arg b − arg a,
//     δ = −arg a − arg b. A vanishing a or b has its phase taken as 0.
//
// Errors:
//   - matrix.ErrDimensionMismatch unless m is 2×2.
func ZYZ(m *matrix.Dense) (Euler, error) {
	if err := matrix.ValidateSquareNonNil(m); err != nil {
		return Euler{}, fmt.Errorf("synth: ZYZ: %w", err)
	}
	if m.Rows() != 2 {
		return Euler{}, fmt.Errorf("synth: ZYZ: %dx%d: %w", m.Rows(), m.Cols(), matrix.ErrDimensionMismatch)
	}
	d := m.Data()

	return zyz2([2][2]complex128{{d[0], d[1]}, {d[2], d[3]}}), nil
}

// zeroPhaseFloor is the modulus below which an entry's phase is undefined.
const zeroPhaseFloor = 1e-14

func zyz2(u [2][2]complex128) Euler {
	det := u[0][0]*u[1][1] - u[0][1]*u[1][0]
	alpha := cmplx.Phase(det) / 2
	ph := cmplx.Exp(complex(0, -alpha))
	a, b := ph*u[0][0], ph*u[1][0]

	var argA, argB float64
	if cmplx.Abs(a) > zeroPhaseFloor {
		argA = cmplx.Phase(a)
	}
	if cmplx.Abs(b) > zeroPhaseFloor {
		argB = cmplx.Phase(b)
	}

	return Euler{
		Alpha: alpha,
		Beta:  argB - argA,
		Gamma: 2 * math.Atan2(cmplx.Abs(b), cmplx.Abs(a)),
		Delta: -argA - argB,
	}
}

// Matrix returns e^{iα}·RZ(β)·RY(γ)·RZ(δ).
func (e Euler) Matrix() [2][2]complex128 {
	rz1, ry, rz2 := circuit.RZMatrix(e.Delta), circuit.RYMatrix(e.Gamma), circuit.RZMatrix(e.Beta)
	m := mul2(rz2, mul2(ry, rz1))
	ph := cmplx.Exp(complex(0, e.Alpha))
	for i := range m {
		for j := range m[i] {
			m[i][j] *= ph
		}
	}

	return m
}

// Gates returns the time-ordered rotations RZ(δ), RY(γ), RZ(β) on target,
// skipping any with |angle| ≤ threshold. The caller adds Alpha to the
// circuit's global phase.
func (e Euler) Gates(target int, threshold float64) []circuit.Gate {
	gs := make([]circuit.Gate, 0, 3)
	if math.Abs(e.Delta) > threshold {
		gs = append(gs, circuit.RZ(target, e.Delta))
	}
	if math.Abs(e.Gamma) > threshold {
		gs = append(gs, circuit.RY(target, e.Gamma))
	}
	if math.Abs(e.Beta) > threshold {
		gs = append(gs, circuit.RZ(target, e.Beta))
	}

	return gs
}

func mul2(a, b [2][2]complex128) [2][2]complex128 {
	return [2][2]complex128{
		{a[0][0]*b[0][0] + a[0][1]*b[1][0], a[0][0]*b[0][1] + a[0][1]*b[1][1]},
		{a[1][0]*b[0][0] + a[1][1]*b[1][0], a[1][0]*b[0][1] + a[1][1]*b[1][1]},
	}
}
