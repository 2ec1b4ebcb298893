// SPDX-License-Identifier: MIT

package walsh

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/katalvlaran/unisynth/circuit"
	"github.com/katalvlaran/unisynth/matrix"
)

// Primitive is the gate-emission strategy at the base of each ladder.
type Primitive uint8

const (
	// PrimitivePhase emits RZ(−2c_k) on k's lowest qubit; c_0 is global phase.
	PrimitivePhase Primitive = iota
	// PrimitiveRY emits RY(c_k) on the multiplexor target.
	PrimitiveRY
	// PrimitiveRZ emits RZ(c_k) on the multiplexor target.
	PrimitiveRZ
)

// String implements fmt.Stringer.
func (p Primitive) String() string {
	switch p {
	case PrimitivePhase:
		return "phase"
	case PrimitiveRY:
		return "ry"
	case PrimitiveRZ:
		return "rz"
	default:
		return fmt.Sprintf("Primitive(%d)", uint8(p))
	}
}

// Ladder is the parameterized Walsh-ladder emitter.
//
// With PrimitivePhase the spectrum has 2^Register entries and mask bit b
// selects qubit b. With PrimitiveRY/RZ the spectrum has 2^(Register−1)
// entries over the control qubits (every qubit except Target, ascending), so
// mask bit b selects the b-th control.
type Ladder struct {
	Register  int
	Target    int
	Primitive Primitive
	Threshold float64
}

// Emit returns the circuit realizing the spectrum under l.
//
// Implementation:
//   - For each k ascending with |c_k| > Threshold: CNOTs from the selected
//     non-pivot qubits onto the pivot (ascending), one rotation on the pivot,
//     the same CNOTs in descending order.
//   - PrimitivePhase sets GlobalPhase = c_0 regardless of Threshold.
//
// Errors:
//   - matrix.ErrDimensionMismatch for a spectrum of the wrong length.
//   - circuit.ErrInvalidGate for a Target outside the register.
func (l Ladder) Emit(s Spectrum) (circuit.Circuit, error) {
	n := l.Register
	if n < 1 {
		return circuit.Circuit{}, fmt.Errorf("walsh: Emit: register %d: %w", n, matrix.ErrDimensionMismatch)
	}
	c := circuit.New(n)

	if l.Primitive == PrimitivePhase {
		if len(s) != 1<<n {
			return circuit.Circuit{}, fmt.Errorf("walsh: Emit: %d coefficients for %d qubits: %w",
				len(s), n, matrix.ErrDimensionMismatch)
		}
		c.GlobalPhase = s[0]
		for k := 1; k < len(s); k++ {
			if math.Abs(s[k]) <= l.Threshold {
				continue
			}
			pivot := bits.TrailingZeros(uint(k))
			var ctrls []int
			for rest := k &^ (1 << pivot); rest != 0; rest &= rest - 1 {
				ctrls = append(ctrls, bits.TrailingZeros(uint(rest)))
			}
			c.Gates = appendBlock(c.Gates, ctrls, pivot, circuit.RZ(pivot, -2*s[k]))
		}
		return c, nil
	}

	if l.Target < 0 || l.Target >= n {
		return circuit.Circuit{}, fmt.Errorf("walsh: Emit: target %d of %d: %w", l.Target, n, circuit.ErrInvalidGate)
	}
	if len(s) != 1<<(n-1) {
		return circuit.Circuit{}, fmt.Errorf("walsh: Emit: %d coefficients for %d controls: %w",
			len(s), n-1, matrix.ErrDimensionMismatch)
	}
	controls := make([]int, 0, n-1)
	for q := 0; q < n; q++ {
		if q != l.Target {
			controls = append(controls, q)
		}
	}
	for k, ck := range s {
		if math.Abs(ck) <= l.Threshold {
			continue
		}
		var ctrls []int
		for rest := k; rest != 0; rest &= rest - 1 {
			ctrls = append(ctrls, controls[bits.TrailingZeros(uint(rest))])
		}
		c.Gates = appendBlock(c.Gates, ctrls, l.Target, l.rotation(ck))
	}

	return c, nil
}

func (l Ladder) rotation(angle float64) circuit.Gate {
	if l.Primitive == PrimitiveRZ {
		return circuit.RZ(l.Target, angle)
	}

	return circuit.RY(l.Target, angle)
}

// appendBlock emits CNOT(ctrls→pivot) ascending, the rotation, then the
// CNOTs descending.
func appendBlock(gs []circuit.Gate, ctrls []int, pivot int, rot circuit.Gate) []circuit.Gate {
	for _, q := range ctrls {
		gs = append(gs, circuit.CNOT(q, pivot))
	}
	gs = append(gs, rot)
	for i := len(ctrls) - 1; i >= 0; i-- {
		gs = append(gs, circuit.CNOT(ctrls[i], pivot))
	}

	return gs
}
