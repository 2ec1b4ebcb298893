// SPDX-License-Identifier: MIT

package circuit

import (
	"math"
	"math/cmplx"
)

// Simplify runs a single peephole pass and returns a circuit realizing the
// same operator (including global phase).
//
// Rules, applied against the most recent surviving gate that touches the
// same qubits (nothing in between acts on them, so the two are adjacent):
//   - two identical CNOTs cancel;
//   - two rotations of the same axis on the same qubit merge, angles add;
//   - two fused unitaries on the same qubit multiply;
//   - rotations with |angle| ≤ threshold are dropped, including merge results.
//
// Merged angles are wrapped into (−2π, 2π]; RZ and RY have period 4π so the
// wrap is exact.
//
// Complexity: O(len(Gates)).
func Simplify(c Circuit, threshold float64) Circuit {
	out := make([]Gate, 0, len(c.Gates))
	alive := make([]bool, 0, len(c.Gates))
	last := make([][]int, max(c.Qubits, 1)) // per-qubit stack of indices into out

	top := func(q int) int {
		if q < 0 || q >= len(last) || len(last[q]) == 0 {
			return -1
		}
		return last[q][len(last[q])-1]
	}
	kill := func(idx int) {
		alive[idx] = false
		for _, q := range out[idx].Qubits() {
			last[q] = last[q][:len(last[q])-1]
		}
	}

	for _, g := range c.Gates {
		if g.IsRotation() && math.Abs(g.Angle) <= threshold {
			continue
		}
		prev := -1
		qs := g.Qubits()
		if p := top(qs[0]); p >= 0 {
			prev = p
			for _, q := range qs[1:] {
				if top(q) != p {
					prev = -1
				}
			}
		}
		if prev >= 0 {
			pg := &out[prev]
			switch {
			case g.Kind == KindCNOT && pg.Kind == KindCNOT &&
				pg.Control == g.Control && pg.Target == g.Target:
				kill(prev)
				continue
			case g.IsRotation() && pg.Kind == g.Kind && pg.Target == g.Target:
				pg.Angle = wrapRotation(pg.Angle + g.Angle)
				if math.Abs(pg.Angle) <= threshold {
					kill(prev)
				}
				continue
			case g.Kind == KindUnitary && pg.Kind == KindUnitary && pg.Target == g.Target:
				pg.Matrix = mul2(g.Matrix, pg.Matrix)
				if isIdentity2(pg.Matrix, threshold) {
					kill(prev)
				}
				continue
			}
		}
		out = append(out, g)
		alive = append(alive, true)
		for _, q := range qs {
			last[q] = append(last[q], len(out)-1)
		}
	}

	gates := make([]Gate, 0, len(out))
	for i, g := range out {
		if alive[i] {
			gates = append(gates, g)
		}
	}

	return Circuit{Qubits: c.Qubits, Gates: gates, GlobalPhase: c.GlobalPhase}
}

// wrapRotation maps θ into (−2π, 2π].
func wrapRotation(theta float64) float64 {
	theta = math.Mod(theta, 4*math.Pi)
	if theta <= -2*math.Pi {
		theta += 4 * math.Pi
	} else if theta > 2*math.Pi {
		theta -= 4 * math.Pi
	}

	return theta
}

func mul2(a, b [2][2]complex128) [2][2]complex128 {
	return [2][2]complex128{
		{a[0][0]*b[0][0] + a[0][1]*b[1][0], a[0][0]*b[0][1] + a[0][1]*b[1][1]},
		{a[1][0]*b[0][0] + a[1][1]*b[1][0], a[1][0]*b[0][1] + a[1][1]*b[1][1]},
	}
}

func isIdentity2(m [2][2]complex128, eps float64) bool {
	return cmplx.Abs(m[0][0]-1) <= eps && cmplx.Abs(m[1][1]-1) <= eps &&
		cmplx.Abs(m[0][1]) <= eps && cmplx.Abs(m[1][0]) <= eps
}
