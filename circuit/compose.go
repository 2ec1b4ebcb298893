// SPDX-License-Identifier: MIT

package circuit

import (
	"fmt"

	"github.com/katalvlaran/unisynth/matrix"
)

// Segment names used by Compose.
const (
	SegmentBasisInverse = "V†"
	SegmentDiagonal     = "D"
	SegmentBasis        = "V"
)

// Segment is the half-open gate range [Start, End) contributed by one factor.
type Segment struct {
	Name       string
	Start, End int
}

// Composed is the concatenated circuit of a factored product plus the
// boundaries of each factor inside it.
type Composed struct {
	Circuit
	Segments []Segment
}

// Compose builds the circuit for the product U = V·D·V†.
//
// Arguments are given in product order (v, d, vDagger). Since the rightmost
// factor acts first, the emitted time order is vDagger's gates, then d's,
// then v's. Global phases add.
//
// Errors:
//   - matrix.ErrDimensionMismatch when register widths differ.
//   - ErrInvalidGate from any operand.
func Compose(v, d, vDagger Circuit) (Composed, error) {
	n := v.Qubits
	if d.Qubits != n || vDagger.Qubits != n {
		return Composed{}, fmt.Errorf("circuit: Compose(%d, %d, %d qubits): %w",
			v.Qubits, d.Qubits, vDagger.Qubits, matrix.ErrDimensionMismatch)
	}
	for _, part := range []Circuit{v, d, vDagger} {
		if err := part.Validate(); err != nil {
			return Composed{}, fmt.Errorf("circuit: Compose: %w", err)
		}
	}

	gates := make([]Gate, 0, len(v.Gates)+len(d.Gates)+len(vDagger.Gates))
	segs := make([]Segment, 0, 3)
	for _, part := range []struct {
		name string
		c    Circuit
	}{
		{SegmentBasisInverse, vDagger},
		{SegmentDiagonal, d},
		{SegmentBasis, v},
	} {
		start := len(gates)
		gates = append(gates, part.c.Gates...)
		segs = append(segs, Segment{Name: part.name, Start: start, End: len(gates)})
	}

	return Composed{
		Circuit: Circuit{
			Qubits:      n,
			Gates:       gates,
			GlobalPhase: NormalizePhase(v.GlobalPhase + d.GlobalPhase + vDagger.GlobalPhase),
		},
		Segments: segs,
	}, nil
}

// Segment returns the gates of the named factor as a standalone circuit with
// zero global phase.
func (c Composed) Segment(name string) (Circuit, bool) {
	for _, s := range c.Segments {
		if s.Name == name {
			out := New(c.Qubits)
			out.Gates = append([]Gate(nil), c.Gates[s.Start:s.End]...)
			return out, true
		}
	}

	return Circuit{}, false
}
