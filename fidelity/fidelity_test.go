// SPDX-License-Identifier: MIT
package fidelity_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unisynth/circuit"
	"github.com/katalvlaran/unisynth/config"
	"github.com/katalvlaran/unisynth/fidelity"
	"github.com/katalvlaran/unisynth/matrix"
)

func mustRows(t *testing.T, rows [][]complex128) *matrix.Dense {
	t.Helper()
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)

	return m
}

func TestValidate_ExactCircuitPasses(t *testing.T) {
	c := circuit.New(2).Append(circuit.RY(0, 0.4), circuit.CNOT(0, 1), circuit.RZ(1, -1.3))
	c.GlobalPhase = 0.25
	target, err := fidelity.Reconstruct(c)
	require.NoError(t, err)

	r, err := fidelity.Validate(target, c, config.Default())
	require.NoError(t, err)
	require.True(t, r.Passed)
	require.Equal(t, 3, r.GateCount)
	require.LessOrEqual(t, r.OperatorNormError, 1e-12)
	require.LessOrEqual(t, r.MaxAbsError, 1e-12)
	require.LessOrEqual(t, r.PhaseInvariantError, 1e-12)
	require.Equal(t, 1e-6, r.Tolerance)
	require.Contains(t, r.String(), "ok")
}

// A rotation reproduced by an empty circuit misses by 2·sin(α/2) = 1.83 and
// must be reported, never silently accepted.
func TestValidate_RotationLeftUncompiled(t *testing.T) {
	alpha := 2 * math.Asin(0.915)
	cs, sn := complex(math.Cos(alpha), 0), complex(math.Sin(alpha), 0)
	v := mustRows(t, [][]complex128{{cs, -sn}, {sn, cs}})

	r, err := fidelity.Validate(v, circuit.New(1), config.Default())
	require.ErrorIs(t, err, fidelity.ErrReconstructionTolerance)
	var te *matrix.ToleranceError
	require.True(t, errors.As(err, &te))
	require.Equal(t, fidelity.StageFinal, te.Stage)
	require.Equal(t, matrix.MetricOperatorNorm, te.Metric)
	require.InDelta(t, 1.83, te.Value, 1e-9)

	require.False(t, r.Passed)
	require.InDelta(t, 1.83, r.OperatorNormError, 1e-9)
	require.NotNil(t, r.Achieved)
	require.Contains(t, r.String(), "FAIL")
}

// The pass/fail metric includes global phase; the phase-invariant figure
// does not.
func TestValidate_GlobalPhaseCounts(t *testing.T) {
	c := circuit.New(1)
	c.GlobalPhase = math.Pi / 2
	id, err := matrix.Identity(2)
	require.NoError(t, err)

	r, err := fidelity.ValidateStage("V", id, c, config.Default())
	require.ErrorIs(t, err, fidelity.ErrReconstructionTolerance)
	var te *matrix.ToleranceError
	require.True(t, errors.As(err, &te))
	require.Equal(t, "V", te.Stage)
	require.InDelta(t, math.Sqrt2, r.OperatorNormError, 1e-12)
	require.InDelta(t, 0, r.PhaseInvariantError, 1e-12)
}

func TestValidate_Tolerance(t *testing.T) {
	c := circuit.New(1).Append(circuit.RZ(0, 1e-5))
	id, err := matrix.Identity(2)
	require.NoError(t, err)

	_, err = fidelity.Validate(id, c, config.Default())
	require.ErrorIs(t, err, fidelity.ErrReconstructionTolerance)

	r, err := fidelity.Validate(id, c, config.New(config.WithTolerance(1e-4)))
	require.NoError(t, err)
	require.True(t, r.Passed)
}

func TestValidate_Shape(t *testing.T) {
	id, err := matrix.Identity(4)
	require.NoError(t, err)
	_, err = fidelity.Validate(id, circuit.New(1), config.Default())
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = fidelity.Validate(nil, circuit.New(1), config.Default())
	require.ErrorIs(t, err, matrix.ErrNilMatrix)

	bad := circuit.New(1).Append(circuit.CNOT(0, 1))
	_, err = fidelity.Validate(mustRows(t, [][]complex128{{1, 0}, {0, 1}}), bad, config.Default())
	require.ErrorIs(t, err, circuit.ErrInvalidGate)
}

// Embedded products and the row-update kernel agree.
func TestReconstruct_MatchesKernel(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for n := 1; n <= 3; n++ {
		c := circuit.New(n)
		c.GlobalPhase = rng.Float64()
		for i := 0; i < 25; i++ {
			q := rng.Intn(n)
			switch {
			case n > 1 && i%3 == 0:
				c = c.Append(circuit.CNOT(q, (q+1)%n))
			case i%3 == 1:
				c = c.Append(circuit.RY(q, rng.NormFloat64()))
			default:
				c = c.Append(circuit.RZ(q, rng.NormFloat64()))
			}
		}
		slow, err := fidelity.Reconstruct(c)
		require.NoError(t, err)
		fast, err := c.Unitary()
		require.NoError(t, err)
		d, err := matrix.OperatorDistance(slow, fast)
		require.NoError(t, err)
		require.LessOrEqual(t, d, 1e-12)
	}
}
