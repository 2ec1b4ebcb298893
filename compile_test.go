// SPDX-License-Identifier: MIT
package unisynth_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/unisynth"
	"github.com/katalvlaran/unisynth/circuit"
	"github.com/katalvlaran/unisynth/config"
	"github.com/katalvlaran/unisynth/eigen"
	"github.com/katalvlaran/unisynth/fidelity"
	"github.com/katalvlaran/unisynth/matrix"
	"github.com/katalvlaran/unisynth/synth"
	"github.com/katalvlaran/unisynth/walsh"
)

// MustRandomUnitary draws a Haar-random dim×dim unitary from seed.
func MustRandomUnitary(t testing.TB, dim int, seed int64) *matrix.Dense {
	t.Helper()
	u, err := matrix.RandomUnitary(dim, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)

	return u
}

// MustSpectrum returns Q·diag(d)·Q† for a random unitary Q, and Q.
func MustSpectrum(t testing.TB, d []complex128, seed int64) (*matrix.Dense, *matrix.Dense) {
	t.Helper()
	q := MustRandomUnitary(t, len(d), seed)
	dm, err := matrix.Diagonal(d)
	require.NoError(t, err)
	qAdj, err := matrix.Adjoint(q)
	require.NoError(t, err)
	m, err := matrix.MulAll(q, dm, qAdj)
	require.NoError(t, err)

	return m, q
}

// RequireRealizes checks the realized operator of c against want.
func RequireRealizes(t testing.TB, want *matrix.Dense, c circuit.Circuit, eps float64) {
	t.Helper()
	got, err := c.Unitary()
	require.NoError(t, err)
	d, err := matrix.OperatorDistance(want, got)
	require.NoError(t, err)
	require.LessOrEqualf(t, d, eps, "operator distance %.3e", d)
}

// rotation returns [[cos α, −sin α], [sin α, cos α]].
func rotation(t testing.TB, alpha float64) *matrix.Dense {
	t.Helper()
	c, s := complex(math.Cos(alpha), 0), complex(math.Sin(alpha), 0)
	m, err := matrix.FromRows([][]complex128{{c, -s}, {s, c}})
	require.NoError(t, err)

	return m
}

type CompileSuite struct {
	suite.Suite
	ctx context.Context
	cfg config.Config
}

func (s *CompileSuite) SetupTest() {
	s.ctx = context.Background()
	s.cfg = config.Default()
}

func (s *CompileSuite) TestRandomUnitaries() {
	for n := 1; n <= 4; n++ {
		u := MustRandomUnitary(s.T(), 1<<n, int64(200+n))
		res, err := unisynth.Compile(s.ctx, u, s.cfg)
		require.NoError(s.T(), err)
		require.True(s.T(), res.Report.Passed)
		require.Less(s.T(), res.Report.OperatorNormError, 1e-6)
		require.Equal(s.T(), eigen.SourceUnitary, res.Decomposition.Source)
		RequireRealizes(s.T(), u, res.Circuit.Circuit, 1e-6)

		names := make([]string, 0, len(res.Stages))
		for _, st := range res.Stages {
			require.True(s.T(), st.Passed)
			names = append(names, st.Stage)
		}
		require.Equal(s.T(), []string{unisynth.StageEigen, unisynth.StageBasis, unisynth.StageDiag, unisynth.StageFinal}, names)
		require.Len(s.T(), res.Circuit.Segments, 3)
	}
}

// A single-qubit rotation whose basis change must not be dropped: the
// diagonal factor alone misses the target, the full compilation does not.
func (s *CompileSuite) TestRotationKeepsBasisChange() {
	v := rotation(s.T(), 2*math.Asin(0.915))

	res, err := unisynth.Compile(s.ctx, v, s.cfg)
	require.NoError(s.T(), err)
	require.Less(s.T(), res.Report.OperatorNormError, 1e-6)

	dOnly, ok := res.Circuit.Segment(circuit.SegmentDiagonal)
	require.True(s.T(), ok)
	_, err = fidelity.Validate(v, dOnly, s.cfg)
	require.ErrorIs(s.T(), err, fidelity.ErrReconstructionTolerance)

	r, err := fidelity.Validate(v, circuit.New(1), s.cfg)
	require.ErrorIs(s.T(), err, fidelity.ErrReconstructionTolerance)
	require.InDelta(s.T(), 1.83, r.OperatorNormError, 1e-9)

	_, err = unisynth.Compile(s.ctx, v, config.New(config.WithStrategy(config.StrategyDiagonalOnly)))
	require.ErrorIs(s.T(), err, matrix.ErrNotDiagonal)
}

// The eigenbasis of ρ = (H⊗H)·diag(λ)·(H⊗H) has every entry of modulus ½.
// Compiling only the phases of V's diagonal leaves the basis change out, and
// each column of V − D then has norm 1. The general synthesizer realizes the
// same V exactly.
func (s *CompileSuite) TestDensityBasisNeedsGeneralSynthesis() {
	h := complex(1/math.Sqrt2, 0)
	had, err := matrix.FromRows([][]complex128{{h, h}, {h, -h}})
	require.NoError(s.T(), err)
	q, err := matrix.Kron(had, had)
	require.NoError(s.T(), err)
	lam, err := matrix.Diagonal([]complex128{0.4, 0.3, 0.2, 0.1})
	require.NoError(s.T(), err)
	rho, err := matrix.MulAll(q, lam, q)
	require.NoError(s.T(), err)
	require.InDelta(s.T(), 0.1, matrix.OffDiagonalMass(rho), 1e-12)

	dec, err := eigen.DecomposeHermitian(rho, s.cfg)
	require.NoError(s.T(), err)
	v := dec.V.Dense()

	diag := v.Diag()
	phases := make([]float64, len(diag))
	for i, z := range diag {
		require.InDelta(s.T(), 0.5, cmplx.Abs(z), 1e-9)
		phases[i] = cmplx.Phase(z)
	}
	truncated, err := matrix.FromPhases(phases)
	require.NoError(s.T(), err)
	cd, err := walsh.Synthesize(truncated, s.cfg)
	require.NoError(s.T(), err)

	r, err := fidelity.Validate(v, cd, s.cfg)
	require.ErrorIs(s.T(), err, fidelity.ErrReconstructionTolerance)
	require.False(s.T(), r.Passed)
	require.GreaterOrEqual(s.T(), r.OperatorNormError, 1-1e-9)
	require.InDelta(s.T(), 0.5, r.MaxAbsError, 1e-9)

	cv, err := synth.Synthesize(s.ctx, dec.V, s.cfg)
	require.NoError(s.T(), err)
	r, err = fidelity.Validate(v, cv, s.cfg)
	require.NoError(s.T(), err)
	require.True(s.T(), r.Passed)
	require.Less(s.T(), r.OperatorNormError, 1e-6)
}

// A 2-qubit density matrix is compiled as exp(i·ρ).
func (s *CompileSuite) TestDensityMatrix() {
	lams := []float64{0.6, 0.25, 0.15, 0}
	d := make([]complex128, len(lams))
	e := make([]complex128, len(lams))
	for i, l := range lams {
		d[i] = complex(l, 0)
		e[i] = cmplx.Exp(complex(0, l))
	}
	rho, q := MustSpectrum(s.T(), d, 31)
	em, err := matrix.Diagonal(e)
	require.NoError(s.T(), err)
	qAdj, err := matrix.Adjoint(q)
	require.NoError(s.T(), err)
	want, err := matrix.MulAll(q, em, qAdj)
	require.NoError(s.T(), err)

	res, err := unisynth.Compile(s.ctx, rho, s.cfg)
	require.NoError(s.T(), err)
	require.Equal(s.T(), eigen.SourceHermitian, res.Decomposition.Source)
	require.Len(s.T(), res.Decomposition.Eigenvalues, 4)
	RequireRealizes(s.T(), want, res.Circuit.Circuit, 1e-6)

	viaHermitian, err := unisynth.CompileHermitian(s.ctx, rho, s.cfg)
	require.NoError(s.T(), err)
	RequireRealizes(s.T(), want, viaHermitian.Circuit.Circuit, 1e-6)
}

// A unitary that is also Hermitian is compiled as itself by Compile, and as
// exp(i·t·H) by CompileHermitian.
func (s *CompileSuite) TestHermitianUnitaryDispatch() {
	x, err := matrix.FromRows([][]complex128{{0, 1}, {1, 0}})
	require.NoError(s.T(), err)

	res, err := unisynth.Compile(s.ctx, x, s.cfg)
	require.NoError(s.T(), err)
	RequireRealizes(s.T(), x, res.Circuit.Circuit, 1e-6)

	cfg := config.New(config.WithEvolutionTime(math.Pi / 2))
	res, err = unisynth.CompileHermitian(s.ctx, x, cfg)
	require.NoError(s.T(), err)
	// exp(i·π/2·X) = i·X
	ix, err := matrix.Scale(x, 1i)
	require.NoError(s.T(), err)
	RequireRealizes(s.T(), ix, res.Circuit.Circuit, 1e-6)
}

func (s *CompileSuite) TestIdentityCompilesToNothing() {
	for n := 1; n <= 3; n++ {
		id, err := matrix.Identity(1 << n)
		require.NoError(s.T(), err)
		res, err := unisynth.Compile(s.ctx, id, s.cfg)
		require.NoError(s.T(), err)
		require.Zero(s.T(), res.Circuit.Len())
		require.Zero(s.T(), res.Circuit.GlobalPhase)
	}
}

func (s *CompileSuite) TestInverseLaw() {
	u := MustRandomUnitary(s.T(), 8, 5)
	res, err := unisynth.Compile(s.ctx, u, s.cfg)
	require.NoError(s.T(), err)
	uAdj, err := matrix.Adjoint(u)
	require.NoError(s.T(), err)
	RequireRealizes(s.T(), uAdj, res.Circuit.Inverse(), 1e-6)
}

func (s *CompileSuite) TestDiagonalOnly() {
	cfg := config.New(config.WithStrategy(config.StrategyDiagonalOnly))
	d, err := matrix.FromPhases([]float64{0.3, -1.2, 2.5, 0.1})
	require.NoError(s.T(), err)

	res, err := unisynth.Compile(s.ctx, d.Dense(), cfg)
	require.NoError(s.T(), err)
	v, ok := res.Circuit.Segment(circuit.SegmentBasis)
	require.True(s.T(), ok)
	require.Zero(s.T(), v.Len())
	RequireRealizes(s.T(), d.Dense(), res.Circuit.Circuit, 1e-9)

	h, err := matrix.Diagonal([]complex128{0.5, 1, -2, 0})
	require.NoError(s.T(), err)
	res, err = unisynth.Compile(s.ctx, h, cfg)
	require.NoError(s.T(), err)
	require.Equal(s.T(), eigen.SourceHermitian, res.Decomposition.Source)
	want, err := matrix.Diagonal([]complex128{cmplx.Exp(0.5i), cmplx.Exp(1i), cmplx.Exp(-2i), 1})
	require.NoError(s.T(), err)
	RequireRealizes(s.T(), want, res.Circuit.Circuit, 1e-9)
}

func (s *CompileSuite) TestRejections() {
	bad, err := matrix.FromRows([][]complex128{{1, 2}, {3, 4}})
	require.NoError(s.T(), err)
	res, err := unisynth.Compile(s.ctx, bad, s.cfg)
	require.ErrorIs(s.T(), err, matrix.ErrNotUnitary)
	require.NotNil(s.T(), res)
	require.Empty(s.T(), res.Stages)

	odd, err := matrix.Identity(3)
	require.NoError(s.T(), err)
	_, err = unisynth.Compile(s.ctx, odd, s.cfg)
	require.ErrorIs(s.T(), err, matrix.ErrDimensionMismatch)

	_, err = unisynth.Compile(s.ctx, MustRandomUnitary(s.T(), 8, 1), config.New(config.WithMaxQubits(2)))
	require.ErrorIs(s.T(), err, config.ErrQubitCountExceeded)

	_, err = unisynth.Compile(s.ctx, MustRandomUnitary(s.T(), 2, 1), config.Config{})
	require.ErrorIs(s.T(), err, config.ErrInvalidConfig)

	_, err = unisynth.CompileUnitary(s.ctx, matrix.Unitary{}, s.cfg)
	require.ErrorIs(s.T(), err, matrix.ErrNilMatrix)
}

func (s *CompileSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	res, err := unisynth.Compile(ctx, MustRandomUnitary(s.T(), 8, 2), s.cfg)
	require.True(s.T(), errors.Is(err, context.Canceled))

	// The decomposition finished before synthesis saw the cancellation.
	require.NotNil(s.T(), res)
	require.Len(s.T(), res.Stages, 1)
	require.Equal(s.T(), unisynth.StageEigen, res.Stages[0].Stage)
	require.Equal(s.T(), 3, res.Decomposition.V.Qubits())
}

// Concurrent calls with different tolerances each see their own config.
func (s *CompileSuite) TestConcurrentConfigs() {
	tols := []float64{1e-5, 1e-6, 1e-7, 1e-8}
	reports := make([]fidelity.Report, len(tols))
	targets := make([]*matrix.Dense, len(tols))
	for i := range targets {
		targets[i] = MustRandomUnitary(s.T(), 4, int64(i))
	}
	var g errgroup.Group
	for i, tol := range tols {
		i, tol := i, tol
		g.Go(func() error {
			u := targets[i]
			res, err := unisynth.Compile(context.Background(), u, config.New(config.WithTolerance(tol)))
			if err != nil {
				return err
			}
			reports[i] = res.Report
			return nil
		})
	}
	require.NoError(s.T(), g.Wait())
	for i, r := range reports {
		require.Equal(s.T(), tols[i], r.Tolerance)
		require.LessOrEqual(s.T(), r.OperatorNormError, tols[i])
	}
}

func (s *CompileSuite) TestPeepholeOff() {
	u := MustRandomUnitary(s.T(), 4, 9)
	on, err := unisynth.Compile(s.ctx, u, s.cfg)
	require.NoError(s.T(), err)
	off, err := unisynth.Compile(s.ctx, u, config.New(config.WithPeephole(false)))
	require.NoError(s.T(), err)
	require.LessOrEqual(s.T(), on.Circuit.Len(), off.Circuit.Len())
	RequireRealizes(s.T(), u, off.Circuit.Circuit, 1e-6)
}

func (s *CompileSuite) TestLogsOutcome() {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	cfg := config.New(config.WithLogger(logger))
	_, err := unisynth.Compile(s.ctx, MustRandomUnitary(s.T(), 4, 4), cfg)
	require.NoError(s.T(), err)
	require.Contains(s.T(), buf.String(), "unisynth: compiled")
	require.Contains(s.T(), buf.String(), "unisynth: decomposed")
}

func TestCompileSuite(t *testing.T) {
	suite.Run(t, new(CompileSuite))
}

func TestSynthesizeUnitary(t *testing.T) {
	u := MustRandomUnitary(t, 8, 12)
	uu, err := matrix.AsUnitary(u, 1e-9)
	require.NoError(t, err)
	c, r, err := unisynth.SynthesizeUnitary(context.Background(), uu, config.Default())
	require.NoError(t, err)
	require.True(t, r.Passed)
	require.Equal(t, c.Len(), r.GateCount)
	RequireRealizes(t, u, c, 1e-6)

	_, _, err = unisynth.SynthesizeUnitary(context.Background(), uu, config.New(config.WithMaxQubits(2)))
	require.ErrorIs(t, err, config.ErrQubitCountExceeded)
}
