// SPDX-License-Identifier: MIT
package eigen_test

import (
	"errors"
	"math"
	"math/cmplx"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/unisynth/config"
	"github.com/katalvlaran/unisynth/eigen"
	"github.com/katalvlaran/unisynth/matrix"
)

func mustRandomUnitary(t testing.TB, dim int, seed int64) *matrix.Dense {
	t.Helper()
	u, err := matrix.RandomUnitary(dim, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)

	return u
}

// withSpectrum returns Q·diag(d)·Q† for a random unitary Q.
func withSpectrum(t testing.TB, d []complex128, seed int64) *matrix.Dense {
	t.Helper()
	q := mustRandomUnitary(t, len(d), seed)
	dm, err := matrix.Diagonal(d)
	require.NoError(t, err)
	qAdj, err := matrix.Adjoint(q)
	require.NoError(t, err)
	m, err := matrix.MulAll(q, dm, qAdj)
	require.NoError(t, err)

	return m
}

// requireDecomposition checks V·V† ≈ I, |dᵢ| = 1, sorted phases and the
// reconstruction of target.
func requireDecomposition(t testing.TB, target *matrix.Dense, dec eigen.Decomposition, eps float64) {
	t.Helper()
	require.LessOrEqual(t, matrix.UnitarityError(dec.V.Dense()), 1e-9)
	for _, z := range dec.D.Entries() {
		require.InDelta(t, 1, cmplx.Abs(z), 1e-9)
	}
	require.True(t, sort.Float64sAreSorted(dec.D.Phases()))
	got, err := dec.Unitary()
	require.NoError(t, err)
	dist, err := matrix.OperatorDistance(target, got)
	require.NoError(t, err)
	require.LessOrEqual(t, dist, eps)
	require.LessOrEqual(t, dec.Residual, eps)
}

type UnitarySuite struct {
	suite.Suite
	cfg config.Config
}

func (s *UnitarySuite) SetupTest() { s.cfg = config.Default() }

func (s *UnitarySuite) TestRandom() {
	for n := 1; n <= 5; n++ {
		u := mustRandomUnitary(s.T(), 1<<n, int64(100+n))
		dec, err := eigen.DecomposeUnitary(u, s.cfg)
		require.NoError(s.T(), err)
		require.Equal(s.T(), eigen.SourceUnitary, dec.Source)
		require.Nil(s.T(), dec.Eigenvalues)
		requireDecomposition(s.T(), u, dec, 1e-9)
	}
}

// Exactly repeated eigenvalues: the solver's basis for the shared space is
// arbitrary and must be re-orthonormalized.
func (s *UnitarySuite) TestDegenerate() {
	w := cmplx.Exp(0.9i)
	for name, d := range map[string][]complex128{
		"pairs":         {w, w, -1, -1},
		"conjugatePair": {w, cmplx.Conj(w), w, cmplx.Conj(w)},
		"fourfold":      {1i, 1i, 1i, 1i, 1, -1i, -1i, 1},
		"signs":         {1, -1, 1, -1, 1, -1, 1, -1},
	} {
		s.Run(name, func() {
			u := withSpectrum(s.T(), d, 7)
			dec, err := eigen.DecomposeUnitary(u, s.cfg)
			require.NoError(s.T(), err)
			requireDecomposition(s.T(), u, dec, 1e-9)
		})
	}
}

// Eigenvalues closer than the grouping width but distinct.
func (s *UnitarySuite) TestNearlyDegenerate() {
	d := []complex128{cmplx.Exp(0.3i), cmplx.Exp(complex(0, 0.3+1e-8)), cmplx.Exp(-0.3i), cmplx.Exp(2i)}
	u := withSpectrum(s.T(), d, 9)
	dec, err := eigen.DecomposeUnitary(u, s.cfg)
	require.NoError(s.T(), err)
	requireDecomposition(s.T(), u, dec, 1e-7)
}

func (s *UnitarySuite) TestIdentityGivesIdentityBasis() {
	id, err := matrix.Identity(8)
	require.NoError(s.T(), err)
	dec, err := eigen.DecomposeUnitary(id, s.cfg)
	require.NoError(s.T(), err)
	dist, err := matrix.MaxAbsDistance(id, dec.V.Dense())
	require.NoError(s.T(), err)
	require.Zero(s.T(), dist)
	require.True(s.T(), dec.D.IsIdentity(0))
}

func (s *UnitarySuite) TestDeterministic() {
	u := withSpectrum(s.T(), []complex128{1i, 1i, -1, 1}, 3)
	a, err := eigen.DecomposeUnitary(u, s.cfg)
	require.NoError(s.T(), err)
	b, err := eigen.DecomposeUnitary(u, s.cfg)
	require.NoError(s.T(), err)
	require.Equal(s.T(), a.D.Phases(), b.D.Phases())
	require.Equal(s.T(), a.V.Dense().Data(), b.V.Dense().Data())
}

func (s *UnitarySuite) TestRejectsNonUnitary() {
	m, err := matrix.NewDense(2, 2, []complex128{1, 1, 0, 1})
	require.NoError(s.T(), err)
	_, err = eigen.DecomposeUnitary(m, s.cfg)
	require.ErrorIs(s.T(), err, matrix.ErrNotUnitary)

	_, err = eigen.DecomposeUnitary(nil, s.cfg)
	require.ErrorIs(s.T(), err, matrix.ErrNilMatrix)
}

func TestUnitarySuite(t *testing.T) {
	suite.Run(t, new(UnitarySuite))
}

func TestHermitian_Spectrum(t *testing.T) {
	cfg := config.Default()
	want := []float64{-2, -0.5, -0.5, 0, 1, 1, 1, 3}
	d := make([]complex128, len(want))
	for i, x := range want {
		d[i] = complex(x, 0)
	}
	h := withSpectrum(t, d, 21)

	vals, v, err := eigen.Hermitian(h, cfg)
	require.NoError(t, err)
	require.True(t, floats.EqualApprox(want, vals, 1e-9))
	require.LessOrEqual(t, matrix.UnitarityError(v), 1e-9)
}

// Non power-of-two sizes are accepted by the building block.
func TestHermitian_OddSize(t *testing.T) {
	h, err := matrix.FromRows([][]complex128{{2, 1i, 0}, {-1i, 2, 0}, {0, 0, 5}})
	require.NoError(t, err)
	vals, _, err := eigen.Hermitian(h, config.Default())
	require.NoError(t, err)
	require.True(t, floats.EqualApprox([]float64{1, 3, 5}, vals, 1e-12))
}

func TestHermitian_Rejects(t *testing.T) {
	m, err := matrix.FromRows([][]complex128{{1, 1i}, {1i, 1}})
	require.NoError(t, err)
	_, _, err = eigen.Hermitian(m, config.Default())
	require.ErrorIs(t, err, matrix.ErrNotHermitian)
}

func TestDecomposeHermitian_Generator(t *testing.T) {
	cfg := config.New(config.WithEvolutionTime(0.5))
	lams := []complex128{0.1, 0.1, 0.4, 0.4}
	h := withSpectrum(t, lams, 5)
	dec, err := eigen.DecomposeHermitian(h, cfg)
	require.NoError(t, err)
	require.Equal(t, eigen.SourceHermitian, dec.Source)
	require.True(t, floats.EqualApprox([]float64{0.1, 0.1, 0.4, 0.4}, dec.Eigenvalues, 1e-9))
	require.True(t, floats.EqualApprox([]float64{0.05, 0.05, 0.2, 0.2}, dec.D.Phases(), 1e-9))
	require.LessOrEqual(t, dec.Residual, 1e-9)
}

// Large eigenvalues wrap: phases stay sorted in (−π, π] and Eigenvalues
// follow the same permutation.
func TestDecomposeHermitian_PhaseWrap(t *testing.T) {
	h := withSpectrum(t, []complex128{0, 1, 3, 4}, 8)
	dec, err := eigen.DecomposeHermitian(h, config.Default())
	require.NoError(t, err)
	require.True(t, floats.EqualApprox([]float64{4 - 2*math.Pi, 0, 1, 3}, dec.D.Phases(), 1e-9))
	require.True(t, floats.EqualApprox([]float64{4, 0, 1, 3}, dec.Eigenvalues, 1e-9))
}

func TestDecompose_Dispatch(t *testing.T) {
	cfg := config.Default()

	u := mustRandomUnitary(t, 4, 1)
	dec, err := eigen.Decompose(u, cfg)
	require.NoError(t, err)
	require.Equal(t, eigen.SourceUnitary, dec.Source)

	rho := withSpectrum(t, []complex128{0.7, 0.2, 0.1, 0}, 2)
	dec, err = eigen.Decompose(rho, cfg)
	require.NoError(t, err)
	require.Equal(t, eigen.SourceHermitian, dec.Source)

	bad, err := matrix.FromRows([][]complex128{{1, 2}, {3, 4}})
	require.NoError(t, err)
	_, err = eigen.Decompose(bad, cfg)
	require.ErrorIs(t, err, matrix.ErrNotUnitary)
	var te *matrix.ToleranceError
	require.True(t, errors.As(err, &te))

	odd, err := matrix.NewDense(3, 3, nil)
	require.NoError(t, err)
	_, err = eigen.Decompose(odd, cfg)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = eigen.Decompose(mustRandomUnitary(t, 16, 1), config.New(config.WithMaxQubits(3)))
	require.ErrorIs(t, err, config.ErrQubitCountExceeded)
}
