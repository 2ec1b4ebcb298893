// SPDX-License-Identifier: MIT

package unisynth

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/unisynth/circuit"
	"github.com/katalvlaran/unisynth/config"
	"github.com/katalvlaran/unisynth/eigen"
	"github.com/katalvlaran/unisynth/fidelity"
	"github.com/katalvlaran/unisynth/matrix"
	"github.com/katalvlaran/unisynth/synth"
	"github.com/katalvlaran/unisynth/walsh"
)

// Stage names recorded in Result.Stages.
const (
	StageEigen = "eigen"
	StageBasis = circuit.SegmentBasis
	StageDiag  = circuit.SegmentDiagonal
	StageFinal = fidelity.StageFinal
)

// StageReport is the checked postcondition of one pipeline stage.
type StageReport struct {
	Stage     string
	Metric    string
	Value     float64
	Tolerance float64
	Passed    bool
	Gates     int
	Elapsed   time.Duration
}

// Result is everything one Compile call produced.
type Result struct {
	// Circuit realizes the target: V† gates, then D, then V.
	Circuit       circuit.Composed
	Decomposition eigen.Decomposition
	// Target is the unitary Circuit is validated against: the input itself,
	// or exp(i·t·H) for a Hermitian generator.
	Target *matrix.Dense
	Report fidelity.Report
	Stages []StageReport
}

// input selects how the matrix handed to compile is interpreted.
type input uint8

const (
	inputAuto input = iota
	inputUnitary
	inputHermitian
)

// Compile turns m into a gate sequence realizing it within cfg.Tolerance.
// Unitary inputs are compiled as given; Hermitian inputs as exp(i·t·m) with
// t = cfg.EvolutionTime.
//
// Implementation:
//   - Stage 1: cfg.Validate, register shape, cfg.CheckQubits.
//   - Stage 2: eigen.Decompose, or the diagonal shortcut under
//     config.StrategyDiagonalOnly.
//   - Stage 3: synth.Synthesize(V) and walsh.Synthesize(D) concurrently.
//   - Stage 4: optional circuit.Simplify per factor, circuit(V†) by
//     Circuit.Inverse, stage checks of circuit(V) and circuit(D).
//   - Stage 5: circuit.Compose and the final fidelity.Validate.
//
// Once the input has passed Stage 1, every failure returns the partially
// filled Result along with the error; Stage 1 failures return a nil Result.
//
// Errors:
//   - config.ErrInvalidConfig, config.ErrQubitCountExceeded.
//   - matrix.ErrDimensionMismatch, matrix.ErrNotUnitary,
//     matrix.ErrNotDiagonal (diagonal-only strategy).
//   - eigen.ErrNumericalInstability, fidelity.ErrReconstructionTolerance.
//   - ctx.Err().
func Compile(ctx context.Context, m *matrix.Dense, cfg config.Config) (*Result, error) {
	return compile(ctx, m, cfg, inputAuto)
}

// CompileUnitary is Compile for an input already tagged unitary.
func CompileUnitary(ctx context.Context, u matrix.Unitary, cfg config.Config) (*Result, error) {
	if u.IsZero() {
		return nil, fmt.Errorf("unisynth: CompileUnitary: %w", matrix.ErrNilMatrix)
	}

	return compile(ctx, u.Dense(), cfg, inputUnitary)
}

// CompileHermitian compiles exp(i·t·h), t = cfg.EvolutionTime, even when h
// happens to be unitary as well.
func CompileHermitian(ctx context.Context, h *matrix.Dense, cfg config.Config) (*Result, error) {
	return compile(ctx, h, cfg, inputHermitian)
}

func compile(ctx context.Context, m *matrix.Dense, cfg config.Config, in input) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("unisynth: %w", err)
	}
	n, err := matrix.ValidateRegister(m)
	if err != nil {
		return nil, fmt.Errorf("unisynth: %w", err)
	}
	if err = cfg.CheckQubits(n); err != nil {
		return nil, fmt.Errorf("unisynth: %w", err)
	}
	logger := cfg.Log().With("qubits", n, "strategy", cfg.Strategy)
	logger.Debug("unisynth: compile started")

	res := &Result{}
	start := time.Now()
	dec, err := decompose(m, cfg, in)
	if err != nil {
		logger.Warn("unisynth: decomposition failed", "err", err)
		return res, err
	}
	res.Decomposition = dec
	res.Stages = append(res.Stages, StageReport{
		Stage:     StageEigen,
		Metric:    matrix.MetricOperatorNorm,
		Value:     dec.Residual,
		Tolerance: cfg.Tolerance,
		Passed:    true,
		Elapsed:   time.Since(start),
	})
	logger.Debug("unisynth: decomposed", "source", dec.Source, "residual", dec.Residual)

	if dec.Source == eigen.SourceUnitary {
		res.Target = m
	} else if res.Target, err = dec.Unitary(); err != nil {
		return res, fmt.Errorf("unisynth: %w", err)
	}

	start = time.Now()
	var cv, cd circuit.Circuit
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cv, err = synth.Synthesize(gctx, dec.V, cfg)
		return err
	})
	g.Go(func() error {
		var err error
		cd, err = walsh.Synthesize(dec.D, cfg)
		return err
	})
	if err = g.Wait(); err != nil {
		logger.Warn("unisynth: synthesis failed", "err", err)
		return res, err
	}
	if cfg.Peephole {
		cv = circuit.Simplify(cv, cfg.SparsifyThreshold)
		cd = circuit.Simplify(cd, cfg.SparsifyThreshold)
	}
	elapsed := time.Since(start)

	for _, st := range []struct {
		name   string
		target *matrix.Dense
		c      circuit.Circuit
	}{
		{StageBasis, dec.V.Dense(), cv},
		{StageDiag, dec.D.Dense(), cd},
	} {
		r, err := fidelity.ValidateStage(st.name, st.target, st.c, cfg)
		if r.Achieved != nil {
			res.Stages = append(res.Stages, stageReport(st.name, r, elapsed))
		}
		if err != nil {
			logger.Warn("unisynth: stage check failed", "stage", st.name, "err", err)
			return res, err
		}
	}

	composed, err := circuit.Compose(cv, cd, cv.Inverse())
	if err != nil {
		return res, fmt.Errorf("unisynth: %w", err)
	}
	res.Circuit = composed

	start = time.Now()
	res.Report, err = fidelity.Validate(res.Target, composed.Circuit, cfg)
	if res.Report.Achieved != nil {
		res.Stages = append(res.Stages, stageReport(StageFinal, res.Report, time.Since(start)))
	}
	if err != nil {
		logger.Warn("unisynth: final check failed", "report", res.Report.String())
		return res, err
	}

	st := composed.Stats()
	logger.Info("unisynth: compiled",
		"gates", st.Gates, "cnots", st.CNOTs, "depth", st.Depth,
		"error", res.Report.OperatorNormError)

	return res, nil
}

// SynthesizeUnitary compiles u directly by cosine-sine recursion, without
// the eigendecomposition step, and runs the mandatory final check.
//
// Errors: as synth.Synthesize, plus fidelity.ErrReconstructionTolerance (the
// circuit and report are returned with it).
func SynthesizeUnitary(ctx context.Context, u matrix.Unitary, cfg config.Config) (circuit.Circuit, fidelity.Report, error) {
	if err := cfg.Validate(); err != nil {
		return circuit.Circuit{}, fidelity.Report{}, fmt.Errorf("unisynth: %w", err)
	}
	c, err := synth.Synthesize(ctx, u, cfg)
	if err != nil {
		return circuit.Circuit{}, fidelity.Report{}, err
	}
	if cfg.Peephole {
		c = circuit.Simplify(c, cfg.SparsifyThreshold)
	}
	r, err := fidelity.Validate(u.Dense(), c, cfg)
	if err != nil {
		cfg.Log().Warn("unisynth: final check failed", "report", r.String())
	}

	return c, r, err
}

// decompose picks the eigendecomposition path for in and cfg.Strategy.
func decompose(m *matrix.Dense, cfg config.Config, in input) (eigen.Decomposition, error) {
	if cfg.Strategy == config.StrategyDiagonalOnly {
		return diagonalOnly(m, cfg, in)
	}
	var dec eigen.Decomposition
	var err error
	switch in {
	case inputUnitary:
		dec, err = eigen.DecomposeUnitary(m, cfg)
	case inputHermitian:
		dec, err = eigen.DecomposeHermitian(m, cfg)
	default:
		dec, err = eigen.Decompose(m, cfg)
	}
	if err != nil {
		return eigen.Decomposition{}, fmt.Errorf("unisynth: %w", err)
	}

	return dec, nil
}

// diagonalOnly builds V = I and D from the diagonal of m. Targets with
// off-diagonal mass above cfg.Tolerance are rejected rather than truncated.
func diagonalOnly(m *matrix.Dense, cfg config.Config, in input) (eigen.Decomposition, error) {
	if mass := matrix.OffDiagonalMass(m); mass > cfg.Tolerance {
		return eigen.Decomposition{}, fmt.Errorf("unisynth: %s strategy: %w", cfg.Strategy,
			matrix.NewToleranceError(StageEigen, matrix.MetricOffDiagonal, mass, cfg.Tolerance, matrix.ErrNotDiagonal))
	}
	id, err := matrix.Identity(m.Rows())
	if err != nil {
		return eigen.Decomposition{}, fmt.Errorf("unisynth: %w", err)
	}
	v, err := matrix.AsUnitary(id, cfg.Tolerance)
	if err != nil {
		return eigen.Decomposition{}, fmt.Errorf("unisynth: %w", err)
	}

	hermitian := in == inputHermitian || (in == inputAuto && !matrix.IsUnitary(m, cfg.Tolerance))
	if !hermitian {
		d, err := matrix.AsDiagonal(m, cfg.Tolerance)
		if err != nil {
			return eigen.Decomposition{}, fmt.Errorf("unisynth: %w", err)
		}
		return eigen.Decomposition{D: d, V: v, Source: eigen.SourceUnitary}, nil
	}

	if err = matrix.ValidateHermitian(m, cfg.Tolerance*math.Max(1, matrix.MaxAbs(m))); err != nil {
		return eigen.Decomposition{}, fmt.Errorf("unisynth: %w", err)
	}
	diag := m.Diag()
	vals := make([]float64, len(diag))
	phases := make([]float64, len(diag))
	for i, z := range diag {
		vals[i] = real(z)
		phases[i] = cfg.EvolutionTime * real(z)
	}
	d, err := matrix.FromPhases(phases)
	if err != nil {
		return eigen.Decomposition{}, fmt.Errorf("unisynth: %w", err)
	}

	return eigen.Decomposition{D: d, V: v, Eigenvalues: vals, Source: eigen.SourceHermitian}, nil
}

func stageReport(stage string, r fidelity.Report, elapsed time.Duration) StageReport {
	return StageReport{
		Stage:     stage,
		Metric:    matrix.MetricOperatorNorm,
		Value:     r.OperatorNormError,
		Tolerance: r.Tolerance,
		Passed:    r.Passed,
		Gates:     r.GateCount,
		Elapsed:   elapsed,
	}
}
