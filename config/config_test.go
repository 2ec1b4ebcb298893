// SPDX-License-Identifier: MIT
package config_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unisynth/config"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, config.DefaultTolerance, cfg.Tolerance)
	require.Equal(t, config.DefaultMaxQubits, cfg.MaxQubits)
	require.Equal(t, config.StrategyGeneral, cfg.Strategy)
	require.GreaterOrEqual(t, cfg.Parallelism, 1)
	require.True(t, cfg.Peephole)
	require.False(t, cfg.FusedLeaves)
}

func TestNew_OptionsOverride(t *testing.T) {
	cfg := config.New(
		config.WithTolerance(1e-8),
		config.WithMaxQubits(3),
		config.WithSparsifyThreshold(0),
		config.WithDegeneracyTolerance(1e-9),
		config.WithEvolutionTime(-0.5),
		config.WithStrategy(config.StrategyDiagonalOnly),
		config.WithParallelism(1),
		config.WithFusedLeaves(true),
		config.WithPeephole(false),
	)
	require.NoError(t, cfg.Validate())
	require.Equal(t, 1e-8, cfg.Tolerance)
	require.Equal(t, 3, cfg.MaxQubits)
	require.Equal(t, -0.5, cfg.EvolutionTime)
	require.Equal(t, config.StrategyDiagonalOnly, cfg.Strategy)
	require.Equal(t, 1, cfg.Parallelism)
	require.True(t, cfg.FusedLeaves)
	require.False(t, cfg.Peephole)
}

func TestOptions_PanicOnNonsense(t *testing.T) {
	require.Panics(t, func() { config.WithTolerance(0) })
	require.Panics(t, func() { config.WithMaxQubits(0) })
	require.Panics(t, func() { config.WithSparsifyThreshold(-1) })
	require.Panics(t, func() { config.WithDegeneracyTolerance(0) })
	require.Panics(t, func() { config.WithStrategy("greedy") })
	require.Panics(t, func() { config.WithParallelism(0) })
}

func TestCheckQubits(t *testing.T) {
	cfg := config.New(config.WithMaxQubits(4))
	require.NoError(t, cfg.CheckQubits(4))
	require.ErrorIs(t, cfg.CheckQubits(5), config.ErrQubitCountExceeded)
}

func TestValidate_Rejects(t *testing.T) {
	for name, mutate := range map[string]func(*config.Config){
		"tolerance":   func(c *config.Config) { c.Tolerance = -1 },
		"maxQubits":   func(c *config.Config) { c.MaxQubits = 0 },
		"sparsify":    func(c *config.Config) { c.SparsifyThreshold = -1e-3 },
		"degeneracy":  func(c *config.Config) { c.DegeneracyTolerance = 0 },
		"strategy":    func(c *config.Config) { c.Strategy = "" },
		"parallelism": func(c *config.Config) { c.Parallelism = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
		})
	}
}

func TestLoad_YAMLOverlay(t *testing.T) {
	doc := `
tolerance: 1.0e-8
max_qubits: 5
strategy: diagonal-only
peephole: false
`
	cfg, err := config.Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, 1e-8, cfg.Tolerance)
	require.Equal(t, 5, cfg.MaxQubits)
	require.Equal(t, config.StrategyDiagonalOnly, cfg.Strategy)
	require.False(t, cfg.Peephole)
	// untouched keys keep defaults
	require.Equal(t, config.DefaultSparsifyThreshold, cfg.SparsifyThreshold)
	require.Equal(t, config.DefaultEvolutionTime, cfg.EvolutionTime)
}

func TestLoad_Empty(t *testing.T) {
	cfg, err := config.Load(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, config.DefaultTolerance, cfg.Tolerance)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(strings.NewReader("tolerance: -3\n"))
	require.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = config.Load(strings.NewReader("bogus_key: 1\n"))
	require.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = config.Load(strings.NewReader("strategy: greedy\n"))
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestLog_DefaultDiscardsAndCustomReceives(t *testing.T) {
	require.NotNil(t, config.Default().Log())
	config.Default().Log().Info("dropped")

	var buf bytes.Buffer
	cfg := config.New(config.WithLogger(log.New(&buf)))
	cfg.Log().Info("stage", "name", "eigen")
	require.Contains(t, buf.String(), "eigen")
}
