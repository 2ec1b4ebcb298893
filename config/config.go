// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultTolerance is the reconstruction bound ε in operator norm.
	DefaultTolerance = 1e-6

	// DefaultMaxQubits is the hard ceiling on register width. Dense 2ⁿ×2ⁿ
	// matrices grow as 4ⁿ, so the ceiling is checked before any work.
	DefaultMaxQubits = 8

	// DefaultSparsifyThreshold drops rotations and Walsh coefficients whose
	// magnitude is at or below it.
	DefaultSparsifyThreshold = 1e-10

	// DefaultDegeneracyTolerance groups eigenvalues closer than it into one
	// degenerate eigenspace.
	DefaultDegeneracyTolerance = 1e-6

	// DefaultEvolutionTime is t in U = exp(i·t·H) for Hermitian inputs.
	DefaultEvolutionTime = 1.0

	// DefaultFusedLeaves emits one KindUnitary gate per single-qubit leaf
	// instead of an RZ·RY·RZ triple.
	DefaultFusedLeaves = false

	// DefaultPeephole enables the Simplify pass on every circuit segment.
	DefaultPeephole = true
)

// Strategy selects how the eigenvector basis V is synthesized.
type Strategy string

const (
	// StrategyGeneral synthesizes V with the recursive cosine-sine
	// decomposition. Exact for any unitary V.
	StrategyGeneral Strategy = "general"

	// StrategyDiagonalOnly accepts only targets that are already diagonal
	// and fails with ErrNotDiagonal otherwise, instead of silently dropping
	// the basis change.
	StrategyDiagonalOnly Strategy = "diagonal-only"
)

var (
	// ErrInvalidConfig reports a field outside its documented domain.
	ErrInvalidConfig = errors.New("config: invalid configuration")

	// ErrQubitCountExceeded is returned before any work when the input
	// register is wider than MaxQubits.
	ErrQubitCountExceeded = errors.New("config: qubit count exceeds ceiling")
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicToleranceInvalid   = "config: WithTolerance: eps must be finite and > 0"
	panicMaxQubitsInvalid   = "config: WithMaxQubits: n must be ≥ 1"
	panicSparsifyInvalid    = "config: WithSparsifyThreshold: threshold must be finite and ≥ 0"
	panicDegeneracyInvalid  = "config: WithDegeneracyTolerance: tol must be finite and > 0"
	panicEvolutionInvalid   = "config: WithEvolutionTime: t must be finite"
	panicStrategyInvalid    = "config: WithStrategy: unknown strategy"
	panicParallelismInvalid = "config: WithParallelism: workers must be ≥ 1"
)

// Config is the effective policy of one compilation. The zero value is not
// valid; start from Default, New or Load.
type Config struct {
	Tolerance           float64  `yaml:"tolerance"`
	MaxQubits           int      `yaml:"max_qubits"`
	SparsifyThreshold   float64  `yaml:"sparsify_threshold"`
	DegeneracyTolerance float64  `yaml:"degeneracy_tolerance"`
	EvolutionTime       float64  `yaml:"evolution_time"`
	Strategy            Strategy `yaml:"strategy"`
	Parallelism         int      `yaml:"parallelism"`
	FusedLeaves         bool     `yaml:"fused_leaves"`
	Peephole            bool     `yaml:"peephole"`

	// Logger receives stage diagnostics from the pipeline facade. Nil
	// discards them.
	Logger *log.Logger `yaml:"-"`
}

// Option mutates a Config under construction.
type Option func(*Config)

// Default returns the documented defaults with Parallelism = GOMAXPROCS.
func Default() Config {
	return Config{
		Tolerance:           DefaultTolerance,
		MaxQubits:           DefaultMaxQubits,
		SparsifyThreshold:   DefaultSparsifyThreshold,
		DegeneracyTolerance: DefaultDegeneracyTolerance,
		EvolutionTime:       DefaultEvolutionTime,
		Strategy:            StrategyGeneral,
		Parallelism:         runtime.GOMAXPROCS(0),
		FusedLeaves:         DefaultFusedLeaves,
		Peephole:            DefaultPeephole,
	}
}

// New applies opts over Default in order; later options win.
func New(opts ...Option) Config {
	cfg := Default()
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// WithTolerance sets ε. Panics unless eps is finite and > 0.
func WithTolerance(eps float64) Option {
	if !finite(eps) || eps <= 0 {
		panic(panicToleranceInvalid)
	}

	return func(c *Config) { c.Tolerance = eps }
}

// WithMaxQubits sets the register ceiling. Panics if n < 1.
func WithMaxQubits(n int) Option {
	if n < 1 {
		panic(panicMaxQubitsInvalid)
	}

	return func(c *Config) { c.MaxQubits = n }
}

// WithSparsifyThreshold sets the rotation drop threshold. Panics on
// negative or non-finite values.
func WithSparsifyThreshold(threshold float64) Option {
	if !finite(threshold) || threshold < 0 {
		panic(panicSparsifyInvalid)
	}

	return func(c *Config) { c.SparsifyThreshold = threshold }
}

// WithDegeneracyTolerance sets the eigenvalue grouping width.
func WithDegeneracyTolerance(tol float64) Option {
	if !finite(tol) || tol <= 0 {
		panic(panicDegeneracyInvalid)
	}

	return func(c *Config) { c.DegeneracyTolerance = tol }
}

// WithEvolutionTime sets t for Hermitian generators.
func WithEvolutionTime(t float64) Option {
	if !finite(t) {
		panic(panicEvolutionInvalid)
	}

	return func(c *Config) { c.EvolutionTime = t }
}

// WithStrategy selects the basis synthesis strategy.
func WithStrategy(s Strategy) Option {
	if !s.valid() {
		panic(panicStrategyInvalid)
	}

	return func(c *Config) { c.Strategy = s }
}

// WithParallelism bounds concurrent sub-synthesis tasks. 1 means sequential.
func WithParallelism(workers int) Option {
	if workers < 1 {
		panic(panicParallelismInvalid)
	}

	return func(c *Config) { c.Parallelism = workers }
}

// WithFusedLeaves toggles fused single-qubit leaf gates.
func WithFusedLeaves(on bool) Option { return func(c *Config) { c.FusedLeaves = on } }

// WithPeephole toggles the Simplify pass.
func WithPeephole(on bool) Option { return func(c *Config) { c.Peephole = on } }

// WithLogger attaches a logger; nil restores the discard logger.
func WithLogger(l *log.Logger) Option { return func(c *Config) { c.Logger = l } }

func (s Strategy) valid() bool {
	return s == StrategyGeneral || s == StrategyDiagonalOnly
}

// Validate reports the first field outside its domain, wrapped around
// ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case !finite(c.Tolerance) || c.Tolerance <= 0:
		return fmt.Errorf("config: tolerance %g: %w", c.Tolerance, ErrInvalidConfig)
	case c.MaxQubits < 1:
		return fmt.Errorf("config: max_qubits %d: %w", c.MaxQubits, ErrInvalidConfig)
	case !finite(c.SparsifyThreshold) || c.SparsifyThreshold < 0:
		return fmt.Errorf("config: sparsify_threshold %g: %w", c.SparsifyThreshold, ErrInvalidConfig)
	case !finite(c.DegeneracyTolerance) || c.DegeneracyTolerance <= 0:
		return fmt.Errorf("config: degeneracy_tolerance %g: %w", c.DegeneracyTolerance, ErrInvalidConfig)
	case !finite(c.EvolutionTime):
		return fmt.Errorf("config: evolution_time %g: %w", c.EvolutionTime, ErrInvalidConfig)
	case !c.Strategy.valid():
		return fmt.Errorf("config: strategy %q: %w", c.Strategy, ErrInvalidConfig)
	case c.Parallelism < 1:
		return fmt.Errorf("config: parallelism %d: %w", c.Parallelism, ErrInvalidConfig)
	}

	return nil
}

// CheckQubits fails with ErrQubitCountExceeded when n > MaxQubits.
func (c Config) CheckQubits(n int) error {
	if n > c.MaxQubits {
		return fmt.Errorf("config: CheckQubits(%d > %d): %w", n, c.MaxQubits, ErrQubitCountExceeded)
	}

	return nil
}

// Log returns the configured logger or one that discards everything.
func (c Config) Log() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}

	return discard
}

var discard = log.New(io.Discard)

// Load decodes a YAML document over Default and validates the result.
// Unknown keys are rejected. An empty document yields Default.
//
//	tolerance: 1e-8
//	max_qubits: 6
//	strategy: diagonal-only
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: Load: %w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: Load: %w", err)
	}

	return cfg, nil
}
