// SPDX-License-Identifier: MIT

package synth

import (
	"context"
	"errors"
	"fmt"
	"math/cmplx"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/katalvlaran/unisynth/circuit"
	"github.com/katalvlaran/unisynth/config"
	"github.com/katalvlaran/unisynth/matrix"
	"github.com/katalvlaran/unisynth/walsh"
)

// ErrMalformedTree reports a Tree whose indices or kinds are inconsistent.
var ErrMalformedTree = errors.New("synth: malformed decomposition tree")

// Synthesize compiles u into a circuit on u.Qubits() qubits that realizes u
// up to rounding, global phase included.
//
// Implementation:
//   - Stage 1: cfg.CheckQubits before any factorization.
//   - Stage 2: Build the decomposition tree.
//   - Stage 3: Tree.Emit.
//
// Errors:
//   - matrix.ErrNilMatrix for a zero-value u, config.ErrQubitCountExceeded.
//   - ctx.Err() when ctx is cancelled mid-build.
//   - eigen.ErrNumericalInstability from a failed inner factorization.
func Synthesize(ctx context.Context, u matrix.Unitary, cfg config.Config) (circuit.Circuit, error) {
	t, err := Build(ctx, u, cfg)
	if err != nil {
		return circuit.Circuit{}, err
	}

	return t.Emit(cfg)
}

// Build returns the decomposition tree of u without emitting gates.
// Errors as Synthesize.
func Build(ctx context.Context, u matrix.Unitary, cfg config.Config) (*Tree, error) {
	if u.IsZero() {
		return nil, fmt.Errorf("synth: Build: %w", matrix.ErrNilMatrix)
	}
	n := u.Qubits()
	if n < 1 {
		return nil, fmt.Errorf("synth: Build: %w", matrix.ErrDimensionMismatch)
	}
	if err := cfg.CheckQubits(n); err != nil {
		return nil, fmt.Errorf("synth: Build: %w", err)
	}

	extra := int64(cfg.Parallelism - 1)
	if extra < 0 {
		extra = 0
	}
	b := &builder{
		tree: newTree(n),
		cfg:  cfg,
		sem:  semaphore.NewWeighted(extra),
	}
	root, err := b.build(ctx, u.Dense(), n)
	if err != nil {
		return nil, err
	}
	b.tree.Root = root

	return b.tree, nil
}

// builder carries the shared state of one Build call. sem bounds the
// goroutines spawned beyond the caller's own.
type builder struct {
	tree *Tree
	cfg  config.Config
	sem  *semaphore.Weighted
}

// build adds the subtree for the n-qubit unitary u and returns its root.
func (b *builder) build(ctx context.Context, u *matrix.Dense, n int) (int, error) {
	if err := ctx.Err(); err != nil {
		return noChild, err
	}
	if matrix.IsDiagonal(u, b.cfg.SparsifyThreshold) {
		return b.diagonal(u, n), nil
	}
	if n == 1 {
		return b.leaf(u), nil
	}

	u00, u01, u10, u11, err := matrix.Quadrants(u)
	if err != nil {
		return noChild, fmt.Errorf("synth: %w", err)
	}
	if matrix.MaxAbs(u01) <= b.cfg.SparsifyThreshold && matrix.MaxAbs(u10) <= b.cfg.SparsifyThreshold {
		return b.demux(ctx, u00, u11, n)
	}
	f, err := CosineSine(u, b.cfg)
	if err != nil {
		return noChild, err
	}
	angles := make([]float64, len(f.Theta))
	for j, th := range f.Theta {
		angles[j] = 2 * th
	}

	var right, left int
	err = b.pair(ctx,
		func(ctx context.Context) (err error) {
			right, err = b.demux(ctx, f.R1, f.R2, n)
			return err
		},
		func(ctx context.Context) (err error) {
			left, err = b.demux(ctx, f.L1, f.L2, n)
			return err
		},
	)
	if err != nil {
		return noChild, err
	}

	return b.tree.add(Node{
		Kind:      NodeBranch,
		Qubits:    n,
		Right:     right,
		Left:      left,
		Primitive: walsh.PrimitiveRY,
		Angles:    angles,
	}), nil
}

// demux adds the subtree for a1 ⊕ a2 on n qubits. Equal blocks need no
// multiplexor and collapse to a single child on n−1 qubits.
func (b *builder) demux(ctx context.Context, a1, a2 *matrix.Dense, n int) (int, error) {
	if err := ctx.Err(); err != nil {
		return noChild, err
	}
	if dist, err := matrix.MaxAbsDistance(a1, a2); err == nil && dist <= b.cfg.SparsifyThreshold {
		return b.build(ctx, a1, n-1)
	}
	v, w, psi, err := Demux(a1, a2, b.cfg)
	if err != nil {
		return noChild, err
	}
	angles := make([]float64, len(psi))
	for j, p := range psi {
		angles[j] = -p
	}

	var right, left int
	err = b.pair(ctx,
		func(ctx context.Context) (err error) {
			right, err = b.build(ctx, w, n-1)
			return err
		},
		func(ctx context.Context) (err error) {
			left, err = b.build(ctx, v, n-1)
			return err
		},
	)
	if err != nil {
		return noChild, err
	}

	return b.tree.add(Node{
		Kind:      NodeBranch,
		Qubits:    n,
		Right:     right,
		Left:      left,
		Primitive: walsh.PrimitiveRZ,
		Angles:    angles,
	}), nil
}

// pair runs first inline and second on a new goroutine when a semaphore slot
// is free, sequentially otherwise. The first error wins.
func (b *builder) pair(ctx context.Context, first, second func(context.Context) error) error {
	if !b.sem.TryAcquire(1) {
		if err := first(ctx); err != nil {
			return err
		}
		return second(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer b.sem.Release(1)
		return second(gctx)
	})
	errFirst := first(gctx)
	if errFirst != nil {
		cancel()
	}
	errSecond := g.Wait()
	if errFirst != nil {
		return errFirst
	}

	return errSecond
}

func (b *builder) leaf(u *matrix.Dense) int {
	d := u.Data()
	m := [2][2]complex128{{d[0], d[1]}, {d[2], d[3]}}

	return b.tree.add(Node{Kind: NodeLeaf, Qubits: 1, Euler: zyz2(m), Matrix: m})
}

func (b *builder) diagonal(u *matrix.Dense, n int) int {
	diag := u.Diag()
	phases := make([]float64, len(diag))
	for i, z := range diag {
		phases[i] = cmplx.Phase(z)
	}

	return b.tree.add(Node{Kind: NodeDiagonal, Qubits: n, Phases: phases})
}
