// SPDX-License-Identifier: MIT

package synth

import (
	"fmt"
	"sync"

	"github.com/katalvlaran/unisynth/circuit"
	"github.com/katalvlaran/unisynth/config"
	"github.com/katalvlaran/unisynth/walsh"
)

// NodeKind tags a Node.
type NodeKind uint8

const (
	// NodeLeaf is a single-qubit unitary on qubit 0.
	NodeLeaf NodeKind = iota + 1
	// NodeDiagonal is a diagonal unitary on qubits 0..Qubits−1.
	NodeDiagonal
	// NodeBranch is Right, then a multiplexed rotation on qubit Qubits−1,
	// then Left (time order).
	NodeBranch
)

// String implements fmt.Stringer.
func (k NodeKind) String() string {
	switch k {
	case NodeLeaf:
		return "leaf"
	case NodeDiagonal:
		return "diagonal"
	case NodeBranch:
		return "branch"
	default:
		return fmt.Sprintf("NodeKind(%d)", uint8(k))
	}
}

// noChild marks an absent child index.
const noChild = -1

// Node is one vertex of the decomposition tree. Which fields are meaningful
// depends on Kind.
type Node struct {
	Kind   NodeKind
	Qubits int // the node acts on qubits 0..Qubits−1

	// NodeLeaf
	Euler  Euler
	Matrix [2][2]complex128

	// NodeDiagonal
	Phases []float64

	// NodeBranch
	Right, Left int
	Primitive   walsh.Primitive
	Angles      []float64
}

// Tree is an arena of Nodes. Children are referenced by index and always
// stored before their parent; Root is the last node added by Build.
type Tree struct {
	mu     sync.Mutex
	nodes  []Node
	Root   int
	Qubits int
}

func newTree(n int) *Tree {
	return &Tree{Root: noChild, Qubits: n}
}

// add appends nd and returns its index. Safe for concurrent use.
func (t *Tree) add(nd Node) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nodes = append(t.nodes, nd)

	return len(t.nodes) - 1
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.nodes)
}

// Node returns a copy of node i.
func (t *Tree) Node(i int) (Node, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(t.nodes) {
		return Node{}, false
	}

	return t.nodes[i], true
}

// Count returns how many nodes of kind k the tree holds.
func (t *Tree) Count(k NodeKind) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	var n int
	for i := range t.nodes {
		if t.nodes[i].Kind == k {
			n++
		}
	}

	return n
}

// Emit flattens the tree into a circuit over t.Qubits qubits. Rotations with
// |angle| ≤ cfg.SparsifyThreshold are skipped; with cfg.FusedLeaves each leaf
// becomes one circuit.U gate instead of up to three rotations.
//
// Errors:
//   - ErrMalformedTree for a dangling index or unknown node kind.
func (t *Tree) Emit(cfg config.Config) (circuit.Circuit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := circuit.New(t.Qubits)
	if err := t.emit(t.Root, &c, cfg); err != nil {
		return circuit.Circuit{}, err
	}
	c.GlobalPhase = circuit.NormalizePhase(c.GlobalPhase)

	return c, nil
}

func (t *Tree) emit(i int, c *circuit.Circuit, cfg config.Config) error {
	if i < 0 || i >= len(t.nodes) {
		return fmt.Errorf("synth: Emit: node %d of %d: %w", i, len(t.nodes), ErrMalformedTree)
	}
	nd := &t.nodes[i]
	switch nd.Kind {
	case NodeLeaf:
		if cfg.FusedLeaves {
			c.Gates = append(c.Gates, circuit.U(0, nd.Matrix))
			return nil
		}
		c.Gates = append(c.Gates, nd.Euler.Gates(0, cfg.SparsifyThreshold)...)
		c.GlobalPhase += nd.Euler.Alpha

	case NodeDiagonal:
		coeffs, err := walsh.Transform(nd.Phases)
		if err != nil {
			return fmt.Errorf("synth: Emit: %w", err)
		}
		sub, err := walsh.Ladder{Register: nd.Qubits, Primitive: walsh.PrimitivePhase, Threshold: cfg.SparsifyThreshold}.Emit(coeffs)
		if err != nil {
			return fmt.Errorf("synth: Emit: %w", err)
		}
		c.Gates = append(c.Gates, sub.Gates...)
		c.GlobalPhase += sub.GlobalPhase

	case NodeBranch:
		if nd.Right != noChild {
			if err := t.emit(nd.Right, c, cfg); err != nil {
				return err
			}
		}
		mux, err := walsh.Multiplex(nd.Qubits, nd.Qubits-1, nd.Primitive, nd.Angles, cfg.SparsifyThreshold)
		if err != nil {
			return fmt.Errorf("synth: Emit: %w", err)
		}
		c.Gates = append(c.Gates, mux.Gates...)
		if nd.Left != noChild {
			return t.emit(nd.Left, c, cfg)
		}

	default:
		return fmt.Errorf("synth: Emit: %v: %w", nd.Kind, ErrMalformedTree)
	}

	return nil
}
