package mindmap

import (
	"math"

	"github.com/YIFUNLIN/mindflow/pkg/errors"
)

// Node kinds.
const (
	KindCentral = "central"
	KindBranch  = "branch"
	KindSub     = "sub"
)

// Edge levels. The level is metadata for the rendering collaborator
// (stroke weight, color); no positional logic depends on it.
const (
	LevelPrimary   = "primary"   // central -> branch
	LevelSecondary = "secondary" // branch -> sub
)

// Position is a 2-D point in the layout coordinate space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a positioned vertex of the mind-map graph. Labels and keywords are
// plain data - any visual formatting is applied exclusively by the rendering
// collaborator.
type Node struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Label    string   `json:"label"`
	Keywords []string `json:"keywords,omitempty"`
	Position Position `json:"position"`
}

// Edge is a directed connection between a parent and child node.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Level  string `json:"level"`
}

// Graph is the canonical serialization format for built mind maps, consumed
// by the interactive rendering surface. A graph is immutable once built:
// Build produces a fresh, independent value per call.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Central returns the central node. It panics if called on a graph that was
// not produced by Build, since every built graph has exactly one.
func (g *Graph) Central() Node {
	for _, n := range g.Nodes {
		if n.Kind == KindCentral {
			return n
		}
	}
	panic("mindmap: graph has no central node")
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Validate checks the tree invariants of a built graph:
//
//   - exactly one central node, the unique root
//   - node ids are unique
//   - len(edges) == len(nodes) - 1
//   - every edge connects existing nodes and its level matches the source
//     kind (primary from central, secondary from a branch)
//   - every non-central node has exactly one incoming edge, the central none
//   - every node is reachable from the central node
//   - all positions are finite
//
// Build always produces a valid graph; Validate exists to check graphs read
// back from serialized form or assembled by external callers.
func (g *Graph) Validate() error {
	if len(g.Edges) != len(g.Nodes)-1 {
		return errors.New(errors.ErrCodeInvalidInput, "edge count %d does not satisfy tree invariant for %d nodes", len(g.Edges), len(g.Nodes))
	}

	byID := make(map[string]Node, len(g.Nodes))
	centrals := 0
	for _, n := range g.Nodes {
		if _, dup := byID[n.ID]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate node id %q", n.ID)
		}
		byID[n.ID] = n
		if n.Kind == KindCentral {
			centrals++
		}
		if math.IsNaN(n.Position.X) || math.IsInf(n.Position.X, 0) ||
			math.IsNaN(n.Position.Y) || math.IsInf(n.Position.Y, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "node %q has a non-finite position", n.ID)
		}
	}
	if centrals != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "graph must have exactly one central node (got %d)", centrals)
	}

	incoming := make(map[string]int, len(g.Nodes))
	children := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		src, ok := byID[e.Source]
		if !ok {
			return errors.New(errors.ErrCodeInvalidInput, "edge %q references unknown source %q", e.ID, e.Source)
		}
		if _, ok := byID[e.Target]; !ok {
			return errors.New(errors.ErrCodeInvalidInput, "edge %q references unknown target %q", e.ID, e.Target)
		}
		switch {
		case src.Kind == KindCentral && e.Level != LevelPrimary:
			return errors.New(errors.ErrCodeInvalidInput, "edge %q from central must be primary (got %q)", e.ID, e.Level)
		case src.Kind == KindBranch && e.Level != LevelSecondary:
			return errors.New(errors.ErrCodeInvalidInput, "edge %q from branch must be secondary (got %q)", e.ID, e.Level)
		case src.Kind == KindSub:
			return errors.New(errors.ErrCodeInvalidInput, "edge %q originates from leaf node %q", e.ID, e.Source)
		}
		incoming[e.Target]++
		children[e.Source] = append(children[e.Source], e.Target)
	}

	for _, n := range g.Nodes {
		switch {
		case n.Kind == KindCentral && incoming[n.ID] != 0:
			return errors.New(errors.ErrCodeInvalidInput, "central node has %d incoming edges", incoming[n.ID])
		case n.Kind != KindCentral && incoming[n.ID] != 1:
			return errors.New(errors.ErrCodeInvalidInput, "node %q has %d incoming edges, want 1", n.ID, incoming[n.ID])
		}
	}

	// Reachability from the root. In-degree checks above rule out cycles
	// among reachable nodes, so a full visit proves the edge set is a tree.
	visited := map[string]bool{}
	stack := []string{g.Central().ID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		stack = append(stack, children[id]...)
	}
	if len(visited) != len(g.Nodes) {
		return errors.New(errors.ErrCodeInvalidInput, "%d of %d nodes unreachable from central", len(g.Nodes)-len(visited), len(g.Nodes))
	}

	return nil
}
