package mindmap

import (
	"github.com/YIFUNLIN/mindflow/pkg/hierarchy"
)

// Build walks the two-level hierarchy and assembles the complete node and
// edge lists. The central node is emitted first; an empty branch list yields
// a single-node graph with no edges, which is a valid terminal state, not an
// error.
//
// Build is referentially transparent: the same topic and geometry always
// produce the same graph, and every call returns a fresh value sharing no
// state with previous results. Callers may memoize by a content hash of the
// input (see pkg/cache).
func Build(topic *hierarchy.Topic, geom Geometry) (Graph, error) {
	if err := topic.Validate(); err != nil {
		return Graph{}, err
	}
	if err := geom.Validate(); err != nil {
		return Graph{}, err
	}

	g := Graph{
		Nodes: make([]Node, 0, topic.NodeCount()),
		Edges: make([]Edge, 0, topic.NodeCount()-1),
	}

	g.Nodes = append(g.Nodes, Node{
		ID:       NodeIDCentral,
		Kind:     KindCentral,
		Label:    topic.CentralTopic,
		Position: geom.Origin(),
	})

	// Empty hierarchy: short-circuit before any angle math so the N=0 case
	// never divides by zero.
	n := len(topic.Branches)
	if n == 0 {
		return g, nil
	}

	for i, branch := range topic.Branches {
		branchID := BranchID(i)
		branchPos := geom.PlaceBranch(i, n)
		g.Nodes = append(g.Nodes, Node{
			ID:       branchID,
			Kind:     KindBranch,
			Label:    branch.Name,
			Keywords: cloneKeywords(branch.Keywords),
			Position: branchPos,
		})
		g.Edges = append(g.Edges, Edge{
			ID:     EdgeID(NodeIDCentral, branchID),
			Source: NodeIDCentral,
			Target: branchID,
		})

		m := len(branch.SubBranches)
		if m == 0 {
			continue
		}
		angle := BranchAngle(i, n)
		for j, sub := range branch.SubBranches {
			subID := SubID(i, j)
			g.Nodes = append(g.Nodes, Node{
				ID:       subID,
				Kind:     KindSub,
				Label:    sub.Name,
				Keywords: cloneKeywords(sub.Keywords),
				Position: geom.PlaceSub(branchPos, angle, j, m),
			})
			g.Edges = append(g.Edges, Edge{
				ID:     EdgeID(branchID, subID),
				Source: branchID,
				Target: subID,
			})
		}
	}

	return StyleEdges(g), nil
}

// StyleEdges tags each edge with its level: primary for edges leaving the
// central node, secondary for edges leaving a branch. This is a pure
// annotation pass over edges already produced by Build - it carries no
// positional logic, and the level is consumed only by renderers.
func StyleEdges(g Graph) Graph {
	central := map[string]bool{}
	for _, n := range g.Nodes {
		if n.Kind == KindCentral {
			central[n.ID] = true
		}
	}

	out := g
	out.Edges = make([]Edge, len(g.Edges))
	for i, e := range g.Edges {
		if central[e.Source] {
			e.Level = LevelPrimary
		} else {
			e.Level = LevelSecondary
		}
		out.Edges[i] = e
	}
	return out
}

// cloneKeywords copies the keyword slice so the built graph shares no backing
// storage with the input hierarchy.
func cloneKeywords(kw []string) []string {
	if len(kw) == 0 {
		return nil
	}
	out := make([]string, len(kw))
	copy(out, kw)
	return out
}
