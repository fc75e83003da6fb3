// Package dot converts a built mind-map graph to Graphviz DOT with pinned
// node positions, so the structured path can be rendered through the same
// text-to-diagram engine as the diagram-text path.
package dot

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/YIFUNLIN/mindflow/pkg/mindmap"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes keywords in node labels.
	// When false, only the node label is shown.
	Detailed bool
}

// ToDOT converts a mind-map graph to Graphviz DOT format. Node positions
// computed by the radial placer are pinned with pos="x,y!" so the neato
// engine reproduces the layout exactly instead of computing its own.
//
// Edge levels map to stroke weight only: the level never influences
// placement.
func ToDOT(g mindmap.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph mindmap {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=ellipse, style=filled, fontsize=14];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := nodeAttrs(n, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -- %q [penwidth=%.1f];\n", e.Source, e.Target, penwidth(e.Level))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n mindmap.Node, opts Options) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", nodeLabel(n, opts)),
		// Positive pin with "!" keeps neato from moving the node.
		fmt.Sprintf("pos=\"%g,%g!\"", n.Position.X, n.Position.Y),
	}
	switch n.Kind {
	case mindmap.KindCentral:
		attrs = append(attrs, "fillcolor=lightblue", "fontsize=18")
	case mindmap.KindBranch:
		attrs = append(attrs, "fillcolor=white")
	case mindmap.KindSub:
		attrs = append(attrs, "fillcolor=lightgrey", "fontsize=11")
	}
	return attrs
}

func nodeLabel(n mindmap.Node, opts Options) string {
	if !opts.Detailed || len(n.Keywords) == 0 {
		return n.Label
	}
	return n.Label + "\n" + strings.Join(n.Keywords, ", ")
}

func penwidth(level string) float64 {
	if level == mindmap.LevelPrimary {
		return 2.0
	}
	return 1.0
}
