package mindmap

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func validGraph() Graph {
	g, err := Build(sampleTopic(), DefaultGeometry())
	if err != nil {
		panic(err)
	}
	return g
}

func TestValidateAcceptsBuiltGraphs(t *testing.T) {
	g := validGraph()
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Graph)
		wantMsg string
	}{
		{
			name:    "DuplicateNodeID",
			mutate:  func(g *Graph) { g.Nodes[1].ID = "central" },
			wantMsg: "duplicate",
		},
		{
			name:    "NoCentral",
			mutate:  func(g *Graph) { g.Nodes[0].Kind = KindBranch },
			wantMsg: "central",
		},
		{
			name: "BrokenTreeInvariant",
			mutate: func(g *Graph) {
				g.Edges = append(g.Edges, Edge{ID: "extra", Source: "central", Target: "branch-1", Level: LevelPrimary})
			},
			wantMsg: "tree invariant",
		},
		{
			name:    "UnknownEdgeTarget",
			mutate:  func(g *Graph) { g.Edges[0].Target = "ghost" },
			wantMsg: "unknown target",
		},
		{
			name:    "WrongLevelFromCentral",
			mutate:  func(g *Graph) { g.Edges[0].Level = LevelSecondary },
			wantMsg: "must be primary",
		},
		{
			name:    "NonFinitePosition",
			mutate:  func(g *Graph) { g.Nodes[2].Position.X = math.NaN() },
			wantMsg: "non-finite",
		},
		{
			name: "DisconnectedNode",
			mutate: func(g *Graph) {
				// Retarget the sub edge at its own branch, orphaning the sub
				// node while keeping counts intact.
				g.Edges[1].Target = "branch-1"
				g.Edges[2] = Edge{ID: "e2", Source: "branch-0", Target: "branch-0", Level: LevelSecondary}
			},
			wantMsg: "incoming",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGraph()
			tt.mutate(&g)
			err := g.Validate()
			if err == nil {
				t.Fatal("want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestGraphRoundTrip(t *testing.T) {
	g := validGraph()

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}

	got, err := ReadGraph(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if !reflect.DeepEqual(g, got) {
		t.Error("round trip changed the graph")
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	g := validGraph()
	path := filepath.Join(t.TempDir(), "graph.json")

	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if !reflect.DeepEqual(g, got) {
		t.Error("file round trip changed the graph")
	}
}

func TestReadGraphRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Garbage", `not json`},
		{"NoCentral", `{"nodes": [{"id": "a", "kind": "branch", "label": "a", "position": {"x": 0, "y": 0}}], "edges": []}`},
		{
			"DuplicateIDs",
			`{"nodes": [
				{"id": "central", "kind": "central", "label": "c", "position": {"x": 0, "y": 0}},
				{"id": "central", "kind": "branch", "label": "b", "position": {"x": 1, "y": 1}}
			], "edges": [{"id": "e", "source": "central", "target": "central", "level": "primary"}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadGraph(strings.NewReader(tt.input)); err == nil {
				t.Error("want error")
			}
		})
	}
}

func TestReadGraphFileMissing(t *testing.T) {
	_, err := ReadGraphFile(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("want error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist, got %v", err)
	}
}
