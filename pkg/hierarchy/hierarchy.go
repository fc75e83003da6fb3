// Package hierarchy defines the two-level topic hierarchy delivered by the
// summarization collaborator, plus the tagged-union request envelope that
// discriminates between the structured path and the diagram-text path.
//
// The model is intentionally fixed at two levels: a single central topic,
// first-level branches, and second-level sub-branches. Deeper nesting is not
// representable and not supported.
package hierarchy

import (
	"encoding/json"

	"github.com/YIFUNLIN/mindflow/pkg/errors"
)

// Topic is the root of a summarization result: one central topic and its
// ordered first-level branches. Branch order is significant - it determines
// angular placement in the radial layout.
type Topic struct {
	CentralTopic string   `json:"centralTopic"`
	Branches     []Branch `json:"branches,omitempty"`
}

// Branch is a first-level child of the central topic.
type Branch struct {
	Name        string      `json:"name"`
	Keywords    []string    `json:"keywords,omitempty"`
	SubBranches []SubBranch `json:"subBranches,omitempty"`
}

// SubBranch is a second-level leaf nested under exactly one branch.
type SubBranch struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords,omitempty"`
}

// Validate checks the structural preconditions the graph builder relies on.
// A violation indicates a bug in the collaborator supplying the data: it is
// reported as a coded error and is never recovered into a fallback.
//
// An empty branch list is explicitly valid - it describes a graph consisting
// of only the central node.
func (t *Topic) Validate() error {
	if t.CentralTopic == "" {
		return errors.New(errors.ErrCodeInvalidHierarchy, "missing central topic")
	}
	for i, b := range t.Branches {
		if b.Name == "" {
			return errors.New(errors.ErrCodeInvalidHierarchy, "branch %d has no name", i)
		}
		for j, sb := range b.SubBranches {
			if sb.Name == "" {
				return errors.New(errors.ErrCodeInvalidHierarchy, "sub-branch %d of branch %q has no name", j, b.Name)
			}
		}
	}
	return nil
}

// NodeCount returns the number of graph nodes this hierarchy will produce:
// 1 + N branches + the sum of all sub-branches.
func (t *Topic) NodeCount() int {
	n := 1 + len(t.Branches)
	for _, b := range t.Branches {
		n += len(b.SubBranches)
	}
	return n
}

// Input kinds for the tagged-union request envelope.
const (
	KindStructured = "structured"
	KindDiagram    = "diagram"
)

// Input is the discriminated union delivered by the collaborator: either a
// structured hierarchy to lay out, or a pre-rendered diagram description to
// hand to the text-to-diagram renderer. Consumers dispatch on Kind instead
// of duck-typing the payload shape.
type Input struct {
	Kind       string // KindStructured or KindDiagram
	Topic      *Topic // set when Kind == KindStructured
	SourceText string // set when Kind == KindDiagram
}

// inputWire is the JSON shape accepted on the boundary. The structured form
// carries centralTopic/branches at the top level; the diagram form is tagged
// with type, per the collaborator contract.
type inputWire struct {
	Type         string   `json:"type,omitempty"`
	SourceText   string   `json:"sourceText,omitempty"`
	CentralTopic string   `json:"centralTopic,omitempty"`
	Branches     []Branch `json:"branches,omitempty"`
}

// ParseInput decodes an input envelope from JSON and classifies it.
// Unknown type tags and shapeless payloads are INVALID_INPUT errors.
func ParseInput(data []byte) (Input, error) {
	var w inputWire
	if err := json.Unmarshal(data, &w); err != nil {
		return Input{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode input")
	}

	switch w.Type {
	case "":
		t := &Topic{CentralTopic: w.CentralTopic, Branches: w.Branches}
		if err := t.Validate(); err != nil {
			return Input{}, err
		}
		return Input{Kind: KindStructured, Topic: t}, nil
	case KindDiagram:
		if w.SourceText == "" {
			return Input{}, errors.New(errors.ErrCodeInvalidInput, "diagram input has empty sourceText")
		}
		return Input{Kind: KindDiagram, SourceText: w.SourceText}, nil
	default:
		return Input{}, errors.New(errors.ErrCodeInvalidInput, "unknown input type %q", w.Type)
	}
}
