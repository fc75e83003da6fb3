// Package diagram mediates between diagram source text and the external
// text-to-diagram rendering engine.
//
// It covers the second input path of the system: instead of a structured
// hierarchy, the collaborator supplies a ready-made textual graph
// description. Rendering it can fail on malformed grammar, so the package
// defines the recovery contract: failures never propagate to the host -
// they are downgraded to a deterministic fallback block embedding the
// original source (see [Adapter]). Concurrent renders are serialized by a
// last-request-wins [Session].
package diagram

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"
)

// Renderer renders diagram source text to vector markup.
// Render returns an error for malformed source; callers that must not
// surface failures wrap a Renderer in an [Adapter].
type Renderer interface {
	Render(ctx context.Context, sourceText string) ([]byte, error)
}

// GraphvizRenderer renders Graphviz DOT source to SVG.
type GraphvizRenderer struct{}

// NewGraphvizRenderer creates the standard DOT renderer.
func NewGraphvizRenderer() *GraphvizRenderer {
	return &GraphvizRenderer{}
}

// Render parses DOT source and renders it to SVG.
// A parse error indicates malformed diagram grammar.
func (r *GraphvizRenderer) Render(ctx context.Context, sourceText string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(sourceText))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the outer svg tag so the markup scales cleanly
// inside the host surface.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// Ensure GraphvizRenderer implements Renderer.
var _ Renderer = (*GraphvizRenderer)(nil)
