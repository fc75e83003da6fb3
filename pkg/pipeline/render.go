package pipeline

import (
	"context"

	"github.com/YIFUNLIN/mindflow/pkg/errors"
	"github.com/YIFUNLIN/mindflow/pkg/mindmap"
	"github.com/YIFUNLIN/mindflow/pkg/render/diagram"
	"github.com/YIFUNLIN/mindflow/pkg/render/dot"
)

// Render generates output artifacts in the requested formats.
// The graph is rendered through DOT for the svg and dot formats.
func Render(ctx context.Context, g mindmap.Graph, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	dotSource := dot.ToDOT(g, dot.Options{Detailed: opts.IsDetailed()})

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = diagram.NewGraphvizRenderer().Render(ctx, dotSource)
		case FormatDOT:
			data = []byte(dotSource)
		case FormatJSON:
			data, err = mindmap.MarshalGraph(g)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
