package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YIFUNLIN/mindflow/pkg/hierarchy"
	"github.com/YIFUNLIN/mindflow/pkg/pipeline"
	"github.com/YIFUNLIN/mindflow/pkg/render/diagram"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file path (or base path for multiple formats)
	formats []string // output formats: "svg", "dot", "json"
	style   string   // label style: "simple" or "detailed"
	noCache bool     // disable caching
	refresh bool     // rebuild even if cached
}

// renderCommand creates the render command: hierarchy or diagram in,
// artifacts out.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{style: pipeline.DefaultStyle}

	cmd := &cobra.Command{
		Use:   "render [input.json]",
		Short: "Render a mind map to SVG, DOT, or JSON",
		Long: `Render a mind map to SVG, DOT, or JSON.

The input is either a topic hierarchy (rendered through the radial layout)
or a type-tagged diagram payload whose source text is handed to the
Graphviz renderer directly. A malformed diagram source never fails the
command: the output is an HTML fragment embedding the source with an error
notice.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if err := pipeline.ValidateStyle(opts.style); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.style, "style", opts.style, "label style: simple (default), detailed")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "rebuild even if cached")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	in, err := readInputFile(input)
	if err != nil {
		return err
	}

	if in.Kind == hierarchy.KindDiagram {
		return c.renderDiagram(ctx, in.SourceText, input, opts)
	}
	return c.renderTopic(ctx, in.Topic, input, opts)
}

// renderTopic runs the full build and render pipeline on a hierarchy.
func (c *CLI) renderTopic(ctx context.Context, topic *hierarchy.Topic, input string, opts *renderOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	popts := pipelineOptions(cfg)
	popts.Formats = opts.formats
	popts.Style = opts.style
	popts.Refresh = opts.refresh
	popts.Logger = logger

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %q...", topic.CentralTopic))
	spinner.Start()

	result, err := runner.Execute(ctx, topic, popts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done("Rendered mind map")

	printSuccess("Rendered %q", topic.CentralTopic)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		path := opts.output
		if path == "" || len(opts.formats) > 1 {
			path = base + "." + format
		}
		if err := writeFile(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// renderDiagram hands pre-rendered diagram source to the Graphviz renderer.
// Renderer failure produces the fallback HTML instead of an error.
func (c *CLI) renderDiagram(ctx context.Context, sourceText, input string, opts *renderOpts) error {
	loggerFromContext(ctx).Debug("rendering diagram source", "bytes", len(sourceText))
	adapter := diagram.NewAdapter(diagram.NewGraphvizRenderer())

	spinner := newSpinnerWithContext(ctx, "Rendering diagram...")
	spinner.Start()
	res := adapter.Render(ctx, sourceText)
	spinner.Stop()

	ext := "svg"
	if res.IsFallback() {
		ext = "html"
	}
	path := opts.output
	if path == "" {
		path = basePath("", input) + "." + ext
	}

	data := res.Markup
	if res.IsFallback() {
		data = res.Fallback.Markup(res.TargetID)
	}
	if err := writeFile(path, data); err != nil {
		return err
	}

	if res.IsFallback() {
		printWarning("Diagram source could not be rendered; wrote fallback")
	} else {
		printSuccess("Rendered diagram")
	}
	printFile(path)
	return nil
}

// basePath derives the base output path from the output and input paths.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.Write(data)
	return err
}
