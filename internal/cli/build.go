package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YIFUNLIN/mindflow/pkg/errors"
	"github.com/YIFUNLIN/mindflow/pkg/hierarchy"
	"github.com/YIFUNLIN/mindflow/pkg/mindmap"
)

// buildCommand creates the build command: hierarchy in, graph out.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "build [input.json]",
		Short: "Build a mind-map graph from a topic hierarchy",
		Long: `Build a mind-map graph from a topic hierarchy.

The input file holds a JSON hierarchy with a central topic and up to two
levels of branches, as produced by the summarization service. Use "-" to
read from stdin. The output is a graph JSON with uniquely identified,
radially positioned nodes and styled edges.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd, args[0], output, noCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input name with .graph.json, or stdout for stdin input)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "rebuild even if cached")

	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, input, output string, noCache, refresh bool) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	topic, err := readTopicFile(input)
	if err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipelineOptions(cfg)
	opts.Refresh = refresh
	opts.Logger = logger

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Building mind map for %q...", topic.CentralTopic))
	spinner.Start()

	g, cacheHit, err := runner.BuildWithCacheInfo(ctx, topic, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.Stop()
	prog.done("Built mind map")

	outputPath := output
	if outputPath == "" && input != "-" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".graph.json"
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := mindmap.WriteGraph(g, out); err != nil {
		return err
	}

	if outputPath != "" {
		printSuccess("Built mind map for %q", topic.CentralTopic)
		printStats(len(g.Nodes), len(g.Edges), cacheHit)
		printFile(outputPath)
		printNextStep("Render it", fmt.Sprintf("mindflow render %s", outputPath))
	}
	return nil
}

// readTopicFile reads and validates a structured hierarchy from path, or
// stdin when path is "-". Diagram-tagged input is rejected here; the render
// command handles it.
func readTopicFile(path string) (*hierarchy.Topic, error) {
	input, err := readInputFile(path)
	if err != nil {
		return nil, err
	}
	if input.Kind != hierarchy.KindStructured {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"build expects a structured hierarchy; use 'mindflow render' for diagram input")
	}
	return input.Topic, nil
}

// readInputFile reads the collaborator envelope from path, or stdin when
// path is "-".
func readInputFile(path string) (hierarchy.Input, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return hierarchy.Input{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return hierarchy.Input{}, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return hierarchy.ParseInput(data)
}

// openOutput opens path for writing, or stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
