package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/YIFUNLIN/mindflow/internal/metrics"
	"github.com/YIFUNLIN/mindflow/internal/server"
	"github.com/YIFUNLIN/mindflow/pkg/pipeline"
	"github.com/YIFUNLIN/mindflow/pkg/render/diagram"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mind-map API over HTTP",
		Long: `Serve the mind-map API over HTTP.

Endpoints:
  POST /api/v1/mindmap      build a graph from a hierarchy or diagram input
  POST /api/v1/mindmap/svg  build and return the rendered SVG
  GET  /healthz             liveness check
  GET  /metrics             Prometheus metrics

The cache backend, layout geometry, and timeouts come from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	defaultDir, err := cacheDir()
	if err != nil {
		defaultDir = ""
	}
	store, err := cfg.OpenCache(ctx, defaultDir)
	if err != nil {
		return fmt.Errorf("open cache backend: %w", err)
	}

	metrics.Register()

	runner := pipeline.NewRunner(store, nil, c.Logger)
	defer runner.Close()

	adapter := diagram.NewAdapter(diagram.NewGraphvizRenderer())
	srv := server.New(runner, adapter, cfg, c.Logger).HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout))
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
