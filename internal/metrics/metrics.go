// Package metrics exposes Prometheus metrics for the build and render
// pipeline. Register installs hook implementations that feed the collectors;
// code that never calls Register pays nothing.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/YIFUNLIN/mindflow/pkg/observability"
)

var (
	BuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindflow_builds_total",
		Help: "Total number of mind-map builds, labelled by status.",
	}, []string{"status"})

	BuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mindflow_build_duration_ms",
		Help:    "Graph build latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	BuildNodeCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mindflow_build_node_count",
		Help:    "Number of nodes per built graph.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
	})

	RendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindflow_renders_total",
		Help: "Total number of artifact renders, labelled by status.",
	}, []string{"status"})

	RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mindflow_render_duration_ms",
		Help:    "Artifact render latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	CacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindflow_cache_ops_total",
		Help: "Cache operations, labelled by entry type and outcome.",
	}, []string{"type", "outcome"})

	DiagramResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindflow_diagram_results_total",
		Help: "Diagram render results, labelled by outcome (applied, fallback, discarded).",
	}, []string{"outcome"})
)

// Register installs the metric-recording hooks into the observability
// registry. Call once at startup.
func Register() {
	observability.SetPipelineHooks(pipelineHooks{})
	observability.SetCacheHooks(cacheHooks{})
	observability.SetDiagramHooks(diagramHooks{})
}

type pipelineHooks struct{}

func (pipelineHooks) OnBuildStart(context.Context, string, int) {}

func (pipelineHooks) OnBuildComplete(_ context.Context, nodeCount int, d time.Duration, err error) {
	BuildsTotal.WithLabelValues(status(err)).Inc()
	if err == nil {
		BuildDuration.Observe(float64(d.Milliseconds()))
		BuildNodeCount.Observe(float64(nodeCount))
	}
}

func (pipelineHooks) OnRenderStart(context.Context, []string) {}

func (pipelineHooks) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	RendersTotal.WithLabelValues(status(err)).Inc()
	if err == nil {
		RenderDuration.Observe(float64(d.Milliseconds()))
	}
}

type cacheHooks struct{}

func (cacheHooks) OnCacheHit(_ context.Context, keyType string) {
	CacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (cacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	CacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (cacheHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	CacheOps.WithLabelValues(keyType, "set").Inc()
}

type diagramHooks struct{}

func (diagramHooks) OnRenderApplied(_ context.Context, _ string, fallback bool) {
	if fallback {
		DiagramResults.WithLabelValues("fallback").Inc()
		return
	}
	DiagramResults.WithLabelValues("applied").Inc()
}

func (diagramHooks) OnRenderDiscarded(context.Context, string) {
	DiagramResults.WithLabelValues("discarded").Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
