package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/YIFUNLIN/mindflow/pkg/cache"
	"github.com/YIFUNLIN/mindflow/pkg/errors"
	"github.com/YIFUNLIN/mindflow/pkg/hierarchy"
	"github.com/YIFUNLIN/mindflow/pkg/mindmap"
	"github.com/YIFUNLIN/mindflow/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, topic *hierarchy.Topic, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Build
	buildStart := time.Now()
	g, buildHit, err := r.BuildWithCacheInfo(ctx, topic, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.EdgeCount = len(g.Edges)
	result.CacheInfo.BuildHit = buildHit

	// Graph hash for cache keys and API responses
	if graphData, err := mindmap.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	r.Logger.Info("built mind map",
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"cached", buildHit,
		"duration", result.Stats.BuildTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo builds the graph with caching and reports whether the
// result came from cache.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, topic *hierarchy.Topic, opts Options) (mindmap.Graph, bool, error) {
	if err := opts.ValidateForBuild(); err != nil {
		return mindmap.Graph{}, false, err
	}
	r.applyLogger(&opts)

	if topic == nil {
		return mindmap.Graph{}, false, errors.New(errors.ErrCodeInvalidInput, "topic is required")
	}

	observability.Pipeline().OnBuildStart(ctx, topic.CentralTopic, len(topic.Branches))

	// Key by the content of the hierarchy plus the layout geometry.
	topicData, err := json.Marshal(topic)
	if err != nil {
		return mindmap.Graph{}, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize hierarchy for cache key")
	}
	cacheKey := r.Keyer.GraphKey(cache.Hash(topicData), opts.GraphKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if g, err := mindmap.ReadGraph(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "graph")
				observability.Pipeline().OnBuildComplete(ctx, len(g.Nodes), 0, nil)
				return g, true, nil
			}
			// Corrupt entry, fall through to rebuild.
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	buildStart := time.Now()
	g, err := mindmap.Build(topic, opts.Geometry())
	observability.Pipeline().OnBuildComplete(ctx, len(g.Nodes), time.Since(buildStart), err)
	if err != nil {
		return mindmap.Graph{}, false, err
	}

	if data, err := mindmap.MarshalGraph(g); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph) == nil {
			observability.Cache().OnCacheSet(ctx, "graph", len(data))
		}
	}

	return g, false, nil
}

// Build is a convenience wrapper that discards the cache hit info.
func (r *Runner) Build(ctx context.Context, topic *hierarchy.Topic, opts Options) (mindmap.Graph, error) {
	g, _, err := r.BuildWithCacheInfo(ctx, topic, opts)
	return g, err
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// all of them came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g mindmap.Graph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)

	graphData, err := mindmap.MarshalGraph(g)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize graph for cache key")
	}
	graphHash := cache.Hash(graphData)

	// Try to get all formats from cache.
	allCached := true
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		} else {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			allCached = false
			break
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, 0, nil)
		return artifacts, true, nil
	}

	renderStart := time.Now()
	rendered, err := Render(ctx, g, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact) == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
