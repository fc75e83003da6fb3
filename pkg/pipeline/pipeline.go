// Package pipeline provides the core mind-map pipeline for Mindflow.
//
// This package implements the complete build → render pipeline shared by the
// CLI and the HTTP server. Centralizing it here keeps behavior consistent
// across entry points.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Build: Turn a validated topic hierarchy into a positioned graph
//  2. Render: Generate output artifacts (SVG, DOT, JSON) from the graph
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Formats: []string{"svg"}}
//	result, err := runner.Execute(ctx, topic, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/YIFUNLIN/mindflow/pkg/cache"
	"github.com/YIFUNLIN/mindflow/pkg/errors"
	"github.com/YIFUNLIN/mindflow/pkg/mindmap"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// Style constants for node label styles.
const (
	StyleSimple   = "simple"
	StyleDetailed = "detailed"
)

// ValidStyles is the set of supported label styles.
var ValidStyles = map[string]bool{
	StyleSimple:   true,
	StyleDetailed: true,
}

// DefaultStyle is the default label style.
const DefaultStyle = StyleSimple

// Options contains all configuration for the mind-map pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options. A zero field means "use the package default", so an
	// origin of exactly 0 is not expressible here; callers that need one
	// set Layout instead.
	OriginX         float64 `json:"origin_x,omitempty"`
	OriginY         float64 `json:"origin_y,omitempty"`
	PrimaryRadius   float64 `json:"primary_radius,omitempty"`
	SecondaryRadius float64 `json:"secondary_radius,omitempty"`
	SpreadDegrees   float64 `json:"spread_degrees,omitempty"`
	Refresh         bool    `json:"refresh,omitempty"`

	// Layout, when set, is used verbatim as the placement geometry and the
	// flat fields above are ignored. Config-driven callers use this so a
	// configured origin of 0 survives.
	Layout *mindmap.Geometry `json:"-"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Style   string   `json:"style,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the built mind-map graph.
	Graph mindmap.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the built graph came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid style: %q (must be one of: simple, detailed)", style)
	}
	return nil
}

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild applies build defaults and validates the geometry.
func (o *Options) ValidateForBuild() error {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o.Geometry().Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

// IsDetailed returns true if node labels should include keywords.
func (o *Options) IsDetailed() bool {
	return o.Style == StyleDetailed
}

// Geometry returns the layout geometry. An explicit Layout wins; otherwise
// the flat fields apply, with zero fields replaced by the package defaults.
func (o *Options) Geometry() mindmap.Geometry {
	if o.Layout != nil {
		return *o.Layout
	}
	g := mindmap.DefaultGeometry()
	if o.OriginX != 0 {
		g.OriginX = o.OriginX
	}
	if o.OriginY != 0 {
		g.OriginY = o.OriginY
	}
	if o.PrimaryRadius != 0 {
		g.PrimaryRadius = o.PrimaryRadius
	}
	if o.SecondaryRadius != 0 {
		g.SecondaryRadius = o.SecondaryRadius
	}
	if o.SpreadDegrees != 0 {
		g.SpreadDegrees = o.SpreadDegrees
	}
	return g
}

// GraphKeyOpts returns cache key options for graph building.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	g := o.Geometry()
	return cache.GraphKeyOpts{
		OriginX:         g.OriginX,
		OriginY:         g.OriginY,
		PrimaryRadius:   g.PrimaryRadius,
		SecondaryRadius: g.SecondaryRadius,
		SpreadDegrees:   g.SpreadDegrees,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Style:  o.Style,
	}
}
