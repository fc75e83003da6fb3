package server

import (
	"io"
	"net/http"

	"github.com/YIFUNLIN/mindflow/pkg/cache"
	"github.com/YIFUNLIN/mindflow/pkg/errors"
	"github.com/YIFUNLIN/mindflow/pkg/hierarchy"
	"github.com/YIFUNLIN/mindflow/pkg/mindmap"
	"github.com/YIFUNLIN/mindflow/pkg/pipeline"
)

// mindmapResponse is the JSON body of a successful build.
type mindmapResponse struct {
	Graph     mindmap.Graph `json:"graph"`
	GraphHash string        `json:"graphHash"`
	NodeCount int           `json:"nodeCount"`
	EdgeCount int           `json:"edgeCount"`
	Cached    bool          `json:"cached"`
}

// diagramResponse is the JSON body of a diagram-input build. On renderer
// failure the markup embeds the verbatim source with a notice instead of an
// SVG; fallback distinguishes the two.
type diagramResponse struct {
	TargetID string `json:"targetId"`
	Markup   string `json:"markup"`
	Fallback bool   `json:"fallback"`
}

// POST /api/v1/mindmap builds a graph from the request body. The body is
// the collaborator envelope: a bare hierarchy or a type-tagged diagram
// payload.
func (s *Server) handleMindmap(w http.ResponseWriter, r *http.Request) {
	input, ok := s.readInput(w, r)
	if !ok {
		return
	}

	switch input.Kind {
	case hierarchy.KindDiagram:
		res := s.adapter.Render(r.Context(), input.SourceText)
		writeJSON(w, http.StatusOK, diagramResponse{
			TargetID: res.TargetID,
			Markup:   string(res.Markup),
			Fallback: res.IsFallback(),
		})

	default:
		opts := s.buildOptions(r)
		g, hit, err := s.runner.BuildWithCacheInfo(r.Context(), input.Topic, opts)
		if err != nil {
			writeErr(w, err)
			return
		}
		data, err := mindmap.MarshalGraph(g)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mindmapResponse{
			Graph:     g,
			GraphHash: cache.Hash(data),
			NodeCount: len(g.Nodes),
			EdgeCount: len(g.Edges),
			Cached:    hit,
		})
	}
}

// POST /api/v1/mindmap/svg builds a graph and returns the rendered SVG.
// Diagram input is rendered directly; a malformed source still yields a
// displayable HTML fallback rather than an error status.
func (s *Server) handleMindmapSVG(w http.ResponseWriter, r *http.Request) {
	input, ok := s.readInput(w, r)
	if !ok {
		return
	}

	if input.Kind == hierarchy.KindDiagram {
		res := s.adapter.Render(r.Context(), input.SourceText)
		if res.IsFallback() {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(res.Fallback.Markup(res.TargetID))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(res.Markup)
		return
	}

	opts := s.buildOptions(r)
	opts.Formats = []string{pipeline.FormatSVG}
	result, err := s.runner.Execute(r.Context(), input.Topic, opts)
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(result.Artifacts[pipeline.FormatSVG])
}

// GET /healthz reports liveness.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readInput decodes and classifies the request body, writing the error
// response itself on failure.
func (s *Server) readInput(w http.ResponseWriter, r *http.Request) (hierarchy.Input, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput, "request body too large")
		return hierarchy.Input{}, false
	}
	input, err := hierarchy.ParseInput(body)
	if err != nil {
		writeErr(w, err)
		return hierarchy.Input{}, false
	}
	return input, true
}

// buildOptions derives pipeline options from the server config and the
// refresh query parameter. The validated config geometry is passed through
// verbatim, so a configured origin of 0 is honored.
func (s *Server) buildOptions(r *http.Request) pipeline.Options {
	geom := s.cfg.Geometry()
	return pipeline.Options{
		Layout:  &geom,
		Refresh: r.URL.Query().Get("refresh") == "true",
		Logger:  s.logger,
	}
}
