package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/YIFUNLIN/mindflow/pkg/config"
	"github.com/YIFUNLIN/mindflow/pkg/pipeline"
	"github.com/YIFUNLIN/mindflow/pkg/render/diagram"
)

// stubRenderer avoids spinning up the real graphviz engine in handler tests.
type stubRenderer struct{}

func (stubRenderer) Render(_ context.Context, sourceText string) ([]byte, error) {
	if strings.Contains(sourceText, "bad") {
		return nil, errors.New("parse failed")
	}
	return []byte("<svg>ok</svg>"), nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	runner := pipeline.NewRunner(nil, nil, nil)
	adapter := diagram.NewAdapter(stubRenderer{})
	return New(runner, adapter, config.Default(), nil)
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const structuredBody = `{
	"centralTopic": "Artificial Intelligence",
	"branches": [
		{"name": "Machine Learning", "keywords": ["supervised"],
		 "subBranches": [{"name": "Deep Learning"}]},
		{"name": "NLP"}
	]
}`

func TestHandleMindmapStructured(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := postJSON(t, h, "/api/v1/mindmap", structuredBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp mindmapResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.NodeCount != 4 || resp.EdgeCount != 3 {
		t.Errorf("counts = %d/%d, want 4/3", resp.NodeCount, resp.EdgeCount)
	}
	if resp.GraphHash == "" {
		t.Error("graphHash should be set")
	}
	if got := resp.Graph.Nodes[0].ID; got != "central" {
		t.Errorf("first node = %q, want central", got)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("response should carry a request id")
	}
}

func TestHandleMindmapZeroOriginConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Layout.OriginX = 0
	cfg.Layout.OriginY = 0

	runner := pipeline.NewRunner(nil, nil, nil)
	h := New(runner, diagram.NewAdapter(stubRenderer{}), cfg, nil).Handler()
	rec := postJSON(t, h, "/api/v1/mindmap", structuredBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp mindmapResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	central := resp.Graph.Nodes[0]
	if central.Position.X != 0 || central.Position.Y != 0 {
		t.Errorf("central position = (%g, %g), want configured origin (0, 0)",
			central.Position.X, central.Position.Y)
	}
}

func TestHandleMindmapInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"BadJSON", `{`},
		{"EmptyCentralTopic", `{"centralTopic": "", "branches": []}`},
		{"UnnamedBranch", `{"centralTopic": "T", "branches": [{"name": ""}]}`},
		{"UnknownType", `{"type": "mystery"}`},
		{"DiagramWithoutSource", `{"type": "diagram"}`},
	}

	h := newTestServer(t).Handler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h, "/api/v1/mindmap", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body = %s", rec.Code, rec.Body)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error envelope: %v", err)
			}
			if resp.Code == "" {
				t.Error("error envelope should carry a code")
			}
		})
	}
}

func TestHandleMindmapDiagram(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := postJSON(t, h, "/api/v1/mindmap", `{"type": "diagram", "sourceText": "digraph G {}"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp diagramResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Fallback {
		t.Error("valid source should not fall back")
	}
	if resp.TargetID == "" || resp.Markup == "" {
		t.Errorf("incomplete response: %+v", resp)
	}
}

func TestHandleMindmapDiagramFallback(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := postJSON(t, h, "/api/v1/mindmap", `{"type": "diagram", "sourceText": "bad source"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("fallback should still be 200, got %d", rec.Code)
	}
	var resp diagramResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Fallback {
		t.Error("malformed source should fall back")
	}
}

func TestHandleMindmapSVGDiagram(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := postJSON(t, h, "/api/v1/mindmap/svg", `{"type": "diagram", "sourceText": "digraph G {}"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}

	// Malformed source returns the HTML fallback with the source embedded.
	rec = postJSON(t, h, "/api/v1/mindmap/svg", `{"type": "diagram", "sourceText": "bad source"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("fallback status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("fallback Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "bad source") {
		t.Error("fallback should embed the source text")
	}
}

func TestHandleHealthz(t *testing.T) {
	h := newTestServer(t).Handler()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t).Handler()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
