package observability

import (
	"context"
	"testing"
	"time"
)

type recordingPipelineHooks struct {
	NoopPipelineHooks
	builds int
}

func (h *recordingPipelineHooks) OnBuildStart(context.Context, string, int) { h.builds++ }

type recordingDiagramHooks struct {
	NoopDiagramHooks
	applied   int
	discarded int
}

func (h *recordingDiagramHooks) OnRenderApplied(context.Context, string, bool) { h.applied++ }
func (h *recordingDiagramHooks) OnRenderDiscarded(context.Context, string)     { h.discarded++ }

func TestDefaultsAreNoop(t *testing.T) {
	ctx := context.Background()

	// Must not panic.
	Pipeline().OnBuildStart(ctx, "topic", 3)
	Pipeline().OnBuildComplete(ctx, 4, time.Second, nil)
	Cache().OnCacheHit(ctx, "graph")
	Cache().OnCacheMiss(ctx, "artifact")
	Diagram().OnRenderApplied(ctx, "t1", false)
	Diagram().OnRenderDiscarded(ctx, "t2")
}

func TestSetAndRetrieve(t *testing.T) {
	ctx := context.Background()

	ph := &recordingPipelineHooks{}
	SetPipelineHooks(ph)
	defer SetPipelineHooks(nil)

	Pipeline().OnBuildStart(ctx, "topic", 1)
	if ph.builds != 1 {
		t.Errorf("builds = %d, want 1", ph.builds)
	}

	dh := &recordingDiagramHooks{}
	SetDiagramHooks(dh)
	defer SetDiagramHooks(nil)

	Diagram().OnRenderApplied(ctx, "t", true)
	Diagram().OnRenderDiscarded(ctx, "t")
	if dh.applied != 1 || dh.discarded != 1 {
		t.Errorf("applied=%d discarded=%d, want 1/1", dh.applied, dh.discarded)
	}
}

func TestSetNilRestoresNoop(t *testing.T) {
	SetCacheHooks(nil)
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("nil registration should fall back to no-op hooks")
	}
}
