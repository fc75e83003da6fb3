package diagram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	mferrors "github.com/YIFUNLIN/mindflow/pkg/errors"
)

// fakeRenderer succeeds for any source not containing "bad".
type fakeRenderer struct {
	calls int
}

func (f *fakeRenderer) Render(ctx context.Context, sourceText string) ([]byte, error) {
	f.calls++
	if strings.Contains(sourceText, "bad") {
		return nil, errors.New("syntax error near token 3")
	}
	return []byte("<svg>" + sourceText + "</svg>"), nil
}

// newTestAdapter returns an adapter with deterministic target ids.
func newTestAdapter(r Renderer) *Adapter {
	a := NewAdapter(r)
	n := 0
	a.newID = func() string {
		n++
		return fmt.Sprintf("test-%d", n)
	}
	return a
}

func TestAdapterSuccess(t *testing.T) {
	a := newTestAdapter(&fakeRenderer{})
	res := a.Render(context.Background(), "digraph G { a -> b }")

	if res.IsFallback() {
		t.Fatalf("unexpected fallback: %+v", res.Fallback)
	}
	if len(res.Markup) == 0 {
		t.Error("success result should carry markup")
	}
	if res.TargetID == "" {
		t.Error("result should carry a target id")
	}
}

func TestAdapterFallbackEmbedsSourceVerbatim(t *testing.T) {
	source := "digraph bad { <<<unclosed"
	a := newTestAdapter(&fakeRenderer{})
	res := a.Render(context.Background(), source)

	if !res.IsFallback() {
		t.Fatal("malformed source should produce a fallback")
	}
	if res.Fallback.SourceText != source {
		t.Errorf("embedded source = %q, want the input verbatim %q", res.Fallback.SourceText, source)
	}
	if res.Fallback.Notice == "" {
		t.Error("fallback should carry a failure notice")
	}
	if len(res.Markup) != 0 {
		t.Error("fallback result should not carry markup")
	}
}

func TestAdapterNeverReturnsError(t *testing.T) {
	// The adapter signature has no error: even an empty source yields a
	// displayable result.
	a := newTestAdapter(&fakeRenderer{})
	res := a.Render(context.Background(), "")
	if !res.IsFallback() {
		t.Error("empty source should fall back")
	}
}

func TestAdapterFreshTargetIDPerInvocation(t *testing.T) {
	a := NewAdapter(&fakeRenderer{})
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		res := a.Render(context.Background(), "digraph G {}")
		if seen[res.TargetID] {
			t.Fatalf("target id %q reused", res.TargetID)
		}
		seen[res.TargetID] = true
	}
}

func TestFallbackMarkup(t *testing.T) {
	f := &Fallback{SourceText: "digraph <evil> { }", Notice: "nope"}
	markup := string(f.Markup("diagram-test-1"))

	if !strings.Contains(markup, `class="diagram-error"`) {
		t.Error("markup should be a clearly marked error block")
	}
	if !strings.Contains(markup, "digraph &lt;evil&gt; { }") {
		t.Errorf("source should be escaped for embedding:\n%s", markup)
	}
	if !strings.Contains(markup, "nope") {
		t.Error("markup should include the notice")
	}
}

func TestAdapterCheck(t *testing.T) {
	a := newTestAdapter(&fakeRenderer{})

	if err := a.Check(context.Background(), "digraph G {}"); err != nil {
		t.Errorf("valid source: %v", err)
	}

	err := a.Check(context.Background(), "bad source")
	if err == nil {
		t.Fatal("malformed source should fail Check")
	}
	if !mferrors.Is(err, mferrors.ErrCodeInvalidDiagram) {
		t.Errorf("code = %q, want INVALID_DIAGRAM_SOURCE", mferrors.GetCode(err))
	}
}
