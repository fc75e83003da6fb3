package diagram

import (
	"context"
	"strings"
	"sync"
	"testing"
)

// gatedRenderer blocks each Render call until the matching gate channel is
// closed, so tests can force out-of-order completion.
type gatedRenderer struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func newGatedRenderer() *gatedRenderer {
	return &gatedRenderer{gates: map[string]chan struct{}{}}
}

func (g *gatedRenderer) gate(source string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[source]
	if !ok {
		ch = make(chan struct{})
		g.gates[source] = ch
	}
	return ch
}

func (g *gatedRenderer) Render(ctx context.Context, sourceText string) ([]byte, error) {
	<-g.gate(sourceText)
	return []byte("<svg>" + sourceText + "</svg>"), nil
}

func (g *gatedRenderer) release(source string) {
	close(g.gate(source))
}

// collector records applied results.
type collector struct {
	mu      sync.Mutex
	results []Result
}

func (c *collector) apply(res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, res)
}

func (c *collector) markups() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.results))
	for i, r := range c.results {
		out[i] = string(r.Markup)
	}
	return out
}

func TestSessionLastRequestWins(t *testing.T) {
	r := newGatedRenderer()
	c := &collector{}
	s := NewSession(NewAdapter(r), c.apply)

	ctx := context.Background()
	s.Submit(ctx, "first")
	s.Submit(ctx, "second")

	// Let the newer request resolve first, then the older one.
	r.release("second")
	r.release("first")
	s.Wait()

	got := c.markups()
	if len(got) != 1 {
		t.Fatalf("applied %d results, want exactly 1: %v", len(got), got)
	}
	if !strings.Contains(got[0], "second") {
		t.Errorf("applied result %q, want the newest submission", got[0])
	}
}

func TestSessionInOrderResolution(t *testing.T) {
	r := newGatedRenderer()
	c := &collector{}
	s := NewSession(NewAdapter(r), c.apply)

	ctx := context.Background()
	s.Submit(ctx, "only")
	r.release("only")
	s.Wait()

	got := c.markups()
	if len(got) != 1 || !strings.Contains(got[0], "only") {
		t.Fatalf("applied = %v, want the single submission", got)
	}
}

func TestSessionCloseIgnoresInFlight(t *testing.T) {
	r := newGatedRenderer()
	c := &collector{}
	s := NewSession(NewAdapter(r), c.apply)

	ctx := context.Background()
	s.Submit(ctx, "pending")
	s.Close()
	r.release("pending")
	s.Wait()

	if got := c.markups(); len(got) != 0 {
		t.Errorf("results applied after Close: %v", got)
	}
}

func TestSessionSubmitAfterClose(t *testing.T) {
	r := newGatedRenderer()
	c := &collector{}
	s := NewSession(NewAdapter(r), c.apply)

	s.Close()
	s.Submit(context.Background(), "late")
	s.Wait()

	if got := c.markups(); len(got) != 0 {
		t.Errorf("results applied for post-Close submission: %v", got)
	}
}

func TestSessionSequentialSubmissions(t *testing.T) {
	// When each render resolves before the next submission, every result
	// is the newest at completion time and all of them apply in order.
	r := newGatedRenderer()
	c := &collector{}
	s := NewSession(NewAdapter(r), c.apply)

	ctx := context.Background()
	for _, src := range []string{"a", "b", "c"} {
		s.Submit(ctx, src)
		r.release(src)
		s.Wait()
	}

	got := c.markups()
	if len(got) != 3 {
		t.Fatalf("applied %d results, want 3: %v", len(got), got)
	}
	for i, want := range []string{"a", "b", "c"} {
		if !strings.Contains(got[i], want) {
			t.Errorf("result %d = %q, want %q applied in order", i, got[i], want)
		}
	}
}
