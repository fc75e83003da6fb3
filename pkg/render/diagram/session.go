package diagram

import (
	"context"
	"sync"

	"github.com/YIFUNLIN/mindflow/pkg/observability"
)

// Session serializes diagram renders onto a single visible output slot with
// last-request-wins semantics: only the result of the most recently issued
// render is applied, and a result resolving after a newer request has been
// issued is discarded unapplied. After Close, all in-flight results are
// ignored - nothing reaches the apply callback and nothing panics.
//
// Renders run concurrently in their own goroutines; the sequence counter
// decides which one wins, so no render blocks another.
type Session struct {
	adapter *Adapter
	apply   func(Result)

	mu      sync.Mutex
	seq     uint64 // last issued request
	applied uint64 // newest request whose result was applied
	closed  bool
	wg      sync.WaitGroup

	// applyMu serializes appliers so results reach the callback in issue
	// order even when renders complete out of order.
	applyMu sync.Mutex
}

// NewSession creates a render session. apply receives each winning result;
// it is never called concurrently with itself for the same session. The
// callback must not call Submit on the same session.
func NewSession(adapter *Adapter, apply func(Result)) *Session {
	return &Session{adapter: adapter, apply: apply}
}

// Submit issues a render for the given source text. It returns immediately;
// the result is delivered to the apply callback only if no newer submission
// has been issued by the time the render completes.
func (s *Session) Submit(ctx context.Context, sourceText string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	seq := s.seq
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		res := s.adapter.Render(ctx, sourceText)

		s.applyMu.Lock()
		defer s.applyMu.Unlock()

		s.mu.Lock()
		stale := s.closed || seq != s.seq || seq <= s.applied
		if !stale {
			s.applied = seq
		}
		s.mu.Unlock()

		if stale {
			observability.Diagram().OnRenderDiscarded(ctx, res.TargetID)
			return
		}
		observability.Diagram().OnRenderApplied(ctx, res.TargetID, res.IsFallback())
		s.apply(res)
	}()
}

// Close tears down the session. In-flight renders keep running but their
// results are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Wait blocks until all in-flight renders have completed. Useful for
// deterministic teardown and tests.
func (s *Session) Wait() {
	s.wg.Wait()
}
