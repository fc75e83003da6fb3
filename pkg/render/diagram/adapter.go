package diagram

import (
	"bytes"
	"context"
	"fmt"
	"html"

	"github.com/google/uuid"

	"github.com/YIFUNLIN/mindflow/pkg/errors"
)

// DefaultFailureNotice is the human-readable notice attached to fallback
// blocks when the renderer rejects the source.
const DefaultFailureNotice = "Diagram could not be rendered. The source text is shown below."

// Fallback is the deterministic payload produced when rendering fails.
// SourceText carries the original input verbatim; Notice is a short
// human-readable failure description.
type Fallback struct {
	SourceText string `json:"sourceText"`
	Notice     string `json:"notice"`
}

// Markup renders the fallback as a clearly marked error block. The source
// text is HTML-escaped for embedding but otherwise unaltered.
func (f *Fallback) Markup(targetID string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<div class=\"diagram-error\" id=%q>\n", targetID)
	fmt.Fprintf(&buf, "  <p>%s</p>\n", html.EscapeString(f.Notice))
	fmt.Fprintf(&buf, "  <pre>%s</pre>\n", html.EscapeString(f.SourceText))
	buf.WriteString("</div>\n")
	return buf.Bytes()
}

// Result is the outcome of one adapter invocation. Exactly one of Markup
// and Fallback is set. TargetID is the freshly allocated render-target
// identifier for this invocation; it exists so a new render never collides
// with a previous render still completing, and it is never part of the
// graph's identity space.
type Result struct {
	TargetID string    `json:"targetId"`
	Markup   []byte    `json:"markup,omitempty"`
	Fallback *Fallback `json:"fallback,omitempty"`
}

// IsFallback reports whether the result is the failure fallback.
func (r *Result) IsFallback() bool { return r.Fallback != nil }

// Adapter hands diagram source text to a Renderer and manages the outcome.
// Renderer failures are never propagated: they are downgraded to a Fallback
// embedding the original source verbatim.
type Adapter struct {
	renderer Renderer
	notice   string
	newID    func() string
}

// NewAdapter creates an adapter around the given renderer.
func NewAdapter(r Renderer) *Adapter {
	return &Adapter{
		renderer: r,
		notice:   DefaultFailureNotice,
		newID:    uuid.NewString,
	}
}

// Render invokes the renderer with a freshly allocated target identifier.
// It never returns an error: malformed source yields a Result carrying the
// fallback block instead. Context cancellation is treated the same way -
// the host surface always receives something displayable.
func (a *Adapter) Render(ctx context.Context, sourceText string) Result {
	id := "diagram-" + a.newID()

	if sourceText == "" {
		return Result{
			TargetID: id,
			Fallback: &Fallback{SourceText: sourceText, Notice: "Diagram source is empty."},
		}
	}

	markup, err := a.renderer.Render(ctx, sourceText)
	if err != nil {
		return Result{
			TargetID: id,
			Fallback: &Fallback{SourceText: sourceText, Notice: a.notice},
		}
	}
	return Result{TargetID: id, Markup: markup}
}

// Check validates diagram source without producing a result, for callers
// that want to report malformed grammar eagerly (e.g. API validation).
func (a *Adapter) Check(ctx context.Context, sourceText string) error {
	if sourceText == "" {
		return errors.New(errors.ErrCodeInvalidDiagram, "empty diagram source")
	}
	if _, err := a.renderer.Render(ctx, sourceText); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDiagram, err, "malformed diagram source")
	}
	return nil
}
