package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/studydesk/internal/panel"
)

const (
	minWrap = 20
	maxWrap = 120
)

// Renderer draws output regions at a given width. The glamour renderer is
// rebuilt only when the wrap width changes noticeably.
type Renderer struct {
	style string

	term      *glamour.TermRenderer
	termWidth int
}

// New returns a renderer using a glamour standard style name such as "dark",
// "light" or "notty". An empty style selects "auto".
func New(style string) *Renderer {
	if style == "" {
		style = "auto"
	}
	return &Renderer{style: style}
}

// Output renders a panel output region to fit width columns.
func (r *Renderer) Output(out *panel.Output, width int) string {
	if out == nil || out.Empty() {
		return ""
	}
	if out.Kind == panel.OutputMarkup {
		return r.Markup(out.Content, width)
	}
	return Text(out.Content, width)
}

// Markup renders backend HTML. If styling fails the sanitized markdown is
// wrapped and returned as plain text.
func (r *Renderer) Markup(markup string, width int) string {
	md, err := ToMarkdown(markup)
	if err != nil {
		return Text(Sanitize(markup), width)
	}
	return r.Markdown(md, width)
}

// Markdown styles markdown with glamour.
func (r *Renderer) Markdown(md string, width int) string {
	term, err := r.renderer(width)
	if err != nil {
		return Text(md, width)
	}
	rendered, err := term.Render(md)
	if err != nil {
		return Text(md, width)
	}
	return strings.Trim(rendered, "\n")
}

func (r *Renderer) renderer(width int) (*glamour.TermRenderer, error) {
	wrap := clampWrap(width)
	if r.term == nil || abs(r.termWidth-wrap) > 4 {
		term, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return nil, err
		}
		r.term = term
		r.termWidth = wrap
	}
	return r.term, nil
}

// Text wraps plain text to width columns without interpreting it.
func Text(text string, width int) string {
	return wordwrap.String(text, clampWrap(width))
}

func clampWrap(width int) int {
	switch {
	case width < minWrap:
		return minWrap
	case width > maxWrap:
		return maxWrap
	}
	return width
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
