package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/studydesk/internal/panel"
)

func TestSanitizeDropsScriptsAndHandlers(t *testing.T) {
	got := Sanitize(`<p onclick="steal()">hello</p><script>alert(1)</script><a href="javascript:x()">x</a>`)
	assert.NotContains(t, got, "script")
	assert.NotContains(t, got, "onclick")
	assert.NotContains(t, got, "javascript:")
	assert.Contains(t, got, "hello")
}

func TestToMarkdown(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bold", "<b>hi</b>", "**hi**"},
		{"heading and paragraph", "<h2>Results</h2><p>First <em>one</em></p>", "## Results\n\nFirst *one*"},
		{"unordered list", "<ul><li>a</li><li>b</li></ul>", "- a\n- b"},
		{"ordered list", "<ol><li>a</li><li>b</li></ol>", "1. a\n2. b"},
		{"link", `<a href="https://arxiv.org/abs/1234.5678">paper</a>`, "[paper](https://arxiv.org/abs/1234.5678)"},
		{"code block", "<pre><code>x := 1\ny := 2</code></pre>", "```\nx := 1\ny := 2\n```"},
		{"script removed", "<p>safe</p><script>evil()</script>", "safe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToMarkdown(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOutputRendersMarkupNotEscaped(t *testing.T) {
	r := New("notty")
	got := r.Output(&panel.Output{Kind: panel.OutputMarkup, Content: "<b>hi</b>"}, 60)
	assert.Contains(t, got, "hi")
	assert.NotContains(t, got, "<b>")
	assert.NotContains(t, got, "&lt;")
}

func TestOutputKeepsTextVerbatim(t *testing.T) {
	r := New("notty")
	got := r.Output(&panel.Output{Kind: panel.OutputText, Content: "<b>literal</b>"}, 60)
	assert.Equal(t, "<b>literal</b>", got)
}

func TestEmptyOutput(t *testing.T) {
	r := New("notty")
	assert.Empty(t, r.Output(nil, 80))
	assert.Empty(t, r.Output(&panel.Output{}, 80))
}

func TestTextWraps(t *testing.T) {
	long := strings.Repeat("word ", 30)
	for _, line := range strings.Split(Text(long, 40), "\n") {
		assert.LessOrEqual(t, len(strings.TrimRight(line, " ")), 40)
	}
}

func TestRendererReusedForSimilarWidths(t *testing.T) {
	r := New("notty")
	_ = r.Markdown("# a", 80)
	first := r.term
	_ = r.Markdown("# b", 82)
	assert.Same(t, first, r.term)
	_ = r.Markdown("# c", 40)
	assert.NotSame(t, first, r.term)
}
