package tui

import "strings"

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	sidebarWidth   int
	mainWidth      int
	viewportWidth  int
	viewportHeight int
}

func newPageLayout() pageLayout {
	return pageLayout{
		sidebarWidth:   sidebarWidth,
		mainWidth:      80,
		viewportWidth:  78,
		viewportHeight: 20,
	}
}

// Update sizes the output viewport. formHeight is the rendered height of
// everything above the viewport inside the main column.
func (l *pageLayout) Update(width, height, formHeight int, sidebarOpen bool) {
	l.windowWidth = width
	l.windowHeight = height
	l.sidebarWidth = 0
	if sidebarOpen {
		l.sidebarWidth = sidebarWidth
	}
	l.mainWidth = width - l.sidebarWidth
	// main column padding
	l.viewportWidth = l.mainWidth - 2
	if l.viewportWidth < minViewportWidth {
		l.viewportWidth = minViewportWidth
	}
	usable := height - footerHeight - mainHeaderLines - formHeight
	if usable < 3 {
		usable = 3
	}
	l.viewportHeight = usable
}

type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
	if r == '\n' {
		cb.lines++
	}
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func (cb *contentBuilder) Line() int {
	return cb.lines
}

func previewText(value string, limit int) string {
	value = strings.Join(strings.Fields(value), " ")
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
