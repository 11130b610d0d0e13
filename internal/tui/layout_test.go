package tui

import "testing"

func TestPageLayoutUpdate(t *testing.T) {
	cases := []struct {
		name           string
		width          int
		height         int
		formHeight     int
		sidebarOpen    bool
		sidebarWidth   int
		viewportWidth  int
		viewportHeight int
	}{
		{name: "wide with sidebar", width: 120, height: 40, formHeight: 10, sidebarOpen: true, sidebarWidth: 24, viewportWidth: 94, viewportHeight: 26},
		{name: "collapsed", width: 80, height: 24, formHeight: 8, sidebarOpen: false, sidebarWidth: 0, viewportWidth: 78, viewportHeight: 12},
		{name: "tiny", width: 20, height: 10, formHeight: 8, sidebarOpen: true, sidebarWidth: 24, viewportWidth: minViewportWidth, viewportHeight: 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout := newPageLayout()
			layout.Update(tc.width, tc.height, tc.formHeight, tc.sidebarOpen)
			if layout.sidebarWidth != tc.sidebarWidth {
				t.Fatalf("sidebar width mismatch: got %d want %d", layout.sidebarWidth, tc.sidebarWidth)
			}
			if layout.viewportWidth != tc.viewportWidth {
				t.Fatalf("viewport width mismatch: got %d want %d", layout.viewportWidth, tc.viewportWidth)
			}
			if layout.viewportHeight != tc.viewportHeight {
				t.Fatalf("viewport height mismatch: got %d want %d", layout.viewportHeight, tc.viewportHeight)
			}
		})
	}
}

func TestPreviewText(t *testing.T) {
	if got := previewText("  a\n b  ", 0); got != "a b" {
		t.Fatalf("whitespace not collapsed: %q", got)
	}
	if got := previewText("abcdefgh", 4); got != "abcd…" {
		t.Fatalf("unexpected preview %q", got)
	}
}

func TestSpellLogoAlignsRows(t *testing.T) {
	lines := spellLogo("STUDYDESK")
	if len(lines) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(lines))
	}
	width := len([]rune(lines[0]))
	for i, line := range lines {
		if got := len([]rune(line)); got != width {
			t.Fatalf("row %d width %d, want %d", i, got, width)
		}
	}
	if logoWidth() != width+3 {
		t.Fatalf("logo width %d, want %d", logoWidth(), width+3)
	}
}
