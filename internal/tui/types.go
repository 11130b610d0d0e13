package tui

import (
	"github.com/csheth/studydesk/internal/history"
	"github.com/csheth/studydesk/internal/panel"
)

type focusArea int

const (
	focusSidebar focusArea = iota
	focusForm
)

const heroTagline = "Search, summarize, learn and quiz yourself without leaving the terminal."

const (
	minViewportWidth = 30
	sidebarWidth     = 24
	// sidebarItemTop is the row of the first nav item: title line plus a blank.
	sidebarItemTop  = 2
	footerHeight    = 2
	mainHeaderLines = 2
)

// panelResultMsg carries a finished request back to Update.
type panelResultMsg struct {
	panel  panel.ID
	gen    uint64
	result panel.Result
}

type historySavedMsg struct {
	entry history.Entry
	err   error
}
