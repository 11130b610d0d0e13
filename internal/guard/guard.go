// Package guard filters program input before it reaches the model. It drops
// the secondary mouse button, F12 and the view-source chord ctrl+u.
// It is a deterrent only: nothing here protects data. Terminals encode
// ctrl+shift+letter the same as ctrl+letter, so the ctrl+shift+i, j and c
// developer-tool chords cannot be told apart and are not filtered.
package guard

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

var blockedKeys = map[string]bool{
	"f12":    true,
	"ctrl+u": true,
}

// Guard counts what it suppresses.
type Guard struct {
	suppressed atomic.Int64
	logger     *zap.Logger
}

// New returns a Guard. logger may be nil.
func New(logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{logger: logger.Named("guard")}
}

// Blocked reports whether msg is one of the suppressed inputs.
func Blocked(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return blockedKeys[msg.String()]
	case tea.MouseMsg:
		return msg.Button == tea.MouseButtonRight
	}
	return false
}

// Filter has the tea.WithFilter signature. Suppressed messages become nil
// and are never delivered.
func (g *Guard) Filter(_ tea.Model, msg tea.Msg) tea.Msg {
	if !Blocked(msg) {
		return msg
	}
	n := g.suppressed.Add(1)
	g.logger.Debug("input suppressed", zap.Any("msg", msg), zap.Int64("total", n))
	return nil
}

// Suppressed is the number of dropped messages so far.
func (g *Guard) Suppressed() int64 {
	return g.suppressed.Load()
}

// Option installs the guard on a program.
func (g *Guard) Option() tea.ProgramOption {
	return tea.WithFilter(g.Filter)
}
