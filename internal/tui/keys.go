package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up            key.Binding
	Down          key.Binding
	Select        key.Binding
	NextField     key.Binding
	PrevField     key.Binding
	CycleLeft     key.Binding
	CycleRight    key.Binding
	Submit        key.Binding
	Back          key.Binding
	ToggleSidebar key.Binding
	Save          key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		NextField:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		CycleLeft:     key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev option")),
		CycleRight:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next option")),
		Submit:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Back:          key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "menu")),
		ToggleSidebar: key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "toggle menu")),
		Save:          key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save result")),
		PageUp:        key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		PageDown:      key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		Help:          key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "more keys")),
		Quit:          key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Submit, k.Back, k.Save, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back},
		{k.NextField, k.PrevField, k.CycleLeft, k.CycleRight, k.Submit},
		{k.PageUp, k.PageDown, k.ToggleSidebar, k.Save},
		{k.Help, k.Quit},
	}
}
