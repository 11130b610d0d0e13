package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/studydesk/internal/panel"
)

const fieldLabelWidth = 16

func (m *model) View() string {
	m.refreshViewportIfDirty()
	main := mainStyle.Render(m.mainView())
	body := main
	if !m.ctrl.SidebarCollapsed() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), main)
	}
	return body + "\n" + m.footerView()
}

func (m *model) sidebarView() string {
	var cb contentBuilder
	cb.WriteString(heroTitleStyle.Render("📚 StudyDesk"))
	cb.WriteRune('\n')
	cb.WriteRune('\n')
	active := m.ctrl.ActiveNav()
	for i, item := range panel.NavItems {
		prefix := "  "
		if m.focus == focusSidebar && i == m.navCursor {
			prefix = navCursorStyle.Render("▸ ")
		}
		label := item.Label
		if i == active {
			label = navActiveStyle.Render(label)
		}
		cb.WriteString(prefix + label)
		if i < len(panel.NavItems)-1 {
			cb.WriteRune('\n')
		}
	}
	style := sidebarStyle.Width(sidebarWidth - 1)
	if h := m.height - footerHeight; h > cb.Line()+1 {
		style = style.Height(h)
	}
	return style.Render(cb.String())
}

func (m *model) mainView() string {
	p := m.currentPanel()
	title := p.Title
	if m.ctrl.SidebarCollapsed() {
		title = helperStyle.Render("☰ ctrl+b ") + title
	}
	parts := []string{sectionHeaderStyle.Render(title), ""}
	if form := m.formView(); form != "" {
		parts = append(parts, form)
	}
	parts = append(parts, m.viewport.View())
	return strings.Join(parts, "\n")
}

// formView renders the fields, the submit control and the loader. It is empty
// for panels without a form.
func (m *model) formView() string {
	p := m.currentPanel()
	if !p.HasForm() {
		return ""
	}
	lines := make([]string, 0, len(p.Fields)+2)
	for i, f := range p.Fields {
		focused := m.focus == focusForm && i == m.fieldIndex
		lines = append(lines, m.fieldView(f, focused))
	}

	caption := p.Submit.Caption
	var button string
	switch {
	case p.Submit.Disabled:
		button = disabledButton.Render(caption)
	case m.focus == focusForm && m.fieldIndex == len(p.Fields):
		button = focusedButtonStyle.Render(caption)
	default:
		button = buttonStyle.Render(caption)
	}
	if p.Loader != nil && !p.Loader.Hidden {
		button += "  " + m.spinner.View() + helperStyle.Render(" Working…")
	}
	lines = append(lines, "", button, "")
	return strings.Join(lines, "\n")
}

func (m *model) fieldView(f *panel.Field, focused bool) string {
	labelStyle := fieldLabelStyle
	if focused {
		labelStyle = focusedLabelStyle
	}
	label := labelStyle.Width(fieldLabelWidth).Render(f.Label)
	if f.IsChoice() {
		value := choiceStyle.Render(f.Value)
		if focused {
			value = "◀ " + value + " ▶"
		}
		return label + value
	}
	ti, ok := m.inputs[f.ID]
	if !ok {
		return label + f.Value
	}
	return label + ti.View()
}

// panelBody is the scrollable content under the form.
func (m *model) panelBody() string {
	width := m.layout.viewportWidth
	p := m.currentPanel()
	switch p.ID {
	case panel.Home:
		return m.homeView(width)
	case panel.Contact:
		return m.renderer.Markdown(contactMarkdown(m.config.Contact), width)
	}
	if p.Output == nil || p.Output.Empty() {
		return helperStyle.Render("Results appear here.")
	}
	out := m.renderer.Output(p.Output, width)
	if p.Output.Kind == panel.OutputText && strings.HasPrefix(p.Output.Content, "❌") {
		return errorStyle.Render(out)
	}
	return out
}

func (m *model) homeView(width int) string {
	parts := []string{}
	if width >= logoWidth() {
		parts = append(parts, renderLogo())
	} else {
		parts = append(parts, heroTitleStyle.Render("STUDYDESK"))
	}
	parts = append(parts, taglineStyle.Render(heroTagline))
	if len(m.config.Guide) > 0 {
		var md strings.Builder
		md.WriteString("## Getting started\n\n")
		for i, step := range m.config.Guide {
			fmt.Fprintf(&md, "%d. **%s**: %s\n", i+1, step.Title, step.Description)
		}
		parts = append(parts, m.renderer.Markdown(md.String(), width))
	}
	return joinNonEmpty(parts)
}

func contactMarkdown(c Contact) string {
	var md strings.Builder
	md.WriteString("## Get in touch\n\nQuestions, bug reports or ideas for new study tools are welcome.\n\n")
	if c.Email != "" {
		fmt.Fprintf(&md, "- Email: %s\n", c.Email)
	}
	if c.URL != "" {
		fmt.Fprintf(&md, "- Issues: %s\n", c.URL)
	}
	return md.String()
}

func (m *model) helpLine() string {
	return m.help.View(m.keys)
}

func (m *model) footerView() string {
	return m.helpLine() + "\n" + m.statusLine()
}

func (m *model) statusLine() string {
	p := m.currentPanel()
	stats := []string{string(p.ID)}
	if p.ID == panel.Search {
		stats = append(stats, m.ctrl.Engine().Label())
	}
	if p.HasForm() {
		stats = append(stats, p.State.String())
	}
	if n := len(m.runningJobs); n > 0 {
		stats = append(stats, fmt.Sprintf("%d running", n))
	}
	line := statusBarStyle.Render(strings.Join(stats, "  •  "))
	switch {
	case m.errorMessage != "":
		line += " " + errorStyle.Render(m.errorMessage)
	case m.infoMessage != "":
		line += " " + helperStyle.Render(previewText(m.infoMessage, 80))
	}
	return line
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
