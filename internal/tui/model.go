package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/studydesk/internal/guide"
	"github.com/csheth/studydesk/internal/history"
	"github.com/csheth/studydesk/internal/panel"
	"github.com/csheth/studydesk/internal/render"
)

// Runner executes a validated panel request.
type Runner interface {
	Run(ctx context.Context, req panel.Request) panel.Result
}

// Contact is what the contact panel shows.
type Contact struct {
	Email string
	URL   string
}

// Config wires the interface to its collaborators. Runner is required for
// anything but browsing; History may be nil to disable saving.
type Config struct {
	Runner        Runner
	History       *history.Store
	Renderer      *render.Renderer
	Guide         []guide.Step
	Contact       Contact
	Timeout       time.Duration
	CollapseBelow int
	LocalAnswers  bool
	Logger        *zap.Logger
}

var errNoRunner = errors.New("no backend configured")

type model struct {
	config   Config
	ctrl     *panel.Controller
	logger   *zap.Logger
	jobs     *jobBus
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model
	layout   pageLayout
	renderer *render.Renderer
	inputs   map[panel.FieldID]textinput.Model

	focus         focusArea
	navCursor     int
	fieldIndex    int
	width         int
	height        int
	viewportDirty bool
	viewportPanel panel.ID
	lastRequest   map[panel.ID]string
	runningJobs   map[string]jobSnapshot
	infoMessage   string
	errorMessage  string
}

// New builds the program model. The home panel is shown first with the
// sidebar focused.
func New(config Config) tea.Model {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer := config.Renderer
	if renderer == nil {
		renderer = render.New("")
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = heroTitleStyle

	m := &model{
		config:        config,
		ctrl:          panel.New(panel.Options{CollapseBelow: config.CollapseBelow, LocalAnswers: config.LocalAnswers}),
		logger:        logger.Named("tui"),
		jobs:          newJobBus(logger),
		keys:          defaultKeyMap(),
		help:          help.New(),
		spinner:       sp,
		viewport:      viewport.New(80, 20),
		layout:        newPageLayout(),
		renderer:      renderer,
		inputs:        make(map[panel.FieldID]textinput.Model),
		focus:         focusSidebar,
		viewportDirty: true,
		lastRequest:   make(map[panel.ID]string),
		runningJobs:   make(map[string]jobSnapshot),
	}
	for _, id := range panel.IDs {
		for _, f := range m.ctrl.Panel(id).Fields {
			if f.IsChoice() {
				continue
			}
			ti := textinput.New()
			ti.Prompt = "› "
			ti.CharLimit = 1024
			m.inputs[f.ID] = ti
		}
	}
	m.navCursor = m.ctrl.ActiveNav()
	m.syncInputs()
	return m
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ctrl.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.relayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case spinner.TickMsg:
		if !m.anyBusy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case jobSignalMsg:
		m.runningJobs[msg.Snapshot.ID] = msg.Snapshot
		return m, nil

	case jobResultEnvelope:
		delete(m.runningJobs, msg.Snapshot.ID)
		switch payload := msg.Payload.(type) {
		case panelResultMsg:
			m.applyResult(payload)
		case historySavedMsg:
			m.applySaved(payload)
		}
		return m, nil
	}

	return m, m.updateFocusedInput(msg)
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.ToggleSidebar):
		m.ctrl.ToggleSidebar()
		if m.ctrl.SidebarCollapsed() && m.focus == focusSidebar {
			return m, m.focusFormArea()
		}
		m.relayout()
		return m, nil
	case key.Matches(msg, m.keys.Save):
		return m, m.saveCurrent()
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.SetYOffset(m.viewport.YOffset - m.viewport.Height)
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height)
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.relayout()
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleFormKey(msg)
}

func (m *model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(panel.NavItems)
	switch {
	case key.Matches(msg, m.keys.Up):
		m.navCursor = (m.navCursor - 1 + n) % n
	case key.Matches(msg, m.keys.Down):
		m.navCursor = (m.navCursor + 1) % n
	case key.Matches(msg, m.keys.Select):
		return m, m.selectNav(m.navCursor)
	case key.Matches(msg, m.keys.NextField):
		if m.currentPanel().HasForm() {
			return m, m.focusFormArea()
		}
	}
	return m, nil
}

func (m *model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.currentPanel()
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, m.focusSidebarArea()
	case key.Matches(msg, m.keys.NextField):
		return m, m.moveField(1)
	case key.Matches(msg, m.keys.PrevField):
		return m, m.moveField(-1)
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()
	}
	if f := m.focusedField(); f != nil && f.IsChoice() {
		switch {
		case key.Matches(msg, m.keys.CycleLeft):
			f.Cycle(-1)
		case key.Matches(msg, m.keys.CycleRight):
			f.Cycle(1)
		}
		return m, nil
	}
	if !p.HasForm() {
		return m, nil
	}
	return m, m.updateFocusedInput(msg)
}

func (m *model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if !m.ctrl.SidebarCollapsed() && msg.X < m.layout.sidebarWidth {
			idx := msg.Y - sidebarItemTop
			if idx >= 0 && idx < len(panel.NavItems) {
				return m, m.selectNav(idx)
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// selectNav activates sidebar entry idx. Panels with a form take focus.
func (m *model) selectNav(idx int) tea.Cmd {
	if err := m.ctrl.Select(idx); err != nil {
		m.logger.Warn("navigation failed", zap.Int("index", idx), zap.Error(err))
		m.errorMessage = err.Error()
		return nil
	}
	m.navCursor = m.ctrl.ActiveNav()
	m.fieldIndex = 0
	m.infoMessage = ""
	m.errorMessage = ""
	m.syncInputs()
	m.markViewportDirty()
	m.viewport.GotoTop()
	m.logger.Debug("panel shown", zap.String("panel", string(m.ctrl.Current())), zap.String("engine", string(m.ctrl.Engine())))
	if m.currentPanel().HasForm() {
		return m.focusFormArea()
	}
	m.focus = focusSidebar
	m.blurInputs()
	m.relayout()
	return nil
}

func (m *model) submit() tea.Cmd {
	id := m.ctrl.Current()
	req, ok := m.ctrl.Begin(id)
	m.syncInputs()
	m.markViewportDirty()
	m.relayout()
	if !ok {
		return nil
	}
	m.lastRequest[id] = describeRequest(req)

	runner := m.config.Runner
	if runner == nil {
		runner = unavailableRunner{}
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if m.config.Timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), m.config.Timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	m.ctrl.Attach(id, req.Generation, cancel)
	m.logger.Info("request submitted", zap.String("panel", string(id)), zap.Uint64("generation", req.Generation))
	return tea.Batch(m.jobs.Start(ctx, jobKindFor(id), panelRequestJob(runner, req)), m.spinner.Tick)
}

func (m *model) applyResult(msg panelResultMsg) {
	if !m.ctrl.Complete(msg.panel, msg.gen, msg.result) {
		m.logger.Debug("stale result dropped", zap.String("panel", string(msg.panel)), zap.Uint64("generation", msg.gen))
		return
	}
	if msg.result.Err != nil {
		m.logger.Warn("request failed", zap.String("panel", string(msg.panel)), zap.Error(msg.result.Err))
	}
	m.markViewportDirty()
	m.viewport.GotoTop()
	m.relayout()
}

func (m *model) saveCurrent() tea.Cmd {
	p := m.currentPanel()
	if p.Output == nil || p.Output.Empty() || p.Busy() {
		m.infoMessage = "Nothing to save yet."
		return nil
	}
	if m.config.History == nil {
		m.errorMessage = "History is disabled."
		return nil
	}
	engine := ""
	if p.ID == panel.Search {
		engine = string(m.ctrl.Engine())
	}
	entry := history.NewEntry(string(p.ID), engine, m.lastRequest[p.ID], p.Output.Kind == panel.OutputMarkup, p.Output.Content)
	m.infoMessage = "Saving…"
	m.errorMessage = ""
	return m.jobs.Start(context.Background(), jobKindSave, saveHistoryJob(m.config.History, entry))
}

func (m *model) applySaved(msg historySavedMsg) {
	if msg.err != nil {
		m.infoMessage = ""
		m.errorMessage = fmt.Sprintf("Save failed: %v", msg.err)
		return
	}
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Saved %s to %s", shortID(msg.entry.ID), m.config.History.Path())
}

func (m *model) currentPanel() *panel.Panel {
	return m.ctrl.Panel(m.ctrl.Current())
}

func (m *model) anyBusy() bool {
	for _, id := range panel.IDs {
		if m.ctrl.Panel(id).Busy() {
			return true
		}
	}
	return false
}

// focusedField is nil when the submit control has focus or the sidebar does.
func (m *model) focusedField() *panel.Field {
	if m.focus != focusForm {
		return nil
	}
	p := m.currentPanel()
	if m.fieldIndex < 0 || m.fieldIndex >= len(p.Fields) {
		return nil
	}
	return p.Fields[m.fieldIndex]
}

func (m *model) focusFormArea() tea.Cmd {
	m.focus = focusForm
	m.relayout()
	return m.focusInput()
}

func (m *model) focusSidebarArea() tea.Cmd {
	m.focus = focusSidebar
	m.navCursor = m.ctrl.ActiveNav()
	if m.ctrl.SidebarCollapsed() {
		m.ctrl.ToggleSidebar()
	}
	m.blurInputs()
	m.relayout()
	return nil
}

// moveField cycles focus over the fields and then the submit control.
func (m *model) moveField(delta int) tea.Cmd {
	stops := len(m.currentPanel().Fields) + 1
	m.fieldIndex = ((m.fieldIndex+delta)%stops + stops) % stops
	return m.focusInput()
}

func (m *model) focusInput() tea.Cmd {
	m.blurInputs()
	f := m.focusedField()
	if f == nil || f.IsChoice() {
		return nil
	}
	ti := m.inputs[f.ID]
	cmd := ti.Focus()
	m.inputs[f.ID] = ti
	return cmd
}

func (m *model) blurInputs() {
	for id, ti := range m.inputs {
		ti.Blur()
		m.inputs[id] = ti
	}
}

func (m *model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	f := m.focusedField()
	if f == nil || f.IsChoice() {
		return nil
	}
	ti, cmd := m.inputs[f.ID].Update(msg)
	m.inputs[f.ID] = ti
	f.Value = ti.Value()
	return cmd
}

// syncInputs copies field values and placeholders into the text inputs after
// the controller changed them.
func (m *model) syncInputs() {
	for _, id := range panel.IDs {
		for _, f := range m.ctrl.Panel(id).Fields {
			ti, ok := m.inputs[f.ID]
			if !ok {
				continue
			}
			if ti.Value() != f.Value {
				ti.SetValue(f.Value)
			}
			ti.Placeholder = f.Placeholder
			m.inputs[f.ID] = ti
		}
	}
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

// relayout resizes the viewport around the current form.
func (m *model) relayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	prevWidth := m.layout.viewportWidth
	m.layout.Update(m.width, m.height, lineCount(m.formView())+lineCount(m.helpLine())-1, !m.ctrl.SidebarCollapsed())
	m.viewport.Width = m.layout.viewportWidth
	m.viewport.Height = m.layout.viewportHeight
	for id, ti := range m.inputs {
		ti.Width = max(10, m.layout.viewportWidth-fieldLabelWidth-3)
		m.inputs[id] = ti
	}
	if prevWidth != m.layout.viewportWidth {
		m.markViewportDirty()
	}
}

func (m *model) refreshViewportIfDirty() {
	if !m.viewportDirty && m.viewportPanel == m.ctrl.Current() {
		return
	}
	m.viewport.SetContent(m.panelBody())
	m.viewportDirty = false
	m.viewportPanel = m.ctrl.Current()
}

type unavailableRunner struct{}

func (unavailableRunner) Run(context.Context, panel.Request) panel.Result {
	return panel.Result{Err: errNoRunner}
}
