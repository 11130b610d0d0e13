package panel

import "fmt"

// DefaultCollapseBelow is the sidebar breakpoint in terminal columns.
const DefaultCollapseBelow = 96

// NavItem is one sidebar entry. Engine is set only for search items.
type NavItem struct {
	Label  string
	Panel  ID
	Engine Engine
}

// NavItems is the sidebar, top to bottom.
var NavItems = []NavItem{
	{Label: "🏠 Home", Panel: Home},
	{Label: DuckDuckGo.Label(), Panel: Search, Engine: DuckDuckGo},
	{Label: YouTube.Label(), Panel: Search, Engine: YouTube},
	{Label: Wikipedia.Label(), Panel: Search, Engine: Wikipedia},
	{Label: ArXiv.Label(), Panel: Search, Engine: ArXiv},
	{Label: LiveLookup.Label(), Panel: Search, Engine: LiveLookup},
	{Label: "📂 Read File", Panel: ReadFile},
	{Label: "📑 PDF Summarizer", Panel: PDF},
	{Label: "🎓 Tutor", Panel: Tutor},
	{Label: "📝 Quiz", Panel: Quiz},
	{Label: "✉️ Contact", Panel: Contact},
}

// Options tune a Controller.
type Options struct {
	// CollapseBelow is the width under which selecting a nav item collapses
	// the sidebar. Zero means DefaultCollapseBelow.
	CollapseBelow int
	// LocalAnswers enables the read-file panel's question answering.
	LocalAnswers bool
}

// Controller owns every panel, the current search engine and the sidebar.
// It is not safe for concurrent use; the TUI calls it from Update only.
type Controller struct {
	panels        map[ID]*Panel
	current       ID
	engine        Engine
	activeNav     int
	collapsed     bool
	width         int
	collapseBelow int
	localAnswers  bool
}

// New returns a controller showing the home panel. The default engine is
// recorded but the search form stays unlabelled until an engine is selected.
func New(opts Options) *Controller {
	if opts.CollapseBelow <= 0 {
		opts.CollapseBelow = DefaultCollapseBelow
	}
	c := &Controller{
		panels:        newPanels(),
		collapseBelow: opts.CollapseBelow,
		localAnswers:  opts.LocalAnswers,
		engine:        DefaultEngine,
	}
	c.Show(Home)
	return c
}

// Panel returns the panel with the given id, or nil.
func (c *Controller) Panel(id ID) *Panel {
	return c.panels[id]
}

// Current is the visible panel.
func (c *Controller) Current() ID {
	return c.current
}

// Visible lists every panel not hidden, in display order.
func (c *Controller) Visible() []ID {
	var ids []ID
	for _, id := range IDs {
		if !c.panels[id].Hidden {
			ids = append(ids, id)
		}
	}
	return ids
}

// Engine is the source the next search will use.
func (c *Controller) Engine() Engine {
	return c.engine
}

// ActiveNav is the index into NavItems that is highlighted.
func (c *Controller) ActiveNav() int {
	return c.activeNav
}

// Show hides every panel, reveals id and resets all transient state. Any
// request still in flight is canceled and its result will be dropped.
func (c *Controller) Show(id ID) error {
	target, ok := c.panels[id]
	if !ok {
		return fmt.Errorf("unknown panel %q", id)
	}
	for _, p := range c.panels {
		p.Hidden = true
		c.abort(p)
	}
	c.ClearAll()
	target.Hidden = false
	c.current = id
	for i, item := range NavItems {
		if item.Panel == id && (id != Search || item.Engine == c.engine) {
			c.activeNav = i
			break
		}
	}
	return nil
}

// ClearAll empties every output region, hides every loader and blanks the
// transient input fields. Choice fields and the tutor and quiz text fields
// keep their values.
func (c *Controller) ClearAll() {
	for _, id := range dataPanels {
		p := c.panels[id]
		if p.Output != nil {
			p.Output.Clear()
		}
		if p.Loader != nil {
			p.Loader.Hidden = true
		}
	}
	for _, fid := range transientFields {
		if f := c.field(fid); f != nil {
			f.Value = ""
		}
	}
}

// SetEngine switches the search source and relabels the search form. It
// clears the query field but does not change panel visibility.
func (c *Controller) SetEngine(e Engine) error {
	if !e.valid() {
		return fmt.Errorf("unknown engine %q", e)
	}
	c.engine = e
	p := c.panels[Search]
	p.Title = e.Title()
	p.Submit.Caption = e.Button()
	query := p.Field(FieldSearchQuery)
	query.Placeholder = e.Placeholder()
	query.Value = ""
	return nil
}

// Select activates a sidebar entry. On narrow terminals the sidebar
// collapses afterwards.
func (c *Controller) Select(index int) error {
	if index < 0 || index >= len(NavItems) {
		return fmt.Errorf("nav index %d out of range", index)
	}
	item := NavItems[index]
	if item.Panel == Search {
		if err := c.SetEngine(item.Engine); err != nil {
			return err
		}
	}
	if err := c.Show(item.Panel); err != nil {
		return err
	}
	c.activeNav = index
	if c.width > 0 && c.width < c.collapseBelow {
		c.collapsed = true
	}
	return nil
}

// SelectPanel activates the first sidebar entry for id.
func (c *Controller) SelectPanel(id ID) error {
	for i, item := range NavItems {
		if item.Panel == id {
			return c.Select(i)
		}
	}
	return fmt.Errorf("unknown panel %q", id)
}

// SelectEngine activates the sidebar entry for engine e.
func (c *Controller) SelectEngine(e Engine) error {
	for i, item := range NavItems {
		if item.Panel == Search && item.Engine == e {
			return c.Select(i)
		}
	}
	return fmt.Errorf("unknown engine %q", e)
}

// SetWidth records the terminal width used for the collapse breakpoint.
func (c *Controller) SetWidth(width int) {
	c.width = width
}

// Narrow reports whether the last known width is under the breakpoint.
func (c *Controller) Narrow() bool {
	return c.width > 0 && c.width < c.collapseBelow
}

// SidebarCollapsed reports whether the sidebar is hidden.
func (c *Controller) SidebarCollapsed() bool {
	return c.collapsed
}

// ToggleSidebar opens or collapses the sidebar.
func (c *Controller) ToggleSidebar() {
	c.collapsed = !c.collapsed
}

func (c *Controller) field(id FieldID) *Field {
	for _, pid := range IDs {
		if f := c.panels[pid].Field(id); f != nil {
			return f
		}
	}
	return nil
}

// abort cancels an in-flight submission and advances its generation so the
// eventual result is ignored.
func (c *Controller) abort(p *Panel) {
	if p.State != StateSubmitting {
		return
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.generation++
	p.State = StateIdle
	if p.Submit != nil {
		p.Submit.Disabled = false
	}
	if p.Loader != nil {
		p.Loader.Hidden = true
	}
}
