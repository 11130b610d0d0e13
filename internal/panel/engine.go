package panel

import "strings"

// Engine names a search source understood by POST /api/search.
type Engine string

const (
	DuckDuckGo Engine = "duckduckgo"
	YouTube    Engine = "youtube"
	Wikipedia  Engine = "wikipedia"
	ArXiv      Engine = "arxiv"
	LiveLookup Engine = "livelookup"
)

// DefaultEngine is the source used before any search item is selected.
const DefaultEngine = DuckDuckGo

// Engines lists every engine in sidebar order.
var Engines = []Engine{DuckDuckGo, YouTube, Wikipedia, ArXiv, LiveLookup}

var engineLabels = map[Engine]string{
	DuckDuckGo: "🌐 DuckDuckGo",
	YouTube:    "📹 YouTube",
	Wikipedia:  "📚 Wikipedia",
	ArXiv:      "📄 ArXiv",
	LiveLookup: "🔎 Live Lookup",
}

// Label is the display name with its glyph.
func (e Engine) Label() string {
	return engineLabels[e]
}

// Summarizes reports whether the engine's action verb is "Summarize" rather
// than "Search".
func (e Engine) Summarizes() bool {
	return e == YouTube
}

// Title is the heading shown above the search form.
func (e Engine) Title() string {
	if e.Summarizes() {
		return e.Label() + " Summary"
	}
	return e.Label() + " Search"
}

// Button is the submit caption.
func (e Engine) Button() string {
	if e.Summarizes() {
		return "📝 Summarize"
	}
	return "🔍 Search"
}

// Placeholder is the hint text of the query field.
func (e Engine) Placeholder() string {
	return "Enter your " + strings.ToLower(e.Label()) + " query…"
}

func (e Engine) valid() bool {
	_, ok := engineLabels[e]
	return ok
}
