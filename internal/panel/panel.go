// Package panel is the view-model behind every studydesk screen. It knows
// nothing about terminals: the TUI and the CLI both drive a Controller and
// render whatever state it exposes.
package panel

import (
	"context"
	"strings"
)

// ID identifies one of the fixed panels.
type ID string

const (
	Home     ID = "home"
	Search   ID = "search"
	ReadFile ID = "readfile"
	PDF      ID = "pdf"
	Tutor    ID = "tutor"
	Quiz     ID = "quiz"
	Contact  ID = "contact"
)

// IDs lists every panel in display order.
var IDs = []ID{Home, Search, ReadFile, PDF, Tutor, Quiz, Contact}

// dataPanels produce output and are reset by ClearAll.
var dataPanels = []ID{Search, PDF, Tutor, Quiz, ReadFile}

// FieldID names an input field. The values match the element ids of the web
// front end so saved history stays comparable.
type FieldID string

const (
	FieldSearchQuery     FieldID = "searchQuery"
	FieldFileInput       FieldID = "fileInput"
	FieldFileQuestion    FieldID = "fileQuestion"
	FieldPDFInput        FieldID = "pdfInput"
	FieldTutorSubject    FieldID = "tutorSubject"
	FieldTutorLevel      FieldID = "tutorLevel"
	FieldTutorStyle      FieldID = "tutorStyle"
	FieldTutorBackground FieldID = "tutorBackground"
	FieldTutorLanguage   FieldID = "tutorLanguage"
	FieldTutorQuestion   FieldID = "tutorQuestion"
	FieldQuizSubject     FieldID = "quizSubject"
	FieldQuizLevel       FieldID = "quizLevel"
	FieldQuizCount       FieldID = "quizCount"
)

// transientFields are emptied by ClearAll.
var transientFields = []FieldID{FieldSearchQuery, FieldFileInput, FieldFileQuestion, FieldPDFInput}

// Levels offered by the tutor and quiz forms.
var Levels = []string{"Beginner", "Intermediate", "Advanced"}

// LearningStyles offered by the tutor form.
var LearningStyles = []string{"Text-based", "Visual", "Auditory", "Hands-on"}

// Field is a single form input. Fields with Options are choice fields and
// always hold one of the options.
type Field struct {
	ID          FieldID
	Label       string
	Placeholder string
	Value       string
	Options     []string
}

// Trimmed returns the value without surrounding whitespace.
func (f *Field) Trimmed() string {
	return strings.TrimSpace(f.Value)
}

// IsChoice reports whether the field cycles through fixed options.
func (f *Field) IsChoice() bool {
	return len(f.Options) > 0
}

// Cycle moves a choice field delta options forward, wrapping around.
func (f *Field) Cycle(delta int) {
	if !f.IsChoice() {
		return
	}
	idx := 0
	for i, opt := range f.Options {
		if opt == f.Value {
			idx = i
			break
		}
	}
	n := len(f.Options)
	idx = ((idx+delta)%n + n) % n
	f.Value = f.Options[idx]
}

// OutputKind says how an output region's content must be rendered.
type OutputKind int

const (
	// OutputText is shown verbatim.
	OutputText OutputKind = iota
	// OutputMarkup is backend HTML, rendered as formatted content.
	OutputMarkup
)

// Output is a panel's result region.
type Output struct {
	ID      string
	Kind    OutputKind
	Content string
}

// SetText replaces the content with plain text.
func (o *Output) SetText(text string) {
	o.Kind = OutputText
	o.Content = text
}

// SetMarkup replaces the content with backend markup.
func (o *Output) SetMarkup(markup string) {
	o.Kind = OutputMarkup
	o.Content = markup
}

// Clear empties the region.
func (o *Output) Clear() {
	o.Kind = OutputText
	o.Content = ""
}

// Empty reports whether nothing is rendered.
func (o *Output) Empty() bool {
	return o.Content == ""
}

// Loader is a busy indicator.
type Loader struct {
	ID     string
	Hidden bool
}

// SubmitControl is a form's submit button.
type SubmitControl struct {
	ID       string
	Caption  string
	Disabled bool
}

// FormState tracks a form through one submission.
type FormState int

const (
	StateIdle FormState = iota
	StateValidating
	StateSubmitting
)

func (s FormState) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

// Panel is the typed view-model for one screen. Output, Loader and Submit are
// nil for panels that do not declare them.
type Panel struct {
	ID     ID
	Title  string
	Hidden bool
	Fields []*Field
	Output *Output
	Loader *Loader
	Submit *SubmitControl
	State  FormState

	generation uint64
	cancel     context.CancelFunc
}

// Field returns the field with the given id, or nil.
func (p *Panel) Field(id FieldID) *Field {
	for _, f := range p.Fields {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// HasForm reports whether the panel can be submitted.
func (p *Panel) HasForm() bool {
	return p.Submit != nil
}

// Busy reports whether a request is in flight.
func (p *Panel) Busy() bool {
	return p.State == StateSubmitting
}

// Generation identifies the latest submission; results from older ones are
// discarded.
func (p *Panel) Generation() uint64 {
	return p.generation
}

func newPanels() map[ID]*Panel {
	return map[ID]*Panel{
		Home: {ID: Home, Title: "🏠 Home"},
		Search: {
			ID: Search,
			Fields: []*Field{
				{ID: FieldSearchQuery, Label: "Query"},
			},
			Output: &Output{ID: "searchOutput"},
			Loader: &Loader{ID: "searchLoader", Hidden: true},
			Submit: &SubmitControl{ID: "searchBtn"},
		},
		ReadFile: {
			ID:    ReadFile,
			Title: "📂 Read File",
			Fields: []*Field{
				{ID: FieldFileInput, Label: "File", Placeholder: "Path to a .pdf, .txt or .md file…"},
				{ID: FieldFileQuestion, Label: "Question", Placeholder: "What do you want to know about it?"},
			},
			Output: &Output{ID: "fileAnswer"},
			Loader: &Loader{ID: "readfileLoader", Hidden: true},
			Submit: &SubmitControl{ID: "fileBtn", Caption: "💬 Ask"},
		},
		PDF: {
			ID:    PDF,
			Title: "📑 PDF Summarizer",
			Fields: []*Field{
				{ID: FieldPDFInput, Label: "PDF", Placeholder: "Path to a PDF, or an arXiv id / URL…"},
			},
			Output: &Output{ID: "pdfOutput"},
			Loader: &Loader{ID: "pdfLoader", Hidden: true},
			Submit: &SubmitControl{ID: "pdfBtn", Caption: "📝 Summarize"},
		},
		Tutor: {
			ID:    Tutor,
			Title: "🎓 AI Tutor",
			Fields: []*Field{
				{ID: FieldTutorSubject, Label: "Subject", Placeholder: "e.g. Linear algebra"},
				{ID: FieldTutorLevel, Label: "Level", Options: Levels, Value: Levels[0]},
				{ID: FieldTutorStyle, Label: "Learning style", Options: LearningStyles, Value: LearningStyles[0]},
				{ID: FieldTutorBackground, Label: "Background", Placeholder: "What you already know (optional)"},
				{ID: FieldTutorLanguage, Label: "Language", Placeholder: "English"},
				{ID: FieldTutorQuestion, Label: "Question", Placeholder: "Ask anything…"},
			},
			Output: &Output{ID: "tutorOutput"},
			Loader: &Loader{ID: "tutorLoader", Hidden: true},
			Submit: &SubmitControl{ID: "tutorBtn", Caption: "🎓 Teach me"},
		},
		Quiz: {
			ID:    Quiz,
			Title: "📝 Quiz Generator",
			Fields: []*Field{
				{ID: FieldQuizSubject, Label: "Subject", Placeholder: "e.g. Organic chemistry"},
				{ID: FieldQuizLevel, Label: "Level", Options: Levels, Value: Levels[0]},
				{ID: FieldQuizCount, Label: "Questions", Value: "5"},
			},
			Output: &Output{ID: "quizOutput"},
			Loader: &Loader{ID: "quizLoader", Hidden: true},
			Submit: &SubmitControl{ID: "quizBtn", Caption: "🧠 Generate quiz"},
		},
		Contact: {ID: Contact, Title: "✉️ Contact"},
	}
}
