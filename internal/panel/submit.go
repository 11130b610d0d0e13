package panel

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/csheth/studydesk/internal/api"
)

// Validation messages shown in a panel's output region.
const (
	MsgNeedQuery    = "❌ Please enter a query."
	MsgNeedPDF      = "❌ Please select a PDF."
	MsgNeedFields   = "❌ Fill all fields."
	MsgNeedFile     = "❌ Select a file and enter a question."
	MsgNeedLLM      = "❌ Configure an LLM endpoint to ask about files."
	MsgUnexpected   = "❌ Unexpected response"
	transportPrefix = "❌ "
)

// Request is the payload captured when a form passes validation. Exactly one
// of the per-panel parts is set.
type Request struct {
	Panel      ID
	Generation uint64

	Search   *api.SearchRequest
	Tutor    *api.TutorRequest
	Quiz     *api.QuizRequest
	PDF      string
	File     string
	Question string
}

// Result is what came back for a Request. Err is a transport or local
// failure; otherwise Response holds the decoded body.
type Result struct {
	Response api.Response
	Err      error
}

// Begin validates the form of panel id. On failure the message is written to
// the panel's output and ok is false. On success every panel is cleared, the
// submit control is disabled, the loader is shown and the captured request is
// returned. A panel that is already submitting ignores the call.
func (c *Controller) Begin(id ID) (req Request, ok bool) {
	p := c.panels[id]
	if p == nil || !p.HasForm() || p.Busy() {
		return Request{}, false
	}
	p.State = StateValidating
	req, msg := c.capture(p)
	if msg != "" {
		p.Output.SetText(msg)
		p.State = StateIdle
		return Request{}, false
	}

	c.ClearAll()
	p.generation++
	p.Submit.Disabled = true
	p.Loader.Hidden = false
	p.State = StateSubmitting
	req.Panel = id
	req.Generation = p.generation
	return req, true
}

// Attach records the cancel func of the request started for generation gen.
// If that submission was already superseded the request is canceled at once.
func (c *Controller) Attach(id ID, gen uint64, cancel context.CancelFunc) {
	p := c.panels[id]
	if p == nil || cancel == nil {
		return
	}
	if !p.Busy() || p.generation != gen {
		cancel()
		return
	}
	p.cancel = cancel
}

// Complete applies a result to panel id. Results for a superseded generation
// are dropped and false is returned. Otherwise the output is written and the
// form returns to idle whatever the outcome.
func (c *Controller) Complete(id ID, gen uint64, res Result) bool {
	p := c.panels[id]
	if p == nil || !p.Busy() || p.generation != gen {
		return false
	}
	kind, content := outcome(id, res)
	if kind == OutputMarkup {
		p.Output.SetMarkup(content)
	} else {
		p.Output.SetText(content)
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.Submit.Disabled = false
	p.Loader.Hidden = true
	p.State = StateIdle
	return true
}

func (c *Controller) capture(p *Panel) (Request, string) {
	value := func(id FieldID) string { return p.Field(id).Trimmed() }

	switch p.ID {
	case Search:
		query := value(FieldSearchQuery)
		if query == "" {
			return Request{}, MsgNeedQuery
		}
		return Request{Search: &api.SearchRequest{Source: string(c.engine), Query: query}}, ""

	case PDF:
		path := value(FieldPDFInput)
		if path == "" {
			return Request{}, MsgNeedPDF
		}
		return Request{PDF: path}, ""

	case Tutor:
		tr := api.TutorRequest{
			Subject:       value(FieldTutorSubject),
			Level:         value(FieldTutorLevel),
			LearningStyle: value(FieldTutorStyle),
			Background:    value(FieldTutorBackground),
			Language:      value(FieldTutorLanguage),
			Question:      value(FieldTutorQuestion),
		}
		if tr.Subject == "" || tr.Level == "" || tr.Question == "" {
			return Request{}, MsgNeedFields
		}
		return Request{Tutor: &tr}, ""

	case Quiz:
		qr := api.QuizRequest{
			Subject:      value(FieldQuizSubject),
			Level:        value(FieldQuizLevel),
			NumQuestions: ParseCount(p.Field(FieldQuizCount).Value),
		}
		if qr.Subject == "" || qr.Level == "" {
			return Request{}, MsgNeedFields
		}
		return Request{Quiz: &qr}, ""

	case ReadFile:
		file, question := value(FieldFileInput), value(FieldFileQuestion)
		if file == "" || question == "" {
			return Request{}, MsgNeedFile
		}
		if !c.localAnswers {
			return Request{}, MsgNeedLLM
		}
		return Request{File: file, Question: question}, ""
	}
	return Request{}, MsgUnexpected
}

// outcome picks what to render for a finished request. Markup panels prefer
// html, text panels prefer summary; both fall back to error, then detail.
func outcome(id ID, res Result) (OutputKind, string) {
	if res.Err != nil {
		return OutputText, transportPrefix + res.Err.Error()
	}
	resp := res.Response
	switch id {
	case Search, Tutor, Quiz:
		if resp.HTML != "" {
			return OutputMarkup, resp.HTML
		}
	case PDF, ReadFile:
		if resp.Summary != "" {
			return OutputText, resp.Summary
		}
	}
	switch {
	case resp.Error != "":
		return OutputText, resp.Error
	case resp.Detail != "":
		return OutputText, resp.Detail
	}
	return OutputText, MsgUnexpected
}

// ParseCount reads the quiz count the way a browser's parseInt would: leading
// whitespace, an optional sign and at least one digit, ignoring the rest.
// Every digit of the prefix is kept. Anything else yields nil, which is sent
// as null.
func ParseCount(raw string) *json.Number {
	s := strings.TrimSpace(raw)
	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = "-"
		}
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return nil
	}
	digits := strings.TrimLeft(s[:end], "0")
	if digits == "" {
		digits, sign = "0", ""
	}
	n := json.Number(sign + digits)
	return &n
}
