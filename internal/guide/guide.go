package guide

import (
	"fmt"
	"strings"
)

// Step represents one item on the home screen's getting-started list.
type Step struct {
	Title       string
	Description string
}

// Context carries just enough state to personalize the steps.
type Context struct {
	BaseURL     string
	LLMName     string
	HistoryPath string
}

// Build returns the home screen walkthrough, one step per workspace.
func Build(ctx Context) []Step {
	backend := strings.TrimSpace(ctx.BaseURL)
	if backend == "" {
		backend = "the configured backend"
	}
	reader := "Set llm.provider and llm.endpoint in your config to ask questions about local files."
	if ctx.LLMName != "" {
		reader = fmt.Sprintf("Point at a .pdf, .txt or .md file and ask a question; %s answers from the file's text.", ctx.LLMName)
	}
	saved := "Press ctrl+s on any result to keep it."
	if ctx.HistoryPath != "" {
		saved = fmt.Sprintf("Press ctrl+s on any result to keep it in %s; `studydesk history` lists them later.", ctx.HistoryPath)
	}

	return []Step{
		{
			Title:       "Search five sources",
			Description: fmt.Sprintf("Pick DuckDuckGo, YouTube, Wikipedia, ArXiv or Live Lookup from the sidebar. Queries go to %s and results render here.", backend),
		},
		{
			Title:       "Summarize a PDF",
			Description: "Give a local PDF path or an arXiv id such as 1706.03762. arXiv papers are downloaded once and cached.",
		},
		{
			Title:       "Read a file",
			Description: reader,
		},
		{
			Title:       "Learn with the tutor",
			Description: "Choose a subject, your level and learning style, then ask. Background and language are optional but sharpen the answer.",
		},
		{
			Title:       "Test yourself",
			Description: "Generate a quiz on any subject. The question count defaults to five.",
		},
		{
			Title:       "Save what helps",
			Description: saved,
		},
	}
}
