package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/studydesk/internal/history"
	"github.com/csheth/studydesk/internal/panel"
)

func panelRequestJob(runner Runner, req panel.Request) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		res := runner.Run(ctx, req)
		return panelResultMsg{panel: req.Panel, gen: req.Generation, result: res}, res.Err
	}
}

func saveHistoryJob(store *history.Store, entry history.Entry) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		err := store.Append(entry)
		return historySavedMsg{entry: entry, err: err}, err
	}
}

func jobKindFor(id panel.ID) jobKind {
	switch id {
	case panel.Search:
		return jobKindSearch
	case panel.PDF:
		return jobKindPDF
	case panel.Tutor:
		return jobKindTutor
	case panel.Quiz:
		return jobKindQuiz
	case panel.ReadFile:
		return jobKindReadFile
	default:
		return jobKind(id)
	}
}

// describeRequest is the one-line query recorded with saved history.
func describeRequest(req panel.Request) string {
	switch {
	case req.Search != nil:
		return req.Search.Query
	case req.Tutor != nil:
		return fmt.Sprintf("%s (%s): %s", req.Tutor.Subject, req.Tutor.Level, req.Tutor.Question)
	case req.Quiz != nil:
		count := "default"
		if req.Quiz.NumQuestions != nil {
			count = fmt.Sprint(*req.Quiz.NumQuestions)
		}
		return fmt.Sprintf("%s (%s), %s questions", req.Quiz.Subject, req.Quiz.Level, count)
	case req.PDF != "":
		return req.PDF
	case req.File != "":
		return fmt.Sprintf("%s: %s", filepath.Base(req.File), req.Question)
	}
	return ""
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
