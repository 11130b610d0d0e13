package llm

import (
	"context"
	"strings"
)

// completer sends one prompt to a provider and returns the reply text.
type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
	label() string
}

// assistant turns documents and questions into prompts for a provider.
type assistant struct {
	backend completer
}

func (a *assistant) Name() string {
	return a.backend.label()
}

func (a *assistant) Summarize(ctx context.Context, title, content string) (string, error) {
	excerpt := clipText(content, maxSummaryChars)
	if excerpt == "" {
		return "", errEmptyDocument
	}
	return a.ask(ctx, buildSummaryPrompt(title, excerpt))
}

func (a *assistant) Answer(ctx context.Context, title, question, content string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", errEmptyQuestion
	}
	excerpt := extractQuestionContext(content, question, maxAnswerChars)
	if excerpt == "" {
		return "", errEmptyDocument
	}
	return a.ask(ctx, buildAnswerPrompt(title, excerpt, question))
}

func (a *assistant) ask(ctx context.Context, prompt string) (string, error) {
	reply, err := a.backend.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}
