package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const systemPrompt = "You are a patient study assistant."

// openAI talks to any OpenAI-compatible chat completions endpoint.
type openAI struct {
	apiKey string
	model  string
	base   string
	client *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (o *openAI) label() string {
	return fmt.Sprintf("OpenAI (%s)", o.model)
}

func (o *openAI) complete(ctx context.Context, prompt string) (string, error) {
	in := struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		Temperature float64       `json:"temperature"`
	}{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	}
	var out struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	header := http.Header{"Authorization": {"Bearer " + o.apiKey}}
	if err := postJSON(ctx, o.client, "openai", o.base+"/chat/completions", header, in, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("openai API returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
