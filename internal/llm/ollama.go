package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type ollama struct {
	host   string
	model  string
	client *http.Client
}

func (o *ollama) label() string {
	return fmt.Sprintf("Ollama (%s)", o.model)
}

func (o *ollama) complete(ctx context.Context, prompt string) (string, error) {
	in := map[string]any{
		"model":   o.model,
		"prompt":  prompt,
		"stream":  false,
		"options": map[string]any{"temperature": 0.2},
	}
	var out struct {
		Response string `json:"response"`
	}
	if err := postJSON(ctx, o.client, "ollama", o.host+"/api/generate", nil, in, &out); err != nil {
		return "", err
	}
	if out.Response == "" {
		return "", errors.New("ollama returned an empty response")
	}
	return out.Response, nil
}
