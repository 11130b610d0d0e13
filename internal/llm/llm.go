package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultOllamaModel = "llama3.1:8b"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultOpenAIBase  = "https://api.openai.com/v1"
	// Keep prompts well inside an 8k-token window at roughly 4 chars/token.
	maxSummaryChars = 24_000
	maxAnswerChars  = 16_000
)

const defaultLLMHTTPTimeout = 3 * time.Minute

// ErrDisabled is returned by New when no provider is configured.
var ErrDisabled = errors.New("llm: no provider configured")

// Config describes how to build an LLM client.
type Config struct {
	// Provider is "ollama" or "openai". Empty or "none" disables local answers.
	Provider   string
	Model      string
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

// Client answers questions about, and summarizes, local study material.
type Client interface {
	Summarize(ctx context.Context, title, content string) (string, error)
	Answer(ctx context.Context, title, question, content string) (string, error)
	Name() string
}

// Enabled reports whether cfg names a provider.
func (cfg Config) Enabled() bool {
	p := strings.ToLower(strings.TrimSpace(cfg.Provider))
	return p != "" && p != "none"
}

// New builds the client for cfg.Provider, filling unset values from the
// OLLAMA_HOST, OLLAMA_MODEL and OPENAI_API_KEY environment variables.
func New(cfg Config) (Client, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "ollama":
		host := cfg.Endpoint
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = "http://localhost:11434"
		}
		model := firstNonEmpty(cfg.Model, os.Getenv("OLLAMA_MODEL"), defaultOllamaModel)
		return &assistant{backend: &ollama{
			host:   strings.TrimRight(host, "/"),
			model:  model,
			client: pickHTTPClient(cfg.HTTPClient),
		}}, nil
	case "openai":
		key := firstNonEmpty(cfg.APIKey, os.Getenv("OPENAI_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("llm: openai provider needs an API key")
		}
		return &assistant{backend: &openAI{
			apiKey: key,
			model:  firstNonEmpty(cfg.Model, defaultOpenAIModel),
			base:   strings.TrimRight(firstNonEmpty(cfg.Endpoint, defaultOpenAIBase), "/"),
			client: pickHTTPClient(cfg.HTTPClient),
		}}, nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Local models can take minutes; the caller's context still cancels.
	return &http.Client{Timeout: defaultLLMHTTPTimeout}
}
