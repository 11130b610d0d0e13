package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPickHTTPClientHonorsCustomClient(t *testing.T) {
	custom := &http.Client{Timeout: 42 * time.Second}
	if got := pickHTTPClient(custom); got != custom {
		t.Fatalf("expected custom client to be returned")
	}
}

func TestPickHTTPClientUsesLongerTimeout(t *testing.T) {
	client := pickHTTPClient(nil)
	if client.Timeout != defaultLLMHTTPTimeout {
		t.Fatalf("expected default timeout %s, got %s", defaultLLMHTTPTimeout, client.Timeout)
	}
}

func TestNewDisabledWithoutProvider(t *testing.T) {
	for _, provider := range []string{"", "none", " NONE "} {
		if _, err := New(Config{Provider: provider}); !errors.Is(err, ErrDisabled) {
			t.Fatalf("provider %q: expected ErrDisabled, got %v", provider, err)
		}
	}
}

func TestNewOllamaDefaults(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "http://gpu-box:11434/")
	t.Setenv("OLLAMA_MODEL", "")
	client, err := New(Config{Provider: "ollama"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a, ok := client.(*assistant)
	if !ok {
		t.Fatalf("expected *assistant, got %T", client)
	}
	oc, ok := a.backend.(*ollama)
	if !ok {
		t.Fatalf("expected ollama backend, got %T", a.backend)
	}
	if oc.host != "http://gpu-box:11434" {
		t.Fatalf("host = %q", oc.host)
	}
	if oc.model != defaultOllamaModel {
		t.Fatalf("model = %q", oc.model)
	}
	if client.Name() != "Ollama ("+defaultOllamaModel+")" {
		t.Fatalf("name = %q", client.Name())
	}
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := New(Config{Provider: "openai"}); err == nil {
		t.Fatal("expected missing key error")
	}
	client, err := New(Config{Provider: "OpenAI", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.Name() != "OpenAI ("+defaultOpenAIModel+")" {
		t.Fatalf("name = %q", client.Name())
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(Config{Provider: "claude"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestOpenAIClientAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header: %q", got)
		}
		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		if len(payload.Messages) != 2 || !strings.Contains(payload.Messages[1].Content, "Question: Who wrote it?") {
			t.Errorf("unexpected messages: %+v", payload.Messages)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"  Ada Lovelace. "}}]}`))
	}))
	defer server.Close()

	client, err := New(Config{Provider: "openai", APIKey: "sk-test", Endpoint: server.URL + "/v1/", HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	answer, err := client.Answer(context.Background(), "notes.md", "Who wrote it?", "The notes were written by Ada Lovelace.")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if answer != "Ada Lovelace." {
		t.Fatalf("unexpected answer %q", answer)
	}
}

func TestExtractQuestionContextPrefersMatchingSentences(t *testing.T) {
	content := "Cells divide by mitosis. Photosynthesis happens in chloroplasts. The exam is on Friday."
	got := extractQuestionContext(content, "Where does photosynthesis happen?", 1000)
	if got != "Photosynthesis happens in chloroplasts." {
		t.Fatalf("unexpected context %q", got)
	}
	if got := extractQuestionContext(content, "why?", 1000); got != content {
		t.Fatalf("expected whole content without keywords, got %q", got)
	}
}

func TestClipTextCountsRunes(t *testing.T) {
	if got := clipText("héllo wörld", 5); got != "héllo" {
		t.Fatalf("clipText = %q", got)
	}
}

func TestExtractQuestionContextKeepsDocumentOrderWithinBudget(t *testing.T) {
	content := "Enzymes speed reactions. Temperature changes enzyme activity! Enzymes denature above 40C? Lunch is at noon."
	got := extractQuestionContext(content, "How does temperature affect enzyme activity?", 70)
	want := "Enzymes speed reactions. Temperature changes enzyme activity!"
	if got != want {
		t.Fatalf("unexpected context %q, want %q", got, want)
	}
}
