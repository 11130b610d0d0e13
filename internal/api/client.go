// Package api talks to the study backend: search, PDF summarization, tutoring
// and quiz generation.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	PathSearch       = "/api/search"
	PathPDFSummarize = "/api/pdf-summarize"
	PathTutor        = "/tutor"
	PathQuiz         = "/quiz"

	// RequestIDHeader correlates a submission with backend logs.
	RequestIDHeader = "X-Request-ID"

	maxResponseBytes = 8 << 20
)

// Config describes how to reach the backend.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client issues single-attempt requests against the backend. It never retries.
type Client struct {
	base   string
	http   *http.Client
	logger *zap.Logger
	tracer trace.Tracer
}

// Response carries every field the front end reads from any endpoint. Which
// ones are populated depends on the endpoint contract.
type Response struct {
	HTML    string `json:"html"`
	Summary string `json:"summary"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`

	Status    int    `json:"-"`
	RequestID string `json:"-"`
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Source string `json:"source"`
	Query  string `json:"query"`
}

// TutorRequest is the body of POST /tutor.
type TutorRequest struct {
	Subject       string `json:"subject"`
	Level         string `json:"level"`
	LearningStyle string `json:"learning_style"`
	Background    string `json:"background"`
	Language      string `json:"language"`
	Question      string `json:"question"`
}

// QuizRequest is the body of POST /quiz. A nil NumQuestions is sent as null,
// which is what a non-numeric count becomes. The count is kept as digits so
// any size reaches the backend unchanged.
type QuizRequest struct {
	Subject      string       `json:"subject"`
	Level        string       `json:"level"`
	NumQuestions *json.Number `json:"num_questions"`
}

// New builds a Client. A zero timeout leaves requests bounded only by ctx.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:   base,
		http:   httpClient,
		logger: logger.Named("api"),
		tracer: otel.Tracer("studydesk/api"),
	}, nil
}

// BaseURL reports the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.base
}

// Search posts {source, query}.
func (c *Client) Search(ctx context.Context, req SearchRequest) (Response, error) {
	return c.postJSON(ctx, PathSearch, req)
}

// Tutor posts the tutoring form.
func (c *Client) Tutor(ctx context.Context, req TutorRequest) (Response, error) {
	return c.postJSON(ctx, PathTutor, req)
}

// Quiz posts the quiz form.
func (c *Client) Quiz(ctx context.Context, req QuizRequest) (Response, error) {
	return c.postJSON(ctx, PathQuiz, req)
}

// SummarizePDF uploads the file at path as multipart field "file".
func (c *Client) SummarizePDF(ctx context.Context, path string) (Response, error) {
	file, err := os.Open(path)
	if err != nil {
		return Response{}, fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return Response{}, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return Response{}, fmt.Errorf("read pdf: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Response{}, err
	}
	return c.do(ctx, PathPDFSummarize, writer.FormDataContentType(), &body)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (Response, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, path, "application/json", bytes.NewReader(buf))
}

func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader) (Response, error) {
	requestID := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, "POST "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", http.MethodPost),
		attribute.String("http.target", path),
		attribute.String("studydesk.request_id", requestID),
	)

	started := time.Now()
	resp, err := c.send(ctx, path, contentType, body, requestID)
	fields := []zap.Field{
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(started)),
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("request failed", append(fields, zap.Error(err))...)
		return Response{RequestID: requestID, Status: resp.Status}, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.Status))
	c.logger.Info("request finished", append(fields, zap.Int("status", resp.Status))...)
	return resp, nil
}

func (c *Client) send(ctx context.Context, path, contentType string, body io.Reader, requestID string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, body)
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Response{Status: resp.StatusCode}, err
	}

	// The status code is not consulted before decoding: error payloads are
	// JSON too and their error/detail fields are surfaced to the user.
	parsed, err := decodeResponse(raw)
	if err != nil {
		return Response{Status: resp.StatusCode}, &StatusError{Status: resp.StatusCode, Body: snippet(raw), Err: err}
	}
	parsed.Status = resp.StatusCode
	parsed.RequestID = requestID
	return parsed, nil
}

func decodeResponse(raw []byte) (Response, error) {
	var wire struct {
		HTML    string          `json:"html"`
		Summary string          `json:"summary"`
		Error   string          `json:"error"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Response{}, fmt.Errorf("invalid response body: %w", err)
	}
	return Response{
		HTML:    wire.HTML,
		Summary: wire.Summary,
		Error:   wire.Error,
		Detail:  detailText(wire.Detail),
	}, nil
}

// detailText flattens FastAPI's detail, which is a string for HTTPException
// and a list of objects for validation failures.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(raw)
}

func snippet(raw []byte) string {
	const limit = 512
	if len(raw) > limit {
		raw = raw[:limit]
	}
	return strings.TrimSpace(string(raw))
}
