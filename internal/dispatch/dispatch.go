// Package dispatch executes a validated panel request against the backend and
// the local helpers. The TUI and the CLI subcommands share it.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/csheth/studydesk/internal/api"
	"github.com/csheth/studydesk/internal/arxiv"
	"github.com/csheth/studydesk/internal/document"
	"github.com/csheth/studydesk/internal/llm"
	"github.com/csheth/studydesk/internal/panel"
)

const paperLookupTimeout = 10 * time.Second

// ErrNoLLM is returned for local questions when no model is configured.
var ErrNoLLM = errors.New("no LLM configured")

// Backend is the subset of *api.Client the dispatcher needs.
type Backend interface {
	Search(ctx context.Context, req api.SearchRequest) (api.Response, error)
	Tutor(ctx context.Context, req api.TutorRequest) (api.Response, error)
	Quiz(ctx context.Context, req api.QuizRequest) (api.Response, error)
	SummarizePDF(ctx context.Context, path string) (api.Response, error)
}

// Papers resolves arXiv references to local PDFs.
type Papers interface {
	DownloadPDF(ctx context.Context, input string) (string, error)
	Lookup(ctx context.Context, input string) (*arxiv.Paper, error)
}

// Config wires a Dispatcher. Papers and LLM may be nil.
type Config struct {
	Backend Backend
	Papers  Papers
	LLM     llm.Client
	Logger  *zap.Logger
}

// Dispatcher runs requests. It is safe for concurrent use.
type Dispatcher struct {
	backend Backend
	papers  Papers
	llm     llm.Client
	logger  *zap.Logger
}

// New builds a Dispatcher.
func New(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		backend: cfg.Backend,
		papers:  cfg.Papers,
		llm:     cfg.LLM,
		logger:  logger.Named("dispatch"),
	}
}

// LocalAnswers reports whether read-file questions can be answered.
func (d *Dispatcher) LocalAnswers() bool {
	return d.llm != nil
}

// LLMName describes the configured model, or "".
func (d *Dispatcher) LLMName() string {
	if d.llm == nil {
		return ""
	}
	return d.llm.Name()
}

// Run executes req and packages the outcome for panel.Controller.Complete.
func (d *Dispatcher) Run(ctx context.Context, req panel.Request) panel.Result {
	resp, err := d.run(ctx, req)
	if err != nil && !errors.Is(err, context.Canceled) {
		d.logger.Warn("request failed", zap.String("panel", string(req.Panel)), zap.Error(err))
	}
	return panel.Result{Response: resp, Err: err}
}

func (d *Dispatcher) run(ctx context.Context, req panel.Request) (api.Response, error) {
	switch {
	case req.Search != nil:
		return d.backend.Search(ctx, *req.Search)
	case req.Tutor != nil:
		return d.backend.Tutor(ctx, *req.Tutor)
	case req.Quiz != nil:
		return d.backend.Quiz(ctx, *req.Quiz)
	case req.PDF != "":
		return d.SummarizePDF(ctx, req.PDF)
	case req.File != "":
		answer, err := d.Ask(ctx, req.File, req.Question)
		if err != nil {
			return api.Response{}, err
		}
		return api.Response{Summary: answer}, nil
	}
	return api.Response{}, fmt.Errorf("empty request for panel %q", req.Panel)
}

// SummarizePDF uploads a local PDF, or downloads an arXiv paper first. For
// arXiv papers the summary is headed with the paper's title when the metadata
// lookup succeeds.
func (d *Dispatcher) SummarizePDF(ctx context.Context, input string) (api.Response, error) {
	if d.papers == nil || !arxiv.IsReference(input) {
		path, err := document.CheckPDF(input)
		if err != nil {
			return api.Response{}, err
		}
		return d.backend.SummarizePDF(ctx, path)
	}

	var (
		paper *arxiv.Paper
		resp  api.Response
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lctx, cancel := context.WithTimeout(gctx, paperLookupTimeout)
		defer cancel()
		p, err := d.papers.Lookup(lctx, input)
		if err != nil {
			d.logger.Debug("paper lookup failed", zap.String("input", input), zap.Error(err))
			return nil
		}
		paper = p
		return nil
	})
	g.Go(func() error {
		path, err := d.papers.DownloadPDF(gctx, input)
		if err != nil {
			return fmt.Errorf("download %s: %w", input, err)
		}
		resp, err = d.backend.SummarizePDF(gctx, path)
		return err
	})
	if err := g.Wait(); err != nil {
		return api.Response{}, err
	}
	if heading := paper.Heading(); heading != "" && resp.Summary != "" {
		resp.Summary = "📄 " + heading + "\n\n" + resp.Summary
	}
	return resp, nil
}

// Ask answers question from the text of the local file at path.
func (d *Dispatcher) Ask(ctx context.Context, path, question string) (string, error) {
	if d.llm == nil {
		return "", ErrNoLLM
	}
	doc, err := document.Read(path)
	if err != nil {
		return "", err
	}
	return d.llm.Answer(ctx, doc.Name, question, doc.Text)
}

// SummarizeLocal summarizes a local file with the configured model instead of
// the backend.
func (d *Dispatcher) SummarizeLocal(ctx context.Context, path string) (string, error) {
	if d.llm == nil {
		return "", ErrNoLLM
	}
	doc, err := document.Read(path)
	if err != nil {
		return "", err
	}
	return d.llm.Summarize(ctx, doc.Name, doc.Text)
}
