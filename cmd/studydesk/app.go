package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/csheth/studydesk/internal/api"
	"github.com/csheth/studydesk/internal/arxiv"
	"github.com/csheth/studydesk/internal/config"
	"github.com/csheth/studydesk/internal/dispatch"
	"github.com/csheth/studydesk/internal/history"
	"github.com/csheth/studydesk/internal/llm"
	"github.com/csheth/studydesk/internal/logging"
	"github.com/csheth/studydesk/internal/panel"
	"github.com/csheth/studydesk/internal/render"
	"github.com/csheth/studydesk/internal/telemetry"
)

const printWidth = 100

// app holds everything a command needs once configuration is loaded.
type app struct {
	cfg        config.Config
	logger     *zap.Logger
	dispatcher *dispatch.Dispatcher
	history    *history.Store
	renderer   *render.Renderer
	shutdown   telemetry.ShutdownFunc
}

func newApp(ctx context.Context, flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{Path: cfg.Log.Path, Level: cfg.Log.Level, Verbose: flags.verbose})
	if err != nil {
		return nil, err
	}
	shutdown, err := telemetry.Setup(ctx, version)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
		shutdown = func(context.Context) error { return nil }
	}

	backend, err := api.New(api.Config{BaseURL: cfg.Server.BaseURL, Timeout: cfg.Server.Timeout, Logger: logger})
	if err != nil {
		return nil, err
	}
	papers, err := arxiv.NewFetcher(arxiv.Options{CacheDir: cfg.Cache.Dir, Logger: logger})
	if err != nil {
		return nil, err
	}

	var model llm.Client
	model, err = llm.New(llm.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		Endpoint: cfg.LLM.Endpoint,
		APIKey:   cfg.LLM.APIKey,
	})
	switch {
	case errors.Is(err, llm.ErrDisabled):
		model = nil
	case err != nil:
		logger.Warn("local answers disabled", zap.Error(err))
		model = nil
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		dispatcher: dispatch.New(dispatch.Config{
			Backend: backend,
			Papers:  papers,
			LLM:     model,
			Logger:  logger,
		}),
		history:  history.Open(cfg.History.Path),
		renderer: render.New(cfg.UI.Style),
		shutdown: shutdown,
	}, nil
}

// Close flushes tracing and the log.
func (a *app) Close() {
	_ = a.shutdown(context.Background())
	_ = a.logger.Sync()
}

// runPanel drives one panel through the same controller the TUI uses.
// prepare selects the panel and fills its fields.
func (a *app) runPanel(ctx context.Context, id panel.ID, prepare func(*panel.Controller) error) (*panel.Panel, string, error) {
	ctrl := panel.New(panel.Options{LocalAnswers: a.dispatcher.LocalAnswers()})
	if err := prepare(ctrl); err != nil {
		return nil, "", err
	}
	req, ok := ctrl.Begin(id)
	p := ctrl.Panel(id)
	if !ok {
		return p, "", errReported
	}

	if a.cfg.Server.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Server.Timeout)
		ctrl.Attach(id, req.Generation, cancel)
	}
	res := a.dispatcher.Run(ctx, req)
	ctrl.Complete(id, req.Generation, res)
	if res.Err != nil {
		a.logger.Warn("request failed", zap.String("panel", string(id)), zap.Error(res.Err))
		return p, "", errReported
	}
	engine := ""
	if id == panel.Search {
		engine = string(ctrl.Engine())
	}
	return p, engine, nil
}

func (a *app) print(w io.Writer, out *panel.Output, raw bool) {
	if out == nil || out.Empty() {
		return
	}
	if raw {
		fmt.Fprintln(w, out.Content)
		return
	}
	fmt.Fprintln(w, a.renderer.Output(out, printWidth))
}

func (a *app) save(p *panel.Panel, engine, query string) (history.Entry, error) {
	entry := history.NewEntry(string(p.ID), engine, query, p.Output.Kind == panel.OutputMarkup, p.Output.Content)
	if err := a.history.Append(entry); err != nil {
		return history.Entry{}, fmt.Errorf("save history: %w", err)
	}
	return entry, nil
}
