package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/csheth/studydesk/internal/guard"
	"github.com/csheth/studydesk/internal/guide"
	"github.com/csheth/studydesk/internal/tui"
)

var version = "dev"

// errReported means the failure was already written to stdout as panel output.
var errReported = errors.New("request failed")

type rootFlags struct {
	configPath  string
	verbose     bool
	noAltScreen bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "studydesk:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	var a *app

	root := &cobra.Command{
		Use:   "studydesk",
		Short: "Terminal study workspace: search, summarize PDFs, tutor and quiz",
		Long: `studydesk is a terminal front end for a study backend.

Run without arguments to open the interactive workspace. The subcommands run a
single panel headlessly and print the result.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(cmd.Context(), flags)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), a, flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default $STUDYDESK_CONFIG or the user config dir)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log at debug level")
	root.Flags().BoolVar(&flags.noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")

	current := func() *app { return a }
	root.AddCommand(
		newSearchCmd(current),
		newSummarizeCmd(current),
		newTutorCmd(current),
		newQuizCmd(current),
		newAskCmd(current),
		newHistoryCmd(current),
	)
	return root
}

func runInteractive(ctx context.Context, a *app, flags *rootFlags) error {
	cfg := a.cfg
	model := tui.New(tui.Config{
		Runner:   a.dispatcher,
		History:  a.history,
		Renderer: a.renderer,
		Guide: guide.Build(guide.Context{
			BaseURL:     cfg.Server.BaseURL,
			LLMName:     a.dispatcher.LLMName(),
			HistoryPath: a.history.Path(),
		}),
		Contact:       tui.Contact{Email: cfg.Contact.Email, URL: cfg.Contact.URL},
		Timeout:       cfg.Server.Timeout,
		CollapseBelow: cfg.UI.CollapseBelow,
		LocalAnswers:  a.dispatcher.LocalAnswers(),
		Logger:        a.logger,
	})

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.UI.AltScreen && !flags.noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	if cfg.UI.RestrictInputs {
		opts = append(opts, guard.New(a.logger).Option())
	}

	a.logger.Info("starting interactive session", zap.String("version", version), zap.String("backend", cfg.Server.BaseURL))
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}
