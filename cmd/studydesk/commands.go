package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/csheth/studydesk/internal/panel"
)

type panelFlags struct {
	raw  bool
	save bool
}

func (f *panelFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.raw, "raw", false, "print the backend content without rendering")
	cmd.Flags().BoolVar(&f.save, "save", false, "append the result to the history file")
}

func newSearchCmd(current func() *app) *cobra.Command {
	flags := &panelFlags{}
	var engine string
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search one of the study sources",
		Long: `Search DuckDuckGo, YouTube, Wikipedia, arXiv or the live lookup source.
YouTube results are summaries of the matching videos.`,
		Example: "  studydesk search -e wikipedia photosynthesis",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return execPanel(cmd, current(), flags, panel.Search, query, func(c *panel.Controller) error {
				e, err := panel.ParseEngine(engine)
				if err != nil {
					return err
				}
				if err := c.SelectEngine(e); err != nil {
					return err
				}
				return setField(c, panel.Search, panel.FieldSearchQuery, query)
			})
		},
	}
	cmd.Flags().StringVarP(&engine, "engine", "e", string(panel.DefaultEngine), "source: duckduckgo, youtube, wikipedia, arxiv, livelookup")
	flags.register(cmd)
	return cmd
}

func newSummarizeCmd(current func() *app) *cobra.Command {
	flags := &panelFlags{}
	var local bool
	cmd := &cobra.Command{
		Use:   "summarize <pdf | arXiv id | arXiv URL>",
		Short: "Summarize a PDF through the backend",
		Long: `Summarize a local PDF, or an arXiv paper which is downloaded and cached first.
With --local the configured LLM summarizes the file instead of the backend.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			if local {
				summary, err := a.dispatcher.SummarizeLocal(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), summary)
				return nil
			}
			return execPanel(cmd, a, flags, panel.PDF, args[0], func(c *panel.Controller) error {
				if err := c.SelectPanel(panel.PDF); err != nil {
					return err
				}
				return setField(c, panel.PDF, panel.FieldPDFInput, args[0])
			})
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "summarize with the configured LLM instead of the backend")
	flags.register(cmd)
	return cmd
}

func newTutorCmd(current func() *app) *cobra.Command {
	flags := &panelFlags{}
	var subject, level, style, background, language string
	cmd := &cobra.Command{
		Use:     "tutor [question]",
		Short:   "Ask the AI tutor a question",
		Example: `  studydesk tutor --subject "Linear algebra" --level Intermediate what is an eigenvector`,
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			query := fmt.Sprintf("%s (%s): %s", subject, level, question)
			return execPanel(cmd, current(), flags, panel.Tutor, query, func(c *panel.Controller) error {
				if err := c.SelectPanel(panel.Tutor); err != nil {
					return err
				}
				values := map[panel.FieldID]string{
					panel.FieldTutorSubject:    subject,
					panel.FieldTutorLevel:      level,
					panel.FieldTutorStyle:      style,
					panel.FieldTutorBackground: background,
					panel.FieldTutorLanguage:   language,
					panel.FieldTutorQuestion:   question,
				}
				return setFields(c, panel.Tutor, values)
			})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "subject to learn")
	cmd.Flags().StringVar(&level, "level", panel.Levels[0], "Beginner, Intermediate or Advanced")
	cmd.Flags().StringVar(&style, "style", panel.LearningStyles[0], "learning style: Text-based, Visual, Auditory, Hands-on")
	cmd.Flags().StringVar(&background, "background", "", "what you already know")
	cmd.Flags().StringVar(&language, "language", "", "answer language")
	flags.register(cmd)
	return cmd
}

func newQuizCmd(current func() *app) *cobra.Command {
	flags := &panelFlags{}
	var level, count string
	cmd := &cobra.Command{
		Use:     "quiz [subject]",
		Short:   "Generate a quiz",
		Example: "  studydesk quiz --level Advanced --count 10 organic chemistry",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject := strings.Join(args, " ")
			query := fmt.Sprintf("%s (%s), %s questions", subject, level, count)
			return execPanel(cmd, current(), flags, panel.Quiz, query, func(c *panel.Controller) error {
				if err := c.SelectPanel(panel.Quiz); err != nil {
					return err
				}
				return setFields(c, panel.Quiz, map[panel.FieldID]string{
					panel.FieldQuizSubject: subject,
					panel.FieldQuizLevel:   level,
					panel.FieldQuizCount:   count,
				})
			})
		},
	}
	cmd.Flags().StringVar(&level, "level", panel.Levels[0], "Beginner, Intermediate or Advanced")
	cmd.Flags().StringVar(&count, "count", "5", "number of questions")
	flags.register(cmd)
	return cmd
}

func newAskCmd(current func() *app) *cobra.Command {
	flags := &panelFlags{}
	cmd := &cobra.Command{
		Use:   "ask <file> [question]",
		Short: "Ask the configured LLM about a local file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, question := args[0], strings.Join(args[1:], " ")
			return execPanel(cmd, current(), flags, panel.ReadFile, file+": "+question, func(c *panel.Controller) error {
				if err := c.SelectPanel(panel.ReadFile); err != nil {
					return err
				}
				return setFields(c, panel.ReadFile, map[panel.FieldID]string{
					panel.FieldFileInput:    file,
					panel.FieldFileQuestion: question,
				})
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// execPanel runs a panel, prints its output and optionally records it.
func execPanel(cmd *cobra.Command, a *app, flags *panelFlags, id panel.ID, query string, prepare func(*panel.Controller) error) error {
	p, engine, err := a.runPanel(cmd.Context(), id, prepare)
	if p == nil {
		return err
	}
	a.print(cmd.OutOrStdout(), p.Output, flags.raw)
	if err != nil {
		return err
	}
	if flags.save {
		entry, err := a.save(p, engine, query)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "saved %s to %s\n", shortID(entry.ID), a.history.Path())
	}
	return nil
}

func setFields(c *panel.Controller, id panel.ID, values map[panel.FieldID]string) error {
	for field, value := range values {
		if err := setField(c, id, field, value); err != nil {
			return err
		}
	}
	return nil
}

// setField assigns a form value. Choice fields accept any casing of one of
// their options.
func setField(c *panel.Controller, id panel.ID, field panel.FieldID, value string) error {
	f := c.Panel(id).Field(field)
	if f == nil {
		return fmt.Errorf("panel %s has no field %s", id, field)
	}
	if !f.IsChoice() {
		f.Value = value
		return nil
	}
	for _, opt := range f.Options {
		if strings.EqualFold(opt, strings.TrimSpace(value)) {
			f.Value = opt
			return nil
		}
	}
	return fmt.Errorf("%s %q is not one of %s", strings.ToLower(f.Label), value, strings.Join(f.Options, ", "))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
