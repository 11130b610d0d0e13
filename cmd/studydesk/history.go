package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/csheth/studydesk/internal/panel"
)

var historyHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func newHistoryCmd(current func() *app) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			entries, err := a.history.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asYAML {
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintf(out, "No saved results in %s\n", a.history.Path())
				return nil
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "SAVED", "PANEL", "QUERY").
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return historyHeaderStyle
					}
					return lipgloss.NewStyle().Padding(0, 1)
				})
			for _, e := range entries {
				source := e.Panel
				if e.Engine != "" {
					source += "/" + e.Engine
				}
				t.Row(shortID(e.ID), e.CreatedAt.Local().Format("2006-01-02 15:04"), source, truncate(e.Query, 48))
			}
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print entries as YAML")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved result; any unique id prefix works",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			entry, err := a.history.Find(args[0])
			if err != nil {
				return err
			}
			out := &panel.Output{}
			if entry.Markup {
				out.SetMarkup(entry.Content)
			} else {
				out.SetText(entry.Content)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n\n", entry.Query, entry.CreatedAt.Local().Format("2006-01-02 15:04"))
			a.print(cmd.OutOrStdout(), out, false)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every saved result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			if err := a.history.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", a.history.Path())
			return nil
		},
	}

	cmd.AddCommand(show, clearCmd)
	return cmd
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
