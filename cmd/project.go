package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/board/internal/models"
	"github.com/joescharf/board/internal/output"
	"github.com/joescharf/board/internal/store"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Browse projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectListRun(cmd.Context())
	},
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects with per-status issue counts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectListRun(cmd.Context())
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a project and its issues",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectShowRun(cmd.Context(), args[0])
	},
}

func init() {
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	rootCmd.AddCommand(projectCmd)
}

func projectListRun(ctx context.Context) error {
	s, err := getStore(ctx)
	if err != nil {
		return err
	}

	projects, err := s.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	if len(projects) == 0 {
		ui.Info("No projects in the dataset.")
		return nil
	}

	headers := []string{"ID", "Key", "Name"}
	for _, st := range models.IssueStatuses {
		headers = append(headers, string(st))
	}
	table := ui.Table(headers)
	for _, p := range projects {
		issues, err := s.ListIssues(ctx, store.IssueListFilter{ProjectID: p.ID})
		if err != nil {
			return fmt.Errorf("list issues for %s: %w", p.ID, err)
		}
		counts := make(map[models.IssueStatus]int, len(models.IssueStatuses))
		for _, i := range issues {
			counts[i.Status]++
		}

		row := []string{p.ID, output.Cyan(p.Key), p.Name}
		for _, st := range models.IssueStatuses {
			row = append(row, fmt.Sprintf("%d", counts[st]))
		}
		_ = table.Append(row)
	}
	return table.Render()
}

func projectShowRun(ctx context.Context, id string) error {
	s, err := getStore(ctx)
	if err != nil {
		return err
	}

	p, err := s.GetProject(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "%s  %s\n", output.Cyan(p.Key), p.Name)
	if p.Description != "" {
		fmt.Fprintf(ui.Out, "  %s\n", p.Description)
	}
	fmt.Fprintln(ui.Out)

	issues, err := s.ListIssues(ctx, store.IssueListFilter{ProjectID: p.ID})
	if err != nil {
		return fmt.Errorf("list issues: %w", err)
	}
	if len(issues) == 0 {
		ui.Info("No issues")
		return nil
	}
	return ui.IssueTable(issues)
}
