package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/joescharf/board/internal/models"
	"github.com/joescharf/board/internal/output"
	"github.com/joescharf/board/internal/route"
	"github.com/joescharf/board/internal/store"
)

var (
	issueProject  string
	issueStatus   string
	issuePriority string
	issueAssignee string
	issueJSON     bool
	issueRaw      bool
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Browse issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueListRun(cmd.Context())
	},
}

var issueListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List issues in board order",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueListRun(cmd.Context())
	},
}

var issueShowCmd = &cobra.Command{
	Use:   "show <issue-id|path>",
	Short: "Show issue details",
	Long: `Show one issue. The argument is an issue id, a unique id prefix,
or an issue detail path such as /projects/project1/issues/<id>.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueShowRun(cmd.Context(), args[0])
	},
}

func init() {
	issueListCmd.Flags().StringVar(&issueProject, "project", "", "Filter by project id")
	issueListCmd.Flags().StringVar(&issueStatus, "status", "", "Filter by status: todo, in_progress, in_review, done")
	issueListCmd.Flags().StringVar(&issuePriority, "priority", "", "Filter by priority: highest, high, medium, low, lowest")
	issueListCmd.Flags().StringVar(&issueAssignee, "assignee", "", "Filter by assignee person id")
	issueListCmd.Flags().BoolVar(&issueJSON, "json", false, "Print JSON instead of a table")

	issueShowCmd.Flags().BoolVar(&issueRaw, "raw", false, "Print the description as raw markdown")

	issueCmd.AddCommand(issueListCmd)
	issueCmd.AddCommand(issueShowCmd)
	rootCmd.AddCommand(issueCmd)
}

func issueListFilter() (store.IssueListFilter, error) {
	filter := store.IssueListFilter{ProjectID: issueProject, AssigneeID: issueAssignee}
	if issueStatus != "" {
		st, err := models.ParseIssueStatus(issueStatus)
		if err != nil {
			return filter, err
		}
		filter.Status = st
	}
	if issuePriority != "" {
		pr, err := models.ParseIssuePriority(issuePriority)
		if err != nil {
			return filter, err
		}
		filter.Priority = pr
	}
	return filter, nil
}

func issueListRun(ctx context.Context) error {
	filter, err := issueListFilter()
	if err != nil {
		return err
	}

	s, err := getStore(ctx)
	if err != nil {
		return err
	}

	issues, err := s.ListIssues(ctx, filter)
	if err != nil {
		return fmt.Errorf("list issues: %w", err)
	}

	if issueJSON {
		return ui.JSON(issues)
	}
	if len(issues) == 0 {
		ui.Info("No issues found")
		return nil
	}
	return ui.IssueTable(issues)
}

func issueShowRun(ctx context.Context, ref string) error {
	s, err := getStore(ctx)
	if err != nil {
		return err
	}

	issue, err := findIssue(ctx, s, ref)
	if err != nil {
		return err
	}

	projName := issue.ProjectID
	if p, err := s.GetProject(ctx, issue.ProjectID); err == nil {
		projName = fmt.Sprintf("%s (%s)", p.Name, p.Key)
	}

	fmt.Fprintf(ui.Out, "%s  %s\n", output.Cyan(string(issue.Type)), issue.Summary)
	fmt.Fprintf(ui.Out, "  Project:    %s\n", projName)
	fmt.Fprintf(ui.Out, "  Status:     %s\n", output.StatusColor(issue.Status))
	fmt.Fprintf(ui.Out, "  Priority:   %s\n", output.PriorityColor(issue.Priority))
	fmt.Fprintf(ui.Out, "  Reporter:   %s\n", output.PersonName(issue.Reporter))
	fmt.Fprintf(ui.Out, "  Assignee:   %s\n", output.PersonName(issue.Assignee))
	if issue.Due != "" {
		fmt.Fprintf(ui.Out, "  Due:        %s\n", issue.Due)
	}
	fmt.Fprintf(ui.Out, "  Path:       %s\n", route.IssuePath(issue.ProjectID, issue.ID))
	fmt.Fprintf(ui.Out, "  Full ID:    %s\n", issue.ID)

	if issue.Description == "" {
		return nil
	}
	fmt.Fprintln(ui.Out)
	if issueRaw {
		fmt.Fprintln(ui.Out, issue.Description)
		return nil
	}
	rendered, err := renderMarkdown(issue.Description)
	if err != nil {
		ui.VerboseLog("markdown render failed: %v", err)
		fmt.Fprintln(ui.Out, issue.Description)
		return nil
	}
	fmt.Fprint(ui.Out, rendered)
	return nil
}

func renderMarkdown(src string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", err
	}
	return r.Render(src)
}

// findIssue resolves an issue by id, detail path or unique id prefix.
func findIssue(ctx context.Context, s store.Store, ref string) (*models.Issue, error) {
	id := ref
	if strings.HasPrefix(ref, "/") {
		var err error
		if id, err = route.IssueIDFromPath(ref); err != nil {
			return nil, err
		}
	}

	issue, err := s.GetIssue(ctx, id)
	if err == nil {
		return issue, nil
	}
	if !errors.Is(err, store.ErrNotFound) || id != ref {
		return nil, err
	}

	issues, err := s.ListIssues(ctx, store.IssueListFilter{})
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(ref)
	var matches []*models.Issue
	for _, issue := range issues {
		if strings.HasPrefix(issue.ID, lower) {
			matches = append(matches, issue)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("issue %s: %w", ref, store.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous issue ID %s: matches %d issues", ref, len(matches))
	}
}
