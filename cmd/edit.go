package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/joescharf/board/internal/editsession"
	"github.com/joescharf/board/internal/models"
	"github.com/joescharf/board/internal/tui"
)

var editStoredPriority bool

var editCmd = &cobra.Command{
	Use:   "edit <issue-id|path>",
	Short: "Open the edit issue dialog in the terminal",
	Long: `Open the edit issue dialog for one issue. Changes stay in the dialog:
saving or cancelling closes it and the stored issue is left as it was.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRun(cmd.Context(), args[0])
	},
}

func init() {
	editCmd.Flags().BoolVar(&editStoredPriority, "stored-priority", false, "Seed priority from the issue instead of the default")
	rootCmd.AddCommand(editCmd)
}

func editRun(ctx context.Context, ref string) error {
	s, err := getStore(ctx)
	if err != nil {
		return err
	}

	issue, err := findIssue(ctx, s, ref)
	if err != nil {
		return err
	}

	var opts []editsession.Option
	if editStoredPriority {
		opts = append(opts, editsession.WithStoredPriority())
	}

	sess, err := editsession.Open(ctx, s, issue.ID, func(o editsession.Outcome) {
		logger.Debug("edit session closed", "issue", issue.ID, "outcome", o.String())
	}, opts...)
	if err != nil {
		return fmt.Errorf("open edit session: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would open the edit dialog for %s", issue.ID)
		return sess.Cancel()
	}

	theme := tui.DefaultTheme(lipgloss.NewRenderer(os.Stdout))
	outcome, err := tui.Run(ctx, tui.NewEditModal(sess, theme))
	if err != nil {
		return fmt.Errorf("edit dialog: %w", err)
	}

	changed := sess.Changed()
	switch {
	case outcome == editsession.OutcomeCancelled:
		ui.Info("Edit cancelled")
	case len(changed) == 0:
		ui.Success("Dialog saved with no changes")
	default:
		ui.Success("Dialog saved; the stored issue is unchanged. Draft:")
		printDraft(sess.Draft(), changed)
	}
	return nil
}

func printDraft(draft *models.Issue, changed []editsession.Field) {
	names := make([]string, len(changed))
	for i, f := range changed {
		names[i] = string(f)
	}
	ui.VerboseLog("Changed fields: %s", strings.Join(names, ", "))
	if err := ui.JSON(draft); err != nil {
		ui.Warning("print draft: %v", err)
	}
}
