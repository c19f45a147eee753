package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/joescharf/board/internal/models"
)

// UI writes colored CLI output. Verbose lines and dry-run notices only
// appear when the matching flag is set.
type UI struct {
	Verbose bool
	DryRun  bool
	Out     io.Writer
	ErrOut  io.Writer
}

// New creates a UI with default stdout/stderr writers.
func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	errorPrefix   = color.New(color.FgHiRed).Sprint("✗")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  →")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
	magenta       = color.New(color.FgHiMagenta).SprintFunc()
	faint         = color.New(color.Faint).SprintFunc()
)

// Cyan returns a cyan-colored string.
func Cyan(s string) string { return cyan(s) }

// Faint returns a dimmed string.
func Faint(s string) string { return faint(s) }

// StatusColor colors an issue status by board column.
func StatusColor(status models.IssueStatus) string {
	s := string(status)
	switch status {
	case models.IssueStatusTodo:
		return s
	case models.IssueStatusInProgress:
		return yellow(s)
	case models.IssueStatusInReview:
		return magenta(s)
	case models.IssueStatusDone:
		return green(s)
	default:
		return s
	}
}

// PriorityColor colors a priority from red (highest) to cyan (lowest).
func PriorityColor(p models.IssuePriority) string {
	s := string(p)
	switch p {
	case models.IssuePriorityHighest, models.IssuePriorityHigh:
		return red(s)
	case models.IssuePriorityMedium:
		return yellow(s)
	case models.IssuePriorityLow, models.IssuePriorityLowest:
		return cyan(s)
	default:
		return s
	}
}

// PersonName returns p's name, or a dimmed dash for nobody.
func PersonName(p *models.Person) string {
	if p == nil {
		return faint("-")
	}
	return p.Name
}

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Error(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", errorPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		fmt.Fprintf(u.Out, "%s %s\n", verbosePrefix, fmt.Sprintf(format, a...))
	}
}

func (u *UI) DryRunMsg(format string, a ...any) {
	if u.DryRun {
		u.Warning("[DRY-RUN] "+format, a...)
	}
}

// JSON writes v as indented JSON.
func (u *UI) JSON(v any) error {
	enc := json.NewEncoder(u.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

// IssueTable renders issues one per row in board order.
func (u *UI) IssueTable(issues []*models.Issue) error {
	table := u.Table([]string{"ID", "Type", "Status", "Priority", "Assignee", "Due", "Summary"})
	for _, i := range issues {
		due := i.Due
		if due == "" {
			due = faint("-")
		}
		if err := table.Append([]string{
			i.ID,
			string(i.Type),
			StatusColor(i.Status),
			PriorityColor(i.Priority),
			PersonName(i.Assignee),
			due,
			i.Summary,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

// PeopleTable renders people in picker order.
func (u *UI) PeopleTable(people []*models.Person) error {
	table := u.Table([]string{"#", "ID", "Name"})
	for idx, p := range people {
		if err := table.Append([]string{fmt.Sprintf("%d", idx), p.ID, p.Name}); err != nil {
			return err
		}
	}
	return table.Render()
}
