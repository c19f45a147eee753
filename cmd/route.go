package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/board/internal/route"
)

var routeCmd = &cobra.Command{
	Use:   "route <path>",
	Short: "Extract projectId and issueId from an issue detail path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routeRun(args[0])
	},
}

func init() {
	rootCmd.AddCommand(routeCmd)
}

func routeRun(path string) error {
	params, err := route.IssueDetail.Match(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(ui.Out, "projectId  %s\n", params["projectId"])
	fmt.Fprintf(ui.Out, "issueId    %s\n", params["issueId"])
	return nil
}
