package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "List the people offered by the reporter and assignee pickers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return peopleRun(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(peopleCmd)
}

func peopleRun(ctx context.Context) error {
	s, err := getStore(ctx)
	if err != nil {
		return err
	}
	people, err := s.ListPeople(ctx)
	if err != nil {
		return fmt.Errorf("list people: %w", err)
	}
	return ui.PeopleTable(people)
}
