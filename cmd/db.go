package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the SQLite database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations to db_path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dbMigrateRun(cmd.Context())
	},
}

var dbSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the database contents with a dataset",
	Long: `Replace every project, person and issue in the database with the
dataset named by data.file, or the embedded sample when it is unset.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dbSeedRun(cmd.Context())
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbSeedCmd)
	rootCmd.AddCommand(dbCmd)
}

func dbMigrateRun(ctx context.Context) error {
	if dryRun {
		ui.DryRunMsg("Would migrate %s", viper.GetString("db_path"))
		return nil
	}
	s, err := openSQLite(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	ui.Success("Database ready: %s", viper.GetString("db_path"))
	return nil
}

func dbSeedRun(ctx context.Context) error {
	ds, err := loadDataset()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would import %d projects, %d people and %d issues into %s",
			len(ds.Projects), len(ds.People), len(ds.Issues), viper.GetString("db_path"))
		return nil
	}

	s, err := openSQLite(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Import(ctx, ds); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	ui.Success("Imported %d projects, %d people and %d issues", len(ds.Projects), len(ds.People), len(ds.Issues))
	return nil
}
