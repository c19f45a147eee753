package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/board/internal/output"
	"github.com/joescharf/board/internal/sampledata"
	"github.com/joescharf/board/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	logger    *slog.Logger
	dataStore store.Store

	verbose bool
	dryRun  bool
)

const (
	sourceMemory = "memory"
	sourceSQLite = "sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "board",
	Short: "Board - browse and edit issues of a small tracker",
	Long: `board serves a small issue tracker: project pages, issue detail
pages and an edit issue dialog, backed by a sample dataset or SQLite.
The same data is available from the terminal and over MCP.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.Execute()
	closeStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/board/config.yaml)")
	rootCmd.PersistentFlags().String("source", "", "Data source: memory or sqlite (overrides data.source)")
	_ = viper.BindPFlag("data.source", rootCmd.PersistentFlags().Lookup("source"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(filepath.Join(home, ".config", "board"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("BOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func setDefaults() {
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "board")

	viper.SetDefault("data.source", sourceMemory)
	viper.SetDefault("data.file", "")
	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "board.db"))
	viper.SetDefault("serve.addr", "localhost")
	viper.SetDefault("serve.port", 8080)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	level := viper.GetString("log.level")
	if verbose {
		level = "debug"
	}
	l, err := newLogger(os.Stderr, level, viper.GetString("log.format"))
	if err != nil {
		ui.Warning("%v; using defaults", err)
		l, _ = newLogger(os.Stderr, "info", "text")
	}
	logger = l

	// The store is opened lazily so config/version commands run without one.
}

// loadDataset returns the dataset named by data.file, or the embedded
// sample when it is empty.
func loadDataset() (*sampledata.Dataset, error) {
	path := viper.GetString("data.file")
	if path == "" {
		return sampledata.Default(), nil
	}
	ds, err := sampledata.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	ui.VerboseLog("Loaded dataset %s", path)
	return ds, nil
}

// openSQLite opens and migrates the database at db_path.
func openSQLite(ctx context.Context) (*store.SQLiteStore, error) {
	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	ui.VerboseLog("Using database %s", dbPath)
	return s, nil
}

// getStore returns the shared store, initializing it on first call.
func getStore(ctx context.Context) (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	switch source := viper.GetString("data.source"); source {
	case sourceMemory:
		ds, err := loadDataset()
		if err != nil {
			return nil, err
		}
		dataStore = store.NewMemoryStore(ds)
	case sourceSQLite:
		s, err := openSQLite(ctx)
		if err != nil {
			return nil, err
		}
		dataStore = s
	default:
		return nil, fmt.Errorf("unknown data.source %q (want %s or %s)", source, sourceMemory, sourceSQLite)
	}
	return dataStore, nil
}

func closeStore() {
	if dataStore == nil {
		return
	}
	if err := dataStore.Close(); err != nil {
		logger.Warn("close store", "error", err)
	}
	dataStore = nil
}
