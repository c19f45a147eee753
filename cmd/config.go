package cmd

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "board"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage board configuration.

Running bare 'board config' is the same as 'board config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current values",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show every key with its value and where it came from",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd, configShowCmd, configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configKey is a documented setting and the environment variable that overrides it.
type configKey struct {
	Key string
	Env string
}

var configKeys = []configKey{
	{"data.source", "BOARD_DATA_SOURCE"},
	{"data.file", "BOARD_DATA_FILE"},
	{"db_path", "BOARD_DB_PATH"},
	{"serve.addr", "BOARD_SERVE_ADDR"},
	{"serve.port", "BOARD_SERVE_PORT"},
	{"log.level", "BOARD_LOG_LEVEL"},
	{"log.format", "BOARD_LOG_FORMAT"},
}

var configTemplate = template.Must(template.New("config").Parse(`# board configuration
# See: board config show (for effective values and sources)

data:
  # Where issues come from: "memory" (sample dataset) or "sqlite"
  source: {{ index . "data.source" }}

  # Optional YAML dataset for the memory source and for 'board db seed'.
  # Empty means the embedded sample.
  file: "{{ index . "data.file" }}"

# SQLite database path (default: ~/.config/board/board.db)
# db_path: {{ index . "db_path" }}

serve:
  addr: {{ index . "serve.addr" }}
  port: {{ index . "serve.port" }}

log:
  # debug, info, warn or error
  level: {{ index . "log.level" }}
  # text or json
  format: {{ index . "log.format" }}
`))

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// renderConfig fills the template from the effective viper values.
func renderConfig() ([]byte, error) {
	values := make(map[string]any, len(configKeys))
	for _, k := range configKeys {
		values[k.Key] = viper.Get(k.Key)
	}

	var buf bytes.Buffer
	if err := configTemplate.Execute(&buf, values); err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}
	return buf.Bytes(), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	exists := fileExists(cfgPath)
	if exists && !configForce {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
	}

	content, err := renderConfig()
	if err != nil {
		return err
	}

	switch {
	case dryRun:
		ui.DryRunMsg("Would write config file: %s", cfgPath)
	default:
		if exists {
			ui.Warning("Overwriting %s", cfgPath)
		}
		if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
		if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}
		ui.Success("Config file created: %s", cfgPath)
	}

	fmt.Fprintf(ui.Out, "\n%s", content)
	return nil
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	fromFile := map[string]bool{}
	if fileExists(cfgPath) {
		ui.Info("Config file: %s", cfgPath)
		fromFile = fileKeys(cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}

	table := ui.Table([]string{"Key", "Value", "Source"})
	for _, k := range configKeys {
		_ = table.Append([]string{k.Key, fmt.Sprint(viper.Get(k.Key)), keySource(k, fromFile)})
	}
	return table.Render()
}

// fileKeys returns the dot-notation keys set in the YAML file at path.
// Unreadable files yield an empty set.
func fileKeys(path string) map[string]bool {
	keys := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return keys
	}
	var parsed map[string]any
	if yaml.Unmarshal(data, &parsed) != nil {
		return keys
	}
	flattenKeys("", parsed, keys)
	return keys
}

func flattenKeys(prefix string, m map[string]any, out map[string]bool) {
	for key, val := range m {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(key, nested, out)
			continue
		}
		out[key] = true
	}
}

func keySource(k configKey, fromFile map[string]bool) string {
	if _, ok := os.LookupEnv(k.Env); ok {
		return "(env: " + k.Env + ")"
	}
	if fromFile[k.Key] {
		return "(file)"
	}
	return "(default)"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func configEditRun() error {
	editor := cmp.Or(os.Getenv("EDITOR"), os.Getenv("VISUAL"))
	if editor == "" {
		return errors.New("$EDITOR is not set; set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}
	if !fileExists(cfgPath) {
		return fmt.Errorf("config file not found: %s (run 'board config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	c := exec.Command(editor, cfgPath)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	return c.Run()
}
