package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/board/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio so assistants
can read projects, issues and people. Configure it with:

  {
    "mcpServers": {
      "board": { "command": "board", "args": ["mcp"] }
    }
  }

Available tools: board_list_projects, board_list_issues, board_get_issue,
board_list_people, board_resolve_route`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getStore(cmd.Context())
		if err != nil {
			return err
		}
		return mcp.NewServer(s, buildVersion).ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
