package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pmorrell/ccscope/cmd/ccscope/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start MCP server for assistant integration",
	Long: `Start an MCP (Model Context Protocol) server that lets an assistant
search and retrieve your conversation history.

Configure in Claude Desktop's config file (~/.config/claude/config.json):
  {
    "mcpServers": {
      "ccscope": {
        "command": "ccscope",
        "args": ["serve-mcp"]
      }
    }
  }
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := mcp.StartServer(cfg.ProjectsDir, cfg.IndexPath, cfg.PriceTable()); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
