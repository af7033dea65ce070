package cli

import (
	"github.com/spf13/cobra"

	"github.com/declscan/declscan/internal/mcp"
)

// mcpCmd runs the MCP server on stdio.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Starts a Model Context Protocol server exposing declscan_extract,
declscan_scan, and declscan_languages tools over stdio. Intended to be
launched by an MCP client, not interactively.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcp.NewServer(flagWorkers).Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
