package cmd

import (
	"github.com/8ria/pulse/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the pulse MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents inspect schedules,
check slots, compute streaks and preview the stats block.

All tools are read-only. Logs go to stderr so stdout stays reserved for the protocol.`,
	PreRunE: storeSetup(true, false),
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, baseDeps())
	},
}
