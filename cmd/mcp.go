package cmd

import (
	"github.com/huangsam/pokestats/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Pokestats MCP server",
	Long: `Launch an MCP server on stdio so AI agents can read the labeled table, the
fitted scaler, and assign new stat lines to clusters.

Tools:
  get_labeled_table - Filtered rows of the labeled table
  get_scaler        - Column means and scales of the saved scaler
  assign_cluster    - Nearest saved cluster for six raw stats
  compare_pokemon   - Stat-by-stat comparison of two names
  run_clustering    - Fit and save a new bundle`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
