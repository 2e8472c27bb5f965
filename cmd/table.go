package cmd

import (
	"github.com/huangsam/pokestats/core"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/spf13/cobra"
)

// tableCmd prints the labeled table with optional filters.
var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Browse the labeled table with filters and sorting.",
	Long: `Print rows of the labeled table produced by "pokestats cluster".

When no labeled table exists yet, the raw dataset is shown without profiles.

Examples:
  # Fastest legendaries
  pokestats table --legendary yes --sort Speed

  # Every Tank of generation 1, weakest first
  pokestats table --profile-filter Tank --generation 1 --sort Total --asc

  # Fire types with summary statistics
  pokestats table --type fire --describe

  # Export the full labeled table to Parquet
  pokestats table --limit 5000 --output parquet --output-file labeled.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTable(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot show table", err)
		}
	},
}
