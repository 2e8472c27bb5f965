package cmd

import (
	"github.com/huangsam/pokestats/core"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/spf13/cobra"
)

// reportCmd renders the HTML chart report.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render an HTML report of correlations, profiles and projections.",
	Long: `Build an HTML page with a stat correlation heatmap, the profile distribution
and a PCA scatter. With --select the report also compares two Pokémon.

The page is written to --output-file, or served over HTTP with --serve until
interrupted.

Examples:
  # Write report.html
  pokestats report --output-file report.html

  # Serve it with a comparison
  pokestats report --select Pikachu,Onix --serve localhost:8080`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build report", err)
		}
	},
}
