package cmd

import (
	"github.com/huangsam/pokestats/core"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/spf13/cobra"
)

// clusterCmd fits k-means over the standardized stats and persists the bundle.
var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Cluster Pokémon by base stats and save the labeled table.",
	Long: `Standardize the six base stats, run seeded k-means with restarts, and label
every row with the profile name of its cluster.

The labeled table, the fitted scaler and the model are written together into
artifacts-dir. A second run over the same data with the same settings leaves
the saved files untouched and reports "unchanged".

Profile labels come from, in order:
- The "profiles" map in .pokestats.yaml
- --profile-labels
- The built-in k=4 labels: Attacker, Tank, Fast, Balanced

Examples:
  # Cluster the default dataset into the four standard profiles
  pokestats cluster --data pokemon.csv

  # Six clusters with custom labels
  pokestats cluster -k 6 --profile-labels "Sweeper,Wall,Speedster,Balanced,Glass,Bulky"

  # Write the cluster summary as JSON
  pokestats cluster --output json --output-file clusters.json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCluster(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run clustering", err)
		}
	},
}
