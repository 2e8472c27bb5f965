package cmd

import (
	"fmt"
	"strconv"

	"github.com/huangsam/pokestats/core"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/schema"
	"github.com/spf13/cobra"
)

// classifyCmd trains and evaluates the Legendary random forest.
var classifyCmd = &cobra.Command{
	Use:   "classify [name...]",
	Short: "Train a random forest that predicts Legendary status.",
	Long: `Train a random forest on the six base stats to predict the Legendary flag
and report precision, recall and F1 on a seeded held-out split.

Names given as arguments are predicted with the trained forest.

Examples:
  # Default forest of 100 trees
  pokestats classify

  # Bigger forest, predict two names
  pokestats classify --trees 300 Mewtwo Snorlax`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteClassify(rootCtx, cfg, cacheManager, args); err != nil {
			contract.LogFatal("Cannot run classifier", err)
		}
	},
}

// projectCmd prints the 2-D PCA projection.
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project the standardized stats onto two principal components.",
	Long: `Reduce the six standardized stats to two principal components and print the
coordinates of every row with its profile.

Examples:
  # Coordinates for plotting elsewhere
  pokestats project --output csv --output-file pca.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteProject(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run projection", err)
		}
	},
}

// elbowCmd prints inertia for a range of cluster counts.
var elbowCmd = &cobra.Command{
	Use:   "elbow",
	Short: "Plot k-means inertia against the number of clusters.",
	Long: `Fit k-means for k = 1..max-k with the configured seed and restarts and print
the inertia of each fit. Text output includes an ASCII plot.

Examples:
  # Curve up to k = 10
  pokestats elbow

  # Fewer restarts for a quick look
  pokestats elbow --max-k 8 --restarts 3`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteElbow(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run elbow", err)
		}
	},
}

// assignCmd places one raw stat line into a saved cluster.
var assignCmd = &cobra.Command{
	Use:   "assign <hp> <attack> <defense> <sp_atk> <sp_def> <speed>",
	Short: "Assign raw stats to the nearest saved cluster.",
	Long: `Standardize six raw stats with the saved scaler and report the nearest
cluster of the saved model with its profile.

Requires a bundle written by "pokestats cluster".

Examples:
  # Where would a Snorlax-like stat line land?
  pokestats assign 160 110 65 65 110 30`,
	Args:    cobra.ExactArgs(schema.NumStats),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		stats, err := parseStats(args)
		if err != nil {
			contract.LogFatal("Invalid stats", err)
		}
		if err := core.ExecuteAssign(rootCtx, cfg, cacheManager, stats); err != nil {
			contract.LogFatal("Cannot assign cluster", err)
		}
	},
}

// parseStats reads the positional stat arguments in column order.
func parseStats(args []string) (schema.Stats, error) {
	var stats schema.Stats
	if len(args) != len(stats) {
		return stats, fmt.Errorf("expected %d stats (received %d)", len(stats), len(args))
	}
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return stats, fmt.Errorf("%s must be an integer (received %q)", schema.StatColumns[i], arg)
		}
		stats[i] = v
	}
	return stats, nil
}
