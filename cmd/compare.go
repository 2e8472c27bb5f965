package cmd

import (
	"github.com/huangsam/pokestats/core"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/spf13/cobra"
)

// compareCmd compares two Pokémon stat by stat.
var compareCmd = &cobra.Command{
	Use:   "compare <name> <name>",
	Short: "Compare two Pokémon side by side.",
	Long: `Compare the base stats of two Pokémon and report which one wins each stat.

Names are matched case-insensitively. An unknown name fails with the closest
matches from the dataset. Profiles are included once the table is labeled.

Examples:
  # Classic matchup
  pokestats compare Pikachu Onix

  # Names with spaces need quotes
  pokestats compare "Mr. Mime" Jynx

  # CSV for a spreadsheet
  pokestats compare Mewtwo Mew --output csv`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := sharedSetup(rootCtx, cmd, args); err != nil {
			return err
		}
		cfg.Selection = []string{args[0], args[1]}
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCompare(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run comparison", err)
		}
	},
}
