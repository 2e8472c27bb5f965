// Package cmd defines the command-line interface for pokestats.
package cmd

import (
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	cobra.OnInitialize(initConfig)

	// Pipeline commands
	rootCmd.AddCommand(clusterCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(elbowCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(reportCmd)

	// Store and server commands
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("data", contract.DefaultDataPath, "Path to the Pokémon stats CSV")
	rootCmd.PersistentFlags().String("artifacts-dir", contract.DefaultArtifactsDir, "Directory holding the labeled table and model bundle")
	rootCmd.PersistentFlags().String("table-file", contract.DefaultTableFile, "File name of the labeled table inside artifacts-dir")
	rootCmd.PersistentFlags().IntP("clusters", "k", contract.DefaultClusters, "Number of clusters: 4 or 6")
	rootCmd.PersistentFlags().Int64("seed", contract.DefaultSeed, "Random seed for k-means and the classifier")
	rootCmd.PersistentFlags().Int("restarts", contract.DefaultRestarts, "Number of k-means restarts; the lowest inertia wins")
	rootCmd.PersistentFlags().Int("max-iter", contract.DefaultMaxIter, "Maximum Lloyd iterations per restart")
	rootCmd.PersistentFlags().String("profile-labels", "", "Comma-separated profile labels for cluster ids 0..k-1")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of rows to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("lock-timeout", contract.DefaultLockTimeout.String(), "How long to wait for the artifacts lock (0 fails at once)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Fit cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("runs-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Database connection string for run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of tableCmd to Viper
	tableCmd.Flags().String("type", "", "Keep rows whose primary or secondary type matches")
	tableCmd.Flags().Int("generation", 0, "Keep rows from this generation (0 = any)")
	tableCmd.Flags().String("legendary", "", "Keep only legendary (yes) or non-legendary (no) rows")
	tableCmd.Flags().String("profile-filter", "", "Keep rows with this profile label")
	tableCmd.Flags().String("sort", "", "Sort by a stat column, Total or Name")
	tableCmd.Flags().Bool("asc", false, "Sort ascending instead of descending")
	tableCmd.Flags().Bool("describe", false, "Print summary statistics of the six stats")
	if err := viper.BindPFlags(tableCmd.Flags()); err != nil {
		contract.LogFatal("Error binding table flags", err)
	}

	// Bind all flags of classifyCmd to Viper
	classifyCmd.Flags().Int("trees", contract.DefaultTrees, "Number of trees in the random forest")
	classifyCmd.Flags().Int("tree-features", contract.DefaultTreeFeatures, "Features sampled per tree")
	classifyCmd.Flags().Float64("test-ratio", contract.DefaultTestRatio, "Share of rows held out for evaluation")
	if err := viper.BindPFlags(classifyCmd.Flags()); err != nil {
		contract.LogFatal("Error binding classify flags", err)
	}

	// Bind all flags of elbowCmd to Viper
	elbowCmd.Flags().Int("max-k", contract.DefaultMaxK, "Largest cluster count to fit")
	if err := viper.BindPFlags(elbowCmd.Flags()); err != nil {
		contract.LogFatal("Error binding elbow flags", err)
	}

	// Bind all flags of reportCmd to Viper
	reportCmd.Flags().String("select", "", "Two comma-separated names to compare in the report")
	reportCmd.Flags().String("serve", "", "Serve the report on this address instead of writing it (e.g., localhost:8080)")
	if err := viper.BindPFlags(reportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding report flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
