package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/internal/iocache"
	"github.com/huangsam/pokestats/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, err := contract.ParseBackend(viper.GetString("cache-backend"), schema.SQLiteBackend)
	if err != nil {
		return err
	}
	connStr := viper.GetString("cache-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// No run tracking for cache commands
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// sqlitePath returns the SQLite file a store uses, honoring a custom path
// passed as the connection string.
func sqlitePath(connStr, fallback string) string {
	if connStr != "" {
		return connStr
	}
	return fallback
}

// cacheCmd focused on fit cache management.
//
// Cache subcommands skip sharedSetup so that a broken dataset path or cluster
// setting does not block cache maintenance.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the k-means fit cache",
	Long: `Manage the cache of fitted k-means models.

Fits are keyed by a hash of the dataset contents and every setting that
changes the result (k, seed, restarts, max-iter, columns). Re-running
"pokestats cluster" on unchanged data skips the fit entirely.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached fits

Examples:
  # Check cache status
  pokestats cache status

  # Clear cache
  pokestats cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached fits",
	Long: `Delete all cached k-means fits from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  pokestats cache clear

  # Clear MySQL cache (set connection string via env variable)
  POKESTATS_CACHE_BACKEND=mysql POKESTATS_CACHE_DB_CONNECT="..." pokestats cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the handle opened by setup before dropping the store
		iocache.CloseCaching()
		if err := iocache.ClearCache(cfg.CacheBackend, sqlitePath(cfg.CacheDBConnect, contract.GetCacheDBFilePath()), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show the backend, entry count, newest and oldest entries, and table size
of the fit cache.

Examples:
  # Check cache status
  pokestats cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetFitStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
