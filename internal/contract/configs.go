package contract

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/pokestats/schema"
)

// Default values for configuration.
const (
	DefaultDataPath     = "pokemon.csv"
	DefaultArtifactsDir = "."
	DefaultTableFile    = "pokemon_with_profile.csv"
	DefaultClusters     = 4
	DefaultSeed         = 42
	DefaultRestarts     = 10
	DefaultMaxIter      = 300
	DefaultTrees        = 100
	DefaultTreeFeatures = 2
	DefaultTestRatio    = 0.2
	DefaultMaxK         = 10
	DefaultResultLimit  = 25
	MaxResultLimit      = 5000
	DefaultPrecision    = 2
	DefaultLockTimeout  = time.Duration(0)
)

// ValidClusterCounts lists the cluster counts the labeler accepts.
var ValidClusterCounts = map[int]struct{}{4: {}, 6: {}}

// DefaultProfileLabels is the static label map for k=4.
var DefaultProfileLabels = map[int]string{
	0: "Attacker",
	1: "Tank",
	2: "Fast",
	3: "Balanced",
}

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Filters narrow the labeled table for exploration commands.
type Filters struct {
	Type       string // Matches either Type 1 or Type 2, case-insensitive
	Generation int    // 0 means any generation
	Legendary  *bool  // nil means any
	Profile    string // Profile label, case-insensitive
	SortBy     string // Stat column, "Total" or "Name"; empty keeps input order
	Ascending  bool
}

// IsZero reports whether no filter or sort is active.
func (f Filters) IsZero() bool {
	return f.Type == "" && f.Generation == 0 && f.Legendary == nil && f.Profile == "" && f.SortBy == ""
}

// Config holds the runtime configuration for a pipeline run.
// This struct is the "final, validated" config.
type Config struct {
	DataPath     string
	ArtifactsDir string
	TableFile    string

	Clusters int
	Seed     int64
	Restarts int
	MaxIter  int
	MaxK     int

	// Profiles maps cluster ids to profile labels
	Profiles map[int]string

	Trees        int
	TreeFeatures int
	TestRatio    float64

	Filters   Filters
	Selection []string // Selected pair for compare and report
	Describe  bool     // Print summary statistics with the table

	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	ServeAddr   string

	LockTimeout time.Duration

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Data           string `mapstructure:"data"`
	ArtifactsDir   string `mapstructure:"artifacts-dir"`
	TableFile      string `mapstructure:"table-file"`
	Clusters       int    `mapstructure:"clusters"`
	Seed           int64  `mapstructure:"seed"`
	Restarts       int    `mapstructure:"restarts"`
	MaxIter        int    `mapstructure:"max-iter"`
	ProfileLabels  string `mapstructure:"profile-labels"`
	OutputFile     string `mapstructure:"output-file"`
	Limit          int    `mapstructure:"limit"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	Width          int    `mapstructure:"width"`
	LockTimeout    string `mapstructure:"lock-timeout"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunsBackend    string `mapstructure:"runs-backend"`
	RunsDBConnect  string `mapstructure:"runs-db-connect"`
	Color          string `mapstructure:"color"`

	// --- Fields from classifyCmd.Flags() ---
	Trees        int     `mapstructure:"trees"`
	TreeFeatures int     `mapstructure:"tree-features"`
	TestRatio    float64 `mapstructure:"test-ratio"`

	// --- Fields from tableCmd.Flags() ---
	Type       string `mapstructure:"type"`
	Generation int    `mapstructure:"generation"`
	Legendary  string `mapstructure:"legendary"`
	Profile    string `mapstructure:"profile-filter"`
	Sort       string `mapstructure:"sort"`
	Ascending  bool   `mapstructure:"asc"`
	Describe   bool   `mapstructure:"describe"`

	// --- Fields from reportCmd and elbowCmd ---
	Select string `mapstructure:"select"`
	Serve  string `mapstructure:"serve"`
	MaxK   int    `mapstructure:"max-k"`

	// --- Profile label map from config file ---
	Profiles map[string]string `mapstructure:"profiles"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Profiles != nil {
		clone.Profiles = make(map[int]string, len(c.Profiles))
		maps.Copy(clone.Profiles, c.Profiles)
	}
	if c.Selection != nil {
		clone.Selection = slices.Clone(c.Selection)
	}
	if c.Filters.Legendary != nil {
		v := *c.Filters.Legendary
		clone.Filters.Legendary = &v
	}
	return &clone
}

// TablePath returns the full path of the labeled table.
func (c *Config) TablePath() string {
	return filepath.Join(c.ArtifactsDir, c.TableFile)
}

// ProcessAndValidate performs all complex parsing and validation on the raw input.
// It populates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// 1. Simple output and path inputs
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}

	// 2. Clustering parameters and the profile label map
	if err := processClustering(cfg, input); err != nil {
		return err
	}

	// 3. Classifier parameters
	if err := processClassifier(cfg, input); err != nil {
		return err
	}

	// 4. Exploration filters and selection
	if err := processFilters(cfg, input); err != nil {
		return err
	}

	// 5. Storage backends
	return validateBackendConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates connection string format for database backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		// SQLite uses file paths and none needs nothing
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	default:
		return fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	return nil
}

// ParseBackend normalizes a backend string, treating empty as the given fallback.
func ParseBackend(s string, fallback schema.DatabaseBackend) (schema.DatabaseBackend, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", s)
	}
	return backend, nil
}

// validateBackendConfigs validates cache and run store settings.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend, err := ParseBackend(input.CacheBackend, schema.SQLiteBackend)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	cfg.CacheBackend = backend
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	backend, err = ParseBackend(input.RunsBackend, schema.NoneBackend)
	if err != nil {
		return fmt.Errorf("runs: %w", err)
	}
	cfg.RunsBackend = backend
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return err
	}

	// Two SQLite stores must not share a file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		runsPath := cfg.RunsDBConnect
		if runsPath == "" {
			runsPath = GetRunsDBFilePath()
		}
		if cachePath == runsPath {
			return fmt.Errorf("cache and run storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// validateSimpleInputs handles paths, output and presentation settings.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.DataPath = strings.TrimSpace(input.Data)
	if cfg.DataPath == "" {
		cfg.DataPath = DefaultDataPath
	}
	cfg.ArtifactsDir = strings.TrimSpace(input.ArtifactsDir)
	if cfg.ArtifactsDir == "" {
		cfg.ArtifactsDir = DefaultArtifactsDir
	}
	cfg.TableFile = strings.TrimSpace(input.TableFile)
	if cfg.TableFile == "" {
		cfg.TableFile = DefaultTableFile
	}
	if filepath.Base(cfg.TableFile) != cfg.TableFile {
		return fmt.Errorf("table-file must be a file name without directories (received %q)", cfg.TableFile)
	}
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Precision < 1 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 1 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	cfg.LockTimeout = DefaultLockTimeout
	if input.LockTimeout != "" {
		d, err := time.ParseDuration(input.LockTimeout)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid lock-timeout %q: expected a duration like 30s, or 0 to fail at once", input.LockTimeout)
		}
		cfg.LockTimeout = d
	}

	cfg.ServeAddr = strings.TrimSpace(input.Serve)
	return nil
}

// ValidateClusterCount rejects a k the labeler does not accept.
func ValidateClusterCount(k int) error {
	if _, ok := ValidClusterCounts[k]; !ok {
		return fmt.Errorf("clusters must be 4 or 6 (received %d)", k)
	}
	return nil
}

// processClustering validates k-means settings and resolves the profile label map.
func processClustering(cfg *Config, input *ConfigRawInput) error {
	if err := ValidateClusterCount(input.Clusters); err != nil {
		return err
	}
	cfg.Clusters = input.Clusters
	cfg.Seed = input.Seed

	if input.Restarts < 1 {
		return fmt.Errorf("restarts must be at least 1 (received %d)", input.Restarts)
	}
	cfg.Restarts = input.Restarts

	if input.MaxIter < 1 {
		return fmt.Errorf("max-iter must be at least 1 (received %d)", input.MaxIter)
	}
	cfg.MaxIter = input.MaxIter

	cfg.MaxK = input.MaxK
	if cfg.MaxK == 0 {
		cfg.MaxK = DefaultMaxK
	}
	if cfg.MaxK < 2 {
		return fmt.Errorf("max-k must be at least 2 (received %d)", cfg.MaxK)
	}

	profiles, err := resolveProfiles(input)
	if err != nil {
		return err
	}
	cfg.Profiles = profiles
	return nil
}

// resolveProfiles builds the label map. The yaml map wins over the comma list,
// which wins over the built-in k=4 defaults.
func resolveProfiles(input *ConfigRawInput) (map[int]string, error) {
	if len(input.Profiles) > 0 {
		return ParseProfileMap(input.Profiles)
	}
	if strings.TrimSpace(input.ProfileLabels) != "" {
		return ParseProfileLabels(input.ProfileLabels)
	}
	profiles := make(map[int]string, len(DefaultProfileLabels))
	maps.Copy(profiles, DefaultProfileLabels)
	return profiles, nil
}

// ParseProfileLabels parses "Attacker,Tank,Fast,Balanced" into ids 0..n-1.
func ParseProfileLabels(s string) (map[int]string, error) {
	profiles := make(map[int]string)
	for i, part := range strings.Split(s, ",") {
		label := strings.TrimSpace(part)
		if label == "" {
			return nil, fmt.Errorf("profile label %d is empty in %q", i, s)
		}
		profiles[i] = label
	}
	return profiles, nil
}

// ParseProfileMap parses a yaml map of cluster id strings to labels.
func ParseProfileMap(raw map[string]string) (map[int]string, error) {
	profiles := make(map[int]string, len(raw))
	for key, label := range raw {
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || id < 0 {
			return nil, fmt.Errorf("invalid cluster id %q in profiles: expected a non-negative integer", key)
		}
		label = strings.TrimSpace(label)
		if label == "" {
			return nil, fmt.Errorf("profile label for cluster %d is empty", id)
		}
		profiles[id] = label
	}
	return profiles, nil
}

// processClassifier validates random forest settings.
func processClassifier(cfg *Config, input *ConfigRawInput) error {
	if input.Trees < 1 {
		return fmt.Errorf("trees must be at least 1 (received %d)", input.Trees)
	}
	cfg.Trees = input.Trees

	if input.TreeFeatures < 1 || input.TreeFeatures > schema.NumStats {
		return fmt.Errorf("tree-features must be between 1 and %d (received %d)", schema.NumStats, input.TreeFeatures)
	}
	cfg.TreeFeatures = input.TreeFeatures

	if input.TestRatio <= 0 || input.TestRatio >= 1 {
		return fmt.Errorf("test-ratio must be between 0 and 1 exclusive (received %.2f)", input.TestRatio)
	}
	cfg.TestRatio = input.TestRatio
	return nil
}

// processFilters validates exploration filters and the selected pair.
func processFilters(cfg *Config, input *ConfigRawInput) error {
	f, err := ParseFilters(input.Type, input.Generation, input.Legendary, input.Profile, input.Sort, input.Ascending)
	if err != nil {
		return err
	}
	cfg.Filters = f
	cfg.Describe = input.Describe

	cfg.Selection = nil
	if input.Select != "" {
		for part := range strings.SplitSeq(input.Select, ",") {
			if name := strings.TrimSpace(part); name != "" {
				cfg.Selection = append(cfg.Selection, name)
			}
		}
		if len(cfg.Selection) != 2 {
			return fmt.Errorf("select must name exactly two entities separated by a comma (received %q)", input.Select)
		}
	}
	return nil
}

// ParseFilters validates raw filter values. Values arriving outside viper,
// such as MCP tool arguments, go through here as well.
func ParseFilters(typ string, generation int, legendary, profile, sortBy string, ascending bool) (Filters, error) {
	f := Filters{
		Type:      strings.TrimSpace(typ),
		Profile:   strings.TrimSpace(profile),
		Ascending: ascending,
	}

	if generation < 0 {
		return Filters{}, fmt.Errorf("generation must not be negative (received %d)", generation)
	}
	f.Generation = generation

	if legendary != "" {
		v, err := ParseBoolString(legendary)
		if err != nil {
			return Filters{}, fmt.Errorf("invalid --legendary value: %w", err)
		}
		f.Legendary = &v
	}

	if s := strings.TrimSpace(sortBy); s != "" {
		resolved, ok := resolveSortColumn(s)
		if !ok {
			return Filters{}, fmt.Errorf("invalid sort column '%s'. must be one of %s", sortBy, strings.Join(SortColumns(), ", "))
		}
		f.SortBy = resolved
	}
	return f, nil
}

// SortColumns lists the columns the table can be sorted by.
func SortColumns() []string {
	cols := append([]string{schema.ColName, schema.ColTotal}, schema.StatColumns...)
	sort.Strings(cols)
	return cols
}

// resolveSortColumn matches a sort column case-insensitively.
func resolveSortColumn(s string) (string, bool) {
	for _, col := range SortColumns() {
		if strings.EqualFold(col, s) {
			return col, true
		}
	}
	return "", false
}

// ProcessProfilingConfig sets up profiling based on the provided prefix.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
