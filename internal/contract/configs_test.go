package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/pokestats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input that passes validation, mirroring viper defaults.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Data:         "pokemon.csv",
		ArtifactsDir: ".",
		TableFile:    DefaultTableFile,
		Clusters:     DefaultClusters,
		Seed:         DefaultSeed,
		Restarts:     DefaultRestarts,
		MaxIter:      DefaultMaxIter,
		Limit:        DefaultResultLimit,
		Precision:    DefaultPrecision,
		Output:       string(schema.TextOut),
		Color:        "yes",
		CacheBackend: string(schema.NoneBackend),
		Trees:        DefaultTrees,
		TreeFeatures: DefaultTreeFeatures,
		TestRatio:    DefaultTestRatio,
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "k six accepted", mutate: func(in *ConfigRawInput) { in.Clusters = 6 }},
		{name: "k five rejected", mutate: func(in *ConfigRawInput) { in.Clusters = 5 }, expectError: true},
		{name: "zero restarts", mutate: func(in *ConfigRawInput) { in.Restarts = 0 }, expectError: true},
		{name: "zero max iter", mutate: func(in *ConfigRawInput) { in.MaxIter = 0 }, expectError: true},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "uppercase output", mutate: func(in *ConfigRawInput) { in.Output = "JSON" }},
		{name: "limit too large", mutate: func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 }, expectError: true},
		{name: "precision too large", mutate: func(in *ConfigRawInput) { in.Precision = 9 }, expectError: true},
		{name: "bad color", mutate: func(in *ConfigRawInput) { in.Color = "sometimes" }, expectError: true},
		{name: "tree features too large", mutate: func(in *ConfigRawInput) { in.TreeFeatures = 7 }, expectError: true},
		{name: "test ratio one", mutate: func(in *ConfigRawInput) { in.TestRatio = 1 }, expectError: true},
		{name: "table file with directory", mutate: func(in *ConfigRawInput) { in.TableFile = "out/table.csv" }, expectError: true},
		{name: "bad lock timeout", mutate: func(in *ConfigRawInput) { in.LockTimeout = "soon" }, expectError: true},
		{name: "negative lock timeout", mutate: func(in *ConfigRawInput) { in.LockTimeout = "-1s" }, expectError: true},
		{name: "zero lock timeout", mutate: func(in *ConfigRawInput) { in.LockTimeout = "0s" }},
		{name: "bad sort", mutate: func(in *ConfigRawInput) { in.Sort = "Weight" }, expectError: true},
		{name: "selection of one", mutate: func(in *ConfigRawInput) { in.Select = "Pikachu" }, expectError: true},
		{name: "selection of two", mutate: func(in *ConfigRawInput) { in.Select = "Pikachu, Raichu" }},
		{name: "negative generation", mutate: func(in *ConfigRawInput) { in.Generation = -1 }, expectError: true},
		{name: "bad legendary", mutate: func(in *ConfigRawInput) { in.Legendary = "perhaps" }, expectError: true},
		{name: "mysql without dsn", mutate: func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, expectError: true},
		{name: "unknown runs backend", mutate: func(in *ConfigRawInput) { in.RunsBackend = "redis" }, expectError: true},
		{
			name: "postgres runs backend",
			mutate: func(in *ConfigRawInput) {
				in.RunsBackend = "postgresql"
				in.RunsDBConnect = "host=localhost dbname=pokestats"
			},
		},
		{
			name: "same sqlite file for both stores",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "sqlite"
				in.RunsBackend = "sqlite"
				in.CacheDBConnect = "/tmp/shared.db"
				in.RunsDBConnect = "/tmp/shared.db"
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateResolvesValues(t *testing.T) {
	input := validInput()
	input.Data = ""
	input.ArtifactsDir = "out"
	input.Sort = "sp. atk"
	input.Legendary = "no"
	input.Type = " Fire "
	input.LockTimeout = "90s"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, DefaultDataPath, cfg.DataPath)
	assert.Equal(t, filepath.Join("out", DefaultTableFile), cfg.TablePath())
	assert.Equal(t, schema.ColSpAtk, cfg.Filters.SortBy)
	require.NotNil(t, cfg.Filters.Legendary)
	assert.False(t, *cfg.Filters.Legendary)
	assert.Equal(t, "Fire", cfg.Filters.Type)
	assert.Equal(t, 90*time.Second, cfg.LockTimeout)
	assert.Equal(t, schema.NoneBackend, cfg.RunsBackend)
	assert.Equal(t, DefaultProfileLabels, cfg.Profiles)
}

func TestResolveProfiles(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		profiles, err := resolveProfiles(&ConfigRawInput{})
		require.NoError(t, err)
		assert.Equal(t, "Attacker", profiles[0])
		assert.Equal(t, "Balanced", profiles[3])
		assert.Len(t, profiles, 4)
	})

	t.Run("comma list", func(t *testing.T) {
		profiles, err := resolveProfiles(&ConfigRawInput{ProfileLabels: "A, B,C,D,E,F"})
		require.NoError(t, err)
		assert.Len(t, profiles, 6)
		assert.Equal(t, "B", profiles[1])
	})

	t.Run("map wins over list", func(t *testing.T) {
		profiles, err := resolveProfiles(&ConfigRawInput{
			ProfileLabels: "A,B",
			Profiles:      map[string]string{"0": "Sweeper", "5": "Wall"},
		})
		require.NoError(t, err)
		assert.Equal(t, map[int]string{0: "Sweeper", 5: "Wall"}, profiles)
	})

	t.Run("bad map key", func(t *testing.T) {
		_, err := resolveProfiles(&ConfigRawInput{Profiles: map[string]string{"x": "A"}})
		assert.Error(t, err)
	})

	t.Run("empty list entry", func(t *testing.T) {
		_, err := resolveProfiles(&ConfigRawInput{ProfileLabels: "A,,C"})
		assert.Error(t, err)
	})

	t.Run("defaults are copied", func(t *testing.T) {
		profiles, err := resolveProfiles(&ConfigRawInput{})
		require.NoError(t, err)
		profiles[0] = "Changed"
		assert.Equal(t, "Attacker", DefaultProfileLabels[0])
	})
}

func TestConfigClone(t *testing.T) {
	legendary := true
	cfg := &Config{
		Profiles:  map[int]string{0: "Attacker"},
		Selection: []string{"Pikachu", "Raichu"},
		Filters:   Filters{Legendary: &legendary},
	}

	clone := cfg.Clone()
	clone.Profiles[0] = "Tank"
	clone.Selection[0] = "Mew"
	*clone.Filters.Legendary = false

	assert.Equal(t, "Attacker", cfg.Profiles[0])
	assert.Equal(t, "Pikachu", cfg.Selection[0])
	assert.True(t, *cfg.Filters.Legendary)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		connStr     string
		expectError bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none empty", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/pokestats", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/pokestats", true},
		{"mysql missing db", schema.MySQLBackend, "user:pass@tcp(localhost:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost dbname=pokestats", false},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=pokestats", true},
		{"postgres empty", schema.PostgreSQLBackend, "", true},
		{"unknown backend", schema.DatabaseBackend("oracle"), "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFiltersIsZero(t *testing.T) {
	assert.True(t, Filters{}.IsZero())
	assert.True(t, Filters{Ascending: true}.IsZero())
	assert.False(t, Filters{Type: "Fire"}.IsZero())
	assert.False(t, Filters{SortBy: schema.ColHP}.IsZero())
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "run"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "run", profile.Prefix)
}

func TestParseFilters(t *testing.T) {
	f, err := ParseFilters(" Fire ", 1, "yes", "Tank", "sp. atk", true)
	require.NoError(t, err)
	assert.Equal(t, "Fire", f.Type)
	assert.Equal(t, 1, f.Generation)
	require.NotNil(t, f.Legendary)
	assert.True(t, *f.Legendary)
	assert.Equal(t, schema.ColSpAtk, f.SortBy)
	assert.True(t, f.Ascending)

	f, err = ParseFilters("", 0, "", "", "", false)
	require.NoError(t, err)
	assert.True(t, f.IsZero())

	_, err = ParseFilters("", -1, "", "", "", false)
	assert.ErrorContains(t, err, "generation must not be negative")
	_, err = ParseFilters("", 0, "maybe", "", "", false)
	assert.ErrorContains(t, err, "invalid --legendary value")
	_, err = ParseFilters("", 0, "", "", "Weight", false)
	assert.ErrorContains(t, err, "invalid sort column 'Weight'")
}

func TestValidateClusterCount(t *testing.T) {
	for _, k := range []int{4, 6} {
		assert.NoError(t, ValidateClusterCount(k))
	}
	for _, k := range []int{-1, 0, 1, 5, 10} {
		assert.ErrorContains(t, ValidateClusterCount(k), "clusters must be 4 or 6")
	}
}
