package iocache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/pokestats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobals lets a test run InitStores and CloseCaching again.
func resetGlobals(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
	t.Cleanup(func() {
		CloseCaching()
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &CacheStoreManager{}
	})
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite stores", func(t *testing.T) {
		resetGlobals(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		runsPath := filepath.Join(dir, "runs.db")

		require.NoError(t, InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, runsPath))
		assert.NotNil(t, Manager.GetFitStore())
		assert.NotNil(t, Manager.GetRunStore())

		CloseCaching()
		_, err := os.Stat(cachePath)
		assert.NoError(t, err, "cache database file should be created")
		_, err = os.Stat(runsPath)
		assert.NoError(t, err, "runs database file should be created")
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetGlobals(t)
		path := filepath.Join(t.TempDir(), "cache.db")
		for range 3 {
			assert.NoError(t, InitStores(schema.SQLiteBackend, path, "", ""))
		}
		CloseCaching()
		CloseCaching()
	})

	t.Run("empty backends leave stores unset", func(t *testing.T) {
		resetGlobals(t)
		require.NoError(t, InitStores("", "", "", ""))
		assert.Nil(t, Manager.GetFitStore())
		assert.Nil(t, Manager.GetRunStore())
	})

	t.Run("none backend", func(t *testing.T) {
		resetGlobals(t)
		require.NoError(t, InitStores(schema.NoneBackend, "", schema.NoneBackend, ""))

		fit := Manager.GetFitStore()
		require.NotNil(t, fit)
		_, _, _, err := fit.Get("anything")
		assert.Error(t, err)
		assert.NoError(t, fit.Set("anything", []byte("x"), 1, time.Now().Unix()))

		runs := Manager.GetRunStore()
		require.NotNil(t, runs)
		id, err := runs.BeginRun(time.Now(), nil)
		assert.NoError(t, err)
		assert.Zero(t, id)
	})

	t.Run("invalid backend", func(t *testing.T) {
		resetGlobals(t)
		err := InitStores("oracle", "", "", "")
		assert.ErrorContains(t, err, "failed to initialize fit caching")
	})

	t.Run("run store failure closes fit store", func(t *testing.T) {
		resetGlobals(t)
		err := InitStores(schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"), "oracle", "")
		assert.ErrorContains(t, err, "failed to initialize run tracking")
		assert.Nil(t, Manager.GetFitStore())
	})
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"pokestats_fit_cache", false},
		{"_private", false},
		{"T1", false},
		{"", true},
		{"1table", true},
		{"drop table;--", true},
		{"with-dash", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.SQLiteBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.PostgreSQLBackend))
	assert.Equal(t, "`runs`", quoteTableName("runs", schema.MySQLBackend))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"?", "?", "?"}, placeholders(schema.SQLiteBackend, 3))
	assert.Equal(t, []string{"?", "?"}, placeholders(schema.MySQLBackend, 2))
	assert.Equal(t, []string{"$1", "$2", "$3"}, placeholders(schema.PostgreSQLBackend, 3))
	assert.Empty(t, placeholders(schema.PostgreSQLBackend, 0))
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 500, time.UTC)

	s, ok := formatTime(ts, schema.SQLiteBackend).(string)
	require.True(t, ok)
	parsed, err := parseTime(s)
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))

	assert.Equal(t, ts, formatTime(ts, schema.PostgreSQLBackend))
}

func TestDriverFor(t *testing.T) {
	for backend, want := range map[schema.DatabaseBackend]string{
		schema.SQLiteBackend:     "sqlite",
		schema.MySQLBackend:      "mysql",
		schema.PostgreSQLBackend: "pgx",
	} {
		got, err := driverFor(backend)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := driverFor(schema.NoneBackend)
	assert.Error(t, err)
}

func TestClearCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(fitTable, schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing a missing file is fine
	assert.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	assert.Error(t, ClearCache("oracle", "", ""))
}

func TestClearRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewRunStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearRuns(schema.SQLiteBackend, path, ""))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
