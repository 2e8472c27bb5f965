//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// exerciseBackends runs the store commands and a clustering run against env.
func exerciseBackends(t *testing.T, env []string) {
	t.Helper()
	env = append(env, "POKESTATS_ARTIFACTS_DIR="+t.TempDir())

	_, err := runPokestats(t, env, "cache", "clear")
	require.NoError(t, err)

	_, err = runPokestats(t, env, "runs", "clear")
	require.NoError(t, err)

	_, err = runPokestats(t, env, "runs", "migrate")
	require.NoError(t, err)

	_, err = runPokestats(t, env, "cluster")
	require.NoError(t, err)

	// Second run hits the fit cache
	_, err = runPokestats(t, env, "cluster")
	require.NoError(t, err)

	_, err = runPokestats(t, env, "cache", "status")
	require.NoError(t, err)

	_, err = runPokestats(t, env, "runs", "status")
	require.NoError(t, err)
}

// TestPokestatsWithMySQL tests the pokestats CLI with a MySQL backend.
func TestPokestatsWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "pokestats",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/pokestats?parseTime=true", host, port.Port())
	exerciseBackends(t, []string{
		"POKESTATS_CACHE_BACKEND=mysql",
		"POKESTATS_CACHE_DB_CONNECT=" + connStr,
		"POKESTATS_RUNS_BACKEND=mysql",
		"POKESTATS_RUNS_DB_CONNECT=" + connStr,
	})
}

// TestPokestatsWithPostgres tests the pokestats CLI with a PostgreSQL backend.
func TestPokestatsWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	exerciseBackends(t, []string{
		"POKESTATS_CACHE_BACKEND=postgresql",
		"POKESTATS_CACHE_DB_CONNECT=" + connStr,
		"POKESTATS_RUNS_BACKEND=postgresql",
		"POKESTATS_RUNS_DB_CONNECT=" + connStr,
	})
}
