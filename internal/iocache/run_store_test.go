package iocache

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/pokestats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunStore(t *testing.T) *RunStoreImpl {
	t.Helper()
	store, err := NewRunStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*RunStoreImpl)
}

func labeledRows(n int) []schema.LabeledRow {
	rows := make([]schema.LabeledRow, n)
	for i := range rows {
		rows[i] = schema.LabeledRow{
			Pokemon: schema.Pokemon{Row: i, Name: fmt.Sprintf("Mon%03d", i), Stats: schema.Stats{50, 50, 50, 50, 50, i}},
			Cluster: i % 3,
			Profile: []string{"Tank", "Sweeper", "Support"}[i%3],
		}
	}
	return rows
}

func TestRunStoreLifecycle(t *testing.T) {
	store := newTestRunStore(t)

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun(start, map[string]any{"clusters": 4, "seed": 42})
	require.NoError(t, err)
	assert.Positive(t, runID)

	rows := labeledRows(3)
	require.NoError(t, store.RecordAssignments(runID, rows))
	require.NoError(t, store.EndRun(runID, start.Add(1500*time.Millisecond), len(rows), schema.OutcomeSaved))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Equal(t, int32(3), run.TotalRows)
	require.NotNil(t, run.Outcome)
	assert.Equal(t, "saved", *run.Outcome)
	require.NotNil(t, run.ConfigParams)

	var params map[string]any
	require.NoError(t, json.Unmarshal([]byte(*run.ConfigParams), &params))
	assert.Equal(t, 4.0, params["clusters"])

	assignments, err := store.GetAllAssignments()
	require.NoError(t, err)
	require.Len(t, assignments, 3)
	assert.Equal(t, schema.AssignmentRecord{RunID: runID, RowIndex: 1, Name: "Mon001", ClusterID: 1, Profile: "Sweeper", Total: 251}, assignments[1])
}

func TestRunStoreOpenRun(t *testing.T) {
	store := newTestRunStore(t)

	_, err := store.BeginRun(time.Now(), nil)
	require.NoError(t, err)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].Outcome)
	assert.Zero(t, runs[0].TotalRows)
}

func TestRunStoreEndUnknownRun(t *testing.T) {
	store := newTestRunStore(t)
	err := store.EndRun(999, time.Now(), 0, schema.OutcomeFailed)
	assert.ErrorContains(t, err, "run 999")
}

func TestRunStoreBatchedAssignments(t *testing.T) {
	store := newTestRunStore(t)

	runID, err := store.BeginRun(time.Now(), nil)
	require.NoError(t, err)
	rows := labeledRows(assignmentBatchSize*2 + 7)
	require.NoError(t, store.RecordAssignments(runID, rows))
	require.NoError(t, store.RecordAssignments(runID, nil))

	assignments, err := store.GetAllAssignments()
	require.NoError(t, err)
	assert.Len(t, assignments, len(rows))
	assert.Equal(t, int32(len(rows)-1), assignments[len(assignments)-1].RowIndex)
}

func TestRunStoreDuplicateAssignmentsRollBack(t *testing.T) {
	store := newTestRunStore(t)

	runID, err := store.BeginRun(time.Now(), nil)
	require.NoError(t, err)
	rows := labeledRows(2)
	rows = append(rows, rows[0])
	assert.Error(t, store.RecordAssignments(runID, rows))

	assignments, err := store.GetAllAssignments()
	require.NoError(t, err)
	assert.Empty(t, assignments, "failed batch must not leave partial rows")
}

func TestRunStoreStatus(t *testing.T) {
	store := newTestRunStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalRuns)

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 3 {
		runID, err := store.BeginRun(first.Add(time.Duration(i)*time.Hour), nil)
		require.NoError(t, err)
		require.NoError(t, store.RecordAssignments(runID, labeledRows(4)))
	}

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, int64(3), status.LastRunID)
	assert.True(t, first.Add(2*time.Hour).Equal(status.LastRunTime))
	assert.True(t, first.Equal(status.OldestRunTime))
	assert.Equal(t, 12, status.TotalAssignments)
	assert.Equal(t, map[string]int64{runsTable: 3, assignmentsTable: 12}, status.TableSizes)
}

func TestRunStoreNoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now(), map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Zero(t, runID)
	assert.NoError(t, store.RecordAssignments(runID, labeledRows(2)))
	assert.NoError(t, store.EndRun(runID, time.Now(), 2, schema.OutcomeSaved))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Nil(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestRunStoreUnmarshalableConfig(t *testing.T) {
	store := newTestRunStore(t)
	_, err := store.BeginRun(time.Now(), map[string]any{"bad": make(chan int)})
	assert.ErrorContains(t, err, "failed to marshal config params")
}
