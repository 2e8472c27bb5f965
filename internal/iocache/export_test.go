package iocache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/pokestats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportRuns(t *testing.T) {
	store := newTestRunStore(t)
	runID, err := store.BeginRun(time.Now(), map[string]any{"clusters": 3})
	require.NoError(t, err)
	require.NoError(t, store.RecordAssignments(runID, labeledRows(5)))
	require.NoError(t, store.EndRun(runID, time.Now(), 5, schema.OutcomeSaved))

	out := filepath.Join(t.TempDir(), "export")
	var buf bytes.Buffer
	require.NoError(t, ExportRuns(&buf, store, out))

	assert.Contains(t, buf.String(), "Exporting 1 runs and 5 assignments from sqlite backend")
	for _, suffix := range []string{".runs.parquet", ".assignments.parquet"} {
		info, err := os.Stat(out + suffix)
		require.NoError(t, err, suffix)
		assert.Positive(t, info.Size())
	}
}

func TestExportRunsErrors(t *testing.T) {
	var buf bytes.Buffer

	assert.ErrorContains(t, ExportRuns(&buf, newTestRunStore(t), ""), "--output-file is required")
	assert.ErrorContains(t, ExportRuns(&buf, nil, "out"), "not configured")
	assert.ErrorContains(t, ExportRuns(&buf, newTestRunStore(t), "out"), "no run data found")

	runs := &MockRunStore{}
	runs.On("GetStatus").Return(schema.RunStatus{}, errors.New("boom"))
	assert.ErrorContains(t, ExportRuns(&buf, runs, "out"), "boom")
	runs.AssertExpectations(t)
}
