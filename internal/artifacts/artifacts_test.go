package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/huangsam/pokestats/core/algo"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/internal/dataset"
	"github.com/huangsam/pokestats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTable = "labeled.csv"

func samplePayload(t *testing.T) Payload {
	t.Helper()
	raw := []byte("Name,HP,Attack,Defense,Sp. Atk,Sp. Def,Speed,Legendary\n" +
		"Bulbasaur,45,49,49,65,65,45,False\n" +
		"Onix,35,45,160,30,45,70,False\n" +
		"Mewtwo,106,110,90,154,90,130,True\n")
	table, err := dataset.Parse(raw, "mini.csv")
	require.NoError(t, err)

	return Payload{
		Table:    table,
		Clusters: []int{0, 1, 0},
		Profiles: []string{"Attacker", "Tank", "Attacker"},
		Scaler: &algo.Scaler{
			Columns: schema.StatColumns,
			Means:   []float64{62, 68, 99.67, 83, 66.67, 81.67},
			Scales:  []float64{30, 30, 45, 52, 18, 36},
		},
		Model: &algo.PartitionModel{
			K:         2,
			Centroids: [][]float64{{0.5, 0.5, -0.5, 0.8, 0.7, 0.5}, {-0.9, -0.8, 1.3, -1.0, -1.2, -0.3}},
		},
		Seed:     42,
		Restarts: 10,
		MaxIter:  300,
	}
}

func TestCommitAndOpen(t *testing.T) {
	dir := t.TempDir()
	p := samplePayload(t)

	m, err := Commit(dir, testTable, p)
	require.NoError(t, err)
	assert.NotEmpty(t, m.BundleID)
	assert.Equal(t, p.Table.SourceHash, m.SourceHash)
	assert.Equal(t, 2, m.K)
	assert.Len(t, m.Files, 3)

	for _, name := range []string{testTable, ScalerFile, ModelFile, ManifestFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	leftovers, err := filepath.Glob(filepath.Join(dir, ".*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temp files are renamed away")

	b, err := Open(dir, testTable)
	require.NoError(t, err)
	assert.Equal(t, m.BundleID, b.Manifest().BundleID)

	rows := b.LabeledTable()
	require.Len(t, rows, 3)
	assert.Equal(t, "Onix", rows[1].Name)
	assert.Equal(t, 1, rows[1].Cluster)
	assert.Equal(t, "Tank", rows[1].Profile)
	assert.True(t, rows[2].Legendary)
	assert.Equal(t, p.Scaler.Means, b.Scaler().Means)
	assert.Equal(t, p.Model.Centroids, b.Model().Centroids)
}

func TestOpenDefaultsToManifestTable(t *testing.T) {
	dir := t.TempDir()
	_, err := Commit(dir, testTable, samplePayload(t))
	require.NoError(t, err)

	b, err := Open(dir, "")
	require.NoError(t, err)
	assert.Len(t, b.LabeledTable(), 3)
}

func TestLabeledTableEchoesOriginalColumns(t *testing.T) {
	dir := t.TempDir()
	_, err := Commit(dir, testTable, samplePayload(t))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, testTable))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Name,HP,Attack,Defense,Sp. Atk,Sp. Def,Speed,Legendary,Cluster,Profile\n")
	assert.Contains(t, string(data), "Onix,35,45,160,30,45,70,False,1,Tank\n")
}

func TestOpenDetectsTampering(t *testing.T) {
	dir := t.TempDir()
	_, err := Commit(dir, testTable, samplePayload(t))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ModelFile), []byte(`{"k":2,"centroids":[[0,0,0,0,0,0]]}`), 0o644))

	_, err = Open(dir, testTable)
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrPersistence)
	var pe *contract.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "verify", pe.Op)
	assert.Contains(t, err.Error(), "inconsistent bundle")
}

func TestOpenMissingManifest(t *testing.T) {
	_, err := Open(t.TempDir(), testTable)
	assert.ErrorIs(t, err, contract.ErrPersistence)
}

func TestBundleAssign(t *testing.T) {
	dir := t.TempDir()
	_, err := Commit(dir, testTable, samplePayload(t))
	require.NoError(t, err)
	b, err := Open(dir, testTable)
	require.NoError(t, err)

	id, z, err := b.Assign(schema.Stats{35, 45, 160, 30, 45, 70})
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	assert.Len(t, z, schema.NumStats)
}

func TestCommitRejectsLengthMismatch(t *testing.T) {
	p := samplePayload(t)
	p.Clusters = []int{0}
	_, err := Commit(t.TempDir(), testTable, p)
	assert.Error(t, err)
}

func TestLabeledRecordsOverwritesExistingColumns(t *testing.T) {
	raw := []byte("Name,HP,Attack,Defense,Sp. Atk,Sp. Def,Speed,Cluster,Profile\n" +
		"Onix,35,45,160,30,45,70,3,Fast\n" +
		"Mewtwo,106,110,90,154,90,130,2,Tank\n")
	table, err := dataset.Parse(raw, "labeled.csv")
	require.NoError(t, err)

	header, records, err := LabeledRecords(table, []int{1, 0}, []string{"Tank", "Attacker"})
	require.NoError(t, err)
	assert.Equal(t, table.Header, header)
	assert.Equal(t, []string{"Onix", "35", "45", "160", "30", "45", "70", "1", "Tank"}, records[0])
	assert.Equal(t, []string{"Mewtwo", "106", "110", "90", "154", "90", "130", "0", "Attacker"}, records[1])
}

func TestLabeledRecordsAppendsOnlyMissingColumn(t *testing.T) {
	raw := []byte("Profile,Name,HP,Attack,Defense,Sp. Atk,Sp. Def,Speed\n" +
		"Old,Onix,35,45,160,30,45,70\n")
	table, err := dataset.Parse(raw, "half.csv")
	require.NoError(t, err)

	header, records, err := LabeledRecords(table, []int{2}, []string{"Tank"})
	require.NoError(t, err)
	assert.Equal(t, append(slices.Clone(table.Header), schema.ColCluster), header)
	assert.Equal(t, []string{"Tank", "Onix", "35", "45", "160", "30", "45", "70", "2"}, records[0])
}

func TestCommitLabeledInputOpens(t *testing.T) {
	dir := t.TempDir()
	first := samplePayload(t)
	_, err := Commit(dir, testTable, first)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, testTable))
	require.NoError(t, err)
	labeled, err := dataset.Parse(raw, testTable)
	require.NoError(t, err)

	again := samplePayload(t)
	again.Table = labeled
	again.Clusters = []int{1, 0, 1}
	again.Profiles = []string{"Tank", "Attacker", "Tank"}
	out := t.TempDir()
	_, err = Commit(out, testTable, again)
	require.NoError(t, err)

	b, err := Open(out, testTable)
	require.NoError(t, err)
	for i, r := range b.LabeledTable() {
		assert.Equal(t, again.Clusters[i], r.Cluster)
		assert.Equal(t, again.Profiles[i], r.Profile)
	}
}

func TestLock(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := AcquireLock(ctx, dir, 0)
	require.NoError(t, err)

	_, err = AcquireLock(ctx, dir, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrLocked)
	assert.Contains(t, err.Error(), fmt.Sprintf("pid %d", os.Getpid()))

	require.NoError(t, first.Release())
	require.NoError(t, first.Release())

	second, err := AcquireLock(ctx, dir, 0)
	require.NoError(t, err)
	require.NoError(t, second.Release())
	assert.FileExists(t, filepath.Join(dir, LockFile), "the lock file is kept for the next writer")
}

func TestLockLeftoverFileIsTakenOver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LockFile)
	require.NoError(t, os.WriteFile(path, []byte("pid 1 on elsewhere\n"), 0o644))

	l, err := AcquireLock(context.Background(), dir, 0)
	require.NoError(t, err)
	holder, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(holder), fmt.Sprintf("pid %d", os.Getpid()))
	require.NoError(t, l.Release())
}

func TestLockWaitsForRelease(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	held, err := AcquireLock(ctx, dir, 0)
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = held.Release()
	}()

	l, err := AcquireLock(ctx, dir, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, l.Release())
}

func TestLockWaitTimesOut(t *testing.T) {
	dir := t.TempDir()
	held, err := AcquireLock(context.Background(), dir, 0)
	require.NoError(t, err)
	defer func() { _ = held.Release() }()

	start := time.Now()
	_, err = AcquireLock(context.Background(), dir, 150*time.Millisecond)
	assert.ErrorIs(t, err, contract.ErrLocked)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = AcquireLock(ctx, dir, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
