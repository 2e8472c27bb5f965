package artifacts

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/pokestats/core/algo"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/schema"
)

// Payload is everything a commit writes.
type Payload struct {
	Table    *schema.EntityTable
	Clusters []int
	Profiles []string
	Scaler   *algo.Scaler
	Model    *algo.PartitionModel
	Seed     int64
	Restarts int
	MaxIter  int
}

// LabeledRecords returns the original header and records with Cluster and
// Profile filled in, rows in input order. Columns the input already carries
// are overwritten in place; missing ones are appended.
func LabeledRecords(table *schema.EntityTable, clusters []int, profiles []string) ([]string, [][]string, error) {
	if len(clusters) != table.Len() || len(profiles) != table.Len() {
		return nil, nil, fmt.Errorf("have %d rows but %d cluster ids and %d profiles", table.Len(), len(clusters), len(profiles))
	}
	header := slices.Clone(table.Header)
	clusterCol := columnIndex(header, schema.ColCluster)
	if clusterCol < 0 {
		clusterCol = len(header)
		header = append(header, schema.ColCluster)
	}
	profileCol := columnIndex(header, schema.ColProfile)
	if profileCol < 0 {
		profileCol = len(header)
		header = append(header, schema.ColProfile)
	}

	records := make([][]string, len(table.Records))
	for i, rec := range table.Records {
		row := make([]string, len(header))
		copy(row, rec)
		row[clusterCol] = strconv.Itoa(clusters[i])
		row[profileCol] = profiles[i]
		records[i] = row
	}
	return header, records, nil
}

func columnIndex(header []string, name string) int {
	return slices.IndexFunc(header, func(h string) bool { return strings.TrimSpace(h) == name })
}

// Commit writes the bundle into dir. Every file goes to a temp name, is synced
// and renamed into place; the manifest is renamed last.
func Commit(dir, tableFile string, p Payload) (*Manifest, error) {
	header, records, err := LabeledRecords(p.Table, p.Clusters, p.Profiles)
	if err != nil {
		return nil, err
	}

	var table bytes.Buffer
	w := csv.NewWriter(&table)
	if err := w.Write(header); err != nil {
		return nil, &contract.PersistenceError{Op: "encode", Path: tableFile, Cause: err}
	}
	if err := w.WriteAll(records); err != nil {
		return nil, &contract.PersistenceError{Op: "encode", Path: tableFile, Cause: err}
	}

	scaler, err := json.MarshalIndent(p.Scaler, "", "  ")
	if err != nil {
		return nil, &contract.PersistenceError{Op: "encode", Path: ScalerFile, Cause: err}
	}
	model, err := json.MarshalIndent(p.Model, "", "  ")
	if err != nil {
		return nil, &contract.PersistenceError{Op: "encode", Path: ModelFile, Cause: err}
	}

	files := []struct {
		name string
		data []byte
	}{
		{tableFile, table.Bytes()},
		{ScalerFile, scaler},
		{ModelFile, model},
	}

	m := &Manifest{
		Schema:     manifestVersion,
		BundleID:   uuid.NewString(),
		SourceHash: p.Table.SourceHash,
		K:          p.Model.K,
		Seed:       p.Seed,
		Restarts:   p.Restarts,
		MaxIter:    p.MaxIter,
		Columns:    p.Scaler.Columns,
		TableFile:  tableFile,
		Rows:       p.Table.Len(),
		CreatedAt:  time.Now().UTC(),
		Files:      make(map[string]string, len(files)),
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &contract.PersistenceError{Op: "mkdir", Path: dir, Cause: err}
	}
	for _, f := range files {
		if err := writeAtomic(dir, f.name, f.data); err != nil {
			return nil, err
		}
		m.Files[f.name] = digest(f.data)
	}

	manifest, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, &contract.PersistenceError{Op: "encode", Path: ManifestFile, Cause: err}
	}
	if err := writeAtomic(dir, ManifestFile, manifest); err != nil {
		return nil, err
	}
	return m, nil
}

// writeAtomic replaces dir/name with data via a synced temp file and rename.
func writeAtomic(dir, name string, data []byte) error {
	target := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return &contract.PersistenceError{Op: "create", Path: target, Cause: err}
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return &contract.PersistenceError{Op: "write", Path: target, Cause: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return &contract.PersistenceError{Op: "sync", Path: target, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &contract.PersistenceError{Op: "close", Path: target, Cause: err}
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return &contract.PersistenceError{Op: "rename", Path: target, Cause: err}
	}
	return nil
}
