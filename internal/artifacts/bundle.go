package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/huangsam/pokestats/core/algo"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/internal/dataset"
	"github.com/huangsam/pokestats/schema"
)

// Bundle is a verified, read-only view of a committed artifact directory.
type Bundle struct {
	dir      string
	manifest Manifest
	rows     []schema.LabeledRow
	scaler   *algo.Scaler
	model    *algo.PartitionModel
}

// Open reads the bundle in dir and checks every file against the manifest.
// A missing manifest or a hash mismatch is a PersistenceError.
func Open(dir, tableFile string) (*Bundle, error) {
	mp, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}
	m := *mp
	if m.Schema != manifestVersion {
		return nil, &contract.PersistenceError{Op: "verify", Path: filepath.Join(dir, ManifestFile), Cause: fmt.Errorf("unsupported manifest schema %d", m.Schema)}
	}
	if tableFile == "" {
		tableFile = m.TableFile
	}

	contents := make(map[string][]byte, 3)
	for _, name := range []string{tableFile, ScalerFile, ModelFile} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &contract.PersistenceError{Op: "read", Path: path, Cause: err}
		}
		want, ok := m.Files[name]
		if !ok {
			return nil, &contract.PersistenceError{Op: "verify", Path: path, Cause: fmt.Errorf("file not listed in manifest")}
		}
		if got := digest(data); got != want {
			return nil, &contract.PersistenceError{Op: "verify", Path: path, Cause: fmt.Errorf("inconsistent bundle: sha256 %s does not match manifest %s", got[:12], want[:min(12, len(want))])}
		}
		contents[name] = data
	}

	b := &Bundle{dir: dir, manifest: m}
	if err := json.Unmarshal(contents[ScalerFile], &b.scaler); err != nil {
		return nil, &contract.PersistenceError{Op: "decode", Path: filepath.Join(dir, ScalerFile), Cause: err}
	}
	if err := json.Unmarshal(contents[ModelFile], &b.model); err != nil {
		return nil, &contract.PersistenceError{Op: "decode", Path: filepath.Join(dir, ModelFile), Cause: err}
	}
	if b.scaler == nil || b.model == nil || len(b.model.Centroids) == 0 {
		return nil, &contract.PersistenceError{Op: "verify", Path: dir, Cause: fmt.Errorf("scaler or model is empty")}
	}
	if b.scaler.Dim() != len(b.model.Centroids[0]) {
		return nil, &contract.PersistenceError{Op: "verify", Path: dir, Cause: fmt.Errorf("scaler has %d columns but centroids have %d", b.scaler.Dim(), len(b.model.Centroids[0]))}
	}

	rows, err := parseLabeled(contents[tableFile], filepath.Join(dir, tableFile))
	if err != nil {
		return nil, &contract.PersistenceError{Op: "decode", Path: filepath.Join(dir, tableFile), Cause: err}
	}
	b.rows = rows
	return b, nil
}

// parseLabeled reuses the input loader for the original columns and reads
// Cluster and Profile by name.
func parseLabeled(raw []byte, source string) ([]schema.LabeledRow, error) {
	table, err := dataset.Parse(raw, source)
	if err != nil {
		return nil, err
	}
	clusterCol := columnIndex(table.Header, schema.ColCluster)
	profileCol := columnIndex(table.Header, schema.ColProfile)
	if clusterCol < 0 {
		return nil, &contract.MissingColumnError{Column: schema.ColCluster, Source: source}
	}
	if profileCol < 0 {
		return nil, &contract.MissingColumnError{Column: schema.ColProfile, Source: source}
	}

	rows := make([]schema.LabeledRow, table.Len())
	for i, rec := range table.Records {
		id, err := strconv.Atoi(rec[clusterCol])
		if err != nil {
			return nil, &contract.MalformedRowError{Source: source, Line: i + 2, Column: schema.ColCluster, Value: rec[clusterCol], Cause: err}
		}
		rows[i] = schema.LabeledRow{Pokemon: table.Entities[i], Cluster: id, Profile: rec[profileCol]}
	}
	return rows, nil
}

// Dir returns the artifact directory.
func (b *Bundle) Dir() string { return b.dir }

// Manifest returns the verified manifest.
func (b *Bundle) Manifest() Manifest { return b.manifest }

// LabeledTable returns the labeled rows in input order.
func (b *Bundle) LabeledTable() []schema.LabeledRow { return b.rows }

// Scaler returns the persisted standardizer.
func (b *Bundle) Scaler() *algo.Scaler { return b.scaler }

// Model returns the persisted partition model.
func (b *Bundle) Model() *algo.PartitionModel { return b.model }

// Assign standardizes raw stats with the persisted scaler and returns the
// nearest cluster together with the standardized point.
func (b *Bundle) Assign(stats schema.Stats) (int, []float64, error) {
	z, err := b.scaler.Transform(stats.Floats())
	if err != nil {
		return 0, nil, err
	}
	id, err := b.model.Assign(z)
	if err != nil {
		return 0, nil, err
	}
	return id, z, nil
}
