// Package artifacts persists and reads the artifact bundle: the labeled table,
// the fitted scaler, the partition model and the manifest that ties them together.
package artifacts

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/pokestats/internal/contract"
)

// File names inside the artifact directory. The labeled table name is configurable.
const (
	ScalerFile   = "kmeans_scaler.json"
	ModelFile    = "kmeans_model.json"
	ManifestFile = "manifest.json"
	LockFile     = ".pokestats.lock"
)

// manifestVersion is bumped when the manifest layout changes.
const manifestVersion = 1

// Manifest describes one committed bundle. It is written after every payload file
// so a reader never trusts a half-written bundle.
type Manifest struct {
	Schema     int               `json:"schema"`
	BundleID   string            `json:"bundle_id"` // uuid, new on every commit
	SourceHash string            `json:"source_hash"`
	K          int               `json:"k"`
	Seed       int64             `json:"seed"`
	Restarts   int               `json:"restarts"`
	MaxIter    int               `json:"max_iter"`
	Columns    []string          `json:"columns"`
	TableFile  string            `json:"table_file"`
	Rows       int               `json:"rows"`
	CreatedAt  time.Time         `json:"created_at"`
	Files      map[string]string `json:"files"` // file name -> sha256 hex
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// ReadManifest reads dir's manifest without verifying the payload files.
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &contract.PersistenceError{Op: "read", Path: path, Cause: err}
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &contract.PersistenceError{Op: "decode", Path: path, Cause: err}
	}
	return &m, nil
}
