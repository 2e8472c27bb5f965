// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/pokestats/schema"
)

// CacheManager defines the interface for managing stores.
// This allows the persistence layer to be mocked for testing.
type CacheManager interface {
	GetFitStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking clustering runs and their assignments.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalRows int, outcome schema.SaveOutcome) error

	// RecordAssignments stores the cluster id and profile of every labeled row
	RecordAssignments(runID int64, rows []schema.LabeledRow) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every run record ordered by id
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllAssignments returns every assignment record ordered by run and row
	GetAllAssignments() ([]schema.AssignmentRecord, error)

	// Close closes the underlying connection
	Close() error
}
