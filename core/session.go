package core

import (
	"sync"

	"github.com/huangsam/pokestats/internal/artifacts"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/internal/dataset"
	"github.com/huangsam/pokestats/schema"
)

// Session carries the state that thin consumers share: the configuration with
// its selected pair and filters, the loaded input table and the persisted
// bundle. Each command or MCP call builds its own session.
type Session struct {
	cfg *contract.Config
	mgr contract.CacheManager

	mu        sync.Mutex
	table     *schema.EntityTable
	bundle    *artifacts.Bundle
	bundleErr error
	bundleSet bool
}

// NewSession creates a session over a validated configuration. mgr may be nil.
func NewSession(cfg *contract.Config, mgr contract.CacheManager) *Session {
	return &Session{cfg: cfg, mgr: mgr}
}

// Config returns the session configuration.
func (s *Session) Config() *contract.Config { return s.cfg }

// Profiles returns the configured profile map.
func (s *Session) Profiles() ProfileMap { return NewProfileMap(s.cfg.Profiles) }

// WithSelection returns a session that compares a and b. Loaded data is shared.
func (s *Session) WithSelection(a, b string) *Session {
	cfg := s.cfg.Clone()
	cfg.Selection = []string{a, b}
	return s.derive(cfg)
}

// WithFilters returns a session with different exploration filters.
func (s *Session) WithFilters(f contract.Filters) *Session {
	cfg := s.cfg.Clone()
	cfg.Filters = f
	return s.derive(cfg)
}

// WithClusters returns a session that fits k clusters.
func (s *Session) WithClusters(k int) *Session {
	cfg := s.cfg.Clone()
	cfg.Clusters = k
	return s.derive(cfg)
}

func (s *Session) derive(cfg *contract.Config) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Session{cfg: cfg, mgr: s.mgr, table: s.table, bundle: s.bundle, bundleErr: s.bundleErr, bundleSet: s.bundleSet}
}

// Table loads the input table once.
func (s *Session) Table() (*schema.EntityTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table != nil {
		return s.table, nil
	}
	table, err := dataset.Load(s.cfg.DataPath)
	if err != nil {
		return nil, err
	}
	s.table = table
	return table, nil
}

// Bundle opens the persisted artifact bundle once.
func (s *Session) Bundle() (*artifacts.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bundleSet {
		s.bundle, s.bundleErr = artifacts.Open(s.cfg.ArtifactsDir, s.cfg.TableFile)
		s.bundleSet = true
	}
	return s.bundle, s.bundleErr
}

// SetLabeled installs a freshly committed or confirmed bundle so later calls in
// the same session see it without reopening.
func (s *Session) SetLabeled(b *artifacts.Bundle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundle, s.bundleErr, s.bundleSet = b, nil, true
}

// LabeledRows returns the persisted labeled table when a bundle exists, else
// the input table with no cluster assigned. The bool reports which one.
func (s *Session) LabeledRows() ([]schema.LabeledRow, bool, error) {
	if b, err := s.Bundle(); err == nil {
		return b.LabeledTable(), true, nil
	}
	table, err := s.Table()
	if err != nil {
		return nil, false, err
	}
	return Unlabeled(table), false, nil
}

// Unlabeled wraps every entity with cluster -1 and no profile.
func Unlabeled(table *schema.EntityTable) []schema.LabeledRow {
	rows := make([]schema.LabeledRow, table.Len())
	for i, p := range table.Entities {
		rows[i] = schema.LabeledRow{Pokemon: p, Cluster: -1}
	}
	return rows
}
