package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/huangsam/pokestats/core/algo"
	"github.com/huangsam/pokestats/internal/artifacts"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/schema"
	"gonum.org/v1/gonum/stat"
)

// ClusterLabeler fits the partition model, labels every row with a profile and
// persists the artifact bundle only when the cluster ids changed.
type ClusterLabeler struct {
	cfg      *contract.Config
	mgr      contract.CacheManager
	profiles ProfileMap
}

// LabelRun is the full outcome of a labeler run.
type LabelRun struct {
	Result schema.ClusterRunResult
	Rows   []schema.LabeledRow
	Scaler *algo.Scaler
	Model  *algo.PartitionModel
	Bundle *artifacts.Bundle // Verified bundle matching Rows
}

// NewClusterLabeler builds a labeler from validated configuration. mgr may be nil.
func NewClusterLabeler(cfg *contract.Config, mgr contract.CacheManager) *ClusterLabeler {
	return &ClusterLabeler{cfg: cfg, mgr: mgr, profiles: NewProfileMap(cfg.Profiles)}
}

// Run executes standardize, fit, label, compare and maybe-save for one table.
// Nothing under the artifact directory is touched unless the fresh cluster
// column differs from the persisted one.
func (l *ClusterLabeler) Run(ctx context.Context, table *schema.EntityTable) (*LabelRun, error) {
	ctx, finish := l.beginTracking(ctx, table)

	run, err := l.run(ctx, table)
	if err != nil {
		finish(schema.OutcomeFailed, nil)
		return nil, err
	}
	finish(run.Result.Outcome, run.Rows)
	return run, nil
}

func (l *ClusterLabeler) run(ctx context.Context, table *schema.EntityTable) (*LabelRun, error) {
	// Every id the fit can produce needs a label before any work is done
	if missing := l.profiles.Missing(l.cfg.Clusters); len(missing) > 0 {
		return nil, &contract.UnmappedClusterError{Cluster: missing[0]}
	}

	// --- 1. Feature Pipeline ---
	data, scaler, err := Standardize(table, schema.StatColumns)
	if err != nil {
		return nil, err
	}

	// --- 2. Fit (with caching) ---
	km := algo.KMeans{K: l.cfg.Clusters, Seed: l.cfg.Seed, Restarts: l.cfg.Restarts, MaxIter: l.cfg.MaxIter}
	fitted, hit, err := cachedFit(l.mgr, table.SourceHash, km, scaler, data)
	if err != nil {
		return nil, err
	}

	// --- 3. Label strictly, before any write ---
	labels, err := l.profiles.LabelAll(fitted.Labels)
	if err != nil {
		return nil, err
	}

	rows := make([]schema.LabeledRow, table.Len())
	for i, p := range table.Entities {
		rows[i] = schema.LabeledRow{Pokemon: p, Cluster: fitted.Labels[i], Profile: labels[i]}
	}
	result := schema.ClusterRunResult{
		RunID:      runIDFromContext(ctx),
		SourceHash: table.SourceHash,
		K:          fitted.Model.K,
		Inertia:    fitted.Model.Inertia,
		CacheHit:   hit,
		Rows:       table.Len(),
		Clusters:   summarize(rows, fitted.Model.K, l.profiles),
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// --- 4. Lock the artifact directory ---
	lock, err := artifacts.AcquireLock(ctx, l.cfg.ArtifactsDir, l.cfg.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			contract.LogWarn("Cannot release artifact lock", err)
		}
	}()

	// --- 5. Compare with the persisted bundle ---
	// Only a bundle that verifies against its manifest counts. A torn or
	// foreign directory is rewritten as a whole.
	if b, err := artifacts.Open(l.cfg.ArtifactsDir, l.cfg.TableFile); err == nil && sameClusters(b.LabeledTable(), fitted.Labels) {
		result.Outcome = schema.OutcomeUnchanged
		result.BundleID = b.Manifest().BundleID
		return &LabelRun{Result: result, Rows: rows, Scaler: fitted.Scaler, Model: fitted.Model, Bundle: b}, nil
	}

	// --- 6. Commit the bundle ---
	manifest, err := artifacts.Commit(l.cfg.ArtifactsDir, l.cfg.TableFile, artifacts.Payload{
		Table:    table,
		Clusters: fitted.Labels,
		Profiles: labels,
		Scaler:   fitted.Scaler,
		Model:    fitted.Model,
		Seed:     l.cfg.Seed,
		Restarts: l.cfg.Restarts,
		MaxIter:  l.cfg.MaxIter,
	})
	if err != nil {
		var pe *contract.PersistenceError
		if !errors.As(err, &pe) {
			err = &contract.PersistenceError{Op: "commit", Path: l.cfg.ArtifactsDir, Cause: err}
		}
		return nil, err
	}
	b, err := artifacts.Open(l.cfg.ArtifactsDir, l.cfg.TableFile)
	if err != nil {
		return nil, err
	}
	result.Outcome = schema.OutcomeSaved
	result.BundleID = manifest.BundleID
	return &LabelRun{Result: result, Rows: rows, Scaler: fitted.Scaler, Model: fitted.Model, Bundle: b}, nil
}

// sameClusters reports whether the persisted rows carry exactly the fresh ids.
func sameClusters(persisted []schema.LabeledRow, ids []int) bool {
	return slices.EqualFunc(persisted, ids, func(r schema.LabeledRow, id int) bool {
		return r.Cluster == id
	})
}

// beginTracking starts a run in the run store when one is configured. The
// returned finish func records the outcome; tracking failures only warn.
func (l *ClusterLabeler) beginTracking(ctx context.Context, table *schema.EntityTable) (context.Context, func(schema.SaveOutcome, []schema.LabeledRow)) {
	noop := func(schema.SaveOutcome, []schema.LabeledRow) {}
	if l.mgr == nil {
		return ctx, noop
	}
	store := l.mgr.GetRunStore()
	if store == nil {
		return ctx, noop
	}

	configParams := map[string]any{
		"source":      table.Source,
		"source_hash": table.SourceHash,
		"clusters":    l.cfg.Clusters,
		"seed":        l.cfg.Seed,
		"restarts":    l.cfg.Restarts,
		"max_iter":    l.cfg.MaxIter,
		"artifacts":   l.cfg.ArtifactsDir,
	}
	runID, err := store.BeginRun(time.Now(), configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return ctx, noop
	}
	ctx = withRunID(ctx, runID)

	return ctx, func(outcome schema.SaveOutcome, rows []schema.LabeledRow) {
		if len(rows) > 0 {
			if err := store.RecordAssignments(runID, rows); err != nil {
				contract.LogWarn(fmt.Sprintf("Run tracking failed for run %d", runID), err)
			}
		}
		if err := store.EndRun(runID, time.Now(), len(rows), outcome); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}
}

// summarize computes per-cluster sizes and member means in original stat units.
func summarize(rows []schema.LabeledRow, k int, profiles ProfileMap) []schema.ClusterSummary {
	members := make([][][]float64, k)
	totals := make([][]float64, k)
	for _, r := range rows {
		if r.Cluster < 0 || r.Cluster >= k {
			continue
		}
		members[r.Cluster] = append(members[r.Cluster], r.Stats.Floats())
		totals[r.Cluster] = append(totals[r.Cluster], float64(r.Stats.Total()))
	}

	out := make([]schema.ClusterSummary, k)
	col := make([]float64, 0, len(rows))
	for id := range k {
		label, _ := profiles.LabelOrPlaceholder(id)
		s := schema.ClusterSummary{Cluster: id, Profile: label, Size: len(members[id])}
		if s.Size > 0 {
			s.Centroid = make([]float64, schema.NumStats)
			for j := range schema.NumStats {
				col = col[:0]
				for _, m := range members[id] {
					col = append(col, m[j])
				}
				s.Centroid[j] = stat.Mean(col, nil)
			}
			s.AvgTotal = stat.Mean(totals[id], nil)
		}
		out[id] = s
	}
	return out
}
