// Package core has the pipeline logic: feature standardization, cluster
// labeling with idempotent persistence, and the thin consumers built on top.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/pokestats/internal/charts"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/internal/dataset"
	"github.com/huangsam/pokestats/internal/outwriter"
	"github.com/huangsam/pokestats/schema"
)

// ExecutorFunc defines the function signature for executing a command.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteCluster runs the Cluster Labeler on the input table and prints the outcome.
func ExecuteCluster(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		outwriter.LogRunHeader(cfg)
	}
	run, err := RunClustering(ctx, NewSession(cfg, mgr))
	if err != nil {
		return err
	}
	return outwriter.WriteClusterResult(run.Result, cfg, time.Since(start))
}

// RunClustering loads the session table, runs the labeler on it and installs
// the verified bundle in the session.
func RunClustering(ctx context.Context, s *Session) (*LabelRun, error) {
	table, err := s.Table()
	if err != nil {
		return nil, err
	}
	run, err := NewClusterLabeler(s.Config(), s.mgr).Run(ctx, table)
	if err != nil {
		return nil, err
	}
	s.SetLabeled(run.Bundle)
	return run, nil
}

// ExecuteTable prints the labeled table narrowed by the configured filters.
func ExecuteTable(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	s := NewSession(cfg, mgr)
	rows, labeled, err := FilteredRows(s, cfg.ResultLimit)
	if err != nil {
		return err
	}
	if !labeled && !shouldSuppressHeader(ctx) {
		contract.LogWarn("No artifact bundle found", fmt.Errorf("showing unlabeled rows from %s, run 'pokestats cluster' first", cfg.DataPath))
	}
	if err := outwriter.WriteLabeledRows(rows, labeled, cfg, time.Since(start)); err != nil {
		return err
	}
	if !cfg.Describe {
		return nil
	}
	records, err := describe(rows)
	if err != nil {
		return err
	}
	return outwriter.WriteDescribe(records, cfg)
}

// FilteredRows applies the session filters and limit to its labeled rows.
func FilteredRows(s *Session, limit int) ([]schema.LabeledRow, bool, error) {
	rows, labeled, err := s.LabeledRows()
	if err != nil {
		return nil, false, err
	}
	explorer, err := dataset.NewExplorer(rows)
	if err != nil {
		return nil, false, err
	}
	filtered, err := explorer.Apply(s.Config().Filters, limit)
	if err != nil {
		return nil, false, err
	}
	return filtered, labeled, nil
}

func describe(rows []schema.LabeledRow) ([][]string, error) {
	if len(rows) == 0 {
		return nil, &contract.EmptyInputError{}
	}
	explorer, err := dataset.NewExplorer(rows)
	if err != nil {
		return nil, err
	}
	return explorer.Describe()
}

// ExecuteCompare prints the selected pair side by side.
func ExecuteCompare(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	if len(cfg.Selection) != 2 {
		return errors.New("compare needs exactly two names")
	}
	result, err := ComparePair(NewSession(cfg, mgr), cfg.Selection[0], cfg.Selection[1])
	if err != nil {
		return err
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogCompareHeader(result)
	}
	return outwriter.WriteComparison(result, cfg, time.Since(start))
}

// ComparePair compares two named entities of the session.
func ComparePair(s *Session, left, right string) (*schema.ComparisonResult, error) {
	s = s.WithSelection(left, right)
	rows, labeled, err := s.LabeledRows()
	if err != nil {
		return nil, err
	}
	return Compare(rows, left, right, labeled)
}

// ExecuteClassify trains the Legendary classifier and prints its report.
func ExecuteClassify(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, names []string) error {
	start := time.Now()
	table, err := NewSession(cfg, mgr).Table()
	if err != nil {
		return err
	}
	report, err := TrainLegendary(table, cfg, names)
	if err != nil {
		return err
	}
	return outwriter.WriteClassifierReport(report, cfg, time.Since(start))
}

// ExecuteProject prints the 2-D PCA projection.
func ExecuteProject(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	s := NewSession(cfg, mgr)
	rows, _, err := s.LabeledRows()
	if err != nil {
		return err
	}
	proj, err := Project(rows, s.Profiles())
	if err != nil {
		return err
	}
	return outwriter.WriteProjection(proj, cfg, time.Since(start))
}

// ExecuteElbow prints inertia against k for k = 1..max-k.
func ExecuteElbow(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	table, err := NewSession(cfg, mgr).Table()
	if err != nil {
		return err
	}
	data, _, err := Standardize(table, schema.StatColumns)
	if err != nil {
		return err
	}
	points, err := Elbow(ctx, data, cfg.MaxK, cfg.Seed, cfg.Restarts, cfg.MaxIter)
	if err != nil {
		return err
	}
	return outwriter.WriteElbow(points, cfg, time.Since(start))
}

// ExecuteAssign scores one raw stat point against the persisted bundle.
func ExecuteAssign(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, stats schema.Stats) error {
	a, err := AssignPoint(NewSession(cfg, mgr), stats)
	if err != nil {
		return err
	}
	return outwriter.WriteAssignment(a, cfg)
}

// AssignPoint standardizes stats with the persisted scaler and returns the
// nearest cluster with its display profile.
func AssignPoint(s *Session, stats schema.Stats) (*schema.Assignment, error) {
	for i, v := range stats {
		if v < 0 {
			return nil, fmt.Errorf("%s must not be negative (received %d)", schema.StatColumns[i], v)
		}
	}
	b, err := s.Bundle()
	if err != nil {
		return nil, fmt.Errorf("no usable artifact bundle in %s: %w", s.Config().ArtifactsDir, err)
	}
	id, z, err := b.Assign(stats)
	if err != nil {
		return nil, err
	}
	centroid, err := b.Scaler().Inverse(b.Model().Centroids[id])
	if err != nil {
		return nil, err
	}
	label, _ := s.Profiles().LabelOrPlaceholder(id)
	return &schema.Assignment{
		Stats:        stats,
		Standardized: z,
		Centroid:     centroid,
		Cluster:      id,
		Profile:      label,
		BundleID:     b.Manifest().BundleID,
	}, nil
}

// ExecuteReport renders the HTML chart report to the output file, or serves it.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	report, err := NewReportBuilder(NewSession(cfg, mgr)).
		WithComparison().  // Selected pair, when given
		WithCorrelation(). // Stat correlation heatmap
		WithProfiles().    // Profile distribution
		WithProjection().  // PCA scatter
		Build()
	if err != nil {
		return err
	}
	if cfg.ServeAddr != "" {
		return charts.Serve(ctx, cfg.ServeAddr, report)
	}
	return outwriter.WriteReport(report, cfg)
}
