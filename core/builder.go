package core

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/schema"
)

// ReportBuilder assembles the chart report from a session step by step.
type ReportBuilder struct {
	session *Session
	report  *schema.ReportData
	rows    []schema.LabeledRow
	err     error
}

// NewReportBuilder is the starting point for building a report. It loads the
// labeled rows once for every later step.
func NewReportBuilder(s *Session) *ReportBuilder {
	b := &ReportBuilder{
		session: s,
		report:  &schema.ReportData{Title: "Pokémon stats report", Columns: schema.StatColumns},
	}
	b.rows, b.report.Labeled, b.err = s.LabeledRows()
	return b
}

// WithComparison adds the selected pair, if any.
func (b *ReportBuilder) WithComparison() *ReportBuilder {
	sel := b.session.Config().Selection
	if b.err != nil || len(sel) != 2 {
		return b
	}
	c, err := Compare(b.rows, sel[0], sel[1], b.report.Labeled)
	if err != nil {
		b.err = err
		return b
	}
	b.report.Comparison = c
	b.report.Title = fmt.Sprintf("%s vs %s", c.Left.Name, c.Right.Name)
	return b
}

// WithCorrelation adds the stat correlation matrix.
func (b *ReportBuilder) WithCorrelation() *ReportBuilder {
	if b.err != nil {
		return b
	}
	b.report.Correlation, b.err = Correlation(b.rows)
	return b
}

// WithProfiles adds the profile distribution when rows are labeled.
func (b *ReportBuilder) WithProfiles() *ReportBuilder {
	if b.err != nil || !b.report.Labeled {
		return b
	}
	counts := make(map[string]int)
	profiles := b.session.Profiles()
	for _, r := range b.rows {
		counts[displayProfile(r, profiles)]++
	}
	for p, n := range counts {
		b.report.Profiles = append(b.report.Profiles, schema.ProfileShare{Profile: p, Count: n})
	}
	slices.SortFunc(b.report.Profiles, func(x, y schema.ProfileShare) int {
		return cmp.Or(cmp.Compare(y.Count, x.Count), cmp.Compare(x.Profile, y.Profile))
	})
	return b
}

// WithProjection adds the PCA scatter. Tables too small to project are skipped.
func (b *ReportBuilder) WithProjection() *ReportBuilder {
	if b.err != nil {
		return b
	}
	proj, err := Project(b.rows, b.session.Profiles())
	if err != nil {
		contract.LogWarn("Skipping projection", err)
		return b
	}
	b.report.Projection = proj
	return b
}

// Build returns the report or the first error of the chain.
func (b *ReportBuilder) Build() (*schema.ReportData, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.report, nil
}
