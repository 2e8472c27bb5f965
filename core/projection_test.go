package core

import (
	"context"
	"testing"

	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestProjectUnlabeled(t *testing.T) {
	rows := Unlabeled(sampleTable(t))
	proj, err := Project(rows, NewProfileMap(contract.DefaultProfileLabels))
	require.NoError(t, err)

	require.Len(t, proj.Points, 40)
	assert.Equal(t, "Bulbasaur", proj.Points[0].Name)
	assert.Equal(t, -1, proj.Points[0].Cluster)
	assert.Empty(t, proj.Points[0].Profile)

	ev := proj.ExplainedVariance
	assert.Greater(t, ev[0], 0.0)
	assert.GreaterOrEqual(t, ev[0], ev[1])
	assert.LessOrEqual(t, ev[0]+ev[1], 1.0+1e-9)
}

func TestProjectProfiles(t *testing.T) {
	rows := []schema.LabeledRow{
		{Pokemon: schema.Pokemon{Name: "a", Stats: schema.Stats{1, 2, 3, 4, 5, 6}}, Cluster: 0, Profile: "Persisted"},
		{Pokemon: schema.Pokemon{Name: "b", Stats: schema.Stats{6, 5, 4, 3, 2, 1}}, Cluster: 1},
		{Pokemon: schema.Pokemon{Name: "c", Stats: schema.Stats{3, 3, 3, 4, 4, 4}}, Cluster: 7},
	}
	proj, err := Project(rows, NewProfileMap(contract.DefaultProfileLabels))
	require.NoError(t, err)
	assert.Equal(t, "Persisted", proj.Points[0].Profile)
	assert.Equal(t, "Tank", proj.Points[1].Profile)
	assert.Equal(t, "Cluster 7", proj.Points[2].Profile)

	_, err = Project(nil, nil)
	assert.ErrorIs(t, err, contract.ErrEmptyInput)
}

func TestCorrelation(t *testing.T) {
	corr, err := Correlation(Unlabeled(sampleTable(t)))
	require.NoError(t, err)
	require.Len(t, corr, schema.NumStats)

	for i := range schema.NumStats {
		assert.Equal(t, 1.0, corr[i][i])
		for j := range schema.NumStats {
			assert.InDelta(t, corr[i][j], corr[j][i], 1e-12)
			assert.GreaterOrEqual(t, corr[i][j], -1.0-1e-9)
			assert.LessOrEqual(t, corr[i][j], 1.0+1e-9)
		}
	}
}

func TestCorrelationConstantColumn(t *testing.T) {
	rows := []schema.LabeledRow{
		{Pokemon: schema.Pokemon{Stats: schema.Stats{10, 1, 2, 3, 4, 5}}},
		{Pokemon: schema.Pokemon{Stats: schema.Stats{10, 2, 4, 6, 8, 10}}},
	}
	corr, err := Correlation(rows)
	require.NoError(t, err)
	assert.Equal(t, 0.0, corr[0][1])
	assert.InDelta(t, 1.0, corr[1][2], 1e-12)
}

func TestElbow(t *testing.T) {
	data, _, err := Standardize(sampleTable(t), schema.StatColumns)
	require.NoError(t, err)

	points, err := Elbow(context.Background(), data, 6, 42, 3, 100)
	require.NoError(t, err)
	require.Len(t, points, 6)
	for i, p := range points {
		assert.Equal(t, i+1, p.K)
		assert.GreaterOrEqual(t, p.Inertia, 0.0)
	}
	// One cluster holds all variance: 40 rows x 6 unit-variance columns
	assert.InDelta(t, 240.0, points[0].Inertia, 1e-6)
	assert.Less(t, points[5].Inertia, points[0].Inertia)

	again, err := Elbow(context.Background(), data, 6, 42, 3, 100)
	require.NoError(t, err)
	assert.Equal(t, points, again)
}

func TestElbowCapsAtRows(t *testing.T) {
	data := mat.NewDense(3, 2, []float64{0, 0, 1, 1, 5, 5})
	points, err := Elbow(context.Background(), data, 10, 1, 1, 50)
	require.NoError(t, err)
	assert.Len(t, points, 3)
	assert.InDelta(t, 0.0, points[2].Inertia, 1e-12)
}

func TestElbowCanceled(t *testing.T) {
	data, _, err := Standardize(sampleTable(t), schema.StatColumns)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Elbow(ctx, data, 4, 42, 1, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReportBuilder(t *testing.T) {
	cfg := testConfig(t)
	cfg.Selection = []string{"Onix", "Mew"}
	s := NewSession(cfg, noStores())

	t.Run("unlabeled", func(t *testing.T) {
		report, err := NewReportBuilder(s).WithComparison().WithCorrelation().WithProfiles().WithProjection().Build()
		require.NoError(t, err)
		assert.False(t, report.Labeled)
		assert.Equal(t, "Onix vs Mew", report.Title)
		require.NotNil(t, report.Comparison)
		assert.Len(t, report.Correlation, schema.NumStats)
		assert.Empty(t, report.Profiles, "no profiles without a bundle")
		require.NotNil(t, report.Projection)
	})

	t.Run("labeled", func(t *testing.T) {
		_, err := RunClustering(context.Background(), NewSession(cfg, noStores()))
		require.NoError(t, err)

		report, err := NewReportBuilder(NewSession(cfg, noStores())).WithProfiles().Build()
		require.NoError(t, err)
		assert.True(t, report.Labeled)
		total := 0
		for i, p := range report.Profiles {
			total += p.Count
			if i > 0 {
				assert.LessOrEqual(t, p.Count, report.Profiles[i-1].Count)
			}
		}
		assert.Equal(t, 40, total)
	})

	t.Run("unknown selection", func(t *testing.T) {
		_, err := NewReportBuilder(s.WithSelection("Onix", "Agumon")).WithComparison().WithCorrelation().Build()
		assert.ErrorContains(t, err, "Agumon")
	})
}
