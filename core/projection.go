package core

import (
	"github.com/huangsam/pokestats/core/algo"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/schema"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Project standardizes the six stats of rows and projects them onto the first
// two principal components.
func Project(rows []schema.LabeledRow, profiles ProfileMap) (*schema.Projection, error) {
	data, err := standardizedRows(rows)
	if err != nil {
		return nil, err
	}
	proj, err := algo.ProjectPCA(data, 2)
	if err != nil {
		return nil, err
	}

	out := &schema.Projection{Points: make([]schema.ProjectedPoint, len(rows))}
	copy(out.ExplainedVariance[:], proj.Explained)
	for i, r := range rows {
		out.Points[i] = schema.ProjectedPoint{
			Name:    r.Name,
			X:       proj.Coords.At(i, 0),
			Y:       proj.Coords.At(i, 1),
			Cluster: r.Cluster,
			Profile: displayProfile(r, profiles),
		}
	}
	return out, nil
}

// Correlation returns the Pearson correlation matrix of the six stats.
func Correlation(rows []schema.LabeledRow) ([][]float64, error) {
	raw, err := rawRows(rows)
	if err != nil {
		return nil, err
	}
	cols := make([][]float64, schema.NumStats)
	for j := range schema.NumStats {
		cols[j] = mat.Col(nil, j, raw)
	}
	out := make([][]float64, schema.NumStats)
	for i := range schema.NumStats {
		out[i] = make([]float64, schema.NumStats)
		for j := range schema.NumStats {
			if i == j {
				out[i][j] = 1
				continue
			}
			c := stat.Correlation(cols[i], cols[j], nil)
			out[i][j] = finite(c) // constant columns give NaN
		}
	}
	return out, nil
}

// standardizedRows z-scores the stats of labeled rows.
func standardizedRows(rows []schema.LabeledRow) (*mat.Dense, error) {
	raw, err := rawRows(rows)
	if err != nil {
		return nil, err
	}
	scaler, err := algo.FitScaler(schema.StatColumns, raw)
	if err != nil {
		return nil, err
	}
	return scaler.TransformMatrix(raw)
}

func rawRows(rows []schema.LabeledRow) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, &contract.EmptyInputError{}
	}
	data := mat.NewDense(len(rows), schema.NumStats, nil)
	for i, r := range rows {
		data.SetRow(i, r.Stats.Floats())
	}
	return data, nil
}

// displayProfile prefers the persisted label, then the profile map, then the placeholder.
func displayProfile(r schema.LabeledRow, profiles ProfileMap) string {
	if r.Profile != "" {
		return r.Profile
	}
	if r.Cluster < 0 {
		return ""
	}
	label, _ := profiles.LabelOrPlaceholder(r.Cluster)
	return label
}
