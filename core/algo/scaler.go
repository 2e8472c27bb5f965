// Package algo holds the numeric building blocks of the pipeline: feature
// scaling, k-means partitioning, principal components and the forest adapter.
package algo

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes columns to zero mean and unit population variance.
type Scaler struct {
	Columns []string  `json:"columns"`
	Means   []float64 `json:"means"`
	Scales  []float64 `json:"scales"` // Population std dev, 1 for constant columns
}

// FitScaler computes per-column population mean and standard deviation.
// A constant column gets a scale of 1 so it standardizes to zero instead of NaN.
func FitScaler(columns []string, data *mat.Dense) (*Scaler, error) {
	rows, cols := data.Dims()
	if rows == 0 {
		return nil, fmt.Errorf("cannot fit scaler on zero rows")
	}
	if len(columns) != cols {
		return nil, fmt.Errorf("scaler has %d column names for %d columns", len(columns), cols)
	}

	s := &Scaler{
		Columns: append([]string(nil), columns...),
		Means:   make([]float64, cols),
		Scales:  make([]float64, cols),
	}
	col := make([]float64, rows)
	for j := range cols {
		mat.Col(col, j, data)
		mean, std := stat.PopMeanStdDev(col, nil)
		s.Means[j] = mean
		if std == 0 {
			std = 1
		}
		s.Scales[j] = std
	}
	return s, nil
}

// Dim returns the number of features the scaler expects.
func (s *Scaler) Dim() int {
	return len(s.Means)
}

// Transform standardizes a single raw point.
func (s *Scaler) Transform(point []float64) ([]float64, error) {
	if len(point) != s.Dim() {
		return nil, fmt.Errorf("point has %d features, scaler expects %d", len(point), s.Dim())
	}
	out := make([]float64, len(point))
	for j, v := range point {
		out[j] = (v - s.Means[j]) / s.Scales[j]
	}
	return out, nil
}

// TransformMatrix standardizes every row of data into a new matrix.
func (s *Scaler) TransformMatrix(data *mat.Dense) (*mat.Dense, error) {
	rows, cols := data.Dims()
	if cols != s.Dim() {
		return nil, fmt.Errorf("matrix has %d columns, scaler expects %d", cols, s.Dim())
	}
	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return (v - s.Means[j]) / s.Scales[j]
	}, data)
	return out, nil
}

// Inverse maps a standardized point back to raw units.
func (s *Scaler) Inverse(point []float64) ([]float64, error) {
	if len(point) != s.Dim() {
		return nil, fmt.Errorf("point has %d features, scaler expects %d", len(point), s.Dim())
	}
	out := make([]float64, len(point))
	for j, v := range point {
		out[j] = v*s.Scales[j] + s.Means[j]
	}
	return out, nil
}
