package core

import (
	"fmt"

	"github.com/huangsam/pokestats/core/algo"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/schema"
	"gonum.org/v1/gonum/mat"
)

// Standardize selects the stat columns in the given order and z-scores them.
// Rows of the returned matrix follow the input order of the table.
func Standardize(table *schema.EntityTable, columns []string) (*mat.Dense, *algo.Scaler, error) {
	raw, err := statMatrix(table, columns)
	if err != nil {
		return nil, nil, err
	}
	scaler, err := algo.FitScaler(columns, raw)
	if err != nil {
		return nil, nil, err
	}
	z, err := scaler.TransformMatrix(raw)
	if err != nil {
		return nil, nil, err
	}
	return z, scaler, nil
}

// statMatrix builds the raw rows x columns matrix of stats.
func statMatrix(table *schema.EntityTable, columns []string) (*mat.Dense, error) {
	if table == nil || table.Len() == 0 {
		source := ""
		if table != nil {
			source = table.Source
		}
		return nil, &contract.EmptyInputError{Source: source}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no feature columns selected")
	}
	idx := make([]int, len(columns))
	for j, col := range columns {
		i := schema.StatIndex(col)
		if i < 0 {
			return nil, &contract.MissingColumnError{Column: col, Source: table.Source}
		}
		idx[j] = i
	}

	data := mat.NewDense(table.Len(), len(columns), nil)
	for r, p := range table.Entities {
		for j, i := range idx {
			data.Set(r, j, float64(p.Stats[i]))
		}
	}
	return data, nil
}
