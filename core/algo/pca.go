package algo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Projection is data projected onto its leading principal components.
type Projection struct {
	Coords    *mat.Dense // rows x components
	Explained []float64  // Ratio of total variance per component
}

// ProjectPCA projects the rows of data onto the first n principal components.
// Component signs are normalized so the largest loading of each component is
// positive, which keeps repeated runs visually stable.
func ProjectPCA(data *mat.Dense, n int) (*Projection, error) {
	rows, cols := data.Dims()
	if rows < 2 {
		return nil, fmt.Errorf("principal components need at least 2 rows (received %d)", rows)
	}
	if n < 1 || n > cols {
		return nil, fmt.Errorf("cannot project %d columns onto %d components", cols, n)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, fmt.Errorf("principal component decomposition failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	// Center the data so the scores match the decomposition
	centered := mat.DenseCopyOf(data)
	col := make([]float64, rows)
	for j := range cols {
		mat.Col(col, j, centered)
		mean := stat.Mean(col, nil)
		floats.AddConst(-mean, col)
		centered.SetCol(j, col)
	}

	basis := mat.DenseCopyOf(vecs.Slice(0, cols, 0, n))
	for c := range n {
		loading := mat.Col(nil, c, basis)
		if loading[floats.MaxIdx(absAll(loading))] < 0 {
			floats.Scale(-1, loading)
			basis.SetCol(c, loading)
		}
	}

	coords := mat.NewDense(rows, n, nil)
	coords.Mul(centered, basis)

	total := floats.Sum(vars)
	explained := make([]float64, n)
	if total > 0 {
		for c := range n {
			explained[c] = vars[c] / total
		}
	}
	return &Projection{Coords: coords, Explained: explained}, nil
}

func absAll(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Abs(x)
	}
	return out
}
