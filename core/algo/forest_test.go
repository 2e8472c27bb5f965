package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separable returns two classes split cleanly on the first feature.
func separable() ([][]float64, []string) {
	var x [][]float64
	var y []string
	for i := range 20 {
		v := float64(i)
		x = append(x, []float64{v, float64(i % 3)})
		if i < 10 {
			y = append(y, "False")
		} else {
			y = append(y, "True")
		}
	}
	return x, y
}

func TestForestFitPredict(t *testing.T) {
	x, y := separable()
	f := NewForest(10, 2, []string{"a", "b"}, "Legendary")
	require.NoError(t, f.Fit(x, y))

	pred, err := f.Predict([][]float64{{0, 0}, {19, 1}})
	require.NoError(t, err)
	require.Len(t, pred, 2)
	for _, p := range pred {
		assert.Contains(t, []string{"True", "False"}, p)
	}
}

func TestForestEvaluate(t *testing.T) {
	x, y := separable()
	f := NewForest(10, 2, []string{"a", "b"}, "Legendary")
	require.NoError(t, f.Fit(x, y))

	cm, pred, err := f.Evaluate(x, y)
	require.NoError(t, err)
	require.Len(t, pred, len(x))

	total := 0
	for _, row := range cm {
		for _, n := range row {
			total += n
		}
	}
	assert.Equal(t, len(x), total)
}

func TestForestErrors(t *testing.T) {
	f := NewForest(5, 1, []string{"a"}, "c")

	_, err := f.Predict([][]float64{{1}})
	assert.Error(t, err, "untrained forest cannot predict")

	assert.Error(t, f.Fit(nil, nil))
	assert.Error(t, f.Fit([][]float64{{1}}, []string{"a", "b"}))
	assert.Error(t, f.Fit([][]float64{{1, 2}}, []string{"a"}))
}
