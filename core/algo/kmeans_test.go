package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// blobs returns three well separated groups of four points each.
func blobs() *mat.Dense {
	return mat.NewDense(12, 2, []float64{
		0, 0, 0.1, 0.2, -0.1, 0.1, 0.2, -0.1,
		10, 10, 10.2, 9.9, 9.8, 10.1, 10.1, 10.2,
		-10, 10, -10.1, 9.8, -9.9, 10.2, -10.2, 10.1,
	})
}

func TestKMeansSeparatesBlobs(t *testing.T) {
	km := KMeans{K: 3, Seed: 42, Restarts: 5, MaxIter: 100}
	model, labels, err := km.Fit(blobs())
	require.NoError(t, err)
	require.Len(t, labels, 12)

	for g := range 3 {
		first := labels[g*4]
		for i := 1; i < 4; i++ {
			assert.Equal(t, first, labels[g*4+i], "group %d must share a cluster", g)
		}
	}
	assert.NotEqual(t, labels[0], labels[4])
	assert.NotEqual(t, labels[4], labels[8])
	assert.NotEqual(t, labels[0], labels[8])

	assert.Equal(t, 3, model.K)
	assert.Len(t, model.Centroids, 3)
	assert.Less(t, model.Inertia, 1.0)
}

func TestKMeansDeterministic(t *testing.T) {
	km := KMeans{K: 3, Seed: 7, Restarts: 4, MaxIter: 50}
	m1, l1, err := km.Fit(blobs())
	require.NoError(t, err)
	m2, l2, err := km.Fit(blobs())
	require.NoError(t, err)

	assert.Equal(t, l1, l2)
	assert.Equal(t, m1.Centroids, m2.Centroids)
	assert.Equal(t, m1.Inertia, m2.Inertia)
	assert.Equal(t, m1.Restart, m2.Restart)
}

func TestKMeansLabelsMatchAssign(t *testing.T) {
	data := blobs()
	km := KMeans{K: 3, Seed: 1, Restarts: 3, MaxIter: 1}
	model, labels, err := km.Fit(data)
	require.NoError(t, err)

	predicted, err := model.Predict(data)
	require.NoError(t, err)
	assert.Equal(t, labels, predicted)

	_, err = model.Predict(mat.NewDense(1, 1, []float64{0}))
	assert.Error(t, err)
}

func TestKMeansIdenticalRows(t *testing.T) {
	data := mat.NewDense(2, 3, []float64{0, 0, 0, 0, 0, 0})
	km := KMeans{K: 2, Seed: 42, Restarts: 10, MaxIter: 300}
	model, labels, err := km.Fit(data)
	require.NoError(t, err)

	assert.Equal(t, labels[0], labels[1])
	assert.Equal(t, 0.0, model.Inertia)
}

func TestKMeansLabelsInRange(t *testing.T) {
	data := mat.NewDense(6, 1, []float64{1, 1, 1, 5, 5, 9})
	for k := 1; k <= 6; k++ {
		_, labels, err := KMeans{K: k, Seed: 3, Restarts: 2, MaxIter: 20}.Fit(data)
		require.NoError(t, err)
		for _, l := range labels {
			assert.GreaterOrEqual(t, l, 0)
			assert.Less(t, l, k)
		}
	}
}

func TestKMeansErrors(t *testing.T) {
	_, _, err := KMeans{K: 0}.Fit(blobs())
	assert.Error(t, err)

	_, _, err = KMeans{K: 3}.Fit(mat.NewDense(2, 2, nil))
	assert.Error(t, err)
}

func TestAssignTiesAndDims(t *testing.T) {
	m := &PartitionModel{K: 2, Centroids: [][]float64{{-1, 0}, {1, 0}}}

	id, err := m.Assign([]float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, id, "ties resolve to the lowest id")

	id, err = m.Assign([]float64{0.9, 0})
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	_, err = m.Assign([]float64{1})
	assert.Error(t, err)

	_, err = (&PartitionModel{}).Assign([]float64{1})
	assert.Error(t, err)
}

func TestMoreRestartsNeverWorse(t *testing.T) {
	data := mat.NewDense(9, 1, []float64{1, 2, 3, 10, 11, 12, 20, 21, 40})
	one, _, err := KMeans{K: 3, Seed: 5, Restarts: 1, MaxIter: 100}.Fit(data)
	require.NoError(t, err)
	many, _, err := KMeans{K: 3, Seed: 5, Restarts: 10, MaxIter: 100}.Fit(data)
	require.NoError(t, err)

	assert.LessOrEqual(t, many.Inertia, one.Inertia)
}
