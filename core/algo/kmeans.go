package algo

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// KMeans configures Lloyd's algorithm with k-means++ seeding and restarts.
type KMeans struct {
	K        int
	Seed     int64
	Restarts int
	MaxIter  int
}

// PartitionModel is a fitted k-means model.
type PartitionModel struct {
	K          int         `json:"k"`
	Centroids  [][]float64 `json:"centroids"`
	Inertia    float64     `json:"inertia"`
	Iterations int         `json:"iterations"`
	Restart    int         `json:"restart"` // Index of the winning restart
}

// Fit partitions the rows of data into K clusters and returns the best model
// across all restarts together with the cluster id of every row.
// Identical inputs and parameters always produce identical ids.
func (km KMeans) Fit(data *mat.Dense) (*PartitionModel, []int, error) {
	rows, _ := data.Dims()
	if km.K < 1 {
		return nil, nil, fmt.Errorf("k must be at least 1 (received %d)", km.K)
	}
	if rows < km.K {
		return nil, nil, fmt.Errorf("cannot form %d clusters from %d rows", km.K, rows)
	}
	restarts := max(km.Restarts, 1)
	maxIter := max(km.MaxIter, 1)

	points := make([][]float64, rows)
	for i := range points {
		points[i] = mat.Row(nil, i, data)
	}

	var best *PartitionModel
	var bestLabels []int
	for r := range restarts {
		rng := rand.New(rand.NewPCG(uint64(km.Seed), uint64(r)))
		centers := seedPlusPlus(points, km.K, rng)
		labels, iters := lloyd(points, centers, maxIter)
		inertia := inertiaOf(points, centers, labels)

		// Strictly lower wins so ties keep the earlier restart
		if best == nil || inertia < best.Inertia {
			best = &PartitionModel{
				K:          km.K,
				Centroids:  centers,
				Inertia:    inertia,
				Iterations: iters,
				Restart:    r,
			}
			bestLabels = labels
		}
	}
	return best, bestLabels, nil
}

// Assign returns the id of the nearest centroid. Ties resolve to the lowest id.
func (m *PartitionModel) Assign(point []float64) (int, error) {
	if len(m.Centroids) == 0 {
		return 0, fmt.Errorf("partition model has no centroids")
	}
	if len(point) != len(m.Centroids[0]) {
		return 0, fmt.Errorf("point has %d features, model expects %d", len(point), len(m.Centroids[0]))
	}
	return nearest(point, m.Centroids), nil
}

// Predict assigns every row of data.
func (m *PartitionModel) Predict(data *mat.Dense) ([]int, error) {
	rows, _ := data.Dims()
	out := make([]int, rows)
	for i := range rows {
		id, err := m.Assign(mat.Row(nil, i, data))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = id
	}
	return out, nil
}

// seedPlusPlus picks k initial centers with probability proportional to the
// squared distance from the nearest center already chosen.
func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	centers := make([][]float64, 0, k)
	centers = append(centers, clone(points[rng.IntN(n)]))

	dist := make([]float64, n)
	for len(centers) < k {
		for i, p := range points {
			dist[i] = sqDist(p, centers[nearest(p, centers)])
		}
		total := floats.Sum(dist)

		idx := rng.IntN(n)
		if total > 0 {
			target := rng.Float64() * total
			cum := 0.0
			for i, d := range dist {
				if d == 0 {
					continue
				}
				idx = i
				cum += d
				if cum >= target {
					break
				}
			}
		}
		centers = append(centers, clone(points[idx]))
	}
	return centers
}

// lloyd alternates assignment and update steps until assignments are stable
// or maxIter is reached. centers is updated in place. The returned labels are
// always the nearest-centroid assignment for the final centers.
func lloyd(points, centers [][]float64, maxIter int) ([]int, int) {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}

	iters := 0
	for iters < maxIter {
		iters++
		if !assignAll(points, centers, labels) {
			return labels, iters
		}
		updateCenters(points, centers, labels)
	}
	assignAll(points, centers, labels)
	return labels, iters
}

// assignAll sets each label to its nearest center and reports whether any changed.
func assignAll(points, centers [][]float64, labels []int) bool {
	changed := false
	for i, p := range points {
		id := nearest(p, centers)
		if labels[i] != id {
			labels[i] = id
			changed = true
		}
	}
	return changed
}

// updateCenters moves every center to the mean of its members. An empty
// cluster is re-seeded with the point farthest from its own center.
func updateCenters(points, centers [][]float64, labels []int) {
	dim := len(points[0])
	sums := make([][]float64, len(centers))
	counts := make([]int, len(centers))
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	for i, p := range points {
		floats.Add(sums[labels[i]], p)
		counts[labels[i]]++
	}

	taken := make(map[int]bool)
	for c := range centers {
		if counts[c] == 0 {
			far := farthestPoint(points, centers, labels, taken)
			taken[far] = true
			copy(centers[c], points[far])
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
		copy(centers[c], sums[c])
	}
}

// farthestPoint returns the index of the point farthest from its assigned center.
func farthestPoint(points, centers [][]float64, labels []int, taken map[int]bool) int {
	best, bestDist := 0, -1.0
	for i, p := range points {
		if taken[i] {
			continue
		}
		if d := sqDist(p, centers[labels[i]]); d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// inertiaOf is the sum of squared distances from each point to its center.
func inertiaOf(points, centers [][]float64, labels []int) float64 {
	total := 0.0
	for i, p := range points {
		total += sqDist(p, centers[labels[i]])
	}
	return total
}

// nearest returns the index of the closest center, lowest index on ties.
func nearest(p []float64, centers [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, center := range centers {
		if d := sqDist(p, center); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(p []float64) []float64 {
	return append([]float64(nil), p...)
}
