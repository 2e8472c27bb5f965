package core

import (
	"context"
	"runtime"
	"sync"

	"github.com/huangsam/pokestats/core/algo"
	"github.com/huangsam/pokestats/schema"
	"gonum.org/v1/gonum/mat"
)

// Elbow fits k = 1..maxK on the standardized matrix and returns the best
// inertia per k. Fits run on a bounded worker pool; results keep k order.
func Elbow(ctx context.Context, data *mat.Dense, maxK int, seed int64, restarts, maxIter int) ([]schema.ElbowPoint, error) {
	rows, _ := data.Dims()
	maxK = min(maxK, rows)

	kCh := make(chan int, maxK)
	points := make([]schema.ElbowPoint, maxK)
	errs := make([]error, maxK)
	var wg sync.WaitGroup

	// Start worker pool
	for range min(runtime.NumCPU(), maxK) {
		wg.Go(func() {
			for k := range kCh {
				if err := ctx.Err(); err != nil {
					errs[k-1] = err
					continue
				}
				model, _, err := algo.KMeans{K: k, Seed: seed, Restarts: restarts, MaxIter: maxIter}.Fit(data)
				if err != nil {
					errs[k-1] = err
					continue
				}
				// Each worker writes a unique index
				points[k-1] = schema.ElbowPoint{K: k, Inertia: model.Inertia}
			}
		})
	}

	for k := 1; k <= maxK; k++ {
		kCh <- k
	}
	close(kCh)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return points, nil
}
