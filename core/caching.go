package core

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/pokestats/core/algo"
	"github.com/huangsam/pokestats/internal/contract"
	"gonum.org/v1/gonum/mat"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheMaxAge is how long a cached fit stays valid.
const cacheMaxAge = 30 * 24 * time.Hour

// fitResult is what the fit cache stores for one (data, parameters) pair.
type fitResult struct {
	Scaler *algo.Scaler         `json:"scaler"`
	Model  *algo.PartitionModel `json:"model"`
	Labels []int                `json:"labels"`
}

// cachedFit returns the k-means fit for the standardized matrix, reusing a
// cached result when the source content and parameters match.
func cachedFit(mgr contract.CacheManager, sourceHash string, km algo.KMeans, scaler *algo.Scaler, data *mat.Dense) (*fitResult, bool, error) {
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetFitStore()
	}
	if store == nil {
		// Fallback to direct computation
		result, err := fit(km, scaler, data)
		return result, false, err
	}

	key := generateCacheKey(sourceHash, km, scaler.Columns)

	// Check for cache hit
	if result := checkCacheHit(store, key, data, km.K); result != nil {
		return result, true, nil
	}

	// Cache miss: compute and store
	result, err := computeAndStore(store, key, km, scaler, data)
	return result, false, err
}

// checkCacheHit attempts to retrieve and validate a cached result. The cached
// labels must be what the cached model predicts for data.
func checkCacheHit(store contract.CacheStore, key string, data *mat.Dense, k int) *fitResult {
	payload, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheMaxAge {
		return nil
	}
	var result fitResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil
	}
	rows, _ := data.Dims()
	if result.Model == nil || result.Scaler == nil || len(result.Labels) != rows || result.Model.K != k {
		return nil
	}
	predicted, err := result.Model.Predict(data)
	if err != nil || !slices.Equal(predicted, result.Labels) {
		return nil
	}
	return &result // Cache hit
}

// computeAndStore computes the fit and stores it in cache
func computeAndStore(store contract.CacheStore, key string, km algo.KMeans, scaler *algo.Scaler, data *mat.Dense) (*fitResult, error) {
	result, err := fit(km, scaler, data)
	if err != nil {
		return nil, err
	}

	// Store in cache; a failed write only costs a refit next time
	if payload, err := json.Marshal(result); err == nil {
		if err := store.Set(key, payload, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Cannot store fit in cache", err)
		}
	}
	return result, nil
}

func fit(km algo.KMeans, scaler *algo.Scaler, data *mat.Dense) (*fitResult, error) {
	model, labels, err := km.Fit(data)
	if err != nil {
		return nil, err
	}
	return &fitResult{Scaler: scaler, Model: model, Labels: labels}, nil
}

// generateCacheKey creates a unique key based on source content and fit parameters
func generateCacheKey(sourceHash string, km algo.KMeans, columns []string) string {
	key := fmt.Sprintf("%s:%d:%d:%d:%d:%s",
		sourceHash,
		km.K,
		km.Seed,
		km.Restarts,
		km.MaxIter,
		strings.Join(columns, "|"),
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
