// Package main benchmarks the pokestats CLI against one or more datasets.
// Every command runs several times without the fit cache and several times
// with a fresh SQLite cache. The first cached run is reported as cold and the
// rest are averaged as warm. Results are written as CSV for documentation.
//
// Prerequisites:
// - pokestats binary installed and available in PATH
//
// Usage: go run benchmark/main.go <dataset.csv> [dataset.csv...]
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Datasets    []string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Commands    map[string][]string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("Usage: %s <dataset.csv> [dataset.csv...]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		Datasets:    os.Args[1:],
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Commands: map[string][]string{
			"cluster":  {"cluster"},
			"cluster6": {"cluster", "-k", "6", "--profile-labels", "A,B,C,D,E,F"},
			"elbow":    {"elbow", "--max-k", "8"},
			"classify": {"classify"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the pokestats binary and the datasets exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("pokestats"); err != nil {
		return fmt.Errorf("pokestats binary not found in PATH")
	}
	for _, dataset := range config.Datasets {
		if _, err := os.Stat(dataset); err != nil {
			return fmt.Errorf("dataset %s not readable: %w", dataset, err)
		}
	}
	return nil
}

// commandOrder keeps the summary stable.
var commandOrder = []string{"cluster", "cluster6", "elbow", "classify"}

// runBenchmarks executes all commands across configured datasets
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Datasets), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, dataset := range config.Datasets {
		fmt.Printf("Benchmarking %s\n", dataset)
		for _, name := range commandOrder {
			results = append(results, runBenchmarkSuite(config, dataset, name, config.Commands[name]))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, dataset, name string, args []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", strings.Join(args, " "), filepath.Base(dataset))

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		workDir, err := os.MkdirTemp("", "pokestats-bench-*")
		if err != nil {
			fmt.Printf("  failed to create work dir: %v\n", err)
			return 0, "ERROR"
		}
		defer func() { _ = os.RemoveAll(workDir) }()

		cold, times := runBenchmark(config, workDir, dataset, args, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:     filepath.Base(dataset),
		Command:     name,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a pokestats command multiple times in workDir and returns cold time and warm times.
// The SQLite cache lives in workDir so every suite starts cold.
func runBenchmark(config BenchmarkConfig, workDir, dataset string, args []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	data, err := filepath.Abs(dataset)
	if err != nil {
		return 0, nil
	}
	full := append([]string{}, args...)
	full = append(full, "--data", data, "--artifacts-dir", workDir, "--cache-backend", cacheBackend)
	if cacheBackend == "sqlite" {
		full = append(full, "--cache-db-connect", filepath.Join(workDir, "cache.db"))
	}

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		cmd := exec.CommandContext(ctx, "pokestats", full...)
		cmd.Dir = workDir
		output, cmdErr := cmd.CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()

		if cmdErr == nil {
			times = append(times, elapsed)
		} else if ctx.Err() == nil {
			fmt.Printf("  run failed: %v\n%s\n", cmdErr, output)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("pokestats_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, name := range commandOrder {
		fmt.Printf("%s:\n", name)
		for _, result := range results {
			if result.Command == name {
				fmt.Printf("  %-24s: No-cache: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
