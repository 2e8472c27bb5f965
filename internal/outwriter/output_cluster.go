package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/schema"
)

// errParquetUnsupported is returned by writers whose result is not a flat table.
func errParquetUnsupported(what string) error {
	return fmt.Errorf("parquet output is not supported for %s, use json or csv", what)
}

// WriteClusterResult outputs a labeler run, dispatching based on the output format configured.
func WriteClusterResult(result schema.ClusterRunResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON cluster result")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, clusterCSVHeader(), func(cw *csv.Writer) error {
				return writeCSVResultsForClusters(cw, result, fmtFloat, intFmt)
			})
		}, "Wrote CSV cluster result")
	case schema.ParquetOut:
		return errParquetUnsupported("cluster results")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeClusterTable(w, result, cfg, fmtFloat, duration)
		}, "Wrote cluster table")
	}
}

func clusterCSVHeader() []string {
	header := []string{"cluster", "profile", "size"}
	for _, col := range schema.StatColumns {
		header = append(header, "mean_"+col)
	}
	return append(header, "avg_total")
}

// writeCSVResultsForClusters writes one row per cluster.
func writeCSVResultsForClusters(w *csv.Writer, result schema.ClusterRunResult, fmtFloat func(float64) string, intFmt string) error {
	for _, c := range result.Clusters {
		rec := []string{
			strconv.Itoa(c.Cluster),
			c.Profile,
			fmt.Sprintf(intFmt, c.Size),
		}
		for _, v := range c.Centroid {
			rec = append(rec, fmtFloat(v))
		}
		rec = append(rec, fmtFloat(c.AvgTotal))
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeClusterTable prints the per-cluster summary and the save outcome.
func writeClusterTable(w io.Writer, result schema.ClusterRunResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	headers := append([]string{"Cluster", "Profile", "Size"}, schema.StatColumns...)
	headers = append(headers, "Avg Total")

	var data [][]string
	for _, c := range result.Clusters {
		row := []string{
			strconv.Itoa(c.Cluster),
			profileCell(cfg, c.Cluster, c.Profile),
			strconv.Itoa(c.Size),
		}
		for _, v := range c.Centroid {
			row = append(row, fmtFloat(v))
		}
		row = append(row, fmtFloat(c.AvgTotal))
		data = append(data, row)
	}
	if err := renderTable(w, headers, data); err != nil {
		return err
	}

	cache := "miss"
	if result.CacheHit {
		cache = "hit"
	}
	if _, err := fmt.Fprintf(w, "Outcome: %s (bundle %s, inertia %s, fit cache %s)\n", outcomeLabel(result.Outcome), result.BundleID, fmtFloat(result.Inertia), cache); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Labeled %d rows into %d clusters in %v. Cache backend: %s\n", result.Rows, result.K, duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// outcomeLabel adds a marker to the save outcome.
func outcomeLabel(o schema.SaveOutcome) string {
	switch o {
	case schema.OutcomeSaved:
		return "💾 saved"
	case schema.OutcomeUnchanged:
		return "✅ unchanged"
	default:
		return string(o)
	}
}
