package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/schema"
)

// WriteComparison outputs a pair comparison, dispatching based on the output format configured.
func WriteComparison(result *schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON comparison")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"stat", result.Left.Name, result.Right.Name, "delta", "winner"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				return writeCSVResultsForComparison(cw, result)
			})
		}, "Wrote CSV comparison")
	case schema.ParquetOut:
		return errParquetUnsupported("comparisons")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComparisonTable(w, result, cfg, duration)
		}, "Wrote comparison table")
	}
}

// writeCSVResultsForComparison writes one row per stat plus the total.
func writeCSVResultsForComparison(w *csv.Writer, result *schema.ComparisonResult) error {
	for _, s := range result.Stats {
		rec := []string{s.Stat, strconv.Itoa(s.Left), strconv.Itoa(s.Right), strconv.Itoa(s.Delta), s.Winner}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	sum := result.Summary
	return w.Write([]string{
		schema.ColTotal,
		strconv.Itoa(sum.LeftTotal),
		strconv.Itoa(sum.RightTotal),
		strconv.Itoa(sum.LeftTotal - sum.RightTotal),
		sum.Overall,
	})
}

// writeComparisonTable prints both entities side by side with a signed delta.
func writeComparisonTable(w io.Writer, result *schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	nameWidth := maxNameWidth(cfg, 50)
	left := contract.TruncateName(result.Left.Name, nameWidth)
	right := contract.TruncateName(result.Right.Name, nameWidth)

	var data [][]string
	for _, s := range result.Stats {
		data = append(data, []string{s.Stat, strconv.Itoa(s.Left), strconv.Itoa(s.Right), formatDelta(s.Delta, cfg.UseColors)})
	}
	sum := result.Summary
	data = append(data, []string{schema.ColTotal, strconv.Itoa(sum.LeftTotal), strconv.Itoa(sum.RightTotal), formatDelta(sum.LeftTotal-sum.RightTotal, cfg.UseColors)})
	if result.Labeled {
		data = append(data, []string{
			"Profile",
			profileCell(cfg, result.Left.Cluster, result.Left.Profile),
			profileCell(cfg, result.Right.Cluster, result.Right.Profile),
			"",
		})
	}
	if err := renderTable(w, []string{"Stat", left, right, "Delta"}, data); err != nil {
		return err
	}

	overall := "tie"
	if sum.Overall != "" {
		overall = sum.Overall
	}
	if _, err := fmt.Fprintf(w, "Wins: %s %d, %s %d, ties %d. Stronger overall: %s\n",
		result.Left.Name, sum.LeftWins, result.Right.Name, sum.RightWins, sum.Ties, overall); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Comparison completed in %v\n", duration)
	return err
}

// formatDelta signs a delta and colors it by direction.
func formatDelta(d int, useColors bool) string {
	s := fmt.Sprintf("%+d", d)
	if !useColors || d == 0 {
		return s
	}
	if d > 0 {
		return color.GreenString(s)
	}
	return color.RedString(s)
}
