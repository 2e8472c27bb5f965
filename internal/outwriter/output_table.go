package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/internal/parquet"
	"github.com/huangsam/pokestats/schema"
)

// labeledCSVHeader is the flat column order for CSV output of labeled rows.
var labeledCSVHeader = append(append(
	[]string{"index", "name", "type_1", "type_2"},
	schema.StatColumns...),
	"total", "generation", "legendary", "cluster", "profile")

// WriteLabeledRows outputs labeled rows, dispatching based on the output format configured.
// labeled reports whether cluster and profile come from a persisted bundle.
func WriteLabeledRows(rows []schema.LabeledRow, labeled bool, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rows)
		}, "Wrote JSON table")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, labeledCSVHeader, func(cw *csv.Writer) error {
				return writeCSVResultsForRows(cw, rows)
			})
		}, "Wrote CSV table")
	case schema.ParquetOut:
		return writeParquetFile(cfg.OutputFile, func(path string) error {
			return parquet.WriteLabeledRowsParquet(parquet.ConvertLabeledRows(rows), path)
		}, "Wrote Parquet table")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRowsTable(w, rows, labeled, cfg, duration)
		}, "Wrote table")
	}
}

// writeCSVResultsForRows writes one row per entity.
func writeCSVResultsForRows(w *csv.Writer, rows []schema.LabeledRow) error {
	for _, r := range rows {
		rec := []string{strconv.Itoa(r.Index), r.Name, r.Type1, r.Type2}
		for _, v := range r.Stats {
			rec = append(rec, strconv.Itoa(v))
		}
		rec = append(rec,
			strconv.Itoa(r.Stats.Total()),
			strconv.Itoa(r.Generation),
			strconv.FormatBool(r.Legendary),
			strconv.Itoa(r.Cluster),
			r.Profile,
		)
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeRowsTable prints the human-readable table of entities.
func writeRowsTable(w io.Writer, rows []schema.LabeledRow, labeled bool, cfg *contract.Config, duration time.Duration) error {
	headers := []string{"#", "Name", "Type"}
	headers = append(headers, schema.StatColumns...)
	headers = append(headers, "Total", "Gen", "Legendary")
	if labeled {
		headers = append(headers, "Cluster", "Profile")
	}
	nameWidth := maxNameWidth(cfg, 110)

	var data [][]string
	for _, r := range rows {
		row := []string{
			strconv.Itoa(r.Index),
			contract.TruncateName(r.Name, nameWidth),
			typeLabel(r.Pokemon),
		}
		for _, v := range r.Stats {
			row = append(row, strconv.Itoa(v))
		}
		row = append(row, strconv.Itoa(r.Stats.Total()), strconv.Itoa(r.Generation), yesNo(r.Legendary))
		if labeled {
			row = append(row, strconv.Itoa(r.Cluster), profileCell(cfg, r.Cluster, r.Profile))
		}
		data = append(data, row)
	}
	if err := renderTable(w, headers, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d rows in %v\n", len(rows), duration)
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// WriteDescribe outputs summary statistics as returned by a dataframe describe.
// The first record is the header. When an output file is configured the
// statistics go next to it with a _describe suffix.
func WriteDescribe(records [][]string, cfg *contract.Config) error {
	if len(records) == 0 {
		return &contract.EmptyInputError{Source: "describe"}
	}
	header, body := records[0], records[1:]
	outputFile := describeFile(cfg.OutputFile)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(outputFile, func(w io.Writer) error {
			return writeJSON(w, describeJSON(header, body))
		}, "Wrote JSON summary")
	case schema.CSVOut, schema.ParquetOut:
		return writeWithFile(outputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				return cw.WriteAll(body)
			})
		}, "Wrote CSV summary")
	default:
		return writeWithFile(outputFile, func(w io.Writer) error {
			return renderTable(w, header, body)
		}, "Wrote summary")
	}
}

// describeFile derives the summary file name from the table output file.
// Parquet output gets a CSV summary.
func describeFile(outputFile string) string {
	if outputFile == "" {
		return ""
	}
	ext := filepath.Ext(outputFile)
	if ext == ".parquet" {
		return strings.TrimSuffix(outputFile, ext) + "_describe.csv"
	}
	return strings.TrimSuffix(outputFile, ext) + "_describe" + ext
}

// describeJSON maps each statistic row to its column values.
func describeJSON(header []string, body [][]string) []map[string]string {
	out := make([]map[string]string, 0, len(body))
	for _, rec := range body {
		m := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				m[col] = rec[i]
			}
		}
		out = append(out, m)
	}
	return out
}
