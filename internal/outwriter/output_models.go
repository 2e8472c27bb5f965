package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/schema"
)

// WriteClassifierReport outputs the Legendary classifier evaluation.
func WriteClassifierReport(report *schema.ClassifierReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON classifier report")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"class", "precision", "recall", "f1"}, func(cw *csv.Writer) error {
				for _, c := range report.Classes {
					if err := cw.Write([]string{c.Class, fmtFloat(c.Precision), fmtFloat(c.Recall), fmtFloat(c.F1)}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV classifier report")
	case schema.ParquetOut:
		return errParquetUnsupported("classifier reports")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeClassifierTable(w, report, fmtFloat, duration)
		}, "Wrote classifier report")
	}
}

func writeClassifierTable(w io.Writer, report *schema.ClassifierReport, fmtFloat func(float64) string, duration time.Duration) error {
	var data [][]string
	for _, c := range report.Classes {
		data = append(data, []string{c.Class, fmtFloat(c.Precision), fmtFloat(c.Recall), fmtFloat(c.F1)})
	}
	if err := renderTable(w, []string{"Legendary", "Precision", "Recall", "F1"}, data); err != nil {
		return err
	}

	// Confusion matrix with actual classes as rows
	classes := make([]string, len(report.Classes))
	for i, c := range report.Classes {
		classes[i] = c.Class
	}
	var cm [][]string
	for _, actual := range classes {
		row := []string{actual}
		for _, predicted := range classes {
			row = append(row, strconv.Itoa(report.Confusion[actual][predicted]))
		}
		cm = append(cm, row)
	}
	headers := []string{"Actual \\ Predicted"}
	headers = append(headers, classes...)
	if err := renderTable(w, headers, cm); err != nil {
		return err
	}

	if len(report.Predictions) > 0 {
		var preds [][]string
		for _, p := range report.Predictions {
			preds = append(preds, []string{p.Name, p.Predicted, p.Actual})
		}
		if err := renderTable(w, []string{"Name", "Predicted", "Actual"}, preds); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Accuracy %s on %d held-out rows (%d trees, trained on %d) in %v\n",
		fmtFloat(report.Accuracy), report.TestSize, report.Trees, report.TrainSize, duration)
	return err
}

// WriteProjection outputs the 2-D PCA projection.
func WriteProjection(proj *schema.Projection, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, proj)
		}, "Wrote JSON projection")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"name", "pc1", "pc2", "cluster", "profile"}, func(cw *csv.Writer) error {
				for _, p := range proj.Points {
					if err := cw.Write([]string{p.Name, fmtFloat(p.X), fmtFloat(p.Y), strconv.Itoa(p.Cluster), p.Profile}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV projection")
	case schema.ParquetOut:
		return errParquetUnsupported("projections")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			var data [][]string
			nameWidth := maxNameWidth(cfg, 60)
			for _, p := range proj.Points {
				data = append(data, []string{contract.TruncateName(p.Name, nameWidth), fmtFloat(p.X), fmtFloat(p.Y), profileCell(cfg, p.Cluster, p.Profile)})
			}
			if err := renderTable(w, []string{"Name", "PC1", "PC2", "Profile"}, data); err != nil {
				return err
			}
			ev := proj.ExplainedVariance
			_, err := fmt.Fprintf(w, "Explained variance: PC1 %s, PC2 %s. Projected %d rows in %v\n",
				fmtFloat(ev[0]), fmtFloat(ev[1]), len(proj.Points), duration)
			return err
		}, "Wrote projection table")
	}
}

// WriteElbow outputs inertia by cluster count. Text output adds an ASCII plot.
func WriteElbow(points []schema.ElbowPoint, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, points)
		}, "Wrote JSON elbow curve")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"k", "inertia"}, func(cw *csv.Writer) error {
				for _, p := range points {
					if err := cw.Write([]string{strconv.Itoa(p.K), fmtFloat(p.Inertia)}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV elbow curve")
	case schema.ParquetOut:
		return errParquetUnsupported("elbow curves")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeElbowPlot(w, points, cfg, fmtFloat, duration)
		}, "Wrote elbow curve")
	}
}

func writeElbowPlot(w io.Writer, points []schema.ElbowPoint, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	var data [][]string
	series := make([]float64, len(points))
	for i, p := range points {
		data = append(data, []string{strconv.Itoa(p.K), fmtFloat(p.Inertia)})
		series[i] = p.Inertia
	}
	if err := renderTable(w, []string{"K", "Inertia"}, data); err != nil {
		return err
	}
	if len(series) > 1 {
		plot := asciigraph.Plot(series,
			asciigraph.Height(10),
			asciigraph.Width(max(10, min(terminalWidth(cfg)-15, 60))),
			asciigraph.Precision(uint(max(cfg.Precision, 0))),
			asciigraph.Caption("inertia by k"),
		)
		if _, err := fmt.Fprintln(w, plot); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Fitted k = 1..%d in %v\n", len(points), duration)
	return err
}

// WriteAssignment outputs the cluster answer for one raw stat point.
func WriteAssignment(a *schema.Assignment, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, a)
		}, "Wrote JSON assignment")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := append([]string{}, schema.StatColumns...)
			header = append(header, "cluster", "profile", "bundle_id")
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				var rec []string
				for _, v := range a.Stats {
					rec = append(rec, strconv.Itoa(v))
				}
				rec = append(rec, strconv.Itoa(a.Cluster), a.Profile, a.BundleID)
				return cw.Write(rec)
			})
		}, "Wrote CSV assignment")
	case schema.ParquetOut:
		return errParquetUnsupported("assignments")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			var data [][]string
			for i, col := range schema.StatColumns {
				center := "-"
				if i < len(a.Centroid) {
					center = fmtFloat(a.Centroid[i])
				}
				data = append(data, []string{col, strconv.Itoa(a.Stats[i]), fmtFloat(a.Standardized[i]), center})
			}
			if err := renderTable(w, []string{"Stat", "Raw", "Standardized", "Cluster Center"}, data); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Cluster %d: %s (bundle %s)\n", a.Cluster, profileCell(cfg, a.Cluster, a.Profile), a.BundleID)
			return err
		}, "Wrote assignment")
	}
}
