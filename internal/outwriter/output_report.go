package outwriter

import (
	"io"

	"github.com/huangsam/pokestats/internal/charts"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/schema"
)

// DefaultReportFile is where the HTML report goes when no output file is set.
const DefaultReportFile = "pokestats_report.html"

// WriteReport renders the chart report. JSON output writes the report data
// instead of HTML.
func WriteReport(report *schema.ReportData, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON report data")
	}
	outputFile := cfg.OutputFile
	if outputFile == "" {
		outputFile = DefaultReportFile
	}
	return writeWithFile(outputFile, func(w io.Writer) error {
		return charts.Render(w, report)
	}, "Wrote HTML report")
}
