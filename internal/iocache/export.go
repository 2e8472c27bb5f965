package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/internal/parquet"
)

// ExportRuns writes runs and assignments from store to two Parquet files
// named after outputFile, reporting progress to w.
func ExportRuns(w io.Writer, store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is not configured")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}
	_, _ = fmt.Fprintf(w, "Exporting %d runs and %d assignments from %s backend...\n",
		status.TotalRuns, status.TotalAssignments, status.Backend)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	assignments, err := store.GetAllAssignments()
	if err != nil {
		return fmt.Errorf("failed to retrieve assignments: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	assignmentsFile := outputFile + ".assignments.parquet"
	if err := parquet.WriteAssignmentsParquet(parquet.ConvertAssignmentRecords(assignments), assignmentsFile); err != nil {
		return fmt.Errorf("failed to write assignments: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d assignments to: %s\n", len(assignments), assignmentsFile)

	return nil
}
