// Package parquet provides data structures and functions for exporting pokestats
// tables and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/pokestats/schema"
	"github.com/parquet-go/parquet-go"
)

// LabeledRow is one entity of the labeled table with its cluster and profile.
type LabeledRow struct {
	Index      int32  `parquet:"index,snappy"`
	Name       string `parquet:"name,snappy"`
	Type1      string `parquet:"type_1,snappy"`
	Type2      string `parquet:"type_2,optional,snappy"`
	HP         int32  `parquet:"hp,snappy"`
	Attack     int32  `parquet:"attack,snappy"`
	Defense    int32  `parquet:"defense,snappy"`
	SpAtk      int32  `parquet:"sp_atk,snappy"`
	SpDef      int32  `parquet:"sp_def,snappy"`
	Speed      int32  `parquet:"speed,snappy"`
	Total      int32  `parquet:"total,snappy"`
	Generation int32  `parquet:"generation,snappy"`
	Legendary  bool   `parquet:"legendary,snappy"`

	// Cluster is -1 when the table has not been labeled yet
	Cluster int32  `parquet:"cluster,snappy"`
	Profile string `parquet:"profile,optional,snappy"`
}

// Run represents a single tracked labeler run.
// This struct maps to the pokestats_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalRows is the number of entities labeled in this run
	TotalRows int32 `parquet:"total_rows,snappy"`

	// Outcome is saved, unchanged or failed (nullable while running)
	Outcome *string `parquet:"outcome,optional,snappy"`

	// ConfigParams contains the JSON-encoded run parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Assignment is the cluster assigned to one entity in a tracked run.
// This struct maps to the pokestats_assignments database table.
type Assignment struct {
	RunID     int64  `parquet:"run_id,snappy"`
	RowIndex  int32  `parquet:"row_index,snappy"`
	Name      string `parquet:"name,snappy"`
	ClusterID int32  `parquet:"cluster_id,snappy"`
	Profile   string `parquet:"profile,snappy"`
	Total     int32  `parquet:"total,snappy"`
}

// writeParquet writes rows to outputPath with a schema inferred from T's struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the row group and the footer
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Sync()
}

// WriteLabeledRowsParquet writes the labeled table to a Parquet file.
func WriteLabeledRowsParquet(data []LabeledRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteAssignmentsParquet writes a slice of Assignment structs to a Parquet file.
func WriteAssignmentsParquet(data []Assignment, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertLabeledRows converts labeled rows for Parquet export.
func ConvertLabeledRows(rows []schema.LabeledRow) []LabeledRow {
	result := make([]LabeledRow, len(rows))
	for i, r := range rows {
		result[i] = LabeledRow{
			Index:      int32(r.Index),
			Name:       r.Name,
			Type1:      r.Type1,
			Type2:      r.Type2,
			HP:         int32(r.Stats[0]),
			Attack:     int32(r.Stats[1]),
			Defense:    int32(r.Stats[2]),
			SpAtk:      int32(r.Stats[3]),
			SpDef:      int32(r.Stats[4]),
			Speed:      int32(r.Stats[5]),
			Total:      int32(r.Stats.Total()),
			Generation: int32(r.Generation),
			Legendary:  r.Legendary,
			Cluster:    int32(r.Cluster),
			Profile:    r.Profile,
		}
	}
	return result
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalRows:     record.TotalRows,
			Outcome:       record.Outcome,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertAssignmentRecords converts schema.AssignmentRecord to Assignment for Parquet export.
func ConvertAssignmentRecords(records []schema.AssignmentRecord) []Assignment {
	result := make([]Assignment, len(records))
	for i, record := range records {
		result[i] = Assignment(record)
	}
	return result
}
