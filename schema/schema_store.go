package schema

import "time"

// RunRecord represents a row from the pokestats_runs table.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalRows     int32
	Outcome       *string
	ConfigParams  *string
}

// AssignmentRecord represents a row from the pokestats_assignments table.
type AssignmentRecord struct {
	RunID     int64
	RowIndex  int32
	Name      string
	ClusterID int32
	Profile   string
	Total     int32
}
