package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run tracking.
	DatabaseBackend string

	// SaveOutcome represents what the persistence step did with the artifact bundle.
	SaveOutcome string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All save outcomes.
const (
	OutcomeSaved     SaveOutcome = "saved"     // bundle was (re)written
	OutcomeUnchanged SaveOutcome = "unchanged" // cluster ids matched, nothing written
	OutcomeFailed    SaveOutcome = "failed"    // run aborted
)

// Column names of the input table.
const (
	ColIndex      = "#"
	ColName       = "Name"
	ColType1      = "Type 1"
	ColType2      = "Type 2"
	ColTotal      = "Total"
	ColHP         = "HP"
	ColAttack     = "Attack"
	ColDefense    = "Defense"
	ColSpAtk      = "Sp. Atk"
	ColSpDef      = "Sp. Def"
	ColSpeed      = "Speed"
	ColGeneration = "Generation"
	ColLegendary  = "Legendary"
)

// Columns appended to the labeled table.
const (
	ColCluster = "Cluster"
	ColProfile = "Profile"
)

// NumStats is the number of base stats per entity.
const NumStats = 6

// StatColumns is the canonical feature order used for standardization and clustering.
var StatColumns = []string{ColHP, ColAttack, ColDefense, ColSpAtk, ColSpDef, ColSpeed}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// StatIndex returns the position of a stat column in StatColumns, or -1.
func StatIndex(column string) int {
	for i, c := range StatColumns {
		if c == column {
			return i
		}
	}
	return -1
}
