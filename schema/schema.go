// Package schema has the models and constants shared by all parts of pokestats.
package schema

// Stats holds the six base stats of an entity in canonical StatColumns order.
type Stats [NumStats]int

// Total returns the sum of all six base stats.
func (s Stats) Total() int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}

// Floats returns the stats as a float64 slice suitable for numeric pipelines.
func (s Stats) Floats() []float64 {
	out := make([]float64, NumStats)
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}

// Pokemon is one entity of the input table.
type Pokemon struct {
	Row        int    `json:"row"`              // Zero-based position in the input table
	Index      int    `json:"index"`            // Pokedex number from the '#' column (Row+1 when absent)
	Name       string `json:"name"`             // Identity column
	Type1      string `json:"type_1"`           // Primary type
	Type2      string `json:"type_2,omitempty"` // Secondary type, empty for single-type entities
	Generation int    `json:"generation"`       // Generation number, 0 when absent
	Legendary  bool   `json:"legendary"`        // Legendary flag, false when absent
	Stats      Stats  `json:"stats"`            // HP, Attack, Defense, Sp. Atk, Sp. Def, Speed
}

// EntityTable is a parsed input table. Header and Records keep the raw cells
// so that the labeled table can echo every original column unchanged.
type EntityTable struct {
	Source     string              // Path the table was loaded from
	SourceHash string              // sha256 hex digest of the raw source bytes
	Header     []string            // Raw header row
	Records    [][]string          // Raw data rows in input order
	Entities   []Pokemon           // Typed view of every row, same order as Records
	Optional   map[string]struct{} // Optional columns that were present in the header
}

// Has reports whether an optional column was present in the input.
func (t *EntityTable) Has(column string) bool {
	_, ok := t.Optional[column]
	return ok
}

// Len returns the number of entities.
func (t *EntityTable) Len() int {
	return len(t.Entities)
}

// LabeledRow is an entity with its cluster id and profile label.
type LabeledRow struct {
	Pokemon
	Cluster int    `json:"cluster"`
	Profile string `json:"profile"`
}
