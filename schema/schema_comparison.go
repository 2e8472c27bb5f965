package schema

// StatComparison holds one stat of a side-by-side comparison.
type StatComparison struct {
	Stat   string `json:"stat"`
	Left   int    `json:"left"`
	Right  int    `json:"right"`
	Delta  int    `json:"delta"`  // Left - Right (Positive means left is stronger)
	Winner string `json:"winner"` // Name of the stronger entity, empty on a tie
}

// ComparisonResult puts two entities side by side.
type ComparisonResult struct {
	Left    LabeledRow       `json:"left"`
	Right   LabeledRow       `json:"right"`
	Stats   []StatComparison `json:"stats"`
	Labeled bool             `json:"labeled"` // Cluster and Profile come from a persisted bundle

	Summary ComparisonSummary `json:"summary"`
}

// ComparisonSummary has the aggregate outcome of a comparison.
type ComparisonSummary struct {
	LeftTotal  int    `json:"left_total"`
	RightTotal int    `json:"right_total"`
	LeftWins   int    `json:"left_wins"`
	RightWins  int    `json:"right_wins"`
	Ties       int    `json:"ties"`
	Overall    string `json:"overall"` // Name of the entity with the higher total, empty on a tie
}
