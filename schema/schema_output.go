package schema

// ClusterSummary describes one cluster of a fit in original stat units.
type ClusterSummary struct {
	Cluster  int       `json:"cluster"`
	Profile  string    `json:"profile"`
	Size     int       `json:"size"`
	Centroid []float64 `json:"centroid"` // Mean raw stats of the members, StatColumns order
	AvgTotal float64   `json:"avg_total"`
}

// ClusterRunResult is the outcome of one Cluster Labeler run.
type ClusterRunResult struct {
	Outcome    SaveOutcome      `json:"outcome"`
	BundleID   string           `json:"bundle_id"`
	RunID      int64            `json:"run_id,omitempty"` // 0 when run tracking is off
	SourceHash string           `json:"source_hash"`
	K          int              `json:"k"`
	Inertia    float64          `json:"inertia"`
	CacheHit   bool             `json:"cache_hit"`
	Rows       int              `json:"rows"`
	Clusters   []ClusterSummary `json:"clusters"`
}

// ProjectedPoint is one entity projected onto the first two principal components.
type ProjectedPoint struct {
	Name    string  `json:"name"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Cluster int     `json:"cluster"`
	Profile string  `json:"profile"`
}

// Projection holds a 2-D PCA projection of the standardized stats.
type Projection struct {
	Points            []ProjectedPoint `json:"points"`
	ExplainedVariance [2]float64       `json:"explained_variance"` // Ratio of total variance per component
}

// ElbowPoint is the best inertia found for a given cluster count.
type ElbowPoint struct {
	K       int     `json:"k"`
	Inertia float64 `json:"inertia"`
}

// ClassMetrics holds per-class evaluation numbers.
type ClassMetrics struct {
	Class     string  `json:"class"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Prediction is a classifier answer for a named entity.
type Prediction struct {
	Name      string `json:"name"`
	Predicted string `json:"predicted"`
	Actual    string `json:"actual"`
}

// ClassifierReport summarizes a Legendary random forest training run.
type ClassifierReport struct {
	Trees       int                       `json:"trees"`
	TrainSize   int                       `json:"train_size"`
	TestSize    int                       `json:"test_size"`
	Accuracy    float64                   `json:"accuracy"`
	Classes     []ClassMetrics            `json:"classes"`
	Confusion   map[string]map[string]int `json:"confusion"` // actual -> predicted -> count
	Predictions []Prediction              `json:"predictions,omitempty"`
}

// Assignment is the cluster answer for one raw stat point.
type Assignment struct {
	Stats        Stats     `json:"stats"`
	Standardized []float64 `json:"standardized"`
	Centroid     []float64 `json:"centroid"` // Cluster center in raw stat units
	Cluster      int       `json:"cluster"`
	Profile      string    `json:"profile"`
	BundleID     string    `json:"bundle_id"`
}

// ProfileShare is the number of entities carrying one profile.
type ProfileShare struct {
	Profile string `json:"profile"`
	Count   int    `json:"count"`
}

// ReportData is everything the HTML report renders.
type ReportData struct {
	Title       string            `json:"title"`
	Comparison  *ComparisonResult `json:"comparison,omitempty"`
	Columns     []string          `json:"columns"`
	Correlation [][]float64       `json:"correlation"`
	Profiles    []ProfileShare    `json:"profiles,omitempty"`
	Projection  *Projection       `json:"projection,omitempty"`
	Labeled     bool              `json:"labeled"`
}
