package models

// Dimension is one rubric dimension the scoring engine evaluates.
type Dimension struct {
	Name          string
	Description   string
	MaxScore      float64
	CriticalBelow float64 // absolute score below which the round is critically weak
}

// DimensionResult is the outcome of a single per-dimension AI call.
type DimensionResult struct {
	Dimension  string   `json:"dimension"`
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
}
