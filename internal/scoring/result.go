package scoring

import "time"

// ItemResult is the outcome of matching one item against a transcript.
// Completed means the base topic was raised at all; Score is the
// points actually earned, which for items with sub-criteria can be
// anywhere between 0 and the item maximum.
type ItemResult struct {
	Item               Item     `json:"item"`
	Completed          bool     `json:"completed"`
	Score              float64  `json:"score"`
	MatchedSubCriteria []string `json:"matched_sub_criteria,omitempty"`
}

// CategoryResult rolls item results up to the category level. Score is
// the sum of the item scores, never above the declared MaxScore.
type CategoryResult struct {
	Name     string       `json:"name"`
	Score    float64      `json:"score"`
	MaxScore float64      `json:"max_score"`
	Items    []ItemResult `json:"items"`
}

// EvaluationResult is the complete, re-renderable breakdown of one
// evaluation. It carries everything the display layer needs to draw
// per-item check marks without re-running the engine.
type EvaluationResult struct {
	TotalScore  float64          `json:"total_score"`
	MaxScore    float64          `json:"max_score"`
	Categories  []CategoryResult `json:"categories"`
	EvaluatedAt time.Time        `json:"evaluated_at"`
}
