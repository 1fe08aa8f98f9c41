package scoring

import "time"

// Aggregate folds per-item results into category and overall totals.
// itemResults is indexed [category][item] in the rubric's declared
// order. The pass performs no matching and cannot fail on validated
// input; category scores are clamped to the declared maximum.
func Aggregate(r Rubric, itemResults [][]ItemResult, at time.Time) EvaluationResult {
	out := EvaluationResult{
		Categories:  make([]CategoryResult, 0, len(r.Categories)),
		EvaluatedAt: at,
	}
	for ci, cat := range r.Categories {
		cr := CategoryResult{
			Name:     cat.Name,
			MaxScore: cat.MaxScore,
			Items:    itemResults[ci],
		}
		for _, ir := range itemResults[ci] {
			cr.Score += ir.Score
		}
		if cr.Score > cr.MaxScore {
			cr.Score = cr.MaxScore
		}
		out.Categories = append(out.Categories, cr)
		out.TotalScore += cr.Score
		out.MaxScore += cr.MaxScore
	}
	return out
}
