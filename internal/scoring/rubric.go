package scoring

// Rubric is the full scoring definition for one simulated patient:
// ordered categories, each carrying weighted items. The order of
// categories and items is the grading-sheet order and is preserved in
// every result.
type Rubric struct {
	Categories []Category `json:"categories" yaml:"categories" validate:"required,min=1,dive"`
}

// Category groups related items under a declared point total. The
// declared MaxScore must equal the sum of the item maxima; Validate
// rejects anything else.
type Category struct {
	Name     string  `json:"name" yaml:"name" validate:"required"`
	MaxScore float64 `json:"max_score" yaml:"max_score" validate:"gt=0"`
	Items    []Item  `json:"items" yaml:"items" validate:"required,min=1,dive"`
}

// Item is a leaf scoring unit: one clinical question or action the
// trainee is expected to cover. Keywords are the lexical triggers for
// detection; the item name always counts as a trigger too. SubCriteria
// are the facets a thorough follow-up should touch; they gate partial
// credit within the item's own MaxScore and carry no points of their
// own.
type Item struct {
	Name        string   `json:"name" yaml:"name" validate:"required"`
	MaxScore    float64  `json:"max_score" yaml:"max_score" validate:"gt=0"`
	SubCriteria []string `json:"sub_criteria,omitempty" yaml:"sub_criteria,omitempty"`
	Keywords    []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// MaxScore is the rubric-declared total across all categories.
func (r Rubric) MaxScore() float64 {
	total := 0.0
	for _, c := range r.Categories {
		total += c.MaxScore
	}
	return total
}

// EffectiveKeywords returns the item's detection triggers, with the
// item name always included as the implicit first keyword.
func (it Item) EffectiveKeywords() []string {
	out := make([]string, 0, len(it.Keywords)+1)
	out = append(out, it.Name)
	out = append(out, it.Keywords...)
	return out
}
