package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ConfigError reports a structurally inconsistent rubric. It is always
// the rubric author's fault, never the trainee's; callers should
// surface it as a rejected evaluation, not a zero score.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid rubric: " + strings.Join(e.Problems, "; ")
}

var structValidator = validator.New()

// Validate rejects a rubric before any evaluation runs. Checks: every
// category's declared max equals the sum of its item maxima, category
// names are unique, item maxima are positive, and every item has at
// least one usable keyword (the item name counts). Pure check, no side
// effects; failure is fatal for the whole evaluation.
func Validate(r Rubric) error {
	var problems []string

	if err := structValidator.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
		}
	}

	seen := make(map[string]bool, len(r.Categories))
	for _, c := range r.Categories {
		if seen[c.Name] {
			problems = append(problems, fmt.Sprintf("duplicate category %q", c.Name))
		}
		seen[c.Name] = true

		sum := 0.0
		for _, it := range c.Items {
			sum += it.MaxScore
			if !hasUsableKeyword(it) {
				problems = append(problems, fmt.Sprintf("item %q in category %q has no usable keywords", it.Name, c.Name))
			}
		}
		if math.Abs(sum-c.MaxScore) > 1e-9 {
			problems = append(problems, fmt.Sprintf("category %q declares max %g but its items sum to %g", c.Name, c.MaxScore, sum))
		}
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

// hasUsableKeyword reports whether any trigger survives normalization.
// An item whose triggers all normalize to empty can never be matched.
func hasUsableKeyword(it Item) bool {
	for _, k := range it.EffectiveKeywords() {
		if Normalize(k) != "" {
			return true
		}
	}
	return false
}
