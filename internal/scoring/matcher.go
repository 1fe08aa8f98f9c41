package scoring

import "math"

// KeywordExpander returns extra lexical variants to accept for a
// keyword or sub-criterion label (synonyms, abbreviations). A nil
// expander means literal matching only.
type KeywordExpander func(term string) []string

// matchItem grades one item against the interviewer's concatenated,
// pre-normalized text. Pure function: the same (item, text) pair
// always yields the same result.
//
// Matching is order-independent substring search. Completed flips as
// soon as any trigger is found; it models "the trainee asked about X
// at some point", not a required turn order. Items without
// sub-criteria are all-or-nothing. Items with sub-criteria earn
// round(max * matched/total), and earn zero when the base topic was
// never raised, no matter which sub-criterion strings happen to occur
// in passing.
func matchItem(it Item, normText string, expand KeywordExpander) ItemResult {
	res := ItemResult{Item: it}

	for _, kw := range it.EffectiveKeywords() {
		if matchesAny(normText, kw, expand) {
			res.Completed = true
			break
		}
	}

	if len(it.SubCriteria) == 0 {
		if res.Completed {
			res.Score = it.MaxScore
		}
		return res
	}

	for _, sc := range it.SubCriteria {
		if matchesAny(normText, sc, expand) {
			res.MatchedSubCriteria = append(res.MatchedSubCriteria, sc)
		}
	}
	if !res.Completed {
		return res
	}
	frac := float64(len(res.MatchedSubCriteria)) / float64(len(it.SubCriteria))
	res.Score = math.Round(it.MaxScore * frac)
	return res
}

func matchesAny(normText, term string, expand KeywordExpander) bool {
	if containsNormalized(normText, term) {
		return true
	}
	if expand == nil {
		return false
	}
	for _, v := range expand(term) {
		if containsNormalized(normText, v) {
			return true
		}
	}
	return false
}
