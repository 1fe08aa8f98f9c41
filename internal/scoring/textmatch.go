package scoring

import (
	"strings"
	"unicode"
)

// Normalize does simple casefolding and trims punctuation/extra
// spaces. Both the interviewer text and every keyword pass through it,
// so matching is insensitive to case, punctuation and spacing for
// Latin and CJK text alike.
func Normalize(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsPunct(r):
			// skip
		default:
			if space && len(out) > 0 {
				out = append(out, ' ')
			}
			space = false
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}

// containsNormalized reports whether needle occurs anywhere in the
// already-normalized haystack. The needle is normalized here; a needle
// that normalizes to empty never matches.
func containsNormalized(haystack, needle string) bool {
	n := Normalize(needle)
	if n == "" {
		return false
	}
	return strings.Contains(haystack, n)
}
