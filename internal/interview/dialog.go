package interview

import (
	"strings"

	"github.com/PochariChun/OSCEVP/internal/scoring"
)

// The simulated patient is fully scripted: replies come from matching
// the trainee's utterance against each entry's expected question,
// lexically only. Natural-language understanding is out of scope here
// just as it is in the scoring engine.

const fallbackReply = "我不太明白您的意思，請換個方式提問。"

// matchThreshold is the minimum rune-bigram Dice similarity an entry
// must reach before its reply is used instead of the fallback.
const matchThreshold = 0.3

// Respond picks the scripted reply for a trainee utterance. Exact
// containment in either direction wins immediately; otherwise the
// closest entry by bigram similarity is used, falling back to a
// stock "please rephrase" reply.
func Respond(dialog []DialogEntry, input string) string {
	in := scoring.Normalize(input)
	if in == "" || len(dialog) == 0 {
		return fallbackReply
	}

	best := 0.0
	bestIdx := -1
	for i, d := range dialog {
		q := scoring.Normalize(d.Question)
		if q == "" {
			continue
		}
		if strings.Contains(in, q) || strings.Contains(q, in) {
			return d.Answer
		}
		if s := bigramSimilarity(in, q); s > best {
			best, bestIdx = s, i
		}
	}
	if bestIdx >= 0 && best >= matchThreshold {
		return dialog[bestIdx].Answer
	}
	return fallbackReply
}

// bigramSimilarity is the Dice coefficient over rune bigrams. Rune
// bigrams work for CJK text, which has no word boundaries to split on.
func bigramSimilarity(a, b string) float64 {
	ba := bigrams(a)
	bb := bigrams(b)
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}
	common := 0
	for g, n := range ba {
		if m := bb[g]; m > 0 {
			if n < m {
				common += n
			} else {
				common += m
			}
		}
	}
	totalA, totalB := 0, 0
	for _, n := range ba {
		totalA += n
	}
	for _, n := range bb {
		totalB += n
	}
	return 2 * float64(common) / float64(totalA+totalB)
}

func bigrams(s string) map[string]int {
	rs := []rune(s)
	out := make(map[string]int, len(rs))
	for i := 0; i+1 < len(rs); i++ {
		if rs[i] == ' ' || rs[i+1] == ' ' {
			continue
		}
		out[string(rs[i:i+2])]++
	}
	return out
}
