package scoring

import (
	"strings"
	"time"
)

// Role tags who spoke a turn. Only interviewer turns are evidence of
// the trainee's actions; patient turns are conversational content and
// are never scanned for keywords.
type Role string

const (
	RoleInterviewer Role = "interviewer"
	RolePatient     Role = "patient"
)

// Turn is one utterance in the recorded interview. The engine only
// reads it; ownership stays with the caller.
type Turn struct {
	Speaker  Role      `json:"speaker"`
	Text     string    `json:"text"`
	Sequence int       `json:"sequence"`
	At       time.Time `json:"at,omitempty"`
}

// Transcript is the ordered record of turns being graded. Insertion
// order is conversational order. An empty transcript is valid input
// and grades to an all-zero result.
type Transcript []Turn

// InterviewerText concatenates, in transcript order, the text of every
// interviewer turn. This is the haystack the criterion matcher scans.
func (t Transcript) InterviewerText() string {
	var b strings.Builder
	for _, turn := range t {
		if turn.Speaker != RoleInterviewer {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(turn.Text)
	}
	return b.String()
}
