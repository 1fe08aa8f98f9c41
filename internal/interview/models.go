package interview

import "github.com/PochariChun/OSCEVP/internal/scoring"

// DialogEntry is one scripted exchange: the utterance the simulated
// patient listens for and the reply it gives.
type DialogEntry struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Patient is a simulated-patient case: its scripted dialog plus the
// rubric its interviews are graded against. The rubric is validated
// when the patient is loaded and treated as immutable afterwards.
type Patient struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Dialog      []DialogEntry  `json:"dialog,omitempty"`
	Rubric      scoring.Rubric `json:"rubric"`
	CreatedAt   int64          `json:"created_at,omitempty"`
}

// PatientSummary is the list view, without dialog or rubric payloads.
type PatientSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Conversation is one trainee interview session with a patient.
// TotalScore/MaxScore are filled when the conversation completes; the
// full breakdown is persisted alongside and never recomputed.
type Conversation struct {
	ID          string  `json:"id"`
	PatientID   string  `json:"patient_id"`
	UserID      string  `json:"user_id"`
	Status      string  `json:"status"` // in_progress|completed
	TotalScore  float64 `json:"total_score"`
	MaxScore    float64 `json:"max_score"`
	StartedAt   int64   `json:"started_at"`
	EndedAt     int64   `json:"ended_at,omitempty"`
	DurationSec int64   `json:"duration_sec,omitempty"`
}

// Stats summarizes a trainee's practice history for the dashboard.
type Stats struct {
	TotalConversations int     `json:"total_conversations"`
	AverageScore       float64 `json:"average_score"`
	BestScore          float64 `json:"best_score"`
	LastConversationAt int64   `json:"last_conversation_at,omitempty"`
}
