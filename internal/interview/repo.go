package interview

import (
	"context"
	"errors"

	"github.com/PochariChun/OSCEVP/internal/scoring"
)

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrResultNotFound       = errors.New("result not found")
	ErrAlreadyCompleted     = errors.New("conversation already completed")
)

type ListOpts struct {
	UserID string
	Status string // optional: in_progress|completed
	Limit  int
	Offset int
}

// Store is the persistence boundary for patients, conversations and
// their turns. Implementations must keep turn order stable: Transcript
// returns turns in the order they were appended.
type Store interface {
	PutPatient(ctx context.Context, p Patient) error
	GetPatient(ctx context.Context, id string) (Patient, error)
	ListPatients(ctx context.Context) ([]PatientSummary, error)

	NewConversation(ctx context.Context, patientID, userID string) (Conversation, error)
	GetConversation(ctx context.Context, id string) (Conversation, error)
	ListConversations(ctx context.Context, opts ListOpts) ([]Conversation, error)

	AppendTurn(ctx context.Context, conversationID string, turn scoring.Turn) error
	Transcript(ctx context.Context, conversationID string) (scoring.Transcript, error)

	// Complete marks the conversation finished and persists the full
	// evaluation breakdown as a re-renderable snapshot.
	Complete(ctx context.Context, conversationID string, res scoring.EvaluationResult, endedAt, durationSec int64) (Conversation, error)
	Result(ctx context.Context, conversationID string) (scoring.EvaluationResult, error)

	Stats(ctx context.Context, userID string) (Stats, error)
}
