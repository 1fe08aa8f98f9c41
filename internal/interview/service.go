package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/PochariChun/OSCEVP/internal/audit"
	"github.com/PochariChun/OSCEVP/internal/scoring"
)

// Service drives an interview session end to end: start a conversation,
// exchange turns with the scripted patient, and grade the transcript on
// finish. The scoring engine itself stays stateless; every evaluation
// gets a fresh transcript snapshot from the store.
type Service struct {
	store  Store
	events *audit.EventRepo // optional
	opts   []scoring.Option
	now    func() time.Time
}

type ServiceOption func(*Service)

// WithEventLog records conversation lifecycle events to the audit log.
func WithEventLog(repo *audit.EventRepo) ServiceOption {
	return func(s *Service) { s.events = repo }
}

// WithScoringOptions forwards options to every Evaluate call.
func WithScoringOptions(opts ...scoring.Option) ServiceOption {
	return func(s *Service) { s.opts = opts }
}

// WithNow overrides the service clock.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{store: store, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start opens a conversation with a patient and returns the patient's
// scripted opening line, already recorded as the first turn.
func (s *Service) Start(ctx context.Context, patientID, userID string) (Conversation, string, error) {
	p, err := s.store.GetPatient(ctx, patientID)
	if err != nil {
		return Conversation{}, "", err
	}
	conv, err := s.store.NewConversation(ctx, patientID, userID)
	if err != nil {
		return Conversation{}, "", err
	}

	opening := ""
	if len(p.Dialog) > 0 {
		opening = p.Dialog[0].Answer
	}
	if opening != "" {
		turn := scoring.Turn{Speaker: scoring.RolePatient, Text: opening, Sequence: 1, At: s.now()}
		if err := s.store.AppendTurn(ctx, conv.ID, turn); err != nil {
			return Conversation{}, "", err
		}
	}
	s.logEvent(ctx, "ConversationStarted", conv.ID, fmt.Sprintf(`{"patient_id":%q,"user_id":%q}`, patientID, userID))
	return conv, opening, nil
}

// Say records the trainee's utterance and returns the patient's reply,
// both appended to the transcript in order.
func (s *Service) Say(ctx context.Context, conversationID, text string) (string, error) {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return "", err
	}
	if conv.Status != StatusInProgress {
		return "", ErrAlreadyCompleted
	}
	p, err := s.store.GetPatient(ctx, conv.PatientID)
	if err != nil {
		return "", err
	}
	tr, err := s.store.Transcript(ctx, conversationID)
	if err != nil {
		return "", err
	}
	seq := len(tr) + 1

	now := s.now()
	if err := s.store.AppendTurn(ctx, conversationID, scoring.Turn{
		Speaker: scoring.RoleInterviewer, Text: text, Sequence: seq, At: now,
	}); err != nil {
		return "", err
	}
	reply := Respond(p.Dialog, text)
	if err := s.store.AppendTurn(ctx, conversationID, scoring.Turn{
		Speaker: scoring.RolePatient, Text: reply, Sequence: seq + 1, At: now,
	}); err != nil {
		return "", err
	}
	return reply, nil
}

// Finish snapshots the transcript, grades it against the patient's
// rubric and persists the breakdown. Finishing an already-completed
// conversation returns the stored result unchanged, so the call is
// idempotent. A rubric ConfigError propagates untouched: the
// conversation stays in progress and nothing is recorded as a score.
func (s *Service) Finish(ctx context.Context, conversationID string) (Conversation, scoring.EvaluationResult, error) {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return Conversation{}, scoring.EvaluationResult{}, err
	}
	if conv.Status == StatusCompleted {
		res, err := s.store.Result(ctx, conversationID)
		if err != nil {
			return Conversation{}, scoring.EvaluationResult{}, err
		}
		return conv, res, nil
	}

	p, err := s.store.GetPatient(ctx, conv.PatientID)
	if err != nil {
		return Conversation{}, scoring.EvaluationResult{}, err
	}
	tr, err := s.store.Transcript(ctx, conversationID)
	if err != nil {
		return Conversation{}, scoring.EvaluationResult{}, err
	}

	res, err := scoring.Evaluate(ctx, p.Rubric, tr, s.opts...)
	if err != nil {
		return Conversation{}, scoring.EvaluationResult{}, err
	}

	endedAt := s.now().Unix()
	durationSec := endedAt - conv.StartedAt
	if durationSec < 0 {
		durationSec = 0
	}
	conv, err = s.store.Complete(ctx, conversationID, res, endedAt, durationSec)
	if err != nil {
		return Conversation{}, scoring.EvaluationResult{}, err
	}
	s.logEvent(ctx, "ConversationCompleted", conv.ID,
		fmt.Sprintf(`{"total_score":%g,"max_score":%g}`, res.TotalScore, res.MaxScore))
	return conv, res, nil
}

// Result returns the stored breakdown of a completed conversation.
func (s *Service) Result(ctx context.Context, conversationID string) (Conversation, scoring.EvaluationResult, error) {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return Conversation{}, scoring.EvaluationResult{}, err
	}
	res, err := s.store.Result(ctx, conversationID)
	if err != nil {
		return Conversation{}, scoring.EvaluationResult{}, err
	}
	return conv, res, nil
}

// FormatDuration renders an elapsed time the way the result page shows
// it. Reporting only; it never affects scoring.
func FormatDuration(seconds int64) string {
	return fmt.Sprintf("%d分鐘", seconds/60)
}

func (s *Service) logEvent(ctx context.Context, typ, key, data string) {
	if s.events == nil {
		return
	}
	// Audit is best-effort; a logging failure never fails the session.
	_ = s.events.Append(ctx, audit.Event{Type: typ, Key: key, DataJSON: data})
}
