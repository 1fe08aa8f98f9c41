package interview

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/PochariChun/OSCEVP/internal/scoring"
)

// SQLStore persists interview data in SQLite or Postgres. Dialog,
// rubric and result payloads are stored as JSON columns; the rubric is
// stored in canonical field naming (localization happens at the API
// boundary, never here).
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutPatient(ctx context.Context, p Patient) error {
	dj, err := json.Marshal(p.Dialog)
	if err != nil {
		return err
	}
	rj, err := json.Marshal(p.Rubric)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO patients (id,name,description,dialog_json,rubric_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, description=EXCLUDED.description,
			dialog_json=EXCLUDED.dialog_json, rubric_json=EXCLUDED.rubric_json`,
		p.ID, p.Name, p.Description, string(dj), string(rj), time.Now().Unix())
	return err
}

func (s *SQLStore) GetPatient(ctx context.Context, id string) (Patient, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,name,description,dialog_json,rubric_json,created_at FROM patients WHERE id=$1`, id)
	var p Patient
	var dj, rj string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &dj, &rj, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Patient{}, ErrPatientNotFound
		}
		return Patient{}, err
	}
	if err := json.Unmarshal([]byte(dj), &p.Dialog); err != nil {
		return Patient{}, err
	}
	if err := json.Unmarshal([]byte(rj), &p.Rubric); err != nil {
		return Patient{}, err
	}
	return p, nil
}

func (s *SQLStore) ListPatients(ctx context.Context) ([]PatientSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,description FROM patients ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PatientSummary
	for rows.Next() {
		var p PatientSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) NewConversation(ctx context.Context, patientID, userID string) (Conversation, error) {
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM patients WHERE id=$1`, patientID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Conversation{}, ErrPatientNotFound
		}
		return Conversation{}, err
	}
	c := Conversation{
		ID:        uuid.NewString(),
		PatientID: patientID,
		UserID:    userID,
		Status:    StatusInProgress,
		StartedAt: time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO conversations (id,patient_id,user_id,status,total_score,max_score,started_at)
		VALUES ($1,$2,$3,$4,0,0,$5)`,
		c.ID, c.PatientID, c.UserID, c.Status, c.StartedAt)
	if err != nil {
		return Conversation{}, err
	}
	return c, nil
}

func (s *SQLStore) GetConversation(ctx context.Context, id string) (Conversation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,patient_id,user_id,status,total_score,max_score,started_at,
		COALESCE(ended_at,0),COALESCE(duration_sec,0) FROM conversations WHERE id=$1`, id)
	var c Conversation
	if err := row.Scan(&c.ID, &c.PatientID, &c.UserID, &c.Status, &c.TotalScore, &c.MaxScore,
		&c.StartedAt, &c.EndedAt, &c.DurationSec); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Conversation{}, ErrConversationNotFound
		}
		return Conversation{}, err
	}
	return c, nil
}

func (s *SQLStore) ListConversations(ctx context.Context, opts ListOpts) ([]Conversation, error) {
	q := `SELECT id,patient_id,user_id,status,total_score,max_score,started_at,
		COALESCE(ended_at,0),COALESCE(duration_sec,0) FROM conversations WHERE user_id=$1`
	args := []interface{}{opts.UserID}
	if opts.Status != "" {
		q += ` AND status=$2`
		args = append(args, opts.Status)
	}
	q += ` ORDER BY started_at DESC`
	if opts.Limit > 0 {
		q += ` LIMIT ` + strconv.Itoa(opts.Limit)
		if opts.Offset > 0 {
			q += ` OFFSET ` + strconv.Itoa(opts.Offset)
		}
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.PatientID, &c.UserID, &c.Status, &c.TotalScore, &c.MaxScore,
			&c.StartedAt, &c.EndedAt, &c.DurationSec); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) AppendTurn(ctx context.Context, conversationID string, turn scoring.Turn) error {
	at := turn.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO turns (conversation_id,seq,speaker,text,spoken_at)
		VALUES ($1,$2,$3,$4,$5)`,
		conversationID, turn.Sequence, string(turn.Speaker), turn.Text, at.Unix())
	return err
}

func (s *SQLStore) Transcript(ctx context.Context, conversationID string) (scoring.Transcript, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq,speaker,text,spoken_at FROM turns WHERE conversation_id=$1 ORDER BY seq`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tr scoring.Transcript
	for rows.Next() {
		var t scoring.Turn
		var speaker string
		var at int64
		if err := rows.Scan(&t.Sequence, &speaker, &t.Text, &at); err != nil {
			return nil, err
		}
		t.Speaker = scoring.Role(speaker)
		t.At = time.Unix(at, 0).UTC()
		tr = append(tr, t)
	}
	return tr, rows.Err()
}

func (s *SQLStore) Complete(ctx context.Context, conversationID string, res scoring.EvaluationResult, endedAt, durationSec int64) (Conversation, error) {
	buf, err := json.Marshal(res)
	if err != nil {
		return Conversation{}, err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE conversations
		SET status=$1, total_score=$2, max_score=$3, result_json=$4, ended_at=$5, duration_sec=$6
		WHERE id=$7`,
		StatusCompleted, res.TotalScore, res.MaxScore, string(buf), endedAt, durationSec, conversationID)
	if err != nil {
		return Conversation{}, err
	}
	return s.GetConversation(ctx, conversationID)
}

func (s *SQLStore) Result(ctx context.Context, conversationID string) (scoring.EvaluationResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(result_json,'') FROM conversations WHERE id=$1`, conversationID)
	var rj string
	if err := row.Scan(&rj); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scoring.EvaluationResult{}, ErrConversationNotFound
		}
		return scoring.EvaluationResult{}, err
	}
	if rj == "" {
		return scoring.EvaluationResult{}, ErrResultNotFound
	}
	var res scoring.EvaluationResult
	if err := json.Unmarshal([]byte(rj), &res); err != nil {
		return scoring.EvaluationResult{}, err
	}
	return res, nil
}

func (s *SQLStore) Stats(ctx context.Context, userID string) (Stats, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(AVG(CASE WHEN max_score > 0 THEN 100.0*total_score/max_score END),0),
		COALESCE(MAX(CASE WHEN max_score > 0 THEN 100.0*total_score/max_score END),0),
		COALESCE(MAX(ended_at),0)
		FROM conversations WHERE user_id=$1 AND status=$2`, userID, StatusCompleted)
	var st Stats
	if err := row.Scan(&st.TotalConversations, &st.AverageScore, &st.BestScore, &st.LastConversationAt); err != nil {
		return Stats{}, err
	}
	return st, nil
}
