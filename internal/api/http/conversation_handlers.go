package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/PochariChun/OSCEVP/internal/auth/middleware"
	"github.com/PochariChun/OSCEVP/internal/interview"
	"github.com/PochariChun/OSCEVP/internal/scoring"
)

// ListPatientsHandler serves the case catalogue. GET /patients
func ListPatientsHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := store.ListPatients(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if ps == nil {
			ps = []interview.PatientSummary{}
		}
		writeJSON(w, ps)
	}
}

// POST /patients/{patientID}/conversations
func StartConversationHandler(svc *interview.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientID")
		userID := authmw.SubjectFromContext(r.Context())
		conv, opening, err := svc.Start(r.Context(), patientID, userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, struct {
			Conversation interview.Conversation `json:"conversation"`
			Opening      string                 `json:"opening,omitempty"`
		}{conv, opening})
	}
}

// POST /conversations/{conversationID}/turns  { "text": "..." }
func SayHandler(svc *interview.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "conversationID")
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Text == "" {
			http.Error(w, "text required", http.StatusBadRequest)
			return
		}
		reply, err := svc.Say(r.Context(), id, req.Text)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]string{"reply": reply})
	}
}

// POST /conversations/{conversationID}/finish
func FinishConversationHandler(svc *interview.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "conversationID")
		conv, res, err := svc.Finish(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, resultPayload(conv, res))
	}
}

// GET /conversations/{conversationID}/result
func GetResultHandler(svc *interview.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "conversationID")
		conv, res, err := svc.Result(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, resultPayload(conv, res))
	}
}

// GET /conversations
func ListConversationsHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := interview.ListOpts{
			UserID: authmw.SubjectFromContext(r.Context()),
			Status: r.URL.Query().Get("status"),
		}
		cs, err := store.ListConversations(r.Context(), opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if cs == nil {
			cs = []interview.Conversation{}
		}
		writeJSON(w, cs)
	}
}

// GET /conversations/stats
func StatsHandler(store interview.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := store.Stats(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, st)
	}
}

// resultDoc is the conversation header plus the localized breakdown,
// exactly what the result page renders.
type resultDoc struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Duration string `json:"duration,omitempty"`
	scoring.DisplayResult
}

func resultPayload(conv interview.Conversation, res scoring.EvaluationResult) resultDoc {
	doc := resultDoc{
		ID:            conv.ID,
		Status:        conv.Status,
		DisplayResult: scoring.NewDisplayResult(res),
	}
	if conv.DurationSec > 0 {
		doc.Duration = interview.FormatDuration(conv.DurationSec)
	}
	return doc
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses. A rubric ConfigError
// is the rubric author's problem, not the trainee's: it surfaces as 422
// with an explicit marker so the UI never renders it as a zero score.
func writeError(w http.ResponseWriter, err error) {
	var cfgErr *scoring.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		http.Error(w, "rubric configuration error: "+cfgErr.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, interview.ErrPatientNotFound),
		errors.Is(err, interview.ErrConversationNotFound),
		errors.Is(err, interview.ErrResultNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, interview.ErrAlreadyCompleted):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
