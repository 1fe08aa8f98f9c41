package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/PochariChun/OSCEVP/internal/accounts"
	api "github.com/PochariChun/OSCEVP/internal/api/http"
	authmw "github.com/PochariChun/OSCEVP/internal/auth/middleware"
	"github.com/PochariChun/OSCEVP/internal/db"
	"github.com/PochariChun/OSCEVP/internal/interview"
	"github.com/PochariChun/OSCEVP/internal/scoring"
)

// newTestServer wires the same routes as cmd/gateway over a throwaway
// sqlite database.
func newTestServer(t *testing.T) (*httptest.Server, *interview.SQLStore) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })

	store := interview.NewSQLStore(dbh)
	users := accounts.NewSQLStore(dbh)
	svc := interview.NewService(store)
	authSvc := authmw.NewAuthService("test-secret")

	r := chi.NewRouter()
	r.Post("/auth/register", api.RegisterHandler(users, authSvc))
	r.Post("/auth/login", api.LoginHandler(users, authSvc))
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))
		pr.Get("/patients", api.ListPatientsHandler(store))
		pr.Post("/patients/{patientID}/conversations", api.StartConversationHandler(svc))
		pr.Post("/conversations/{conversationID}/turns", api.SayHandler(svc))
		pr.Post("/conversations/{conversationID}/finish", api.FinishConversationHandler(svc))
		pr.Get("/conversations/{conversationID}/result", api.GetResultHandler(svc))
		pr.Get("/conversations/stats", api.StatsHandler(store))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func seedTestPatient(t *testing.T, store *interview.SQLStore) {
	t.Helper()
	p := interview.Patient{
		ID:   "p1",
		Name: "張小弟 - 發燒腹瀉",
		Dialog: []interview.DialogEntry{
			{Question: "你好", Answer: "護理師好。"},
			{Question: "請問床號是多少", Answer: "我們在 12 床。"},
		},
		Rubric: scoring.Rubric{Categories: []scoring.Category{
			{
				Name:     "病人辨識",
				MaxScore: 4,
				Items: []scoring.Item{
					{Name: "確認床號", MaxScore: 2, Keywords: []string{"床號"}},
					{Name: "核對手圈", MaxScore: 2, Keywords: []string{"手圈"}},
				},
			},
		}},
	}
	if err := store.PutPatient(context.Background(), p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
}

func doJSON(t *testing.T, method, url, token string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(buf)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do %s %s: %v", method, url, err)
	}
	if out != nil && resp.StatusCode < 300 {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp
}

func TestAPI_InterviewFlow(t *testing.T) {
	srv, store := newTestServer(t)
	seedTestPatient(t, store)

	// Register issues a usable token.
	var tok struct {
		AccessToken string        `json:"access_token"`
		User        accounts.User `json:"user"`
	}
	resp := doJSON(t, "POST", srv.URL+"/auth/register", "",
		map[string]string{"username": "nurse01", "password": "s3cret"}, &tok)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	if tok.AccessToken == "" {
		t.Fatal("no access token")
	}

	// Unauthenticated requests are rejected.
	resp = doJSON(t, "GET", srv.URL+"/patients", "", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d", resp.StatusCode)
	}

	var patients []interview.PatientSummary
	resp = doJSON(t, "GET", srv.URL+"/patients", tok.AccessToken, nil, &patients)
	if resp.StatusCode != http.StatusOK || len(patients) != 1 {
		t.Fatalf("patients status=%d len=%d", resp.StatusCode, len(patients))
	}

	var started struct {
		Conversation interview.Conversation `json:"conversation"`
		Opening      string                 `json:"opening"`
	}
	resp = doJSON(t, "POST", srv.URL+"/patients/p1/conversations", tok.AccessToken, nil, &started)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d", resp.StatusCode)
	}
	if started.Opening == "" {
		t.Fatal("no opening line")
	}
	convID := started.Conversation.ID

	var turn struct {
		Reply string `json:"reply"`
	}
	resp = doJSON(t, "POST", srv.URL+"/conversations/"+convID+"/turns", tok.AccessToken,
		map[string]string{"text": "請問床號是多少呢？"}, &turn)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("say status = %d", resp.StatusCode)
	}
	if turn.Reply != "我們在 12 床。" {
		t.Fatalf("reply = %q", turn.Reply)
	}

	var result map[string]json.RawMessage
	resp = doJSON(t, "POST", srv.URL+"/conversations/"+convID+"/finish", tok.AccessToken, nil, &result)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("finish status = %d", resp.StatusCode)
	}
	var total, max float64
	if err := json.Unmarshal(result["totalScore"], &total); err != nil {
		t.Fatalf("totalScore: %v", err)
	}
	if err := json.Unmarshal(result["maxScore"], &max); err != nil {
		t.Fatalf("maxScore: %v", err)
	}
	if total != 2 || max != 4 {
		t.Fatalf("score = %g/%g, want 2/4", total, max)
	}
	if _, ok := result["categories"]; !ok {
		t.Fatal("finish response missing categories breakdown")
	}

	// Result endpoint re-serves the stored snapshot.
	var stored map[string]json.RawMessage
	resp = doJSON(t, "GET", srv.URL+"/conversations/"+convID+"/result", tok.AccessToken, nil, &stored)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("result status = %d", resp.StatusCode)
	}
	if string(stored["totalScore"]) != string(result["totalScore"]) {
		t.Fatal("stored result differs from finish response")
	}

	var stats interview.Stats
	resp = doJSON(t, "GET", srv.URL+"/conversations/stats", tok.AccessToken, nil, &stats)
	if resp.StatusCode != http.StatusOK || stats.TotalConversations != 1 {
		t.Fatalf("stats status=%d total=%d", resp.StatusCode, stats.TotalConversations)
	}
}

func TestAPI_ConfigErrorIsNotAZeroScore(t *testing.T) {
	srv, store := newTestServer(t)

	p := interview.Patient{
		ID:   "broken",
		Name: "broken case",
		Rubric: scoring.Rubric{Categories: []scoring.Category{
			// Declared max disagrees with the item sum.
			{Name: "c", MaxScore: 9, Items: []scoring.Item{{Name: "床號", MaxScore: 2}}},
		}},
	}
	if err := store.PutPatient(context.Background(), p); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	doJSON(t, "POST", srv.URL+"/auth/register", "",
		map[string]string{"username": "nurse02", "password": "pw"}, &tok)

	var started struct {
		Conversation interview.Conversation `json:"conversation"`
	}
	doJSON(t, "POST", srv.URL+"/patients/broken/conversations", tok.AccessToken, nil, &started)

	resp := doJSON(t, "POST", srv.URL+"/conversations/"+started.Conversation.ID+"/finish", tok.AccessToken, nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("finish status = %d, want 422", resp.StatusCode)
	}
	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	if !strings.Contains(body.String(), "rubric configuration error") {
		t.Fatalf("body %q does not blame the rubric", body.String())
	}
}

func TestAPI_LoginRejectsBadPassword(t *testing.T) {
	srv, _ := newTestServer(t)

	doJSON(t, "POST", srv.URL+"/auth/register", "",
		map[string]string{"username": "nurse03", "password": "right"}, nil)

	resp := doJSON(t, "POST", srv.URL+"/auth/login", "",
		map[string]string{"username": "nurse03", "password": "wrong"}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", resp.StatusCode)
	}
}
