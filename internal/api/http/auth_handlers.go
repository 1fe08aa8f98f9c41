package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/PochariChun/OSCEVP/internal/accounts"
	authmw "github.com/PochariChun/OSCEVP/internal/auth/middleware"
)

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResp struct {
	AccessToken string        `json:"access_token"`
	User        accounts.User `json:"user"`
}

// POST /auth/register  { "username": "...", "password": "..." }
func RegisterHandler(users accounts.Store, a *authmw.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Username == "" || req.Password == "" {
			http.Error(w, "username and password required", http.StatusBadRequest)
			return
		}
		u, err := users.Create(r.Context(), req.Username, req.Password, "trainee")
		if err != nil {
			if errors.Is(err, accounts.ErrUsernameTaken) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeToken(w, a, u)
	}
}

// POST /auth/login  { "username": "...", "password": "..." }
func LoginHandler(users accounts.Store, a *authmw.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		u, err := users.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, accounts.ErrInvalidCredentials) {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeToken(w, a, u)
	}
}

func writeToken(w http.ResponseWriter, a *authmw.AuthService, u accounts.User) {
	tok, err := a.IssueJWT(u.ID, u.Role)
	if err != nil {
		http.Error(w, "issue token", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tokenResp{AccessToken: tok, User: u})
}
