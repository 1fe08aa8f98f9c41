package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/PochariChun/OSCEVP/internal/accounts"
	api "github.com/PochariChun/OSCEVP/internal/api/http"
	"github.com/PochariChun/OSCEVP/internal/audit"
	auth "github.com/PochariChun/OSCEVP/internal/auth/middleware"
	"github.com/PochariChun/OSCEVP/internal/config"
	"github.com/PochariChun/OSCEVP/internal/db"
	"github.com/PochariChun/OSCEVP/internal/interview"
	"github.com/PochariChun/OSCEVP/internal/patientdef"
	"github.com/PochariChun/OSCEVP/internal/scoring"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	store := interview.NewSQLStore(dbh)
	users := accounts.NewSQLStore(dbh)
	events := audit.NewEventRepo(dbh)

	var scoringOpts []scoring.Option
	if cfg.ScoreWorkers > 0 {
		scoringOpts = append(scoringOpts, scoring.WithMaxConcurrency(cfg.ScoreWorkers))
	}
	svc := interview.NewService(store,
		interview.WithEventLog(events),
		interview.WithScoringOptions(scoringOpts...),
	)

	// --- Patient bundles (optional, loaded at boot) ---
	if cfg.PatientDir != "" {
		patients, err := patientdef.LoadDir(cfg.PatientDir)
		if err != nil {
			log.Fatalf("patient bundles: %v", err)
		}
		for _, p := range patients {
			if err := store.PutPatient(ctx, p); err != nil {
				log.Fatalf("put patient %q: %v", p.Name, err)
			}
		}
		log.Printf("loaded %d patient bundle(s) from %s", len(patients), cfg.PatientDir)
	}

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/register", api.RegisterHandler(users, authSvc))
	r.Post("/auth/login", api.LoginHandler(users, authSvc))

	// Protected API (JWT → subject in context)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Get("/patients", api.ListPatientsHandler(store))
		pr.Post("/patients/{patientID}/conversations", api.StartConversationHandler(svc))

		pr.Post("/conversations/{conversationID}/turns", api.SayHandler(svc))
		pr.Post("/conversations/{conversationID}/finish", api.FinishConversationHandler(svc))
		pr.Get("/conversations/{conversationID}/result", api.GetResultHandler(svc))

		pr.Get("/conversations", api.ListConversationsHandler(store))
		pr.Get("/conversations/stats", api.StatsHandler(store))
	})

	log.Printf("gateway listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal(err)
	}
}
