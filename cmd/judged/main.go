package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/kdrivas1989/judgetest/internal/api/http"
	"github.com/kdrivas1989/judgetest/internal/audit"
	"github.com/kdrivas1989/judgetest/internal/auth"
	"github.com/kdrivas1989/judgetest/internal/config"
	"github.com/kdrivas1989/judgetest/internal/db"
	"github.com/kdrivas1989/judgetest/internal/export"
	"github.com/kdrivas1989/judgetest/internal/grading"
	"github.com/kdrivas1989/judgetest/internal/quiz"
	"github.com/kdrivas1989/judgetest/internal/rbac"
	"github.com/kdrivas1989/judgetest/internal/review"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using system environment")
	}
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The app starts even when the database is down: storage falls back
	// to an in-memory map and write paths degrade, nothing crashes.
	var store quiz.Store
	var rec audit.Recorder = audit.Nop{}
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Printf("warning: db open failed: %v", err)
		log.Printf("serving from in-memory store; data will not persist")
		store = quiz.NewInMemoryStore()
	} else {
		store = quiz.NewSQLStore(dbh, cfg.DBDriver)
		rec = audit.NewEventLog(dbh, cfg.SiteID)
	}

	if err := quiz.SeedAdmin(ctx, store, cfg.AdminUser, cfg.AdminPassHash); err != nil {
		log.Printf("warning: admin seed failed: %v", err)
	}
	seeds := map[string]quiz.Test{}
	if cfg.TestsPath != "" {
		seeds, err = quiz.LoadTestsFile(cfg.TestsPath)
		if err != nil {
			log.Fatalf("load seed tests: %v", err)
		}
		if err := quiz.SeedTests(ctx, store, seeds); err != nil {
			log.Printf("warning: test seed failed: %v", err)
		}
	}

	engine := grading.NewEngine(grading.WithLegacyScoring(cfg.LegacyScoring))
	tracker := review.NewTracker(store)
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	bs, err := export.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, store))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("test:view")).
			Get("/tests", api.ListTestsHandler(store))
		pr.With(rbac.Require("test:view")).
			Get("/tests/{testID}", api.GetTestHandler(store))
		pr.With(rbac.Require("test:submit")).
			Post("/tests/{testID}/submit", api.SubmitTestHandler(store, engine, rec))
		pr.With(rbac.Require("answerkey:view")).
			Get("/tests/{testID}/answer-key", api.AnswerKeyHandler(store))
		pr.With(rbac.Require("test:edit")).
			Put("/tests/{testID}/questions", api.ReplaceQuestionsHandler(store))
		pr.With(rbac.Require("test:edit")).
			Post("/tests/{testID}/reset", api.ResetTestHandler(store, seeds))
		pr.With(rbac.Require("answerkey:view")).
			Get("/tests/{testID}/export", api.ExportTestHandler(store, bs))

		pr.With(rbac.RequireAny("result:view-own", "result:view")).
			Get("/results", api.ListResultsHandler(store))
		pr.With(rbac.RequireAny("result:view-own", "result:view")).
			Get("/results/{resultID}", api.GetResultHandler(store))
		pr.With(rbac.Require("result:approve-ref")).
			Post("/results/{resultID}/approve-reference", api.ApproveReferenceHandler(store, rec))

		pr.With(rbac.Require("users:manage")).
			Get("/users", api.ListUsersHandler(store))
		pr.With(rbac.Require("users:manage")).
			Get("/users/{username}", api.GetUserHandler(store))
		pr.With(rbac.RequireAny("users:manage", "student:manage")).
			Post("/users", api.CreateUserHandler(store))
		pr.With(rbac.Require("users:manage")).
			Put("/users/{username}", api.UpdateUserHandler(store))
		pr.With(rbac.Require("users:manage")).
			Delete("/users/{username}", api.DeleteUserHandler(store))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(store))

		pr.With(rbac.Require("verify:manage")).
			Put("/verifications/{testID}/{questionID}", api.VerifyHandler(tracker, rec))
		pr.With(rbac.Require("verify:manage")).
			Delete("/verifications/{testID}/{questionID}", api.UnverifyHandler(tracker, rec))
		pr.With(rbac.Require("verify:view")).
			Get("/verifications", api.ListVerificationsHandler(tracker))
		pr.With(rbac.Require("verify:view")).
			Get("/tests/{testID}/verification-stats", api.VerificationStatsHandler(store, tracker))

		pr.With(rbac.Require("proctor:overview")).
			Get("/proctor/overview", api.ProctorOverviewHandler(store))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
