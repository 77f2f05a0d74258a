package api

import (
	"net/http"

	"github.com/garnizeh/empanel/internal/config"
	"github.com/garnizeh/empanel/internal/db"
	"github.com/garnizeh/empanel/internal/repository/sqlite"
	"github.com/garnizeh/empanel/internal/storage"
	"github.com/garnizeh/empanel/internal/submission"
	"github.com/garnizeh/empanel/internal/workflow"
	"github.com/gorilla/mux"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, db *db.DB) (*mux.Router, error) {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(db, logger)

	// Document storage and submission pipeline
	store, err := storage.NewDiskStore(cfg.Uploads.Dir, cfg.Uploads.PublicBaseURL)
	if err != nil {
		return nil, err
	}
	stager := storage.NewStager(store, cfg.Uploads.MaxFilesPerSubmission, logger)
	submitter, err := submission.NewService(repo, stager, logger)
	if err != nil {
		return nil, err
	}
	engine := workflow.NewEngine(repo, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	accountsHandler := NewAccountsHandler(repo)
	applicationsHandler := NewApplicationsHandler(submitter, repo, engine, store, cfg.Uploads.MaxUploadBytes)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/v1/auth/login", authHandler.Login).Methods("POST")

	// Stored documents (paths are only discoverable through application detail)
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(store.Dir())))).Methods("GET")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/logout", authHandler.Logout).Methods("POST")

	// Account endpoints
	apiV1.HandleFunc("/accounts/me", accountsHandler.Me).Methods("GET")

	// Application endpoints
	apiV1.HandleFunc("/applications", applicationsHandler.Submit).Methods("POST")
	apiV1.HandleFunc("/applications", applicationsHandler.ListOwn).Methods("GET")
	apiV1.HandleFunc("/applications/{id}", applicationsHandler.Get).Methods("GET")

	// Official endpoints
	apiV1.HandleFunc("/admin/applications", applicationsHandler.ListAll).Methods("GET")
	apiV1.HandleFunc("/admin/applications/{id}/status", applicationsHandler.ChangeStatus).Methods("PUT")

	return r, nil
}
