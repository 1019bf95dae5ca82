// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer (composition root): it picks the storage
// backend, builds services and handlers on top of it, and maps URLs to
// handler functions.
//
// DEPENDENCY FLOW:
//
//	config.Config → repository.Store (jsonfile or sqlite)
//	             → AccountService, PostService
//	             → AccountHandler, PostHandler
//	             → chi routes
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/postboard/internal/auth"
	"github.com/sakif/postboard/internal/config"
	"github.com/sakif/postboard/internal/handler"
	"github.com/sakif/postboard/internal/metrics"
	"github.com/sakif/postboard/internal/middleware"
	"github.com/sakif/postboard/internal/repository"
	"github.com/sakif/postboard/internal/repository/jsonfile"
	sqliteRepo "github.com/sakif/postboard/internal/repository/sqlite"
	"github.com/sakif/postboard/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the store and closes it when Start returns.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	store  repository.Store
}

// New creates a Server for cfg. The storage backend is chosen by
// cfg.StorageDriver.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.StorageDriver, err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}
	s.setupRoutes()

	return s, nil
}

func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverJSON:
		store, err := jsonfile.New(cfg.UsersPath(), cfg.PostsPath())
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /            → welcome message
// POST   /register    → create account
// POST   /login       → check credentials
// GET    /users       → list users (no passwords)
// PUT    /profile     → change own email/password        [credentials]
// DELETE /account     → delete own account and posts     [credentials]
// GET    /posts       → list posts
// POST   /posts       → create post                      [credentials]
// PUT    /posts/{id}  → update own post                  [credentials]
// DELETE /posts/{id}  → delete own post                  [credentials]
// GET    /healthz     → liveness probe
// GET    /metrics     → Prometheus metrics
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns an id first so every later log line carries it
// 2. RealIP: extracts real client IP from proxy headers
// 3. Logger and Metrics: see the final status, including recovered panics
// 4. Recoverer: catches panics and returns 500 instead of crashing
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics)
	s.router.Use(chimiddleware.Recoverer)

	passwords := auth.NewPasswordService(s.config.BcryptCost)
	accountService := service.NewAccountService(s.store, passwords, s.logger)
	postService := service.NewPostService(s.store, s.logger)

	accountHandler := handler.NewAccountHandler(accountService, s.logger)
	postHandler := handler.NewPostHandler(postService, accountService, s.logger)

	s.router.Get("/", handler.HandleHome)
	s.router.Get("/healthz", handler.HandleHealth)
	s.router.Handle("/metrics", metrics.Handler())

	s.router.Post("/register", accountHandler.HandleRegister)
	s.router.Post("/login", accountHandler.HandleLogin)
	s.router.Get("/users", accountHandler.HandleListUsers)
	s.router.Put("/profile", accountHandler.HandleUpdateProfile)
	s.router.Delete("/account", accountHandler.HandleDeleteAccount)

	s.router.Get("/posts", postHandler.HandleList)
	s.router.Post("/posts", postHandler.HandleCreate)
	s.router.Put("/posts/{id}", postHandler.HandleUpdate)
	s.router.Delete("/posts/{id}", postHandler.HandleDelete)
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the store.
func (s *Server) Close() error {
	return s.store.Close()
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the store
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("storage", s.config.StorageDriver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
