// Package main is the entry point for the postboard server.
//
// The main package is kept minimal. Its job is to:
// 1. Read configuration (env vars, optional config.yml)
// 2. Create the logger
// 3. Start the server
//
// All actual logic lives in internal/.
package main

import (
	"log/slog"
	"os"

	"github.com/sakif/postboard/internal/auth"
	"github.com/sakif/postboard/internal/config"
	"github.com/sakif/postboard/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No configured logger yet.
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if cfg.IsProduction() && cfg.BcryptCost < auth.DefaultCost {
		logger.Warn("BCRYPT_COST is below the recommended value for production",
			slog.Int("cost", cfg.BcryptCost),
			slog.Int("recommended", auth.DefaultCost),
		)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger builds the process logger: text for a terminal, JSON for log
// collectors.
func newLogger(cfg *config.Config) *slog.Logger {
	// Validate already rejected unknown levels.
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(h).With(slog.String("env", cfg.Env))
}
