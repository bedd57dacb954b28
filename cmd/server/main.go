// Package main is the entry point for the rejaka.me API server.
//
// main stays small: load configuration, build the logger, hand both to
// internal/server, and exit non-zero if anything fails.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/rejaka/portfolio/internal/config"
	"github.com/rejaka/portfolio/internal/server"
)

func main() {
	// === 1. ENVIRONMENT ===
	// A .env file is optional: production injects real environment variables,
	// which godotenv never overrides.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. LOGGING ===
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("could not read .env", slog.String("error", envErr.Error()))
	}
	for name, c := range cfg.Credentials() {
		if c.ClientID == "" || c.ClientSecret == "" {
			logger.Warn("OAuth client not configured, logins will fail", slog.String("provider", name))
		}
	}

	// === 3. SERVER ===
	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
