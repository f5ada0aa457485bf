// Package main is the entry point for the pinboard API server.
//
// The main package stays minimal. Its job is to:
//  1. Read configuration (environment variables and an optional config file)
//  2. Create the logger
//  3. Build and start the server
//
// Everything else lives in internal/server and the packages it wires.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/sakif/pinboard/internal/config"
	"github.com/sakif/pinboard/internal/server"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML, TOML or JSON config file (overrides CONFIG_FILE)")
	flag.Parse()

	// === 1. READ CONFIGURATION ===
	// Environment variables win over the file, the file wins over defaults.
	// JWT_SECRET has no default; generate one with:
	//   JWT_SECRET=$(openssl rand -hex 32)
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if !cfg.GitHub.Enabled() {
		logger.Info("GITHUB_CLIENT_ID not set, GitHub login is disabled")
	}

	// === 3. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	// and closes the database on the way out.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
