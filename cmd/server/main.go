package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goldenbell/internal/app"
	"goldenbell/internal/config"
	"goldenbell/internal/store"
	httpTransport "goldenbell/internal/transport/http"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set up logger
	var logger *slog.Logger
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, logOpts))
	}

	slog.SetDefault(logger)

	logger.Info("starting golden bell server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Question supply: database-backed when configured, builtin set otherwise
	var db *store.Store
	var source app.QuestionSource = app.BuiltinSource{}
	var catalog httpTransport.QuestionCatalog = app.BuiltinSource{}
	if cfg.Database.URL != "" {
		var err error
		db, err = store.Connect(cfg.Database.URL, logger)
		if err != nil {
			logger.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate(); err != nil {
			logger.Error("database migration failed", "error", err)
			os.Exit(1)
		}
		source = db
		catalog = db
		logger.Info("question bank connected")
	} else {
		logger.Info("DATABASE_URL not set, using builtin question set")
	}

	settings := app.Settings{
		QuestionCount:    cfg.Game.QuestionCount,
		TimeLimitSeconds: cfg.Game.TimeLimitSeconds,
		AdvanceDelay:     cfg.Game.AdvanceDelay,
		ScoreAward:       cfg.Game.ScoreAward,
	}

	// Create room registry
	hub := app.NewHub(source, settings, logger)
	defer hub.Close()

	// Create HTTP server
	server := httpTransport.NewServer(cfg, hub, catalog, db, logger)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
