package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/hammerboard/cliparse"
	"github.com/danielhkuo/hammerboard/db"
	"github.com/danielhkuo/hammerboard/moderation"
	"github.com/danielhkuo/hammerboard/router"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Moderation term lists
	mod, err := moderation.Load(cfg.TermsFile)
	if err != nil {
		slog.Error("failed to load moderation terms", "error", err, "path", cfg.TermsFile)
		os.Exit(1)
	}

	// Connect to the key/value store
	kv, err := db.Open(ctx, cfg.StoreType, cfg.StoreURL)
	if err != nil {
		slog.Error("store connection failed", "error", err, "type", cfg.StoreType)
		os.Exit(1)
	}
	defer kv.Close()
	slog.Info("Store ready", "type", cfg.StoreType, "privileged_name", cfg.AdminName != "")

	// Create server
	server := http.Server{
		Handler:           router.NewRouter(kv, mod, cfg),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}

func newLogger(cfg cliparse.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
