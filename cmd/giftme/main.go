package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lightning66/GiftMe/api"
	"github.com/lightning66/GiftMe/auth"
	"github.com/lightning66/GiftMe/config"
	"github.com/lightning66/GiftMe/extractor"
	"github.com/lightning66/GiftMe/scraper"
	"github.com/lightning66/GiftMe/store"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("giftme starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"store", cfg.Store.Type,
	)

	// ── 3. Open user store ──────────────────────────────────────────
	st, err := openStore(cfg.Store)
	if err != nil {
		slog.Error("failed to open store", "type", cfg.Store.Type, "error", err)
		os.Exit(1)
	}

	// ── 4. Identity verification ────────────────────────────────────
	verifier := auth.NewJWTVerifier(cfg.Auth.JWTSecret)
	if !verifier.Verifies() {
		slog.Warn("GIFTME_AUTH_JWT_SECRET not set, identity tokens are decoded without signature verification")
	}

	// ── 5. Fetcher and extraction engine ────────────────────────────
	fetcher := scraper.NewFetcher(cfg.Fetch)
	slog.Info("fetcher ready", "timeout", fetcher.Timeout(), "tlsFingerprint", cfg.Fetch.TLSFingerprint)
	engine := extractor.NewEngine(fetcher, cfg.Fetch.Timeout)

	// ── 6. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(api.Deps{
		Extractor: engine,
		Images:    fetcher,
		Verifier:  verifier,
		Store:     st,
	}, cfg, startTime)

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	if err := st.Close(ctx); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("giftme stopped")
}

// openStore returns the configured Store implementation.
func openStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Type {
	case "mongo":
		return store.OpenMongo(cfg.MongoURI, cfg.MongoDatabase)
	default:
		return store.OpenFile(cfg.UsersFile, cfg.SignInLogFile)
	}
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
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

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
