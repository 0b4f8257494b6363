// Command historyd runs the history-logging service.
//
// Configuration via environment variables:
//
//	HTTP_PORT / PORT     - Listen port (default: 8002)
//	DATABASE_URL or PG*  - PostgreSQL connection (required)
//	JWT_SECRET           - Shared token signing secret; must match authd
//	TOKEN_VERIFY_MODE    - "local" (shared secret) or "remote" (ask authd)
//	AUTH_SERVICE_URL     - Auth service base URL (remote verification)
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

	"eli5/backend/internal/config"
	"eli5/backend/internal/httpserver"
	"eli5/backend/internal/infrastructure/postgres"
	"eli5/backend/internal/infrastructure/token"
	"eli5/backend/internal/serviceclient"
	historyusecase "eli5/backend/internal/usecase/history"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("service", "history")

	cfg, err := config.Load("8002")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rootCtx := context.Background()
	db, err := postgres.New(rootCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.MigrateHistory(rootCtx); err != nil {
		logger.Error("failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// Remote mode validates tokens against the auth service and needs no
	// local copy of the signing secret.
	var verifier httpserver.TokenVerifier
	if cfg.TokenVerifyMode == "remote" {
		verifier = serviceclient.NewAuthClient(serviceclient.Config{
			BaseURL:    cfg.AuthServiceURL,
			Timeout:    cfg.ClientTimeout,
			MaxRetries: cfg.ClientMaxRetries,
		}, logger)
	} else {
		if err := cfg.RequireJWTSecret(); err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		verifier = token.NewVerifier(token.NewCodec(cfg.JWTSecret, cfg.TokenTTL))
	}

	historyService := historyusecase.NewService(postgres.NewHistoryRepository(db.Pool))
	handlers := httpserver.NewHistoryHandlers(historyService, verifier)
	server := httpserver.NewServer(cfg, handlers.Router(), logger)
	logger.Info("server starting", "addr", server.Addr())

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return
	}
	logger.Info("shutting down gracefully")
}
