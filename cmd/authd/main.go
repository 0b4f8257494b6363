// Command authd runs the authentication service.
//
// Configuration via environment variables:
//
//	HTTP_PORT / PORT     - Listen port (default: 8001)
//	DATABASE_URL or PG*  - PostgreSQL connection (required)
//	JWT_SECRET           - Shared token signing secret (required)
//	JWT_TTL              - Token lifetime (default: 30m)
//	HISTORY_SERVICE_URL  - History service base URL for notifications
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
	authusecase "eli5/backend/internal/usecase/auth"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("service", "auth")

	cfg, err := config.Load("8001")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireJWTSecret(); err != nil {
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
	if err := db.MigrateAuth(rootCtx); err != nil {
		logger.Error("failed to run database migrations", "error", err)
		os.Exit(1)
	}

	codec := token.NewCodec(cfg.JWTSecret, cfg.TokenTTL)
	historyClient := serviceclient.NewHistoryClient(serviceclient.Config{
		BaseURL:    cfg.HistoryServiceURL,
		Timeout:    cfg.ClientTimeout,
		MaxRetries: cfg.ClientMaxRetries,
	}, logger)

	authService := authusecase.NewService(postgres.NewUserRepository(db.Pool), codec, historyClient, logger)

	handlers := httpserver.NewAuthHandlers(authService)
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
