package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eli5/backend/internal/config"
)

// Server wraps the HTTP server lifecycle shared by both services.
type Server struct {
	httpServer *http.Server
	addr       string
}

// NewServer wires the handler into the common middleware chain (request
// logging, CORS) and configures timeouts from config.
func NewServer(cfg config.Config, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	addr := cfg.HTTPPort
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	wrapped := withLogging(withCORS(handler, cfg.AllowedOrigins), logger)

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      wrapped,
			ReadTimeout:  time.Duration(cfg.ReadTimeoutSec) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeoutSec) * time.Second,
		},
		addr: addr,
	}
}

// Start bootstraps the HTTP server on the configured address.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}
