// Package server exposes the bot over HTTP: a Twilio-style webhook for
// WhatsApp traffic, a JSON API for the embedded demo page, and the usual
// health and metrics endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"expensebot/internal/engine"
	"expensebot/internal/service"
	"expensebot/web"
)

const shutdownTimeout = 30 * time.Second

// Server hosts the HTTP surface around a dialogue engine.
type Server struct {
	httpServer *http.Server
	engine     *engine.Engine
	store      service.Storage
	summarizer engine.Summarizer
}

// New builds the server with all routes registered. addr is the listen
// address, e.g. ":8080".
func New(addr string, eng *engine.Engine, store service.Storage, summarizer engine.Summarizer) *Server {
	s := &Server{
		engine:     eng,
		store:      store,
		summarizer: summarizer,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/expenses", s.handleExpenses)
	mux.HandleFunc("POST /api/summary", s.handleSummary)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /static/", http.FileServerFS(web.StaticFS))
	mux.HandleFunc("GET /{$}", s.handleIndex)

	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        withObservability(mux),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

// Handler returns the server's root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("HTTP server stopped")
	return <-errCh
}
