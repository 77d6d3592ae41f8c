package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ternarybob/tagview/internal/app"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	idleTimeout       = 90 * time.Second

	// minWriteTimeout covers streaming a large model from a local content root
	minWriteTimeout = 60 * time.Second
)

// Server serves the search API, raw content and the WebSocket channel
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// New creates the HTTP server for application
func New(application *app.App) *Server {
	s := &Server{
		app: application,
	}

	s.router = s.setupRoutes()

	cfg := application.Config
	s.server = &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           s.withConditionalMiddleware(s.router),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout(cfg.Content.RequestTimeout),
		IdleTimeout:       idleTimeout,
	}

	return s
}

// writeTimeout leaves a /content response room for an upstream fetch that uses its whole timeout
func writeTimeout(upstream time.Duration) time.Duration {
	if d := 2 * upstream; d > minWriteTimeout {
		return d
	}
	return minWriteTimeout
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the bound address once Start is listening, otherwise the configured one
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}

// Start listens on the configured address and serves until Shutdown
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	addr := ln.Addr().String()
	records := 0
	if s.app.CorpusService != nil {
		records = s.app.CorpusService.Corpus().Len()
	}

	s.app.Logger.Info().
		Str("address", addr).
		Str("content_root", s.app.Config.Content.Root).
		Int("records", records).
		Dur("write_timeout", s.server.WriteTimeout).
		Msg("tagview listening")

	s.app.Logger.Info().
		Str("search", fmt.Sprintf("http://%s/api/search?q=", addr)).
		Str("websocket", fmt.Sprintf("ws://%s/ws", addr)).
		Msg("Endpoints available")

	if s.app.Config.Metrics.Enabled {
		s.app.Logger.Debug().
			Str("url", fmt.Sprintf("http://%s%s", addr, s.app.Config.Metrics.Path)).
			Msg("Metrics endpoint enabled")
	}

	if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown disconnects WebSocket clients, which http.Server does not track once
// hijacked, then drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server")

	if s.app.WSHandler != nil {
		s.app.WSHandler.Close()
	}

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}
