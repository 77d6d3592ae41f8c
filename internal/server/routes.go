package server

import (
	"net/http"

	"github.com/ternarybob/tagview/internal/handlers"
	"github.com/ternarybob/tagview/internal/metrics"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// Raw files: images, thumbnails, models
	mux.HandleFunc(handlers.ContentPrefix, s.app.ContentHandler.ServeContent)

	// API routes - Search and projection
	mux.HandleFunc("/api/search", s.app.SearchHandler.SearchHandler)
	mux.HandleFunc("/api/files", s.app.SearchHandler.FileHandler)
	mux.HandleFunc("/api/files/card", s.app.SearchHandler.CardHandler)

	// API routes - 3D preview session
	mux.HandleFunc("/api/viewer", s.app.ViewerHandler.SnapshotHandler)
	mux.HandleFunc("/api/viewer/open", s.app.ViewerHandler.OpenHandler)
	mux.HandleFunc("/api/viewer/close", s.app.ViewerHandler.CloseHandler)
	mux.HandleFunc("/api/viewer/resize", s.app.ViewerHandler.ResizeHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	if s.app.Config.Metrics.Enabled {
		path := s.app.Config.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, metrics.Handler())
	}

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
