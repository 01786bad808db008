// Package httpserver provides the HTTP server for SyncBoard.
package httpserver

import (
	"context"
	"net/http"
	"time"
)

// Server wraps the net/http server with timeouts suited to a service
// that holds long-lived WebSocket connections next to short REST
// calls. No global read/write timeouts: they would sever the
// WebSockets.
type Server struct {
	httpServer *http.Server
}

// New creates a new HTTP server.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
