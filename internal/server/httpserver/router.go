// Package httpserver provides the HTTP server for SyncBoard.
package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/syncboard/syncboard/internal/core/service"
	"github.com/syncboard/syncboard/internal/server/httpserver/handler"
	"github.com/syncboard/syncboard/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Hub is the board mutation gateway.
	Hub *service.Hub

	// HandleWS is the WebSocket upgrade handler.
	HandleWS http.HandlerFunc

	// AdvertiseURL resolves the base URL shown to joining peers.
	AdvertiseURL func() string

	// MaxUploadBytes caps multipart upload bodies. Should exceed the
	// board's file limit by the multipart framing overhead.
	MaxUploadBytes int64

	// Metrics backs the /metrics endpoint and request instrumentation.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger *slog.Logger

	// RateLimitRPS is the per-peer request rate for the REST surface.
	// Zero disables rate limiting.
	RateLimitRPS float64

	// RateLimitBurst is the per-peer burst allowance.
	RateLimitBurst int
}

// NewRouter creates and configures the HTTP router with all routes
// and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = metric.Global()
	}

	h := handler.New(handler.Config{
		Hub:            cfg.Hub,
		HandleWS:       cfg.HandleWS,
		AdvertiseURL:   cfg.AdvertiseURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         log,
	})

	// The REST surface gets the full chain. Ordering matters: Recover
	// is outermost so a panic in any later middleware is still caught,
	// RequestID precedes Audit so log lines carry the id.
	rest := func(pattern string) http.Handler {
		middlewares := []Middleware{
			Recover(log),
			RequestID(),
			Measure(metrics, pattern),
		}
		if cfg.RateLimitRPS > 0 {
			middlewares = append(middlewares, RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		}
		middlewares = append(middlewares, Audit(log))
		return Chain(h, middlewares...)
	}

	// Probes and the UI skip rate limiting and audit noise.
	quiet := Chain(h, Recover(log), RequestID())

	mux := http.NewServeMux()

	mux.Handle("GET /health", quiet)
	mux.Handle("GET /ready", quiet)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.Handle("GET /{$}", quiet)
	mux.Handle("GET /qr", quiet)

	// The WebSocket bypasses Audit (it would log only at connection
	// end) and the rate limiter (one long-lived request per client).
	mux.Handle("GET /ws", Chain(h, Recover(log), RequestID()))

	mux.Handle("GET /board", rest("/board"))
	mux.Handle("POST /upload", rest("/upload"))
	mux.Handle("GET /files", rest("/files"))
	mux.Handle("GET /files/{id}", rest("/files/{id}"))
	mux.Handle("DELETE /files/{id}", rest("/files/{id}"))

	return mux
}
