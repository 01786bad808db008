package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/syncboard/syncboard/internal/core/domain"
	"github.com/syncboard/syncboard/internal/core/service"
	"github.com/syncboard/syncboard/internal/telemetry/logger"
)

// Config wires the handler's collaborators.
type Config struct {
	// Hub is the board mutation gateway.
	Hub *service.Hub

	// HandleWS is the WebSocket upgrade handler, mounted on GET /ws.
	HandleWS http.HandlerFunc

	// AdvertiseURL returns the base URL peers should use, resolved at
	// request time so interface changes are picked up.
	AdvertiseURL func() string

	// MaxUploadBytes caps multipart upload bodies.
	MaxUploadBytes int64

	// Logger for handler diagnostics.
	Logger *slog.Logger
}

// Handler routes SyncBoard HTTP requests.
type Handler struct {
	hub          *service.Hub
	handleWS     http.HandlerFunc
	advertiseURL func() string
	maxUpload    int64
	logger       *slog.Logger
	mux          *http.ServeMux
}

// New creates a Handler with all routes registered.
func New(cfg Config) *Handler {
	h := &Handler{
		hub:          cfg.Hub,
		handleWS:     cfg.HandleWS,
		advertiseURL: cfg.AdvertiseURL,
		maxUpload:    cfg.MaxUploadBytes,
		logger:       cfg.Logger,
		mux:          http.NewServeMux(),
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("GET /{$}", h.handleIndex)
	h.mux.HandleFunc("GET /qr", h.handleQR)

	if h.handleWS != nil {
		h.mux.HandleFunc("GET /ws", h.handleWS)
	}

	h.mux.HandleFunc("GET /board", h.handleBoard)
	h.mux.HandleFunc("POST /upload", h.handleUpload)
	h.mux.HandleFunc("GET /files", h.handleListFiles)
	h.mux.HandleFunc("GET /files/{id}", h.handleDownload)
	h.mux.HandleFunc("DELETE /files/{id}", h.handleDeleteFile)
}

// writeJSON writes a JSON response with the standard envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := logger.RequestIDFromContext(r.Context())
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with the standard envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := logger.RequestIDFromContext(r.Context())
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// handleServiceError converts hub errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsDomainError(err, "") {
		code := domain.GetErrorCode(err)
		h.writeError(w, r, errorCodeToHTTPStatus(code), code, err.Error(), nil)
		return
	}
	logger.L(r.Context()).Error("internal error", "error", err)
	h.writeError(w, r, http.StatusInternalServerError, domain.ErrInternalServer.Code, "internal server error", nil)
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes by
// their numeric suffix.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"), strings.HasSuffix(code, "-4041"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4090"), strings.HasSuffix(code, "-4091"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4130"):
		return http.StatusRequestEntityTooLarge
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-5070"):
		return http.StatusInsufficientStorage
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "SB-SYS-5"):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
