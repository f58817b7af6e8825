// Package api exposes the assist service over HTTP so external tools
// can request markdown revisions from a running daemon.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/zjrosen/markpad/internal/assist"
	"github.com/zjrosen/markpad/internal/log"
)

// Reviser is the assist capability the handler depends on.
type Reviser interface {
	Revise(ctx context.Context, req assist.Request) (*assist.Result, error)
}

// Config configures the API handler.
type Config struct {
	// Service performs revisions (required).
	Service Reviser
	// RateLimit is the allowed requests per window per client.
	// Defaults to DefaultLimit.
	RateLimit int
	// RateWindow is the limiter window. Defaults to DefaultWindow.
	RateWindow time.Duration
	// AllowedOrigins is the CORS allow-list. Empty disables CORS headers.
	AllowedOrigins []string
}

// Handler provides the HTTP endpoints of the assist daemon.
type Handler struct {
	service Reviser
	limiter *RateLimiter
	origins []string
}

// NewHandler creates a handler from config.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		service: cfg.Service,
		limiter: NewRateLimiter(cfg.RateLimit, cfg.RateWindow),
		origins: cfg.AllowedOrigins,
	}
}

// Routes returns an http.Handler with all API routes registered.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/analyze", h.Analyze)
	mux.HandleFunc("OPTIONS /api/analyze", h.preflight)
	mux.HandleFunc("GET /api/health", h.Health)

	return mux
}

// === Request/Response Types ===

// AnalyzeRequest is the request body for a revision.
type AnalyzeRequest struct {
	// Markdown is the document to revise (required).
	Markdown string `json:"markdown"`
	// Instructions tell the model what to improve (required).
	Instructions string `json:"instructions"`
	// Preview is accepted for compatibility with older clients that
	// sent a rendered screenshot; it is ignored.
	Preview string `json:"preview,omitempty"`
}

// AnalyzeResponse is the successful response body.
type AnalyzeResponse struct {
	Markdown string `json:"markdown"`
	Summary  string `json:"summary"`
}

// ErrorResponse is the failure response body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Analyze handles POST /api/analyze.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	h.setCORS(w, r)

	client := clientKey(r)
	if !h.limiter.Allow(client) {
		log.Warn(log.CatAPI, "Rate limit exceeded", "client", client)
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "Rate limit exceeded"})
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}
	if req.Markdown == "" || req.Instructions == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Details: "markdown and instructions are required",
		})
		return
	}

	result, err := h.service.Revise(r.Context(), assist.Request{
		Markdown:     req.Markdown,
		Instructions: req.Instructions,
	})
	if err != nil {
		kind := assist.ErrOther
		var assistErr *assist.Error
		if errors.As(err, &assistErr) {
			kind = assistErr.Kind
		}
		log.ErrorErr(log.CatAPI, "Analyze failed", err, "kind", kind, "client", client)
		writeJSON(w, kind.HTTPStatus(), ErrorResponse{
			Error:   kind.UserMessage(),
			Details: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Markdown: result.Markdown,
		Summary:  result.Summary,
	})
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.setCORS(w, r)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// preflight answers CORS preflight requests for the analyze endpoint.
func (h *Handler) preflight(w http.ResponseWriter, r *http.Request) {
	h.setCORS(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// setCORS writes CORS headers when the request origin is allowed.
func (h *Handler) setCORS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	for _, allowed := range h.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			return
		}
	}
}

// clientKey identifies the caller for rate limiting. The first
// X-Forwarded-For hop wins when present, otherwise the remote address
// without its port.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.ErrorErr(log.CatAPI, "Failed to encode response", err)
	}
}
