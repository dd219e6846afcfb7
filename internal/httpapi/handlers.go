package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/itemgate/catalog-validator/internal/catalog"
	"github.com/itemgate/catalog-validator/internal/engine"
	"github.com/itemgate/catalog-validator/internal/feed"
	"github.com/itemgate/catalog-validator/internal/logging"
	"github.com/itemgate/catalog-validator/internal/session"
	"github.com/itemgate/catalog-validator/internal/version"
)

// Handler handles HTTP requests
type Handler struct {
	registry       *session.Registry
	engine         *engine.Engine
	eventBuffer    int
	maxUploadBytes int64
}

// NewHandler creates a new handler
func NewHandler(registry *session.Registry, eng *engine.Engine, eventBuffer int, maxUploadBytes int64) *Handler {
	return &Handler{
		registry:       registry,
		engine:         eng,
		eventBuffer:    eventBuffer,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateSession handles POST /sessions. The body is a JSON array of catalog
// items; a fresh session is created and its identifier returned.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var items []catalog.Item
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id := h.registry.Create(items)
	logging.FromContext(r.Context()).Info("session created", "session_id", id, "items", len(items))

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    id,
		"items": len(items),
	})
}

// CreateSessionFromFeed handles POST /sessions/feed. The body is a YML
// catalog feed; its offers are decoded into items and stored as a session.
func (h *Handler) CreateSessionFromFeed(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	items, err := feed.ParseItems(r.Body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid feed: "+err.Error())
		return
	}

	id := h.registry.Create(items)
	logging.FromContext(r.Context()).Info("session created from feed", "session_id", id, "items", len(items))

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    id,
		"items": len(items),
	})
}

// GetSession handles GET /sessions/{sessionID}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	s, err := h.registry.Get(id)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			writeError(w, r, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":        s.ID,
		"items":     len(s.Items),
		"createdAt": s.CreatedAt.Format(time.RFC3339),
	})
}

// GetVersion handles GET /version
func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.Info())
}

// GetHealth handles GET /healthz
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as JSON with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}

// writeError writes a JSON error response and logs it
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logging.FromContext(r.Context()).Warn("request failed", "status", status, "error", message)
	writeJSON(w, status, map[string]string{"error": message})
}
