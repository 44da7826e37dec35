package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/owenlin0/coursechat/internal/session"
)

// SessionHandler handles session lifecycle endpoints.
type SessionHandler struct {
	svc    RAGService
	logger *slog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(svc RAGService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers session routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.create)
	mux.HandleFunc("DELETE /api/sessions/{id}/clear", h.clear)
}

// SessionResponse is the POST /api/sessions response body.
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.CreateSession(r.Context())
	if err != nil {
		h.logger.Error("creating session", "error", err)
		writeError(w, http.StatusInternalServerError, "session_create_failed", "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{SessionID: id.String()})
}

func (h *SessionHandler) clear(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session", "session id must be a UUID")
		return
	}

	if err := h.svc.ClearSession(r.Context(), id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session_not_found", "unknown session id")
			return
		}
		h.logger.Error("clearing session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "session_clear_failed", "failed to clear session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
