package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/owenlin0/coursechat/internal/chat"
	"github.com/owenlin0/coursechat/internal/session"
	"github.com/owenlin0/coursechat/internal/tools"
)

// maxQueryBodyBytes bounds the request body size.
const maxQueryBodyBytes = 64 * 1024

// QueryHandler handles the main question-answering endpoint.
type QueryHandler struct {
	svc    RAGService
	logger *slog.Logger
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(svc RAGService, logger *slog.Logger) *QueryHandler {
	return &QueryHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers query routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/query", h.query)
}

// QueryRequest is the POST /api/query request body.
type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// QueryResponse is the POST /api/query response body.
type QueryResponse struct {
	Answer    string         `json:"answer"`
	Sources   []tools.Source `json:"sources"`
	SessionID string         `json:"session_id"`
}

func (h *QueryHandler) query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	body := http.MaxBytesReader(w, r.Body, maxQueryBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query is required")
		return
	}

	sessionID := uuid.Nil
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_session", "session_id must be a UUID")
			return
		}
		sessionID = id
	}

	ans, err := h.svc.Query(r.Context(), req.Query, sessionID)
	if err != nil {
		// A model failure still yields a 200 with an apology: the session
		// is intact and the client should render the sentence as an answer.
		var me *chat.ModelError
		if errors.As(err, &me) {
			h.logger.Error("model call failed", "session_id", sessionID, "error", err)
			writeJSON(w, http.StatusOK, QueryResponse{
				Answer:    chat.Apology(err),
				Sources:   []tools.Source{},
				SessionID: req.SessionID,
			})
			return
		}
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session_not_found", "unknown session_id")
			return
		}
		h.logger.Error("query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query_failed", "failed to process query")
		return
	}

	sources := ans.Sources
	if sources == nil {
		sources = []tools.Source{}
	}
	writeJSON(w, http.StatusOK, QueryResponse{
		Answer:    ans.Text,
		Sources:   sources,
		SessionID: ans.Session.String(),
	})
}
