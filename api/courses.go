package api

import (
	"log/slog"
	"net/http"
)

// CoursesHandler serves course catalog analytics.
type CoursesHandler struct {
	svc    RAGService
	logger *slog.Logger
}

// NewCoursesHandler creates a new courses handler.
func NewCoursesHandler(svc RAGService, logger *slog.Logger) *CoursesHandler {
	return &CoursesHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers course routes on the given mux.
func (h *CoursesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/courses", h.list)
}

func (h *CoursesHandler) list(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.svc.Analytics(r.Context())
	if err != nil {
		h.logger.Error("loading course analytics", "error", err)
		writeError(w, http.StatusInternalServerError, "analytics_failed", "failed to load course catalog")
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}
