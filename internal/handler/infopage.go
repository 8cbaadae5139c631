package handler

import (
	"log/slog"
	"net/http"

	"github.com/nhollis/inkwell/internal/apperror"
	"github.com/nhollis/inkwell/internal/service"
)

// PageHandler exposes the info-page resource operations over HTTP.
type PageHandler struct {
	pages  *service.PageService
	logger *slog.Logger
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(pages *service.PageService, logger *slog.Logger) *PageHandler {
	return &PageHandler{pages: pages, logger: logger}
}

// HandleGet returns one page.
//
// GET /api/pages/{id}
func (h *PageHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	req, err := buildRequest(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	projected, err := h.pages.Get(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projected)
}

// HandleList returns every existing page.
//
// GET /api/pages
func (h *PageHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	req, err := buildRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	results, err := h.pages.List(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// HandleUpdate upserts a page (administrators only).
//
// PUT /api/pages/{id}
func (h *PageHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	req, err := buildRequest(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	projected, err := h.pages.Update(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projected)
}

// HandleCreate rejects direct page creation; pages come into existence
// through their first update.
//
// POST /api/pages
func (h *PageHandler) HandleCreate(w http.ResponseWriter, _ *http.Request) {
	writeError(w, apperror.MethodNotAllowed("pages are created by updating an allow-listed id"))
}
