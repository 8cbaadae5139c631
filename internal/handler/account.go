package handler

import (
	"log/slog"
	"net/http"

	"github.com/nhollis/inkwell/internal/service"
)

// AccountHandler exposes the account resource operations over HTTP.
type AccountHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accounts *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// HandleCreate registers a new account.
//
// POST /api/accounts
func (h *AccountHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, err := buildRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	projected, err := h.accounts.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, projected)
}

// HandleGet returns one account projected for the caller.
//
// GET /api/accounts/{id}
func (h *AccountHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	req, err := buildRequest(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	projected, err := h.accounts.Get(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projected)
}

// HandleSearch lists accounts matching the query parameters.
//
// GET /api/accounts?name=&email=&sortBy=&order=&offset=
func (h *AccountHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	req, err := buildRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	results, err := h.accounts.Search(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// HandleUpdate covers all three update branches. The authenticated branch
// addresses the account by path id and returns the updated projection; the
// anonymous reset-key branches address it by email in the body and return
// no content.
//
// PUT /api/accounts
// PUT /api/accounts/{id}
func (h *AccountHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	req, err := buildRequest(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	projected, err := h.accounts.Update(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	if projected == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, projected)
}
