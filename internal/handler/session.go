package handler

import (
	"log/slog"
	"net/http"

	"github.com/nhollis/inkwell/internal/service"
)

// SessionHandler issues bearer session tokens.
type SessionHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(accounts *service.AccountService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{accounts: accounts, logger: logger}
}

// sessionResponse bundles the token with the caller's own projection so
// the client can populate its state in one round trip.
type sessionResponse struct {
	Token   string         `json:"token"`
	Account map[string]any `json:"account"`
}

// HandleCreate verifies credentials and issues a session token.
//
// POST /api/sessions
func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, err := buildRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	token, account, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, Account: account})
}
