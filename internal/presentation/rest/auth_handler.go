package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bibbank/loan-decision/internal/application/dto"
	"github.com/bibbank/loan-decision/internal/infrastructure/credentials"
)

// Authenticator verifies operator credentials.
type Authenticator interface {
	Authenticate(username, password string) (credentials.Operator, error)
}

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	GenerateToken(subject string, roles []string) (string, error)
}

// AuthHandler exchanges operator credentials for a bearer token.
type AuthHandler struct {
	operators Authenticator
	issuer    TokenIssuer
	logger    *slog.Logger
}

// NewAuthHandler creates the token endpoint handler.
func NewAuthHandler(operators Authenticator, issuer TokenIssuer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{operators: operators, issuer: issuer, logger: logger}
}

// RegisterRoutes attaches the token route to the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/authenticate", h.authenticate)
}

const maxAuthBody = 4 << 10

func (h *AuthHandler) authenticate(w http.ResponseWriter, r *http.Request) {
	var req dto.AuthenticateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAuthBody)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed authentication request")
		return
	}

	op, err := h.operators.Authenticate(req.Username, req.Password)
	if errors.Is(err, credentials.ErrInvalidCredentials) {
		h.logger.InfoContext(r.Context(), "authentication refused", "username", req.Username)
		writeError(w, r, http.StatusUnauthorized, "INVALID CREDENTIALS")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "authentication failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := h.issuer.GenerateToken(op.Username, op.Roles)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "token issue failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "token issuing is not available")
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthenticateResponse{Token: token})
}
