package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bikeshop/internal/api"
	"bikeshop/pkg/config"
)

// Store is the subset of the repository the handlers need.
type Store interface {
	Create(ctx context.Context, email, passwordHash, role string) (*Account, error)
	FindByEmailRole(ctx context.Context, email, role string) (*Account, error)
}

type Handlers struct {
	Cfg      config.Config
	Accounts Store
	Log      zerolog.Logger
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type identityResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token,omitempty"`
}

// Register creates a customer account. Owner accounts are provisioned
// out-of-band (cmd/dev/seedowner), never through this endpoint.
func (h Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" || req.Role == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "email, password and role are required")
		return
	}
	if req.Role != RoleCustomer {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "role must be customer")
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "internal error")
		return
	}

	a, err := h.Accounts.Create(r.Context(), req.Email, hash, req.Role)
	if err != nil {
		if errors.Is(err, ErrExists) {
			api.WriteError(w, http.StatusConflict, api.CodeConflict, "account already exists")
			return
		}
		h.Log.Error().Err(err).Msg("create account")
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "internal error")
		return
	}

	api.WriteJSON(w, http.StatusCreated, identityResponse{Email: a.Email, Role: a.Role})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Login authenticates by (email, role) and returns a session token. The
// failure response is the same for unknown account and wrong password so
// the endpoint cannot be used to enumerate accounts.
func (h Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" || req.Role == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "email, password and role are required")
		return
	}
	if _, err := ParseRole(req.Role); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "unknown role")
		return
	}

	a, err := h.Accounts.FindByEmailRole(r.Context(), req.Email, req.Role)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid credentials")
			return
		}
		h.Log.Error().Err(err).Msg("find account")
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "internal error")
		return
	}
	if !a.VerifyPassword(req.Password) {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid credentials")
		return
	}

	token, err := api.IssueSessionToken(a.Email, a.Role, h.Cfg.SessionSecret, time.Now(), h.Cfg.SessionTTL)
	if err != nil {
		h.Log.Error().Err(err).Msg("issue session token")
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "internal error")
		return
	}

	api.WriteJSON(w, http.StatusOK, identityResponse{Email: a.Email, Role: a.Role, Token: token})
}
