package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"bikeshop/internal/account"
	"bikeshop/internal/api"
)

type Handlers struct {
	Svc *Service
	Log zerolog.Logger
}

// List scopes results by the verified identity: customers only ever see
// bookings under their own email, no matter what filter they send; owners
// see everything, with an optional email filter.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing session token")
		return
	}

	var (
		items []Booking
		err   error
	)
	switch id.Role {
	case account.RoleOwner:
		if email := strings.TrimSpace(r.URL.Query().Get("email")); email != "" {
			items, err = h.Svc.ListByEmail(r.Context(), email)
		} else {
			items, err = h.Svc.ListAll(r.Context())
		}
	default:
		items, err = h.Svc.ListByEmail(r.Context(), id.Email)
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("list bookings")
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "internal error")
		return
	}
	if items == nil {
		items = []Booking{}
	}
	api.WriteJSON(w, http.StatusOK, items)
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing session token")
		return
	}

	bookingID := chi.URLParam(r, "id")
	b, err := h.Svc.Get(r.Context(), bookingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "booking not found")
			return
		}
		h.Log.Error().Err(err).Msg("get booking")
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "internal error")
		return
	}
	if id.Role != account.RoleOwner && b.Email != id.Email {
		// Customers cannot probe other customers' booking ids.
		api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "booking not found")
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

type createRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Service string `json:"service"`
	Date    string `json:"date"`
}

// Create books a service for the authenticated customer. The booking email
// comes from the verified identity, never the body; client-supplied status
// or timestamps are ignored by construction.
func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing session token")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}

	b, err := h.Svc.Create(r.Context(), CreateParams{
		Email:   id.Email,
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		Service: strings.TrimSpace(req.Service),
		Date:    strings.TrimSpace(req.Date),
	})
	if err != nil {
		var verr ValidationError
		if errors.As(err, &verr) {
			api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, verr.Message)
			return
		}
		h.Log.Error().Err(err).Msg("create booking")
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "internal error")
		return
	}
	api.WriteJSON(w, http.StatusCreated, b)
}

type patchStatusRequest struct {
	Status string `json:"status"`
}

func (h Handlers) PatchStatus(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing session token")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing id")
		return
	}

	var req patchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	if req.Status == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "status is required")
		return
	}

	b, err := h.Svc.SetStatus(r.Context(), bookingID, req.Status, id.Email)
	if err != nil {
		var verr ValidationError
		switch {
		case errors.As(err, &verr):
			api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, verr.Message)
		case errors.Is(err, ErrNotFound):
			api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "booking not found")
		default:
			h.Log.Error().Err(err).Msg("update booking status")
			api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "internal error")
		}
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing session token")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing id")
		return
	}

	if err := h.Svc.Delete(r.Context(), bookingID); err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "booking not found")
			return
		}
		h.Log.Error().Err(err).Msg("delete booking")
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "internal error")
		return
	}
	h.Log.Info().Str("booking_id", bookingID).Str("actor", id.Email).Msg("booking deleted")
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "booking deleted"})
}
