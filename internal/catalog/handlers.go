package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"bikeshop/internal/api"
)

type Store interface {
	List(ctx context.Context) ([]Offering, error)
	Create(ctx context.Context, o *Offering) (*Offering, error)
	Update(ctx context.Context, id string, o *Offering) (*Offering, error)
	Delete(ctx context.Context, id string) error
}

type Handlers struct {
	Offerings Store
	Log       zerolog.Logger
}

// List is public: anonymous callers can browse the catalog.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Offerings.List(r.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("list offerings")
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "internal error")
		return
	}
	if items == nil {
		items = []Offering{}
	}
	api.WriteJSON(w, http.StatusOK, items)
}

type offeringRequest struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Duration    float64         `json:"duration"`
	Description string          `json:"description"`
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req offeringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := Validate(req.Name, req.Price, req.Duration); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	o, err := h.Offerings.Create(r.Context(), &Offering{
		Name:        req.Name,
		Price:       req.Price,
		Duration:    req.Duration,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, ErrNameTaken) {
			api.WriteError(w, http.StatusConflict, api.CodeConflict, "offering name already in use")
			return
		}
		h.Log.Error().Err(err).Msg("create offering")
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "internal error")
		return
	}
	api.WriteJSON(w, http.StatusCreated, o)
}

func (h Handlers) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing id")
		return
	}

	var req offeringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := Validate(req.Name, req.Price, req.Duration); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	o, err := h.Offerings.Update(r.Context(), id, &Offering{
		Name:        req.Name,
		Price:       req.Price,
		Duration:    req.Duration,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "offering not found")
			return
		}
		if errors.Is(err, ErrNameTaken) {
			api.WriteError(w, http.StatusConflict, api.CodeConflict, "offering name already in use")
			return
		}
		h.Log.Error().Err(err).Msg("update offering")
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, o)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing id")
		return
	}

	if err := h.Offerings.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "offering not found")
			return
		}
		h.Log.Error().Err(err).Msg("delete offering")
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": "offering deleted"})
}
