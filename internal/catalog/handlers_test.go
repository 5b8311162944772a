package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	byID map[string]Offering
}

func newMemStore() *memStore {
	return &memStore{byID: map[string]Offering{}}
}

func (m *memStore) List(context.Context) ([]Offering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Offering
	for _, o := range m.byID {
		out = append(out, o)
	}
	return out, nil
}

func (m *memStore) Create(_ context.Context, o *Offering) (*Offering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.byID {
		if cur.Name == o.Name {
			return nil, ErrNameTaken
		}
	}
	cp := *o
	cp.ID = uuid.NewString()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.byID[cp.ID] = cp
	out := cp
	return &out, nil
}

func (m *memStore) Update(_ context.Context, id string, o *Offering) (*Offering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	for otherID, other := range m.byID {
		if otherID != id && other.Name == o.Name {
			return nil, ErrNameTaken
		}
	}
	cur.Name = o.Name
	cur.Price = o.Price
	cur.Duration = o.Duration
	cur.Description = o.Description
	cur.UpdatedAt = time.Now()
	m.byID[id] = cur
	out := cur
	return &out, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func newRouter(store Store) http.Handler {
	h := Handlers{Offerings: store, Log: zerolog.Nop()}
	r := chi.NewRouter()
	r.Get("/services", h.List)
	r.Post("/services", h.Create)
	r.Put("/services/{id}", h.Update)
	r.Delete("/services/{id}", h.Delete)
	return r
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateListUpdateDelete(t *testing.T) {
	router := newRouter(newMemStore())

	rec := do(t, router, http.MethodPost, "/services", map[string]any{
		"name": "Tune-up", "price": 20, "duration": 1, "description": "Full tune-up",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Offering
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rec = do(t, router, http.MethodGet, "/services", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []Offering
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)

	rec = do(t, router, http.MethodPut, "/services/"+created.ID, map[string]any{
		"name": "Tune-up", "price": 30, "duration": 1.5,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated Offering
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, 1.5, updated.Duration)

	rec = do(t, router, http.MethodDelete, "/services/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/services", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Empty(t, items)
}

func TestCreate_ValidationFailures(t *testing.T) {
	router := newRouter(newMemStore())

	for name, body := range map[string]map[string]any{
		"missing name":   {"price": 20, "duration": 1},
		"negative price": {"name": "Tune-up", "price": -5, "duration": 1},
		"zero duration":  {"name": "Tune-up", "price": 20},
		"blank name":     {"name": "   ", "price": 20, "duration": 1},
	} {
		rec := do(t, router, http.MethodPost, "/services", body)
		require.Equalf(t, http.StatusBadRequest, rec.Code, "case %q", name)
	}
}

func TestCreateUpdate_DuplicateName(t *testing.T) {
	router := newRouter(newMemStore())

	rec := do(t, router, http.MethodPost, "/services", map[string]any{
		"name": "Tune-up", "price": 20, "duration": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/services", map[string]any{
		"name": "Tune-up", "price": 25, "duration": 2,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodPost, "/services", map[string]any{
		"name": "Brake service", "price": 15, "duration": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var second Offering
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	rec = do(t, router, http.MethodPut, "/services/"+second.ID, map[string]any{
		"name": "Tune-up", "price": 15, "duration": 1,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateDelete_UnknownID(t *testing.T) {
	router := newRouter(newMemStore())

	rec := do(t, router, http.MethodPut, "/services/"+uuid.NewString(), map[string]any{
		"name": "Tune-up", "price": 20, "duration": 1,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodDelete, "/services/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
