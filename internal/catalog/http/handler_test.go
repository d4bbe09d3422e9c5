package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igourd/igourd-pos/internal/catalog"
	"github.com/igourd/igourd-pos/internal/platform/httpx"
)

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

type countingObserver struct{ seen []int }

func (o *countingObserver) ObserveCombinations(n int) { o.seen = append(o.seen, n) }

type harness struct {
	store    *catalog.Store
	router   chi.Router
	observer *countingObserver
}

func newHarness(t *testing.T, initialize bool) *harness {
	t.Helper()
	repo := catalog.NewSQLiteRepository(catalog.SQLiteConfig{Path: ":memory:"})
	t.Cleanup(func() { _ = repo.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := catalog.NewStore(repo, catalog.WithLogger(logger))
	if initialize {
		store.Initialize(context.Background())
	}

	observer := &countingObserver{}
	handler := NewHandler(logger, store, Options{
		MaxCombinations: 20,
		Observer:        observer,
		Now:             func() time.Time { return fixedNow },
	})
	router := chi.NewRouter()
	router.Get("/healthz", handler.Health)
	router.Route("/api", handler.MountRoutes)
	return &harness{store: store, router: router, observer: observer}
}

func (h *harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, httptest.NewRequest(method, path, reader))
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

const newProductBody = `{
	"name": "Ceramic Mug",
	"category": "Kitchen",
	"baseUnit": "Piece",
	"units": [{"id": "u1", "name": "Piece", "conversionRate": 1}],
	"specifications": [{"id": "s1", "name": "Color", "values": ["Red", "Blue"]}]
}`

func TestListAndShowProducts(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(t, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[struct{ Products []catalog.Product }](t, rr)
	require.Len(t, list.Products, 2)

	rr = h.do(t, http.MethodGet, "/api/products?category=Food+%26+Beverage", "")
	list = decode[struct{ Products []catalog.Product }](t, rr)
	require.Len(t, list.Products, 1)
	require.Equal(t, "2", list.Products[0].ID)

	rr = h.do(t, http.MethodGet, "/api/products/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "Premium Wireless Headphones", decode[catalog.Product](t, rr).Name)

	rr = h.do(t, http.MethodGet, "/api/products/404", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "Not Found", decode[httpx.ProblemDetail](t, rr).Title)
}

func TestCreateProduct(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(t, http.MethodPost, "/api/products", newProductBody)
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode[catalog.Product](t, rr)
	require.NotEmpty(t, created.ID)
	require.Equal(t, catalog.StatusActive, created.Status)
	require.True(t, fixedNow.Equal(created.CreatedAt))
	require.Equal(t, "/api/products/"+created.ID, rr.Header().Get("Location"))

	all := h.store.All()
	require.Equal(t, created.ID, all[0].ID, "new products come first")
	require.Equal(t, []string{"Kitchen", "Electronics", "Food & Beverage"}, h.store.Categories())
}

func TestCreateProductRejects(t *testing.T) {
	h := newHarness(t, true)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"name":`, http.StatusBadRequest},
		{"unknown field", `{"name":"x","colour":"red"}`, http.StatusBadRequest},
		{"missing name", `{"category":"x"}`, http.StatusBadRequest},
		{"duplicate id", `{"id":"1","name":"Copy"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := h.do(t, http.MethodPost, "/api/products", tt.body)
			assert.Equal(t, tt.code, rr.Code)
		})
	}
	require.Equal(t, 2, h.store.Len())
}

func TestUpdateProduct(t *testing.T) {
	h := newHarness(t, true)
	original, _ := h.store.Get("2")

	body := `{"name":"Green Tea","category":"Drinks","status":"inactive"}`
	rr := h.do(t, http.MethodPut, "/api/products/2", body)
	require.Equal(t, http.StatusOK, rr.Code)

	got, ok := h.store.Get("2")
	require.True(t, ok)
	require.Equal(t, "Green Tea", got.Name)
	require.Equal(t, catalog.StatusInactive, got.Status)
	require.True(t, original.CreatedAt.Equal(got.CreatedAt))
	require.True(t, fixedNow.Equal(got.UpdatedAt))

	rr = h.do(t, http.MethodPut, "/api/products/nope", body)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteProductIsIdempotent(t *testing.T) {
	h := newHarness(t, true)

	require.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/api/products/1", "").Code)
	require.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/api/products/1", "").Code)
	_, ok := h.store.Get("1")
	require.False(t, ok)
}

func TestGenerateSKUs(t *testing.T) {
	h := newHarness(t, true)

	rr := h.do(t, http.MethodPost, "/api/products/1/skus/generate", "")
	require.Equal(t, http.StatusOK, rr.Code)
	product := decode[catalog.Product](t, rr)
	require.Len(t, product.SKUs, 12)
	require.Equal(t, "sku1", product.SKUs[0].ID)

	stored, _ := h.store.Get("1")
	require.Len(t, stored.SKUs, 12)
	require.Equal(t, []int{12}, h.observer.seen)

	require.Equal(t, http.StatusNotFound, h.do(t, http.MethodPost, "/api/products/x/skus/generate", "").Code)
}

func TestPreviewVariants(t *testing.T) {
	h := newHarness(t, true)

	body := `{"units":[{"name":"Piece","conversionRate":1}],"specifications":[{"name":"Color","values":["Black","White"]}]}`
	rr := h.do(t, http.MethodPost, "/api/variants/preview", body)
	require.Equal(t, http.StatusOK, rr.Code)
	preview := decode[struct {
		Count int
		SKUs  []struct{ SKUCode string }
	}](t, rr)
	require.Equal(t, 2, preview.Count)
	require.Equal(t, "BLA-PI", preview.SKUs[0].SKUCode)

	big := `{"units":[{"name":"Piece","conversionRate":1}],"specifications":[
		{"name":"A","values":["1","2","3","4","5"]},
		{"name":"B","values":["1","2","3","4","5"]}]}`
	rr = h.do(t, http.MethodPost, "/api/variants/preview", big)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestCategoriesAndReset(t *testing.T) {
	h := newHarness(t, true)

	require.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/api/products/2", "").Code)
	rr := h.do(t, http.MethodGet, "/api/categories", "")
	require.Equal(t, []string{"Electronics"}, decode[struct{ Categories []string }](t, rr).Categories)

	require.Equal(t, http.StatusNoContent, h.do(t, http.MethodPost, "/api/admin/reset", "").Code)
	rr = h.do(t, http.MethodGet, "/api/categories", "")
	require.Equal(t, []string{"Electronics", "Food & Beverage"}, decode[struct{ Categories []string }](t, rr).Categories)
}

func TestNotReadyStore(t *testing.T) {
	h := newHarness(t, false)

	rr := h.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = h.do(t, http.MethodPost, "/api/admin/reset", "")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Equal(t, "Not Ready", decode[httpx.ProblemDetail](t, rr).Title)

	rr = h.do(t, http.MethodGet, "/api/categories", "")
	require.JSONEq(t, `{"categories":[]}`, rr.Body.String())

	h.store.Initialize(context.Background())
	rr = h.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ready", decode[map[string]string](t, rr)["state"])
}
