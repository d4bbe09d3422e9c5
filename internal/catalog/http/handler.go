// Package http exposes the catalog store and the variant generator as a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/igourd/igourd-pos/internal/catalog"
	"github.com/igourd/igourd-pos/internal/catalog/variants"
	"github.com/igourd/igourd-pos/internal/platform/httpx"
)

// DefaultMaxCombinations bounds variant previews when no limit is configured.
const DefaultMaxCombinations = 10000

// Store is the part of *catalog.Store the handler needs.
type Store interface {
	Ready() bool
	State() catalog.State
	Get(id string) (catalog.Product, bool)
	List(filter catalog.ListFilter) []catalog.Product
	Categories() []string
	Create(ctx context.Context, p catalog.Product) (catalog.Product, error)
	UpdateExisting(ctx context.Context, id string, p catalog.Product) error
	Delete(ctx context.Context, id string) error
	Reset(ctx context.Context) error
}

// CombinationObserver receives the size of every generated SKU set.
type CombinationObserver interface {
	ObserveCombinations(n int)
}

var errorMap = httpx.ErrorMap{
	{Target: httpx.ErrBadRequest, Status: http.StatusBadRequest, Title: "Bad Request"},
	{Target: catalog.ErrValidation, Status: http.StatusBadRequest, Title: "Validation Failed"},
	{Target: catalog.ErrNotFound, Status: http.StatusNotFound, Title: "Not Found"},
	{Target: catalog.ErrDuplicateKey, Status: http.StatusConflict, Title: "Duplicate"},
	{Target: variants.ErrTooManyCombinations, Status: http.StatusUnprocessableEntity, Title: "Too Many Combinations"},
	{Target: catalog.ErrNotReady, Status: http.StatusServiceUnavailable, Title: "Not Ready"},
	{Target: catalog.ErrDurableOperationFailed, Status: http.StatusServiceUnavailable, Title: "Storage Failure"},
}

// Options tune a Handler.
type Options struct {
	MaxCombinations int
	Observer        CombinationObserver
	NewID           func() string
	Now             func() time.Time
}

// Handler serves the catalog endpoints.
type Handler struct {
	logger   *slog.Logger
	store    Store
	opts     Options
	regroups singleflight.Group
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, store Store, opts Options) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxCombinations <= 0 {
		opts.MaxCombinations = DefaultMaxCombinations
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{logger: logger, store: store, opts: opts}
}

// MountRoutes registers the catalog routes under r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Post("/", h.createProduct)
		r.Get("/{id}", h.showProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
		r.Post("/{id}/skus/generate", h.generateSKUs)
	})
	r.Post("/variants/preview", h.previewVariants)
	r.Get("/categories", h.listCategories)
	r.Post("/admin/reset", h.reset)
}

// Health reports the store state; 503 until the store is ready.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	if !h.store.Ready() {
		status = http.StatusServiceUnavailable
	}
	httpx.JSON(w, status, map[string]string{"state": h.store.State().String()})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errorMap.Status(err) >= http.StatusInternalServerError {
		h.logger.Error("catalog request failed", slog.String("op", op), slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	errorMap.Respond(w, err)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalog.ListFilter{
		Category: q.Get("category"),
		Status:   catalog.Status(q.Get("status")),
		Search:   q.Get("search"),
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": h.store.List(filter)})
}

func (h *Handler) showProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, ok := h.store.Get(id)
	if !ok {
		h.fail(w, r, "show", catalog.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var product catalog.Product
	if err := httpx.DecodeJSON(r, &product); err != nil {
		h.fail(w, r, "create", err)
		return
	}
	if product.Status == "" {
		product.Status = catalog.StatusActive
	}
	if err := catalog.Validate(product); err != nil {
		h.fail(w, r, "create", err)
		return
	}
	now := h.opts.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	created, err := h.store.Create(r.Context(), product)
	if err != nil {
		h.fail(w, r, "create", err)
		return
	}
	w.Header().Set("Location", "/api/products/"+created.ID)
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	current, ok := h.store.Get(id)
	if !ok {
		h.fail(w, r, "update", catalog.ErrNotFound)
		return
	}
	var product catalog.Product
	if err := httpx.DecodeJSON(r, &product); err != nil {
		h.fail(w, r, "update", err)
		return
	}
	if err := catalog.Validate(product); err != nil {
		h.fail(w, r, "update", err)
		return
	}
	product.ID = id
	product.CreatedAt = current.CreatedAt
	product.UpdatedAt = h.opts.Now().UTC()

	if err := h.store.UpdateExisting(r.Context(), id, product); err != nil {
		h.fail(w, r, "update", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) generateSKUs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// Concurrent regenerations of one product collapse into a single store update.
	result, err, _ := h.regroups.Do(id, func() (any, error) {
		return variants.RegenerateStored(r.Context(), h.store, id, h.opts.MaxCombinations, h.opts.NewID)
	})
	if err != nil {
		h.fail(w, r, "generate", err)
		return
	}
	product := result.(catalog.Product)
	if h.opts.Observer != nil {
		h.opts.Observer.ObserveCombinations(len(product.SKUs))
	}
	httpx.JSON(w, http.StatusOK, product)
}

type previewRequest struct {
	Units          []catalog.Unit          `json:"units"`
	Specifications []catalog.Specification `json:"specifications"`
}

func (h *Handler) previewVariants(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "preview", err)
		return
	}
	resp, err := variants.PreviewCombinations(req.Units, req.Specifications, h.opts.MaxCombinations)
	if err != nil {
		h.fail(w, r, "preview", err)
		return
	}
	if h.opts.Observer != nil {
		h.opts.Observer.ObserveCombinations(resp.Count)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.store.Categories()
	if categories == nil {
		categories = []string{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Reset(r.Context()); err != nil {
		h.fail(w, r, "reset", err)
		return
	}
	h.logger.Info("catalog reset over http")
	w.WriteHeader(http.StatusNoContent)
}
