package products

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medipos-erp/medipos/internal/masterdata/shared"
	"github.com/medipos-erp/medipos/internal/platform/httpx"
	internalShared "github.com/medipos-erp/medipos/internal/shared"
)

// Handler wires HTTP endpoints for product master data.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a products handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/expiring", h.Expiring)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/batches", h.AddBatch)
	r.Put("/{id}/batches/{batchID}", h.UpdateBatch)
}

// List returns a paginated product listing.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	filters := shared.ListFilters{Page: page, Limit: limit, Search: r.URL.Query().Get("search")}
	filters.Normalize()

	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products":   items,
		"pagination": internalShared.NewPagination(filters.Page, filters.Limit, total),
	})
}

// Show returns one product with batches.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Create stores a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form ProductForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	product, err := h.service.Create(r.Context(), form)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

// Update overwrites product fields.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var form ProductForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	product, err := h.service.Update(r.Context(), id, form)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Delete removes an unreferenced product.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddBatch appends a batch to a product.
func (h *Handler) AddBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var form BatchForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	product, err := h.service.AddBatch(r.Context(), id, form)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

// UpdateBatch edits batch descriptive fields.
func (h *Handler) UpdateBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var form BatchForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	product, err := h.service.UpdateBatch(r.Context(), id, chi.URLParam(r, "batchID"), form)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Expiring lists in-stock batches close to expiry.
func (h *Handler) Expiring(w http.ResponseWriter, r *http.Request) {
	months, _ := strconv.Atoi(r.URL.Query().Get("months"))
	batches, err := h.service.ExpiringBatches(r.Context(), months)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"batches": batches})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrInUse):
		httpx.Problem(w, http.StatusConflict, "In Use", err.Error())
	default:
		h.logger.Error("products handler", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadRequest, "Request Failed", err.Error())
	}
}
