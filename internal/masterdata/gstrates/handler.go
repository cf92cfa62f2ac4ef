package gstrates

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medipos-erp/medipos/internal/masterdata/shared"
	"github.com/medipos-erp/medipos/internal/platform/httpx"
)

// Handler wires HTTP endpoints for GST rates.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a GST rates handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers GST rate routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// List returns every rate.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rates, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list gst rates", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"gst_rates": rates})
}

// Create stores a new rate.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form GstRateForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	rate, err := h.service.Create(r.Context(), form)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rate)
}

// Update overwrites a rate.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid rate id")
		return
	}
	var form GstRateForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	rate, err := h.service.Update(r.Context(), id, form)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

// Delete removes an unreferenced rate.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid rate id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrInUse):
		httpx.Problem(w, http.StatusConflict, "In Use", "rate is referenced by one or more products")
	default:
		httpx.Problem(w, http.StatusBadRequest, "Request Failed", err.Error())
	}
}
